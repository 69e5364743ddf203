// Package codegen walks a resolved module and emits it through a Backend.
package codegen

import (
	"fmt"

	"github.com/grove-lang/grove/internal/casting"
	"github.com/grove-lang/grove/internal/types"
)

// Value and Block are opaque backend handles.
type (
	Value any
	Block any
)

type Linkage int

const (
	LINKAGE_EXTERNAL Linkage = iota
	LINKAGE_INTERNAL
)

func (linkage Linkage) String() string {
	if linkage == LINKAGE_INTERNAL {
		return "internal"
	}
	return "external"
}

type BinOp int

const (
	OP_ADD BinOp = iota
	OP_SUB
	OP_MUL
	OP_SDIV
	OP_UDIV
	OP_SREM
	OP_UREM
	OP_FADD
	OP_FSUB
	OP_FMUL
	OP_FDIV
	OP_FREM
)

func (op BinOp) String() string {
	switch op {
	case OP_ADD:
		return "add"
	case OP_SUB:
		return "sub"
	case OP_MUL:
		return "mul"
	case OP_SDIV:
		return "sdiv"
	case OP_UDIV:
		return "udiv"
	case OP_SREM:
		return "srem"
	case OP_UREM:
		return "urem"
	case OP_FADD:
		return "fadd"
	case OP_FSUB:
		return "fsub"
	case OP_FMUL:
		return "fmul"
	case OP_FDIV:
		return "fdiv"
	case OP_FREM:
		return "frem"
	default:
		return fmt.Sprintf("BinOp(%d)", int(op))
	}
}

type Predicate int

const (
	PRED_EQ Predicate = iota
	PRED_NE
	PRED_SLT
	PRED_SLE
	PRED_SGT
	PRED_SGE
	PRED_ULT
	PRED_ULE
	PRED_UGT
	PRED_UGE

	FLOAT_PRED_START // ordered floating-point predicates start delimiter
	PRED_OEQ
	PRED_ONE
	PRED_OLT
	PRED_OLE
	PRED_OGT
	PRED_OGE
	FLOAT_PRED_END // ordered floating-point predicates end delimiter
)

func (pred Predicate) IsFloat() bool {
	return pred > FLOAT_PRED_START && pred < FLOAT_PRED_END
}

func (pred Predicate) String() string {
	switch pred {
	case PRED_EQ:
		return "eq"
	case PRED_NE:
		return "ne"
	case PRED_SLT:
		return "slt"
	case PRED_SLE:
		return "sle"
	case PRED_SGT:
		return "sgt"
	case PRED_SGE:
		return "sge"
	case PRED_ULT:
		return "ult"
	case PRED_ULE:
		return "ule"
	case PRED_UGT:
		return "ugt"
	case PRED_UGE:
		return "uge"
	case PRED_OEQ:
		return "oeq"
	case PRED_ONE:
		return "one"
	case PRED_OLT:
		return "olt"
	case PRED_OLE:
		return "ole"
	case PRED_OGT:
		return "ogt"
	case PRED_OGE:
		return "oge"
	default:
		return fmt.Sprintf("Predicate(%d)", int(pred))
	}
}

// Backend receives the operations of the build pass. Types are passed as
// resolved types; mapping them to machine types is up to the backend.
//
// A value of type Reference(T) is always the address of its T. Class members
// of reference type embed the referenced class.
type Backend interface {
	CreateFunction(name string, signature *types.Type, linkage Linkage) Value
	AppendBlock(fn Value, name string) Block
	SetInsertionPoint(block Block)
	InsertionPoint() Block
	Param(fn Value, index int) Value

	CreateAlloca(ty *types.Type, name string) Value
	CreateLoad(ty *types.Type, ptr Value) Value
	CreateStore(src, dst Value)
	CreateMemberPtr(class *types.Type, ptr Value, index int) Value

	CreateBinOp(op BinOp, lhs, rhs Value) Value
	CreateCompare(pred Predicate, lhs, rhs Value) Value
	CreateNeg(value Value, float bool) Value
	CreateCast(op casting.Op, value Value, to *types.Type) Value
	CreateCall(fn Value, signature *types.Type, args []Value) Value

	CreateRet(value Value)
	CreateRetVoid()
	CreateBr(block Block)
	CreateCondBr(cond Value, then, els Block)

	ConstInt(ty *types.Type, value uint64) Value
	ConstFloat(ty *types.Type, value float64) Value
}
