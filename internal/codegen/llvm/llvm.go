// Package llvm is the codegen.Backend that emits LLVM IR through the LLVM C
// API.
package llvm

import (
	"github.com/grove-lang/grove/internal/casting"
	"github.com/grove-lang/grove/internal/codegen"
	"github.com/grove-lang/grove/internal/types"
	"tinygo.org/x/go-llvm"
)

type Backend struct {
	context llvm.Context
	module  llvm.Module
	builder llvm.Builder

	classes map[*types.Class]llvm.Type
}

// New creates an empty LLVM module. An empty triple selects the host.
func New(name, triple string) *Backend {
	context := llvm.NewContext()
	module := context.NewModule(name)
	builder := context.NewBuilder()

	if triple == "" {
		triple = llvm.DefaultTargetTriple()
	}
	module.SetTarget(triple)

	return &Backend{
		context: context,
		module:  module,
		builder: builder,
		classes: make(map[*types.Class]llvm.Type),
	}
}

// DefaultTriple is the target triple of the host.
func DefaultTriple() string {
	return llvm.DefaultTargetTriple()
}

func (b *Backend) String() string {
	return b.module.String()
}

func (b *Backend) Verify() error {
	return llvm.VerifyModule(b.module, llvm.ReturnStatusAction)
}

func (b *Backend) Dispose() {
	b.builder.Dispose()
	b.module.Dispose()
	b.context.Dispose()
}

func (b *Backend) CreateFunction(name string, signature *types.Type, linkage codegen.Linkage) codegen.Value {
	ty := b.getType(signature)
	fn := llvm.AddFunction(b.module, name, ty)
	fn.SetLinkage(getLinkage(linkage))
	return &function{fn: fn, ty: ty}
}

func getLinkage(linkage codegen.Linkage) llvm.Linkage {
	switch linkage {
	case codegen.LINKAGE_INTERNAL:
		return llvm.InternalLinkage
	default:
		return llvm.ExternalLinkage
	}
}

func (b *Backend) AppendBlock(fn codegen.Value, name string) codegen.Block {
	return b.context.AddBasicBlock(fn.(*function).fn, name)
}

func (b *Backend) SetInsertionPoint(block codegen.Block) {
	b.builder.SetInsertPointAtEnd(block.(llvm.BasicBlock))
}

func (b *Backend) InsertionPoint() codegen.Block {
	return b.builder.GetInsertBlock()
}

func (b *Backend) Param(fn codegen.Value, index int) codegen.Value {
	return fn.(*function).fn.Param(index)
}

func (b *Backend) CreateAlloca(ty *types.Type, name string) codegen.Value {
	return b.builder.CreateAlloca(b.getType(ty), name)
}

func (b *Backend) CreateLoad(ty *types.Type, ptr codegen.Value) codegen.Value {
	return b.builder.CreateLoad(b.getType(ty), ptr.(llvm.Value), "")
}

func (b *Backend) CreateStore(src, dst codegen.Value) {
	b.builder.CreateStore(src.(llvm.Value), dst.(llvm.Value))
}

func (b *Backend) CreateMemberPtr(class *types.Type, ptr codegen.Value, index int) codegen.Value {
	return b.builder.CreateStructGEP(b.getType(class), ptr.(llvm.Value), index, "")
}

func (b *Backend) CreateBinOp(op codegen.BinOp, lhs, rhs codegen.Value) codegen.Value {
	l, r := lhs.(llvm.Value), rhs.(llvm.Value)
	switch op {
	case codegen.OP_ADD:
		return b.builder.CreateAdd(l, r, "")
	case codegen.OP_SUB:
		return b.builder.CreateSub(l, r, "")
	case codegen.OP_MUL:
		return b.builder.CreateMul(l, r, "")
	case codegen.OP_SDIV:
		return b.builder.CreateSDiv(l, r, "")
	case codegen.OP_UDIV:
		return b.builder.CreateUDiv(l, r, "")
	case codegen.OP_SREM:
		return b.builder.CreateSRem(l, r, "")
	case codegen.OP_UREM:
		return b.builder.CreateURem(l, r, "")
	case codegen.OP_FADD:
		return b.builder.CreateFAdd(l, r, "")
	case codegen.OP_FSUB:
		return b.builder.CreateFSub(l, r, "")
	case codegen.OP_FMUL:
		return b.builder.CreateFMul(l, r, "")
	case codegen.OP_FDIV:
		return b.builder.CreateFDiv(l, r, "")
	default:
		return b.builder.CreateFRem(l, r, "")
	}
}

func (b *Backend) CreateCompare(pred codegen.Predicate, lhs, rhs codegen.Value) codegen.Value {
	l, r := lhs.(llvm.Value), rhs.(llvm.Value)
	if pred.IsFloat() {
		return b.builder.CreateFCmp(floatPredicate(pred), l, r, "")
	}
	return b.builder.CreateICmp(intPredicate(pred), l, r, "")
}

func intPredicate(pred codegen.Predicate) llvm.IntPredicate {
	switch pred {
	case codegen.PRED_EQ:
		return llvm.IntEQ
	case codegen.PRED_NE:
		return llvm.IntNE
	case codegen.PRED_SLT:
		return llvm.IntSLT
	case codegen.PRED_SLE:
		return llvm.IntSLE
	case codegen.PRED_SGT:
		return llvm.IntSGT
	case codegen.PRED_SGE:
		return llvm.IntSGE
	case codegen.PRED_ULT:
		return llvm.IntULT
	case codegen.PRED_ULE:
		return llvm.IntULE
	case codegen.PRED_UGT:
		return llvm.IntUGT
	default:
		return llvm.IntUGE
	}
}

func floatPredicate(pred codegen.Predicate) llvm.FloatPredicate {
	switch pred {
	case codegen.PRED_OEQ:
		return llvm.FloatOEQ
	case codegen.PRED_ONE:
		return llvm.FloatONE
	case codegen.PRED_OLT:
		return llvm.FloatOLT
	case codegen.PRED_OLE:
		return llvm.FloatOLE
	case codegen.PRED_OGT:
		return llvm.FloatOGT
	default:
		return llvm.FloatOGE
	}
}

func (b *Backend) CreateNeg(value codegen.Value, float bool) codegen.Value {
	if float {
		return b.builder.CreateFNeg(value.(llvm.Value), "")
	}
	return b.builder.CreateNeg(value.(llvm.Value), "")
}

func (b *Backend) CreateCast(op casting.Op, value codegen.Value, to *types.Type) codegen.Value {
	v, ty := value.(llvm.Value), b.getType(to)
	switch op {
	case casting.TRUNC:
		return b.builder.CreateTrunc(v, ty, "")
	case casting.ZEXT:
		return b.builder.CreateZExt(v, ty, "")
	case casting.SEXT:
		return b.builder.CreateSExt(v, ty, "")
	case casting.FPTRUNC:
		return b.builder.CreateFPTrunc(v, ty, "")
	case casting.FPEXT:
		return b.builder.CreateFPExt(v, ty, "")
	case casting.SITOFP:
		return b.builder.CreateSIToFP(v, ty, "")
	case casting.UITOFP:
		return b.builder.CreateUIToFP(v, ty, "")
	default:
		return v
	}
}

func (b *Backend) CreateCall(fn codegen.Value, signature *types.Type, args []codegen.Value) codegen.Value {
	callee := fn.(*function)
	values := make([]llvm.Value, len(args))
	for i, arg := range args {
		values[i] = arg.(llvm.Value)
	}
	call := b.builder.CreateCall(callee.ty, callee.fn, values, "")
	if signature.T.(*types.Function).Ret.IsVoid() {
		return nil
	}
	return call
}

func (b *Backend) CreateRet(value codegen.Value) {
	b.builder.CreateRet(value.(llvm.Value))
}

func (b *Backend) CreateRetVoid() {
	b.builder.CreateRetVoid()
}

func (b *Backend) CreateBr(block codegen.Block) {
	b.builder.CreateBr(block.(llvm.BasicBlock))
}

func (b *Backend) CreateCondBr(cond codegen.Value, then, els codegen.Block) {
	b.builder.CreateCondBr(cond.(llvm.Value), then.(llvm.BasicBlock), els.(llvm.BasicBlock))
}

func (b *Backend) ConstInt(ty *types.Type, value uint64) codegen.Value {
	return llvm.ConstInt(b.getType(ty), value, ty.IsSigned())
}

func (b *Backend) ConstFloat(ty *types.Type, value float64) codegen.Value {
	return llvm.ConstFloat(b.getType(ty), value)
}

var _ codegen.Backend = (*Backend)(nil)
