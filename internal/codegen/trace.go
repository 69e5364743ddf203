package codegen

import (
	"fmt"
	"strings"

	"github.com/grove-lang/grove/internal/casting"
	"github.com/grove-lang/grove/internal/types"
)

// Trace is a Backend that records every operation as a line of text.
type Trace struct {
	Ops []string

	temps   int
	labels  map[string]int
	current string
}

func NewTrace() *Trace {
	return &Trace{labels: make(map[string]int)}
}

func (t *Trace) String() string {
	return strings.Join(t.Ops, "\n")
}

func (t *Trace) emit(format string, args ...any) {
	t.Ops = append(t.Ops, fmt.Sprintf(format, args...))
}

func (t *Trace) temp() string {
	t.temps++
	return fmt.Sprintf("%%%d", t.temps)
}

func (t *Trace) CreateFunction(name string, signature *types.Type, linkage Linkage) Value {
	fn := "@" + name
	t.emit("function %s %s %s", fn, signature, linkage)
	return fn
}

// AppendBlock returns a label unique within fn.
func (t *Trace) AppendBlock(fn Value, name string) Block {
	key := fmt.Sprintf("%v/%s", fn, name)
	n := t.labels[key]
	t.labels[key]++
	if n > 0 {
		return fmt.Sprintf("%s.%d", name, n)
	}
	return name
}

func (t *Trace) SetInsertionPoint(block Block) {
	t.current = block.(string)
	t.emit("%s:", t.current)
}

func (t *Trace) InsertionPoint() Block {
	return t.current
}

func (t *Trace) Param(fn Value, index int) Value {
	return fmt.Sprintf("%%arg%d", index)
}

func (t *Trace) CreateAlloca(ty *types.Type, name string) Value {
	v := t.temp()
	t.emit("%s = alloca %s", v, ty)
	return v
}

func (t *Trace) CreateLoad(ty *types.Type, ptr Value) Value {
	v := t.temp()
	t.emit("%s = load %s %v", v, ty, ptr)
	return v
}

func (t *Trace) CreateStore(src, dst Value) {
	t.emit("store %v -> %v", src, dst)
}

func (t *Trace) CreateMemberPtr(class *types.Type, ptr Value, index int) Value {
	v := t.temp()
	t.emit("%s = member %s %v %d", v, class, ptr, index)
	return v
}

func (t *Trace) CreateBinOp(op BinOp, lhs, rhs Value) Value {
	v := t.temp()
	t.emit("%s = %s %v, %v", v, op, lhs, rhs)
	return v
}

func (t *Trace) CreateCompare(pred Predicate, lhs, rhs Value) Value {
	v := t.temp()
	t.emit("%s = cmp %s %v, %v", v, pred, lhs, rhs)
	return v
}

func (t *Trace) CreateNeg(value Value, float bool) Value {
	v := t.temp()
	op := "neg"
	if float {
		op = "fneg"
	}
	t.emit("%s = %s %v", v, op, value)
	return v
}

func (t *Trace) CreateCast(op casting.Op, value Value, to *types.Type) Value {
	v := t.temp()
	t.emit("%s = %s %v to %s", v, op, value, to)
	return v
}

func (t *Trace) CreateCall(fn Value, signature *types.Type, args []Value) Value {
	list := make([]string, len(args))
	for i, arg := range args {
		list[i] = fmt.Sprint(arg)
	}
	call := fmt.Sprintf("call %v(%s)", fn, strings.Join(list, ", "))

	if signature.T.(*types.Function).Ret.IsVoid() {
		t.emit("%s", call)
		return nil
	}
	v := t.temp()
	t.emit("%s = %s", v, call)
	return v
}

func (t *Trace) CreateRet(value Value) {
	t.emit("ret %v", value)
}

func (t *Trace) CreateRetVoid() {
	t.emit("ret void")
}

func (t *Trace) CreateBr(block Block) {
	t.emit("br %v", block)
}

func (t *Trace) CreateCondBr(cond Value, then, els Block) {
	t.emit("br %v, %v, %v", cond, then, els)
}

func (t *Trace) ConstInt(ty *types.Type, value uint64) Value {
	if ty.IsSigned() {
		return fmt.Sprintf("%s %d", ty, int64(value))
	}
	return fmt.Sprintf("%s %d", ty, value)
}

func (t *Trace) ConstFloat(ty *types.Type, value float64) Value {
	return fmt.Sprintf("%s %g", ty, value)
}
