package llvm

import (
	"fmt"

	"github.com/grove-lang/grove/internal/types"
	"tinygo.org/x/go-llvm"
)

// function is the Value handed out for functions: calls need the function
// type next to the function itself.
type function struct {
	fn llvm.Value
	ty llvm.Type
}

func (b *Backend) getType(ty *types.Type) llvm.Type {
	switch ty.Kind {
	case types.TYPE_BUILTIN:
		kind, _ := ty.BuiltinKind()
		switch kind {
		case types.BOOL:
			return b.context.Int1Type()
		case types.INT8, types.UINT8, types.CHAR:
			return b.context.Int8Type()
		case types.INT16, types.UINT16:
			return b.context.Int16Type()
		case types.INT32, types.UINT32:
			return b.context.Int32Type()
		case types.INT64, types.UINT64:
			return b.context.Int64Type()
		case types.FLOAT:
			return b.context.FloatType()
		case types.DOUBLE:
			return b.context.DoubleType()
		case types.VOID:
			return b.context.VoidType()
		}
	case types.TYPE_POINTER, types.TYPE_REFERENCE:
		return b.getPtrType(b.getType(ty.Elem()))
	case types.TYPE_ARRAY:
		arr := ty.T.(*types.Array)
		return llvm.ArrayType(b.getType(arr.Elem), int(arr.Size))
	case types.TYPE_TUPLE:
		return b.context.StructType(b.getTypes(ty.T.(*types.Tuple).Elems), false)
	case types.TYPE_FUNCTION:
		fn := ty.T.(*types.Function)
		return llvm.FunctionType(b.getType(fn.Ret), b.getTypes(fn.Params), false)
	case types.TYPE_CLASS:
		return b.getClassType(ty.T.(*types.Class))
	}
	panic(fmt.Sprintf("llvm: unsupported type '%s'", ty))
}

func (b *Backend) getPtrType(ty llvm.Type) llvm.Type {
	return llvm.PointerType(ty, 0)
}

func (b *Backend) getTypes(tys []*types.Type) []llvm.Type {
	result := make([]llvm.Type, len(tys))
	for i, ty := range tys {
		result[i] = b.getType(ty)
	}
	return result
}

// getClassType returns the named struct of a class. Members of reference
// type are laid out inline.
func (b *Backend) getClassType(class *types.Class) llvm.Type {
	if ty, ok := b.classes[class]; ok {
		return ty
	}
	ty := b.context.StructCreateNamed(class.Name)
	b.classes[class] = ty

	members := make([]llvm.Type, len(class.Members))
	for i, member := range class.Members {
		if member.IsReference() {
			member = member.Elem()
		}
		members[i] = b.getType(member)
	}
	ty.StructSetBody(members, false)
	return ty
}
