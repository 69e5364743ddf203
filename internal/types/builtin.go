package types

import "fmt"

type BuiltinKind int

const (
	INTEGER_START BuiltinKind = iota // integer kinds start delimiter
	INT8
	INT16
	INT32
	INT64
	UINT8
	UINT16
	UINT32
	UINT64
	CHAR
	BOOL
	INTEGER_END // integer kinds end delimiter

	FLOAT_START // floating-point kinds start delimiter
	FLOAT
	DOUBLE
	FLOAT_END // floating-point kinds end delimiter

	VOID
	VAR // inferred from an initializer, never survives resolution
)

type Builtin struct {
	Kind BuiltinKind
}

func (kind BuiltinKind) IsInteger() bool {
	return kind > INTEGER_START && kind < INTEGER_END
}

func (kind BuiltinKind) IsFloat() bool {
	return kind > FLOAT_START && kind < FLOAT_END
}

func (kind BuiltinKind) IsNumeric() bool {
	return kind.IsInteger() || kind.IsFloat()
}

func (kind BuiltinKind) IsSigned() bool {
	switch kind {
	case INT8, INT16, INT32, INT64, FLOAT, DOUBLE:
		return true
	}
	return false
}

func (kind BuiltinKind) BitSize() int {
	switch kind {
	case BOOL:
		return 1
	case INT8, UINT8, CHAR:
		return 8
	case INT16, UINT16:
		return 16
	case INT32, UINT32, FLOAT:
		return 32
	case INT64, UINT64, DOUBLE:
		return 64
	default:
		return -1
	}
}

func (kind BuiltinKind) String() string {
	switch kind {
	case INT8:
		return "int8"
	case INT16:
		return "int16"
	case INT32:
		return "int32"
	case INT64:
		return "int64"
	case UINT8:
		return "uint8"
	case UINT16:
		return "uint16"
	case UINT32:
		return "uint32"
	case UINT64:
		return "uint64"
	case CHAR:
		return "char"
	case BOOL:
		return "bool"
	case FLOAT:
		return "float"
	case DOUBLE:
		return "double"
	case VOID:
		return "void"
	case VAR:
		return "var"
	default:
		return fmt.Sprintf("BuiltinKind(%d)", int(kind))
	}
}

func (b *Builtin) Equals(other *Builtin) bool {
	return b.Kind == other.Kind
}

func (b Builtin) String() string {
	return b.Kind.String()
}

// IntegerOf returns the canonical integer builtin with the given width and
// signedness.
func IntegerOf(bitSize int, signed bool) *Type {
	var kind BuiltinKind
	switch bitSize {
	case 1:
		kind = BOOL
	case 8:
		kind = UINT8
		if signed {
			kind = INT8
		}
	case 16:
		kind = UINT16
		if signed {
			kind = INT16
		}
	case 32:
		kind = UINT32
		if signed {
			kind = INT32
		}
	default:
		kind = UINT64
		if signed {
			kind = INT64
		}
	}
	return NewBuiltin(kind)
}

// FloatOf returns the floating-point builtin able to hold bitSize bits.
func FloatOf(bitSize int) *Type {
	if bitSize > 32 {
		return NewBuiltin(DOUBLE)
	}
	return NewBuiltin(FLOAT)
}
