// Package casting decides how values of different builtin types are combined
// and converted.
//
// Arithmetic never narrows: both operands are widened toward the fitting
// type. Assignment forces the right-hand value to the left-hand type, which
// may narrow integers (truncation) or floating-point values, and may convert
// integers to floating-point. Converting a floating-point value to an integer
// is never implicit.
package casting

import (
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/types"
)

type Op int

const (
	NONE Op = iota
	TRUNC
	ZEXT
	SEXT
	FPTRUNC
	FPEXT
	SITOFP
	UITOFP
)

func (op Op) String() string {
	switch op {
	case NONE:
		return "none"
	case TRUNC:
		return "trunc"
	case ZEXT:
		return "zext"
	case SEXT:
		return "sext"
	case FPTRUNC:
		return "fptrunc"
	case FPEXT:
		return "fpext"
	case SITOFP:
		return "sitofp"
	case UITOFP:
		return "uitofp"
	default:
		return "unknown"
	}
}

func mismatch(format string, args ...any) error {
	return diagnostics.Errorf(diagnostics.TYPE_MISMATCH, diagnostics.NoNode, token.Pos{}, format, args...)
}

// FittingType returns the type both operands of a binary operation are
// widened to. The wider bit width wins, and the result is unsigned only if
// both operands are unsigned. Mixing floating-point with anything else is a
// type mismatch. The function is commutative.
func FittingType(a, b *types.Type) (*types.Type, error) {
	if a.IsBool() && b.IsBool() {
		return types.BOOL_TYPE, nil
	}
	if a.IsPointer() && types.Matches(a, b) {
		return a, nil
	}
	if !a.IsNumeric() || !b.IsNumeric() || a.IsBool() || b.IsBool() {
		return nil, mismatch("can't combine '%s' and '%s'", a, b)
	}

	bitSize := max(a.BitSize(), b.BitSize())
	switch {
	case a.IsFloatingPoint() && b.IsFloatingPoint():
		return types.FloatOf(bitSize), nil
	case a.IsFloatingPoint() || b.IsFloatingPoint():
		if b.IsFloatingPoint() {
			a, b = b, a
		}
		return nil, mismatch("can't mix floating-point '%s' with '%s'", a, b)
	}

	signed := a.IsSigned() || b.IsSigned()
	if a.Is(types.CHAR) && b.Is(types.CHAR) {
		return types.NewBuiltin(types.CHAR), nil
	}
	return types.IntegerOf(bitSize, signed), nil
}

// CanAssign checks that a value of type src may be stored into a location of
// type dst.
func CanAssign(dst, src *types.Type) error {
	if types.Matches(dst, src) {
		return nil
	}
	if dst.IsReference() && types.Matches(dst.Elem(), src) {
		return nil
	}
	if src.IsReference() && types.Matches(dst, src.Elem()) {
		return nil
	}
	if dst.IsVoid() || src.IsVoid() || dst.IsBool() || src.IsBool() {
		return mismatch("can't assign '%s' to '%s'", src, dst)
	}

	switch {
	case dst.IsInteger() && src.IsInteger():
		return nil
	case dst.IsFloatingPoint() && src.IsNumeric():
		return nil
	case dst.IsInteger() && src.IsFloatingPoint():
		return mismatch("implicit conversion from '%s' to '%s' loses the fractional part", src, dst)
	}
	return mismatch("can't assign '%s' to '%s'", src, dst)
}

// Select returns the conversion that turns a value of type from into a value
// of type to. Non-builtin types never need a conversion.
func Select(from, to *types.Type) Op {
	if !from.IsNumeric() || !to.IsNumeric() || types.Matches(from, to) {
		return NONE
	}

	fromBits, toBits := from.BitSize(), to.BitSize()
	switch {
	case from.IsFloatingPoint() && to.IsFloatingPoint():
		if toBits < fromBits {
			return FPTRUNC
		}
		if toBits > fromBits {
			return FPEXT
		}
		return NONE
	case to.IsFloatingPoint():
		if from.IsSigned() {
			return SITOFP
		}
		return UITOFP
	case from.IsFloatingPoint():
		// rejected by CanAssign
		return NONE
	}

	switch {
	case toBits < fromBits:
		return TRUNC
	case toBits > fromBits:
		if from.IsSigned() {
			return SEXT
		}
		return ZEXT
	default:
		return NONE
	}
}

// IsCompatible reports whether a compound assignment or comparison may be
// applied to the two operands.
func IsCompatible(op token.Kind, lhs, rhs *types.Type) error {
	if op.IsCompare() {
		_, err := FittingType(lhs, rhs)
		return err
	}
	fitting, err := FittingType(lhs, rhs)
	if err != nil {
		return err
	}
	if fitting.IsPointer() || fitting.IsBool() {
		return mismatch("operator '%s' is not defined for '%s'", op, fitting)
	}
	if op.IsAssign() {
		return CanAssign(lhs, fitting)
	}
	return nil
}
