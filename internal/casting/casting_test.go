package casting

import (
	"errors"
	"testing"

	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/types"
	"github.com/nalgeon/be"
)

var (
	i8     = types.NewBuiltin(types.INT8)
	i32    = types.NewBuiltin(types.INT32)
	i64    = types.NewBuiltin(types.INT64)
	u8     = types.NewBuiltin(types.UINT8)
	u16    = types.NewBuiltin(types.UINT16)
	u32    = types.NewBuiltin(types.UINT32)
	u64    = types.NewBuiltin(types.UINT64)
	f32    = types.NewBuiltin(types.FLOAT)
	f64    = types.NewBuiltin(types.DOUBLE)
	char   = types.NewBuiltin(types.CHAR)
	boolTy = types.NewBuiltin(types.BOOL)
)

func TestFittingType(t *testing.T) {
	tests := []struct {
		name string
		a, b *types.Type
		want *types.Type
	}{
		{"same", i32, i32, i32},
		{"wider wins", i8, i64, i64},
		{"signed wins", u32, i32, i32},
		{"unsigned only if both", u8, u16, u16},
		{"unsigned wider with signed", u64, i8, i64},
		{"double beats float", f32, f64, f64},
		{"char with char", char, char, char},
		{"char with int", char, i32, i32},
		{"bools", boolTy, boolTy, boolTy},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FittingType(test.a, test.b)
			be.Err(t, err, nil)
			be.True(t, types.Matches(got, test.want))
		})
	}
}

func TestFittingTypeIsCommutative(t *testing.T) {
	all := []*types.Type{i8, i32, i64, u8, u16, u32, u64, f32, f64, char, boolTy}
	for _, a := range all {
		for _, b := range all {
			ab, errAB := FittingType(a, b)
			ba, errBA := FittingType(b, a)
			be.Equal(t, errAB == nil, errBA == nil)
			if errAB == nil {
				be.True(t, types.Matches(ab, ba))
			}
		}
	}
}

func TestFittingTypeRejectsFloatMixing(t *testing.T) {
	tests := []struct {
		name string
		a, b *types.Type
	}{
		{"float and int", f32, i32},
		{"int and double", i64, f64},
		{"bool and int", boolTy, i32},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := FittingType(test.a, test.b)
			be.True(t, errors.Is(err, diagnostics.ERR_TYPE_MISMATCH))
		})
	}
}

func TestCanAssign(t *testing.T) {
	ref, _ := types.NewReference(i32)
	ptr, _ := types.NewPointer(i32)

	tests := []struct {
		name     string
		dst, src *types.Type
		ok       bool
	}{
		{"identical", i32, i32, true},
		{"narrowing integer", i8, i64, true},
		{"widening integer", i64, u8, true},
		{"narrowing float", f32, f64, true},
		{"integer to float", f64, i32, true},
		{"float to integer", i32, f64, false},
		{"reference from value", ref, i32, true},
		{"value from reference", i32, ref, true},
		{"pointer from integer", ptr, i32, false},
		{"bool from integer", boolTy, i32, false},
		{"void", i32, types.VOID_TYPE, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := CanAssign(test.dst, test.src)
			if test.ok {
				be.Err(t, err, nil)
			} else {
				be.True(t, errors.Is(err, diagnostics.ERR_TYPE_MISMATCH))
			}
		})
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		from, to *types.Type
		want     Op
	}{
		{i32, i32, NONE},
		{i64, i8, TRUNC},
		{i8, i64, SEXT},
		{u8, i32, ZEXT},
		{f64, f32, FPTRUNC},
		{f32, f64, FPEXT},
		{i32, f64, SITOFP},
		{u32, f32, UITOFP},
		{u32, i32, NONE},
	}

	for _, test := range tests {
		t.Run(test.from.String()+"->"+test.to.String(), func(t *testing.T) {
			be.Equal(t, Select(test.from, test.to), test.want)
		})
	}
}

func TestIsCompatible(t *testing.T) {
	ptr, _ := types.NewPointer(i32)

	be.Err(t, IsCompatible(token.EQUAL_EQUAL, ptr, ptr), nil)
	be.Err(t, IsCompatible(token.LESS, i32, u8), nil)
	be.Err(t, IsCompatible(token.PLUS_EQUAL, i32, i8), nil)

	err := IsCompatible(token.PLUS_EQUAL, i32, f64)
	be.True(t, errors.Is(err, diagnostics.ERR_TYPE_MISMATCH))

	err = IsCompatible(token.PLUS_EQUAL, ptr, ptr)
	be.True(t, errors.Is(err, diagnostics.ERR_TYPE_MISMATCH))
}
