package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type BuildType int

const (
	RELEASE BuildType = iota
	DEBUG
)

func (bt BuildType) String() string {
	switch bt {
	case RELEASE:
		return "release"
	case DEBUG:
		return "debug"
	}
	return "unknown"
}

func ParseBuildType(s string) (BuildType, error) {
	switch s {
	case "release":
		return RELEASE, nil
	case "debug":
		return DEBUG, nil
	}
	return DEBUG, fmt.Errorf("unknown build type '%s', expected release or debug", s)
}

func (bt *BuildType) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseBuildType(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*bt = parsed
	return nil
}

func (bt BuildType) MarshalYAML() (any, error) {
	return bt.String(), nil
}

// Emit selects what the build command produces.
type Emit int

const (
	EMIT_EXE Emit = iota
	EMIT_LLVM_IR
	EMIT_TRACE
)

func (e Emit) String() string {
	switch e {
	case EMIT_EXE:
		return "exe"
	case EMIT_LLVM_IR:
		return "llvm-ir"
	case EMIT_TRACE:
		return "trace"
	}
	return "unknown"
}

func ParseEmit(s string) (Emit, error) {
	switch s {
	case "exe":
		return EMIT_EXE, nil
	case "llvm-ir", "ir":
		return EMIT_LLVM_IR, nil
	case "trace":
		return EMIT_TRACE, nil
	}
	return EMIT_EXE, fmt.Errorf("unknown emit kind '%s', expected exe, llvm-ir or trace", s)
}

func (e *Emit) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseEmit(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*e = parsed
	return nil
}

func (e Emit) MarshalYAML() (any, error) {
	return e.String(), nil
}
