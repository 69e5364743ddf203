package token

import "fmt"

type Kind int

const (
	// EOF
	EOF Kind = iota
	INVALID

	// Identifier
	ID

	LITERAL_START // literal kinds start delimiter
	INTEGER_LITERAL
	FLOAT_LITERAL
	CHAR_LITERAL
	LITERAL_END // literal kinds end delimiter

	// Keywords
	CLASS
	DEF
	EXTERN
	RETURN
	IF
	ELSE
	THIS

	TYPE_START // builtin type keywords start delimiter
	INT_TYPE    // int
	INT8_TYPE   // int8
	INT16_TYPE  // int16
	INT32_TYPE  // int32
	INT64_TYPE  // int64
	UINT_TYPE   // uint
	UINT8_TYPE  // uint8
	UINT16_TYPE // uint16
	UINT32_TYPE // uint32
	UINT64_TYPE // uint64
	FLOAT_TYPE  // float
	DOUBLE_TYPE // double
	CHAR_TYPE   // char
	BOOL_TYPE   // bool
	VOID_TYPE   // void
	VAR_TYPE    // var
	TYPE_END    // builtin type keywords end delimiter

	// (
	OPEN_PAREN
	// )
	CLOSE_PAREN
	// {
	OPEN_CURLY
	// }
	CLOSE_CURLY
	// [
	OPEN_BRACKET
	// ]
	CLOSE_BRACKET
	// ,
	COMMA
	// ;
	SEMICOLON
	// :
	COLON
	// .
	DOT
	// ->
	ARROW
	// &
	AMPERSAND

	ASSIGN_START // assignment operators start delimiter
	// =
	EQUAL
	// +=
	PLUS_EQUAL
	// -=
	MINUS_EQUAL
	// *=
	STAR_EQUAL
	// /=
	SLASH_EQUAL
	ASSIGN_END // assignment operators end delimiter

	// :=
	COLON_EQUAL

	COMPARE_START // comparison operators start delimiter
	// ==
	EQUAL_EQUAL
	// !=
	BANG_EQUAL
	// >
	GREATER
	// >=
	GREATER_EQ
	// <
	LESS
	// <=
	LESS_EQ
	COMPARE_END // comparison operators end delimiter

	// +
	PLUS
	// -
	MINUS
	// *
	STAR
	// /
	SLASH
	// %
	PERCENT
)

var KEYWORDS map[string]Kind = map[string]Kind{
	"class":  CLASS,
	"def":    DEF,
	"extern": EXTERN,
	"return": RETURN,
	"if":     IF,
	"else":   ELSE,
	"this":   THIS,

	"int":    INT_TYPE,
	"int8":   INT8_TYPE,
	"int16":  INT16_TYPE,
	"int32":  INT32_TYPE,
	"int64":  INT64_TYPE,
	"uint":   UINT_TYPE,
	"uint8":  UINT8_TYPE,
	"uint16": UINT16_TYPE,
	"uint32": UINT32_TYPE,
	"uint64": UINT64_TYPE,
	"float":  FLOAT_TYPE,
	"double": DOUBLE_TYPE,
	"char":   CHAR_TYPE,
	"bool":   BOOL_TYPE,
	"void":   VOID_TYPE,
	"var":    VAR_TYPE,
}

// Binary operators that evaluate to an arithmetic value
var ARITHMETIC map[Kind]bool = map[Kind]bool{
	PLUS:    true,
	MINUS:   true,
	STAR:    true,
	SLASH:   true,
	PERCENT: true,
}

func (kind Kind) IsLiteral() bool {
	return kind > LITERAL_START && kind < LITERAL_END
}

func (kind Kind) IsBasicType() bool {
	return kind > TYPE_START && kind < TYPE_END
}

func (kind Kind) IsAssign() bool {
	return kind > ASSIGN_START && kind < ASSIGN_END
}

func (kind Kind) IsCompoundAssign() bool {
	return kind.IsAssign() && kind != EQUAL
}

func (kind Kind) IsCompare() bool {
	return kind > COMPARE_START && kind < COMPARE_END
}

func (kind Kind) IsArithmetic() bool {
	return ARITHMETIC[kind]
}

// Arithmetic operator applied by a compound assignment (+= -> +)
func (kind Kind) Underlying() Kind {
	switch kind {
	case PLUS_EQUAL:
		return PLUS
	case MINUS_EQUAL:
		return MINUS
	case STAR_EQUAL:
		return STAR
	case SLASH_EQUAL:
		return SLASH
	default:
		return kind
	}
}

func (kind Kind) String() string {
	switch kind {
	case EOF:
		return "end of file"
	case INVALID:
		return "INVALID"
	case ID:
		return "identifier"
	case INTEGER_LITERAL:
		return "integer literal"
	case FLOAT_LITERAL:
		return "float literal"
	case CHAR_LITERAL:
		return "char literal"
	case CLASS:
		return "class"
	case DEF:
		return "def"
	case EXTERN:
		return "extern"
	case RETURN:
		return "return"
	case IF:
		return "if"
	case ELSE:
		return "else"
	case THIS:
		return "this"
	case INT_TYPE:
		return "int"
	case INT8_TYPE:
		return "int8"
	case INT16_TYPE:
		return "int16"
	case INT32_TYPE:
		return "int32"
	case INT64_TYPE:
		return "int64"
	case UINT_TYPE:
		return "uint"
	case UINT8_TYPE:
		return "uint8"
	case UINT16_TYPE:
		return "uint16"
	case UINT32_TYPE:
		return "uint32"
	case UINT64_TYPE:
		return "uint64"
	case FLOAT_TYPE:
		return "float"
	case DOUBLE_TYPE:
		return "double"
	case CHAR_TYPE:
		return "char"
	case BOOL_TYPE:
		return "bool"
	case VOID_TYPE:
		return "void"
	case VAR_TYPE:
		return "var"
	case OPEN_PAREN:
		return "("
	case CLOSE_PAREN:
		return ")"
	case OPEN_CURLY:
		return "{"
	case CLOSE_CURLY:
		return "}"
	case OPEN_BRACKET:
		return "["
	case CLOSE_BRACKET:
		return "]"
	case COMMA:
		return ","
	case SEMICOLON:
		return ";"
	case COLON:
		return ":"
	case DOT:
		return "."
	case ARROW:
		return "->"
	case AMPERSAND:
		return "&"
	case EQUAL:
		return "="
	case PLUS_EQUAL:
		return "+="
	case MINUS_EQUAL:
		return "-="
	case STAR_EQUAL:
		return "*="
	case SLASH_EQUAL:
		return "/="
	case COLON_EQUAL:
		return ":="
	case EQUAL_EQUAL:
		return "=="
	case BANG_EQUAL:
		return "!="
	case GREATER:
		return ">"
	case GREATER_EQ:
		return ">="
	case LESS:
		return "<"
	case LESS_EQ:
		return "<="
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}
