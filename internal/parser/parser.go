package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/grove-lang/grove/internal/ast"
	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/lexer"
	"github.com/grove-lang/grove/internal/lexer/token"
	"github.com/grove-lang/grove/internal/types"
)

var COMPARASION map[token.Kind]bool = map[token.Kind]bool{
	token.EQUAL_EQUAL: true,
	token.BANG_EQUAL:  true,
	token.GREATER:     true,
	token.GREATER_EQ:  true,
	token.LESS:        true,
	token.LESS_EQ:     true,
}

var TERM map[token.Kind]bool = map[token.Kind]bool{
	token.MINUS: true,
	token.PLUS:  true,
}

var FACTOR map[token.Kind]bool = map[token.Kind]bool{
	token.SLASH:   true,
	token.STAR:    true,
	token.PERCENT: true,
}

var UNARY map[token.Kind]bool = map[token.Kind]bool{
	token.MINUS: true,
}

var BUILTIN_TYPES map[token.Kind]types.BuiltinKind = map[token.Kind]types.BuiltinKind{
	token.INT_TYPE:    types.INT32,
	token.INT8_TYPE:   types.INT8,
	token.INT16_TYPE:  types.INT16,
	token.INT32_TYPE:  types.INT32,
	token.INT64_TYPE:  types.INT64,
	token.UINT_TYPE:   types.UINT32,
	token.UINT8_TYPE:  types.UINT8,
	token.UINT16_TYPE: types.UINT16,
	token.UINT32_TYPE: types.UINT32,
	token.UINT64_TYPE: types.UINT64,
	token.FLOAT_TYPE:  types.FLOAT,
	token.DOUBLE_TYPE: types.DOUBLE,
	token.CHAR_TYPE:   types.CHAR,
	token.BOOL_TYPE:   types.BOOL,
	token.VOID_TYPE:   types.VOID,
	token.VAR_TYPE:    types.VAR,
}

var LITERAL_SUFFIXES map[string]types.BuiltinKind = map[string]types.BuiltinKind{
	"":    types.INT32,
	"i8":  types.INT8,
	"i16": types.INT16,
	"i32": types.INT32,
	"i64": types.INT64,
	"u8":  types.UINT8,
	"u16": types.UINT16,
	"u32": types.UINT32,
	"u64": types.UINT64,
	"f":   types.FLOAT,
	"d":   types.DOUBLE,
}

type Parser struct {
	lex       *lexer.Lexer
	collector diagnostics.Reporter
	tree      *ast.Tree
}

func New(collector diagnostics.Reporter) *Parser {
	parser := new(Parser)
	parser.lex = nil
	parser.tree = nil
	parser.collector = collector
	return parser
}

// ParseFile parses a whole source file into a fresh tree. Which statements
// are allowed at the top level is checked later by the resolver.
func (p *Parser) ParseFile(lex *lexer.Lexer) (*ast.Tree, error) {
	p.lex = lex
	p.tree = ast.NewTree()
	root := p.tree.NewRoot(lex.Filename())

	for {
		p.skipSemicolons()
		if p.lex.NextIs(token.EOF) {
			break
		}

		stmt, err := p.parseStmt(false)
		if err != nil {
			return nil, err
		}
		p.tree.Append(root, stmt)
	}
	return p.tree, nil
}

func (p *Parser) report(pos token.Pos, format string, args ...any) error {
	diag := diagnostics.Errorf(diagnostics.SYNTAX, diagnostics.NoNode, pos, format, args...)
	p.collector.ReportAndSave(*diag)
	return diagnostics.COMPILER_ERROR_FOUND
}

func (p *Parser) expect(expectedKind token.Kind) (*token.Token, bool) {
	tok := p.lex.Peek()
	if tok.Kind != expectedKind {
		return tok, false
	}
	p.lex.Skip()
	return tok, true
}

func (p *Parser) expectOrReport(expectedKind token.Kind) (*token.Token, error) {
	tok, ok := p.expect(expectedKind)
	if !ok {
		if tok.Kind == token.INVALID {
			// already reported by the lexer
			p.lex.Skip()
			return nil, diagnostics.COMPILER_ERROR_FOUND
		}
		return nil, p.report(tok.Pos, "expected %s, not %s", expectedKind, tok.Kind)
	}
	return tok, nil
}

func (p *Parser) skipSemicolons() {
	for p.lex.NextIs(token.SEMICOLON) {
		p.lex.Skip()
	}
}

// parseStmt parses a single statement. Inside a class body, variable
// declarations become member declarations and functions become methods.
func (p *Parser) parseStmt(inClass bool) (ast.NodeID, error) {
	var stmt ast.NodeID
	var err error

	tok := p.lex.Peek()
	switch tok.Kind {
	case token.CLASS:
		stmt, err = p.parseClassDecl()
	case token.DEF:
		kind := ast.KIND_FUNC_DECL
		if inClass {
			kind = ast.KIND_METHOD_DECL
		}
		stmt, err = p.parseFuncDecl(kind)
	case token.EXTERN:
		stmt, err = p.parseExternDecl()
	case token.RETURN:
		stmt, err = p.parseReturn()
	case token.IF:
		stmt, err = p.parseIf()
	case token.OPEN_CURLY:
		stmt, err = p.parseBlock()
	case token.ID:
		next := p.lex.Peek1()
		if next.Kind == token.COLON || next.Kind == token.COLON_EQUAL {
			stmt, err = p.parseVarDecl(inClass)
		} else {
			stmt, err = p.parseExpr()
		}
	case token.INVALID:
		p.lex.Skip()
		return ast.NoNode, diagnostics.COMPILER_ERROR_FOUND
	default:
		stmt, err = p.parseExpr()
	}
	if err != nil {
		return ast.NoNode, err
	}

	p.skipSemicolons()
	return stmt, nil
}

func (p *Parser) parseBlock() (ast.NodeID, error) {
	openCurly, err := p.expectOrReport(token.OPEN_CURLY)
	if err != nil {
		return ast.NoNode, err
	}
	block := p.tree.New(ast.KIND_BLOCK_STMT, openCurly.Pos, nil)

	for {
		p.skipSemicolons()
		tok := p.lex.Peek()
		if tok.Kind == token.CLOSE_CURLY {
			break
		}
		if tok.Kind == token.EOF {
			return ast.NoNode, p.report(tok.Pos, "expected statement or }, not %s", tok.Kind)
		}

		stmt, err := p.parseStmt(false)
		if err != nil {
			return ast.NoNode, err
		}
		p.tree.Append(block, stmt)
	}

	p.lex.Skip() // }
	return block, nil
}

func (p *Parser) parseClassDecl() (ast.NodeID, error) {
	class, _ := p.expect(token.CLASS)

	name, err := p.expectOrReport(token.ID)
	if err != nil {
		return ast.NoNode, err
	}
	if _, err := p.expectOrReport(token.OPEN_CURLY); err != nil {
		return ast.NoNode, err
	}

	decl := p.tree.New(ast.KIND_CLASS_DECL, class.Pos, &ast.ClassDecl{Name: name.Name()})
	for {
		p.skipSemicolons()
		tok := p.lex.Peek()
		if tok.Kind == token.CLOSE_CURLY {
			break
		}
		if tok.Kind == token.EOF {
			return ast.NoNode, p.report(tok.Pos, "expected member or }, not %s", tok.Kind)
		}

		stmt, err := p.parseStmt(true)
		if err != nil {
			return ast.NoNode, err
		}
		p.tree.Append(decl, stmt)
	}

	p.lex.Skip() // }
	return decl, nil
}

// parseFuncDecl parses `def name(params) (-> type)? block`.
func (p *Parser) parseFuncDecl(kind ast.NodeKind) (ast.NodeID, error) {
	def, _ := p.expect(token.DEF)

	fn, err := p.parsePrototype(kind, def.Pos)
	if err != nil {
		return ast.NoNode, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return ast.NoNode, err
	}
	p.tree.Append(fn, body)
	return fn, nil
}

func (p *Parser) parseExternDecl() (ast.NodeID, error) {
	extern, _ := p.expect(token.EXTERN)
	if _, err := p.expectOrReport(token.DEF); err != nil {
		return ast.NoNode, err
	}
	return p.parsePrototype(ast.KIND_EXTERN_FUNC_DECL, extern.Pos)
}

func (p *Parser) parsePrototype(kind ast.NodeKind, pos token.Pos) (ast.NodeID, error) {
	name, err := p.expectOrReport(token.ID)
	if err != nil {
		return ast.NoNode, err
	}

	params, err := p.parseFunctionParams()
	if err != nil {
		return ast.NoNode, err
	}

	retType := ast.NewBuiltinTypeExpr(types.VOID)
	retType.Pos = name.Pos
	if p.lex.NextIs(token.ARROW) {
		p.lex.Skip()
		retType, err = p.parseType()
		if err != nil {
			return ast.NoNode, err
		}
	}

	fn := p.tree.New(kind, pos, &ast.FuncDecl{
		Name:      name.Name(),
		RetType:   retType,
		NumParams: len(params),
	})
	for _, param := range params {
		p.tree.Append(fn, param)
	}
	return fn, nil
}

func (p *Parser) parseFunctionParams() ([]ast.NodeID, error) {
	if _, err := p.expectOrReport(token.OPEN_PAREN); err != nil {
		return nil, err
	}

	var params []ast.NodeID
	for !p.lex.NextIs(token.CLOSE_PAREN) {
		if len(params) > 0 {
			if _, err := p.expectOrReport(token.COMMA); err != nil {
				return nil, err
			}
		}

		name, err := p.expectOrReport(token.ID)
		if err != nil {
			return nil, err
		}
		if _, err := p.expectOrReport(token.COLON); err != nil {
			return nil, err
		}
		paramType, err := p.parseType()
		if err != nil {
			return nil, err
		}

		param := p.tree.New(ast.KIND_PARAM, name.Pos, &ast.ParamDecl{Name: name.Name(), Type: paramType})
		params = append(params, param)
	}

	p.lex.Skip() // )
	return params, nil
}

// parseVarDecl parses `name: type (= value)?` and `name := value`.
func (p *Parser) parseVarDecl(inClass bool) (ast.NodeID, error) {
	name, _ := p.expect(token.ID)

	var declared *ast.TypeExpr
	var err error

	op := p.lex.Next()
	if op.Kind == token.COLON {
		declared, err = p.parseType()
		if err != nil {
			return ast.NoNode, err
		}
	}

	var data any = &ast.VarDecl{Name: name.Name(), Type: declared}
	kind := ast.KIND_VAR_DECL
	if inClass {
		data = &ast.MemberDecl{Name: name.Name(), Type: declared}
		kind = ast.KIND_MEMBER_DECL
	}
	decl := p.tree.New(kind, name.Pos, data)

	hasValue := op.Kind == token.COLON_EQUAL
	if op.Kind == token.COLON && p.lex.NextIs(token.EQUAL) {
		p.lex.Skip()
		hasValue = true
	}
	if !hasValue {
		if declared.IsInferred() {
			return ast.NoNode, p.report(name.Pos, "'%s' needs a type or an initial value", name.Name())
		}
		return decl, nil
	}

	value, err := p.parseExpr()
	if err != nil {
		return ast.NoNode, err
	}
	p.tree.Append(decl, value)
	return decl, nil
}

func (p *Parser) parseReturn() (ast.NodeID, error) {
	ret, _ := p.expect(token.RETURN)
	stmt := p.tree.New(ast.KIND_RETURN_STMT, ret.Pos, nil)

	next := p.lex.Peek()
	if next.Kind == token.SEMICOLON || next.Kind == token.CLOSE_CURLY || next.Kind == token.EOF {
		return stmt, nil
	}

	value, err := p.parseExpr()
	if err != nil {
		return ast.NoNode, err
	}
	p.tree.Append(stmt, value)
	return stmt, nil
}

func (p *Parser) parseIf() (ast.NodeID, error) {
	ifTok, _ := p.expect(token.IF)
	stmt := p.tree.New(ast.KIND_IF_STMT, ifTok.Pos, nil)

	cond, err := p.parseExpr()
	if err != nil {
		return ast.NoNode, err
	}
	p.tree.Append(stmt, cond)

	then, err := p.parseBlock()
	if err != nil {
		return ast.NoNode, err
	}
	p.tree.Append(stmt, then)

	if !p.lex.NextIs(token.ELSE) {
		return stmt, nil
	}
	p.lex.Skip()

	var otherwise ast.NodeID
	if p.lex.NextIs(token.IF) {
		otherwise, err = p.parseIf()
	} else {
		otherwise, err = p.parseBlock()
	}
	if err != nil {
		return ast.NoNode, err
	}
	p.tree.Append(stmt, otherwise)
	return stmt, nil
}

// parseType parses `base ('*' | '&' | '[' INT ']')*`.
func (p *Parser) parseType() (*ast.TypeExpr, error) {
	tok := p.lex.Next()

	var ty *ast.TypeExpr
	switch {
	case tok.Kind.IsBasicType():
		ty = ast.NewBuiltinTypeExpr(BUILTIN_TYPES[tok.Kind])
	case tok.Kind == token.ID:
		ty = ast.NewNamedTypeExpr(tok.Name())
	case tok.Kind == token.OPEN_PAREN:
		ty = &ast.TypeExpr{Kind: ast.TYPE_EXPR_TUPLE}
		for {
			elem, err := p.parseType()
			if err != nil {
				return nil, err
			}
			ty.Elems = append(ty.Elems, elem)
			if !p.lex.NextIs(token.COMMA) {
				break
			}
			p.lex.Skip()
		}
		if _, err := p.expectOrReport(token.CLOSE_PAREN); err != nil {
			return nil, err
		}
	default:
		return nil, p.report(tok.Pos, "expected type, not %s", tok.Kind)
	}
	ty.Pos = tok.Pos

	for {
		switch p.lex.Peek().Kind {
		case token.STAR:
			p.lex.Skip()
			ty = ast.NewPointerTypeExpr(ty)
		case token.AMPERSAND:
			p.lex.Skip()
			ty = ast.NewReferenceTypeExpr(ty)
		case token.OPEN_BRACKET:
			p.lex.Skip()
			size, err := p.expectOrReport(token.INTEGER_LITERAL)
			if err != nil {
				return nil, err
			}
			n, err := strconv.ParseInt(strings.ReplaceAll(size.Name(), "_", ""), 10, 64)
			if err != nil {
				return nil, p.report(size.Pos, "invalid array size %s", size.Name())
			}
			if _, err := p.expectOrReport(token.CLOSE_BRACKET); err != nil {
				return nil, err
			}
			ty = &ast.TypeExpr{Kind: ast.TYPE_EXPR_ARRAY, Elem: ty, Size: n, Pos: ty.Pos}
		default:
			return ty, nil
		}
	}
}

func (p *Parser) parseExpr() (ast.NodeID, error) {
	return p.parseAssignment()
}

// Assignment is right associative: a = b = c is a = (b = c).
func (p *Parser) parseAssignment() (ast.NodeID, error) {
	lhs, err := p.parseComparasion()
	if err != nil {
		return ast.NoNode, err
	}

	next := p.lex.Peek()
	if !next.Kind.IsAssign() {
		return lhs, nil
	}
	p.lex.Skip()

	rhs, err := p.parseAssignment()
	if err != nil {
		return ast.NoNode, err
	}
	return p.newBinary(next, lhs, rhs), nil
}

func (p *Parser) newBinary(op *token.Token, lhs, rhs ast.NodeID) ast.NodeID {
	binary := p.tree.New(ast.KIND_BINARY_EXPR, op.Pos, &ast.BinaryExpr{Op: op.Kind})
	p.tree.Append(binary, lhs)
	p.tree.Append(binary, rhs)
	return binary
}

func (p *Parser) parseComparasion() (ast.NodeID, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return ast.NoNode, err
	}

	for {
		next := p.lex.Peek()
		if _, ok := COMPARASION[next.Kind]; ok {
			p.lex.Skip()
			rhs, err := p.parseTerm()
			if err != nil {
				return ast.NoNode, err
			}
			lhs = p.newBinary(next, lhs, rhs)
		} else {
			break
		}
	}
	return lhs, nil
}

func (p *Parser) parseTerm() (ast.NodeID, error) {
	lhs, err := p.parseFactor()
	if err != nil {
		return ast.NoNode, err
	}

	for {
		next := p.lex.Peek()
		if _, ok := TERM[next.Kind]; ok {
			p.lex.Skip()
			rhs, err := p.parseFactor()
			if err != nil {
				return ast.NoNode, err
			}
			lhs = p.newBinary(next, lhs, rhs)
		} else {
			break
		}
	}
	return lhs, nil
}

func (p *Parser) parseFactor() (ast.NodeID, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return ast.NoNode, err
	}

	for {
		next := p.lex.Peek()
		if _, ok := FACTOR[next.Kind]; ok {
			p.lex.Skip()
			rhs, err := p.parseUnary()
			if err != nil {
				return ast.NoNode, err
			}
			lhs = p.newBinary(next, lhs, rhs)
		} else {
			break
		}
	}
	return lhs, nil
}

func (p *Parser) parseUnary() (ast.NodeID, error) {
	next := p.lex.Peek()
	if _, ok := UNARY[next.Kind]; ok {
		p.lex.Skip()
		operand, err := p.parseUnary()
		if err != nil {
			return ast.NoNode, err
		}

		unary := p.tree.New(ast.KIND_UNARY_EXPR, next.Pos, &ast.UnaryExpr{Op: next.Kind})
		p.tree.Append(unary, operand)
		return unary, nil
	}

	return p.parsePostfix()
}

// parsePostfix handles calls and member accesses chained after a primary.
func (p *Parser) parsePostfix() (ast.NodeID, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return ast.NoNode, err
	}

	for {
		next := p.lex.Peek()
		switch next.Kind {
		case token.OPEN_PAREN:
			p.lex.Skip()
			call := p.tree.New(ast.KIND_CALL_EXPR, p.tree.Get(expr).Pos, &ast.CallExpr{})
			p.tree.Append(call, expr)

			args, err := p.parseExprList(token.CLOSE_PAREN)
			if err != nil {
				return ast.NoNode, err
			}
			for _, arg := range args {
				p.tree.Append(call, arg)
			}
			expr = call
		case token.DOT:
			p.lex.Skip()
			name, err := p.expectOrReport(token.ID)
			if err != nil {
				return ast.NoNode, err
			}
			access := p.tree.New(ast.KIND_ACCESS_EXPR, name.Pos, &ast.AccessExpr{Name: name.Name()})
			p.tree.Append(access, expr)
			expr = access
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseExprList(end token.Kind) ([]ast.NodeID, error) {
	var exprs []ast.NodeID
	for !p.lex.NextIs(end) {
		if len(exprs) > 0 {
			if _, err := p.expectOrReport(token.COMMA); err != nil {
				return nil, err
			}
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	p.lex.Skip()
	return exprs, nil
}

func (p *Parser) parsePrimary() (ast.NodeID, error) {
	tok := p.lex.Next()

	switch tok.Kind {
	case token.ID:
		return p.tree.New(ast.KIND_ID_EXPR, tok.Pos, &ast.IdExpr{Name: tok.Name()}), nil
	case token.THIS:
		return p.tree.New(ast.KIND_ID_EXPR, tok.Pos, &ast.IdExpr{Name: "this"}), nil
	case token.INTEGER_LITERAL, token.FLOAT_LITERAL, token.CHAR_LITERAL:
		literal, err := p.parseLiteral(tok)
		if err != nil {
			return ast.NoNode, err
		}
		node := p.tree.New(ast.KIND_LITERAL_EXPR, tok.Pos, literal)
		p.tree.Get(node).Signed = literal.Kind.IsSigned()
		return node, nil
	case token.OPEN_PAREN:
		expr, err := p.parseExpr()
		if err != nil {
			return ast.NoNode, err
		}
		if _, err := p.expectOrReport(token.CLOSE_PAREN); err != nil {
			return ast.NoNode, err
		}
		return expr, nil
	case token.INVALID:
		return ast.NoNode, diagnostics.COMPILER_ERROR_FOUND
	default:
		return ast.NoNode, p.report(tok.Pos, "expected expression, not %s", tok.Kind)
	}
}

func (p *Parser) parseLiteral(tok *token.Token) (*ast.LiteralExpr, error) {
	if tok.Kind == token.CHAR_LITERAL {
		return &ast.LiteralExpr{Kind: types.CHAR, Int: uint64(tok.Lexeme[0])}, nil
	}

	text := strings.ReplaceAll(tok.Name(), "_", "")
	end := strings.IndexFunc(text, func(r rune) bool { return r >= 'a' && r <= 'z' })
	if end < 0 {
		end = len(text)
	}
	digits, suffix := text[:end], text[end:]

	kind, ok := LITERAL_SUFFIXES[suffix]
	if !ok {
		return nil, p.report(tok.Pos, "invalid literal suffix '%s'", suffix)
	}
	if tok.Kind == token.FLOAT_LITERAL && suffix == "" {
		kind = types.DOUBLE
	}
	if tok.Kind == token.FLOAT_LITERAL && !kind.IsFloat() {
		return nil, p.report(tok.Pos, "invalid suffix '%s' for floating-point literal", suffix)
	}

	if kind.IsFloat() {
		value, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return nil, p.report(tok.Pos, "invalid floating-point literal %s", tok.Name())
		}
		if kind == types.FLOAT && math.Abs(value) > math.MaxFloat32 {
			return nil, p.report(tok.Pos, "%s overflows float", tok.Name())
		}
		return &ast.LiteralExpr{Kind: kind, Float: value}, nil
	}

	value, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return nil, p.report(tok.Pos, "invalid integer literal %s", tok.Name())
	}
	bits := kind.BitSize()
	limit := uint64(math.MaxUint64)
	if bits < 64 {
		limit = 1<<bits - 1
	}
	if kind.IsSigned() {
		limit >>= 1
	}
	if value > limit {
		return nil, p.report(tok.Pos, "%s overflows %s", tok.Name(), kind)
	}
	return &ast.LiteralExpr{Kind: kind, Int: value}, nil
}
