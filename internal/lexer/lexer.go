package lexer

import (
	"os"
	"unicode"

	"github.com/grove-lang/grove/internal/diagnostics"
	"github.com/grove-lang/grove/internal/lexer/token"
)

const eof = '\000'

type Lexer struct {
	Collector diagnostics.Reporter

	src    []byte
	offset int
	pos    token.Pos
}

func New(filename string, src []byte, collector diagnostics.Reporter) *Lexer {
	lexer := new(Lexer)

	lexer.Collector = collector
	lexer.pos = token.NewPosition(filename, 1, 1)
	lexer.src = src
	lexer.offset = 0

	return lexer
}

func NewFromFilePath(path string, collector diagnostics.Reporter) (*Lexer, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l := New(path, src, collector)
	return l, nil
}

func (lex *Lexer) Filename() string { return lex.pos.Filename }

func (lex *Lexer) Peek() *token.Token {
	prevPos := lex.pos
	prevOffset := lex.offset
	prevCollector := lex.Collector
	lex.Collector = discard{}

	token := lex.Next()

	lex.Collector = prevCollector
	lex.pos.SetPosition(prevPos)
	lex.offset = prevOffset
	return token
}

func (lex *Lexer) Peek1() *token.Token {
	prevPos := lex.pos
	prevOffset := lex.offset
	prevCollector := lex.Collector
	lex.Collector = discard{}

	var token *token.Token

	_ = lex.Next()
	token = lex.Next()

	lex.Collector = prevCollector
	lex.pos.SetPosition(prevPos)
	lex.offset = prevOffset

	return token
}

func (lex *Lexer) Skip() {
	lex.Next()
}

func (lex *Lexer) NextIs(expectedKind token.Kind) bool {
	token := lex.Peek()
	return token.Kind == expectedKind
}

func (lex *Lexer) Next() *token.Token {
	lex.skipWhitespace()
	character := lex.peekChar()

	tok := &token.Token{}
	tok.Kind = token.INVALID

	if character == eof {
		lex.consumeTokenNoLex(tok, token.EOF)
		return tok
	}

	token := lex.getToken(tok, character)
	return token
}

// Useful for testing
func (lex *Lexer) Tokenize() ([]*token.Token, error) {
	var tokens []*token.Token
	for {
		tok := lex.Next()
		if tok.Kind == token.INVALID {
			return nil, diagnostics.COMPILER_ERROR_FOUND
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, nil
}

func (lex *Lexer) report(pos token.Pos, format string, args ...any) {
	diag := diagnostics.Errorf(diagnostics.SYNTAX, diagnostics.NoNode, pos, format, args...)
	lex.Collector.ReportAndSave(*diag)
}

func (lex *Lexer) getToken(tok *token.Token, ch byte) *token.Token {
	switch ch {
	case '(':
		lex.consumeTokenNoLex(tok, token.OPEN_PAREN)
		lex.nextChar()
	case ')':
		lex.consumeTokenNoLex(tok, token.CLOSE_PAREN)
		lex.nextChar()
	case '{':
		lex.consumeTokenNoLex(tok, token.OPEN_CURLY)
		lex.nextChar()
	case '}':
		lex.consumeTokenNoLex(tok, token.CLOSE_CURLY)
		lex.nextChar()
	case '[':
		lex.consumeTokenNoLex(tok, token.OPEN_BRACKET)
		lex.nextChar()
	case ']':
		lex.consumeTokenNoLex(tok, token.CLOSE_BRACKET)
		lex.nextChar()
	case ',':
		lex.consumeTokenNoLex(tok, token.COMMA)
		lex.nextChar()
	case ';':
		lex.consumeTokenNoLex(tok, token.SEMICOLON)
		lex.nextChar()
	case '.':
		lex.consumeTokenNoLex(tok, token.DOT)
		lex.nextChar()
	case '&':
		lex.consumeTokenNoLex(tok, token.AMPERSAND)
		lex.nextChar()
	case '%':
		lex.consumeTokenNoLex(tok, token.PERCENT)
		lex.nextChar()
	case '\'':
		lex.getCharLit(tok)
	case '+':
		lex.getWithEqual(tok, token.PLUS, token.PLUS_EQUAL)
	case '*':
		lex.getWithEqual(tok, token.STAR, token.STAR_EQUAL)
	case '/':
		lex.getWithEqual(tok, token.SLASH, token.SLASH_EQUAL)
	case '>':
		lex.getWithEqual(tok, token.GREATER, token.GREATER_EQ)
	case '<':
		lex.getWithEqual(tok, token.LESS, token.LESS_EQ)
	case '=':
		lex.getWithEqual(tok, token.EQUAL, token.EQUAL_EQUAL)
	case '-':
		tok.Pos = lex.pos
		tok.Kind = token.MINUS
		lex.nextChar() // -

		switch lex.peekChar() {
		case '=':
			lex.nextChar() // =
			tok.Kind = token.MINUS_EQUAL
		case '>':
			lex.nextChar() // >
			tok.Kind = token.ARROW
		}
	case '!':
		tok.Pos = lex.pos
		lex.nextChar() // !

		if lex.peekChar() != '=' {
			lex.report(tok.Pos, "invalid character !")
			return tok
		}
		lex.nextChar() // =
		tok.Kind = token.BANG_EQUAL
	case ':':
		lex.getWithEqual(tok, token.COLON, token.COLON_EQUAL)
	default:
		if unicode.IsLetter(rune(ch)) || ch == '_' {
			lex.getIdOrKeyword(tok)
		} else if ch >= '0' && ch <= '9' {
			lex.getNumberLit(tok)
		} else {
			tok.Pos = lex.pos
			lex.nextChar()
			lex.report(tok.Pos, "invalid character %c", ch)
		}
	}
	return tok
}

// getWithEqual lexes a one-character operator that may be followed by '='.
func (lex *Lexer) getWithEqual(tok *token.Token, single, withEqual token.Kind) {
	tok.Pos = lex.pos
	tok.Kind = single
	lex.nextChar()

	if lex.peekChar() == '=' {
		lex.nextChar() // =
		tok.Kind = withEqual
	}
}

func (lex *Lexer) getCharLit(tok *token.Token) {
	tok.Pos = lex.pos
	lex.nextChar() // '

	ch := lex.peekChar()
	if ch == eof || ch == '\'' {
		lex.report(tok.Pos, "empty character literal")
		return
	}
	lex.nextChar()

	if ch == '\\' {
		escapeSym := lex.peekChar()
		lex.nextChar()

		switch escapeSym {
		case 'n':
			ch = '\n'
		case 't':
			ch = '\t'
		case '0':
			ch = 0
		case '\\':
			ch = '\\'
		case '\'':
			ch = '\''
		default:
			lex.report(tok.Pos, "invalid escape sequence \\%c", escapeSym)
			return
		}
	}

	if lex.peekChar() != '\'' {
		lex.report(tok.Pos, "unterminated character literal")
		return
	}
	lex.nextChar() // '

	tok.Kind = token.CHAR_LITERAL
	tok.Lexeme = []byte{ch}
}

// getNumberLit reads digits, an optional fraction and an optional type
// suffix (i8 ... u64, f, d). The suffix stays in the lexeme.
func (lex *Lexer) getNumberLit(tok *token.Token) {
	tok.Pos = lex.pos
	start := lex.offset

	var dotFound, dotRepeated bool
	numberType := token.INTEGER_LITERAL

	lex.readWhile(
		func(chr byte) bool {
			if chr == '.' {
				if dotFound {
					dotRepeated = true
					return false
				}
				numberType = token.FLOAT_LITERAL
				dotFound = true
				return true
			}
			return (chr >= '0' && chr <= '9') || chr == '_'
		},
	)
	lex.readWhile(func(chr byte) bool {
		return unicode.IsLetter(rune(chr)) || (chr >= '0' && chr <= '9')
	})

	if dotRepeated {
		lex.report(tok.Pos, "invalid float format")
		return
	}

	tok.Kind = numberType
	tok.Lexeme = lex.src[start:lex.offset]
}

func (lex *Lexer) getIdOrKeyword(tok *token.Token) {
	tok.Pos = lex.pos
	identifier := lex.readWhile(
		func(chr byte) bool { return unicode.IsNumber(rune(chr)) || unicode.IsLetter(rune(chr)) || chr == '_' },
	)
	tok.Kind = token.ID
	tok.Lexeme = identifier
	keyword, ok := token.KEYWORDS[string(identifier)]
	if ok {
		tok.Kind = keyword
	}
}

func (lex *Lexer) consumeTokenNoLex(tok *token.Token, kind token.Kind) {
	tok.Lexeme = nil
	tok.Kind = kind
	tok.Pos = lex.pos
}

func (lex *Lexer) skipWhitespace() {
	for {
		lex.readWhile(func(ch byte) bool {
			return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
		})
		if lex.peekChar() != '/' || lex.peekCharAt(1) != '/' {
			return
		}
		lex.readWhile(func(ch byte) bool { return ch != '\n' })
	}
}

func (lex *Lexer) readWhile(isValid func(byte) bool) []byte {
	var start, end int
	start = lex.offset

	for {
		character := lex.peekChar()
		if character == eof {
			break
		}

		if isValid(character) {
			lex.nextChar()
		} else {
			break
		}
	}

	end = lex.offset

	return lex.src[start:end]
}

func (lex *Lexer) nextChar() byte {
	if lex.offset >= len(lex.src) {
		return eof
	}
	character := lex.src[lex.offset]
	lex.pos.Move(character)
	lex.offset++
	return character
}

func (lex *Lexer) peekChar() byte {
	return lex.peekCharAt(0)
}

func (lex *Lexer) peekCharAt(distance int) byte {
	if lex.offset+distance >= len(lex.src) {
		return eof
	}
	return lex.src[lex.offset+distance]
}

type discard struct{}

func (discard) ReportAndSave(diagnostics.Diag) {}
