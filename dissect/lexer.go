package dissect

import (
	"fmt"
	"strings"
)

// TokenType defines the type of a pattern token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLiteral
	TokenKey
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLiteral:
		return "Literal"
	case TokenKey:
		return "Key"
	default:
		return "Unknown"
	}
}

// Token is a lexical unit of a dissect pattern. For TokenKey the value is the
// text between "%{" and "}".
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

const (
	keyOpen  = "%{"
	keyClose = '}'
)

// Lex splits a pattern into literal and key tokens, terminated by TokenEOF.
func Lex(pattern string) ([]Token, error) {
	var tokens []Token
	var literal strings.Builder
	literalStart := 0

	flushLiteral := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, Token{
				Type:  TokenLiteral,
				Value: literal.String(),
				Pos:   literalStart,
			})
			literal.Reset()
		}
	}

	i := 0
	for i < len(pattern) {
		if strings.HasPrefix(pattern[i:], keyOpen) {
			flushLiteral()
			start := i
			end := strings.IndexByte(pattern[i+len(keyOpen):], keyClose)
			if end < 0 {
				return nil, fmt.Errorf("col %d: key is not terminated with '}'", start+1)
			}
			body := pattern[i+len(keyOpen) : i+len(keyOpen)+end]
			tokens = append(tokens, Token{Type: TokenKey, Value: body, Pos: start})
			i += len(keyOpen) + end + 1
			literalStart = i
			continue
		}

		if literal.Len() == 0 {
			literalStart = i
		}
		literal.WriteByte(pattern[i])
		i++
	}

	flushLiteral()
	tokens = append(tokens, Token{Type: TokenEOF, Pos: len(pattern)})
	return tokens, nil
}
