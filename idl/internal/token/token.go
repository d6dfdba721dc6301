package token

import (
	"fmt"
	"unicode"
)

type Type int

const (
	EOF Type = iota
	Ident
	String
	Number
	Lifetime
	LBrace
	RBrace
	LParen
	RParen
	LAngle
	RAngle
	Colon
	Semicolon
	Comma
	Plus
	Arrow
	Assign
	Illegal
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case String:
		return "string"
	case Number:
		return "number"
	case Lifetime:
		return "lifetime"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LAngle:
		return "'<'"
	case RAngle:
		return "'>'"
	case Colon:
		return "':'"
	case Semicolon:
		return "';'"
	case Comma:
		return "','"
	case Plus:
		return "'+'"
	case Arrow:
		return "'->'"
	case Assign:
		return "'='"
	case Illegal:
		return "illegal character"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
	Col   int
}

func (t Token) String() string {
	if t.Type == EOF {
		return t.Type.String()
	}
	return fmt.Sprintf("%q", t.Value)
}

var punct = map[rune]Type{
	'{': LBrace,
	'}': RBrace,
	'(': LParen,
	')': RParen,
	'<': LAngle,
	'>': RAngle,
	':': Colon,
	';': Semicolon,
	',': Comma,
	'+': Plus,
	'=': Assign,
}

// Tokenize splits input into tokens. The result always ends with an EOF
// token. Unknown characters become Illegal tokens so the parser can report
// them with a position.
func Tokenize(input string) []Token {
	var tokens []Token
	line, col := 1, 1
	runes := []rune(input)

	advance := func(n int) { col += n }

	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\n' {
			line++
			col = 1
			i++
			continue
		}
		if unicode.IsSpace(r) {
			advance(1)
			i++
			continue
		}

		// Line comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			continue
		}

		startLine, startCol := line, col

		if r == '-' && i+1 < len(runes) && runes[i+1] == '>' {
			tokens = append(tokens, Token{"->", Arrow, startLine, startCol})
			advance(2)
			i += 2
			continue
		}

		if t, ok := punct[r]; ok {
			tokens = append(tokens, Token{string(r), t, startLine, startCol})
			advance(1)
			i++
			continue
		}

		// String literal
		if r == '"' {
			start := i + 1
			i++
			for i < len(runes) && runes[i] != '"' && runes[i] != '\n' {
				if runes[i] == '\\' {
					i++
				}
				i++
			}
			end := min(i, len(runes))
			tokens = append(tokens, Token{string(runes[start:end]), String, startLine, startCol})
			advance(end - start + 2)
			i = end + 1
			continue
		}

		// Lifetime: 'name
		if r == '\'' {
			start := i
			i++
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Lifetime, startLine, startCol})
			advance(i - start)
			continue
		}

		// Number, optionally negative
		if unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
			start := i
			i++
			for i < len(runes) {
				c := runes[i]
				if unicode.IsDigit(c) || c == '.' || c == '_' || c == 'x' || c == 'X' ||
					(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
					i++
				} else {
					break
				}
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, startLine, startCol})
			advance(i - start)
			continue
		}

		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, startLine, startCol})
			advance(i - start)
			continue
		}

		tokens = append(tokens, Token{string(r), Illegal, startLine, startCol})
		advance(1)
		i++
	}

	tokens = append(tokens, Token{"", EOF, line, col})
	return tokens
}
