package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/token"
)

type Lexer struct {
	file         *source.File
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
}

func New(file *source.File) *Lexer {
	l := &Lexer{file: file, input: file.Input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	start := l.position
	var tok token.Token

	switch l.ch {
	case 0:
		return l.makeToken(token.EOF, len(l.input), len(l.input))
	case '{':
		tok = l.single(token.LBRACE)
	case '}':
		tok = l.single(token.RBRACE)
	case '(':
		tok = l.single(token.LPAREN)
	case ')':
		tok = l.single(token.RPAREN)
	case '[':
		tok = l.single(token.LBRACKET)
	case ']':
		tok = l.single(token.RBRACKET)
	case '<':
		tok = l.single(token.LT)
	case '>':
		tok = l.single(token.GT)
	case ',':
		tok = l.single(token.COMMA)
	case ';':
		tok = l.single(token.SEMICOLON)
	case '&':
		tok = l.single(token.AMPERSAND)
	case '+':
		tok = l.single(token.PLUS)
	case '*':
		tok = l.single(token.ASTERISK)
	case '=':
		tok = l.single(token.ASSIGN)
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			l.readChar()
			return l.makeToken(token.DOUBLE_COLON, start, l.position)
		}
		tok = l.single(token.COLON)
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return l.makeToken(token.ARROW, start, l.position)
		}
		tok = l.single(token.OTHER)
	case '"':
		return l.readString()
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			tok = l.makeToken(token.LookupIdent(ident), start, l.position)
			tok.Literal = ident
			return tok
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		if unicode.IsPunct(l.ch) || unicode.IsSymbol(l.ch) {
			tok = l.single(token.OTHER)
		} else {
			tok = l.single(token.ILLEGAL)
		}
	}
	return tok
}

// Tokenize lexes the whole file, including the trailing EOF token.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) single(t token.TokenType) token.Token {
	start := l.position
	l.readChar()
	return l.makeToken(t, start, l.position)
}

func (l *Lexer) makeToken(t token.TokenType, start, end int) token.Token {
	lexeme := ""
	if start < end && end <= len(l.input) {
		lexeme = l.input[start:end]
	}
	return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Span: source.NewSpan(l.file, start, end)}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() token.Token {
	start := l.position
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	tok := l.makeToken(token.INT, start, l.position)
	val, err := strconv.ParseUint(strings.ReplaceAll(tok.Lexeme, "_", ""), 10, 64)
	if err != nil {
		tok.Type = token.ILLEGAL
		return tok
	}
	tok.Literal = val
	return tok
}

func (l *Lexer) readString() token.Token {
	start := l.position
	l.readChar() // opening quote
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch == 0 {
		return l.makeToken(token.ILLEGAL, start, len(l.input))
	}
	l.readChar() // closing quote
	tok := l.makeToken(token.STRING, start, l.position)
	tok.Literal = tok.Lexeme[1 : len(tok.Lexeme)-1]
	return tok
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		// Handle comments
		if l.ch == '/' {
			if l.peekChar() == '/' {
				l.readChar() // consume first /
				l.readChar() // consume second /
				for l.ch != '\n' && l.ch != 0 {
					l.readChar()
				}
				continue
			} else if l.peekChar() == '*' {
				l.readChar() // consume /
				l.readChar() // consume *
				for l.ch != 0 {
					if l.ch == '*' && l.peekChar() == '/' {
						l.readChar() // consume *
						l.readChar() // consume /
						break
					}
					l.readChar()
				}
				continue
			}
		}
		break
	}
}
