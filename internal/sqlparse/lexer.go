package sqlparse

import (
	"fmt"
	"strings"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	// pending holds an error found while skipping comments; it is reported
	// as the next token.
	pending string
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token. Lexical errors are reported as
// TokenIllegal with the error message as the literal.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	if l.pending != "" {
		msg := l.pending
		l.pending = ""
		return Token{Type: TokenIllegal, Literal: msg, Pos: pos}
	}
	if l.atEOF() {
		return Token{Type: TokenEOF, Pos: pos}
	}

	single := func(t TokenType) Token {
		tok := Token{Type: t, Literal: string(l.ch), Pos: pos}
		l.readChar()
		return tok
	}
	double := func(t TokenType) Token {
		lit := l.input[l.pos : l.pos+2]
		l.readChar()
		l.readChar()
		return Token{Type: t, Literal: lit, Pos: pos}
	}

	switch l.ch {
	case '+':
		return single(TokenPlus)
	case '-':
		return single(TokenMinus)
	case '*':
		return single(TokenStar)
	case '/':
		return single(TokenSlash)
	case '%':
		return single(TokenMod)
	case '=':
		return single(TokenEq)
	case '<':
		switch l.peekChar() {
		case '=':
			if l.readPos+1 < len(l.input) && l.input[l.readPos+1] == '>' {
				l.readChar()
				l.readChar()
				l.readChar()
				return Token{Type: TokenNullSafe, Literal: "<=>", Pos: pos}
			}
			return double(TokenLe)
		case '>':
			return double(TokenNe)
		}
		return single(TokenLt)
	case '>':
		if l.peekChar() == '=' {
			return double(TokenGe)
		}
		return single(TokenGt)
	case '!':
		if l.peekChar() == '=' {
			return double(TokenNe)
		}
		return single(TokenBang)
	case '|':
		if l.peekChar() == '|' {
			return double(TokenDPipe)
		}
	case '&':
		if l.peekChar() == '&' {
			return double(TokenDAmp)
		}
	case '~':
		return single(TokenTilde)
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber(pos)
		}
		return single(TokenDot)
	case ',':
		return single(TokenComma)
	case '(':
		return single(TokenLParen)
	case ')':
		return single(TokenRParen)
	case ';':
		return single(TokenSemicolon)
	case '?':
		return single(TokenParam)
	case '\'', '"':
		return l.readString(pos)
	case '`':
		return l.readQuotedIdentifier(pos)
	case '@':
		return l.readVariable(pos)
	}

	switch {
	case isLetter(l.ch) || l.ch == '_' || l.ch == '$' || l.ch >= 0x80:
		lit := l.readIdentifier()
		if IsReserved(lit) {
			return Token{Type: TokenKeyword, Literal: lit, Pos: pos}
		}
		return Token{Type: TokenIdent, Literal: lit, Pos: pos}
	case isDigit(l.ch):
		return l.readNumber(pos)
	}

	ch := l.ch
	l.readChar()
	return Token{Type: TokenIllegal, Literal: fmt.Sprintf(ErrIllegalCharacter, ch), Pos: pos}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '#':
			l.skipLineComment()
		case l.ch == '-' && l.peekChar() == '-':
			// MySQL requires whitespace after "--"; end of input counts too.
			if l.readPos+1 < len(l.input) && !isSpace(l.input[l.readPos+1]) {
				return
			}
			l.skipLineComment()
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !l.atEOF() && (l.ch != '*' || l.peekChar() != '/') {
				l.readChar()
			}
			if l.atEOF() {
				l.pending = ErrUnterminatedBlock
				return
			}
			l.readChar()
			l.readChar()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readChar()
	}
}

// readString reads a quoted string. A doubled quote or a backslash escapes
// the next character.
func (l *Lexer) readString(pos Position) Token {
	quote := l.ch
	l.readChar()

	var sb strings.Builder
	for {
		if l.atEOF() {
			return Token{Type: TokenIllegal, Literal: ErrUnterminatedString, Pos: pos}
		}
		switch {
		case l.ch == '\\' && l.readPos < len(l.input):
			l.readChar()
			sb.WriteByte(l.ch)
		case l.ch == quote && l.peekChar() == quote:
			l.readChar()
			sb.WriteByte(quote)
		case l.ch == quote:
			l.readChar()
			return Token{Type: TokenString, Literal: sb.String(), Pos: pos}
		default:
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}
}

func (l *Lexer) readQuotedIdentifier(pos Position) Token {
	l.readChar()

	var sb strings.Builder
	for {
		if l.atEOF() {
			return Token{Type: TokenIllegal, Literal: ErrUnterminatedQuote, Pos: pos}
		}
		if l.ch == '`' {
			if l.peekChar() != '`' {
				l.readChar()
				return Token{Type: TokenIdent, Literal: sb.String(), Quoted: true, Pos: pos}
			}
			l.readChar()
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' || l.ch >= 0x80 {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readVariable(pos Position) Token {
	start := l.pos
	l.readChar()
	if l.ch == '@' {
		l.readChar()
	}
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' || l.ch == '.' {
		l.readChar()
	}
	return Token{Type: TokenVariable, Literal: l.input[start:l.pos], Pos: pos}
}

func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: pos}
}

// Tokenize returns every token of input, ending with TokenEOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

// FirstWord returns the upper-cased first word of input, skipping comments.
// It returns "" when input does not start with a word.
func FirstWord(input string) string {
	tok := NewLexer(input).NextToken()
	if tok.Type == TokenIdent || tok.Type == TokenKeyword {
		return tok.Upper()
	}
	return ""
}

// Split cuts input at top-level semicolons. Semicolons inside strings,
// quoted identifiers and comments do not count. The text after the last
// semicolon is returned as rest.
func Split(input string) (statements []string, rest string) {
	l := NewLexer(input)
	start := 0
	for {
		tok := l.NextToken()
		switch tok.Type {
		case TokenEOF:
			return statements, input[start:]
		case TokenIllegal:
			if tok.Literal == ErrUnterminatedString || tok.Literal == ErrUnterminatedQuote || tok.Literal == ErrUnterminatedBlock {
				return statements, input[start:]
			}
		case TokenSemicolon:
			if stmt := strings.TrimSpace(input[start:tok.Pos.Offset]); stmt != "" {
				statements = append(statements, stmt)
			}
			start = tok.Pos.Offset + 1
		}
	}
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
