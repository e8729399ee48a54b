// Package sqlparse provides a small, MySQL-flavoured SQL lexer and a
// statement-shape parser.
//
// The parser recognizes complete SELECT, INSERT and UPDATE statements and
// reports their shape (which clauses are present, which tables are
// referenced). It is not a validator: it accepts a permissive grammar and
// rejects anything incomplete, which is what the completion analyzer needs
// to tell finished statements from partially typed ones.
package sqlparse

import (
	"fmt"
	"strings"
)

// TokenType identifies the lexical class of a token.
type TokenType int

// Token types.
const (
	TokenIllegal TokenType = iota
	TokenEOF

	TokenIdent    // name, `quoted name`
	TokenKeyword  // reserved word
	TokenNumber   // 42, 3.14, 1e9
	TokenString   // 'text', "text"
	TokenParam    // ?
	TokenVariable // @name, @@session.name

	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenMod       // %
	TokenEq        // =
	TokenNullSafe  // <=>
	TokenNe        // <> or !=
	TokenLt        // <
	TokenGt        // >
	TokenLe        // <=
	TokenGe        // >=
	TokenDPipe     // ||
	TokenDAmp      // &&
	TokenBang      // !
	TokenTilde     // ~
	TokenDot       // .
	TokenComma     // ,
	TokenLParen    // (
	TokenRParen    // )
	TokenSemicolon // ;
)

var tokenNames = map[TokenType]string{
	TokenIllegal:   "ILLEGAL",
	TokenEOF:       "EOF",
	TokenIdent:     "IDENT",
	TokenKeyword:   "KEYWORD",
	TokenNumber:    "NUMBER",
	TokenString:    "STRING",
	TokenParam:     "?",
	TokenVariable:  "VARIABLE",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenMod:       "%",
	TokenEq:        "=",
	TokenNullSafe:  "<=>",
	TokenNe:        "<>",
	TokenLt:        "<",
	TokenGt:        ">",
	TokenLe:        "<=",
	TokenGe:        ">=",
	TokenDPipe:     "||",
	TokenDAmp:      "&&",
	TokenBang:      "!",
	TokenTilde:     "~",
	TokenDot:       ".",
	TokenComma:     ",",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenSemicolon: ";",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Position is a location in the input.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based byte offset
}

// Token is a single lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Quoted  bool // identifier written with backticks
	Pos     Position
}

// Upper returns the literal upper-cased, the form keywords are compared in.
func (t Token) Upper() string {
	return strings.ToUpper(t.Literal)
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenIdent, TokenKeyword, TokenNumber, TokenVariable:
		return t.Literal
	case TokenString:
		return "'" + t.Literal + "'"
	default:
		return t.Type.String()
	}
}

// reserved holds the words the lexer emits as TokenKeyword. Everything else
// that looks like a word is an identifier, so column names such as `status`
// or `date` never need quoting.
var reserved = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"SELECT", "FROM", "WHERE", "GROUP", "ORDER", "BY", "HAVING", "LIMIT", "OFFSET",
		"JOIN", "INNER", "LEFT", "RIGHT", "FULL", "OUTER", "CROSS", "NATURAL", "STRAIGHT_JOIN",
		"ON", "USING", "AS", "DISTINCT", "ALL", "UNION", "EXCEPT", "INTERSECT", "WITH",
		"AND", "OR", "XOR", "NOT", "IN", "IS", "NULL", "LIKE", "REGEXP", "RLIKE", "BETWEEN",
		"ESCAPE", "EXISTS", "CASE", "WHEN", "THEN", "ELSE", "END", "TRUE", "FALSE",
		"ASC", "DESC", "DIV", "MOD", "DEFAULT",
		"INSERT", "INTO", "VALUES", "VALUE", "IGNORE", "UPDATE", "SET", "DELETE", "USE",
	} {
		reserved[w] = struct{}{}
	}
}

// IsReserved reports whether word (any case) is a reserved word.
func IsReserved(word string) bool {
	_, ok := reserved[strings.ToUpper(word)]
	return ok
}
