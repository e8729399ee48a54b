package sqlparse

import "fmt"

// ParseError is returned when the input is not a complete statement.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Error messages.
const (
	ErrUnexpectedToken    = "unexpected token %s, expected %s"
	ErrUnterminatedString = "unterminated string literal"
	ErrUnterminatedQuote  = "unterminated quoted identifier"
	ErrUnterminatedBlock  = "unterminated block comment"
	ErrIllegalCharacter   = "illegal character %q"
	ErrEmptyStatement     = "empty statement"
	ErrUnsupported        = "unsupported statement %s"
)
