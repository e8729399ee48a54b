package sqlparse

import (
	"fmt"
	"strings"
)

// StatementKind is the top-level statement type.
type StatementKind int

// Statement kinds.
const (
	KindSelect StatementKind = iota + 1
	KindInsert
	KindUpdate
)

func (k StatementKind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	default:
		return "UNKNOWN"
	}
}

// Statement describes the shape of a parsed statement. Only the outermost
// query block contributes to HasFrom, HasWhere and Tables.
type Statement struct {
	Kind     StatementKind
	HasFrom  bool
	HasWhere bool
	Tables   []string
}

// Parser is a recursive descent parser over a pre-lexed token stream.
type Parser struct {
	tokens []Token
	pos    int
	err    *ParseError
}

// Parse parses input as a single complete statement with an optional
// trailing semicolon.
func Parse(input string) (*Statement, error) {
	p := &Parser{tokens: Tokenize(input)}
	stmt := p.parseStatement()
	if p.err == nil {
		p.match(TokenSemicolon)
		if !p.check(TokenEOF) {
			p.fail("end of statement")
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return stmt, nil
}

func (p *Parser) token() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) nextToken() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(t TokenType) bool {
	return p.token().Type == t
}

func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expect(t TokenType) bool {
	if p.match(t) {
		return true
	}
	p.fail(t.String())
	return false
}

// isWord reports whether tok is the given word, reserved or not. Quoted
// identifiers never count as words.
func isWord(tok Token, word string) bool {
	if tok.Type != TokenKeyword && (tok.Type != TokenIdent || tok.Quoted) {
		return false
	}
	return strings.EqualFold(tok.Literal, word)
}

func (p *Parser) checkWord(words ...string) bool {
	for _, w := range words {
		if isWord(p.token(), w) {
			return true
		}
	}
	return false
}

func (p *Parser) matchWord(words ...string) bool {
	if p.checkWord(words...) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expectWord(word string) bool {
	if p.matchWord(word) {
		return true
	}
	p.fail(word)
	return false
}

// fail records the first error only; later errors are consequences of it.
func (p *Parser) fail(expected string) {
	if p.err != nil {
		return
	}
	tok := p.token()
	msg := fmt.Sprintf(ErrUnexpectedToken, tok, expected)
	if tok.Type == TokenIllegal {
		msg = tok.Literal
	}
	p.err = &ParseError{Pos: tok.Pos, Message: msg}
}

func (p *Parser) ok() bool {
	return p.err == nil
}

func (p *Parser) parseStatement() *Statement {
	stmt := &Statement{}
	tok := p.token()
	switch {
	case tok.Type == TokenEOF || tok.Type == TokenSemicolon:
		p.err = &ParseError{Pos: tok.Pos, Message: ErrEmptyStatement}
	case isWord(tok, "SELECT"), tok.Type == TokenLParen:
		stmt.Kind = KindSelect
		p.parseQuery(stmt)
	case isWord(tok, "INSERT"), isWord(tok, "REPLACE"):
		stmt.Kind = KindInsert
		p.parseInsert(stmt)
	case isWord(tok, "UPDATE"):
		stmt.Kind = KindUpdate
		p.parseUpdate(stmt)
	default:
		p.err = &ParseError{Pos: tok.Pos, Message: fmt.Sprintf(ErrUnsupported, tok)}
	}
	return stmt
}

// parseQuery parses a query expression: one or more SELECT blocks joined by
// set operators, optionally parenthesized. stmt may be nil for subqueries.
func (p *Parser) parseQuery(stmt *Statement) {
	p.parseQueryTerm(stmt)
	for p.ok() && p.matchWord("UNION", "EXCEPT", "INTERSECT") {
		p.matchWord("ALL", "DISTINCT")
		p.parseQueryTerm(nil)
	}
	if p.ok() {
		p.parseOrderLimit()
	}
}

func (p *Parser) parseQueryTerm(stmt *Statement) {
	if p.match(TokenLParen) {
		p.parseQuery(stmt)
		p.expect(TokenRParen)
		return
	}
	p.parseSelect(stmt)
}

func (p *Parser) parseSelect(stmt *Statement) {
	if !p.expectWord("SELECT") {
		return
	}
	p.matchWord("DISTINCT", "ALL", "DISTINCTROW")

	p.parseSelectItem()
	for p.ok() && p.match(TokenComma) {
		p.parseSelectItem()
	}

	if p.ok() && p.matchWord("FROM") {
		if stmt != nil {
			stmt.HasFrom = true
		}
		p.parseTableRefs(stmt)
	}
	if p.ok() && p.matchWord("WHERE") {
		if stmt != nil {
			stmt.HasWhere = true
		}
		p.parseExpr(precLowest)
	}
	if p.ok() && p.matchWord("GROUP") {
		p.expectWord("BY")
		p.parseExprList()
		if p.ok() && p.matchWord("WITH") {
			p.expectWord("ROLLUP")
		}
	}
	if p.ok() && p.matchWord("HAVING") {
		p.parseExpr(precLowest)
	}
}

func (p *Parser) parseOrderLimit() {
	if p.matchWord("ORDER") {
		if !p.expectWord("BY") {
			return
		}
		for {
			p.parseExpr(precLowest)
			p.matchWord("ASC", "DESC")
			if !p.ok() || !p.match(TokenComma) {
				break
			}
		}
	}
	if p.ok() && p.matchWord("LIMIT") {
		p.parseExpr(precLowest)
		if p.ok() && (p.match(TokenComma) || p.matchWord("OFFSET")) {
			p.parseExpr(precLowest)
		}
	}
}

func (p *Parser) parseSelectItem() {
	if p.match(TokenStar) {
		return
	}
	p.parseExpr(precLowest)
	if p.ok() {
		p.parseAlias(true)
	}
}

// parseAlias consumes an optional [AS] alias. String aliases are only valid
// in select lists.
func (p *Parser) parseAlias(allowString bool) {
	if p.matchWord("AS") {
		if p.match(TokenIdent) || (allowString && p.match(TokenString)) {
			return
		}
		p.fail("alias")
		return
	}
	if p.check(TokenIdent) || (allowString && p.check(TokenString)) {
		p.nextToken()
	}
}

func (p *Parser) parseTableRefs(stmt *Statement) {
	p.parseTableRef(stmt)
	for p.ok() {
		switch {
		case p.match(TokenComma):
			p.parseTableRef(stmt)
		case p.checkWord("JOIN", "INNER", "LEFT", "RIGHT", "FULL", "CROSS", "NATURAL", "STRAIGHT_JOIN"):
			p.parseJoin(stmt)
		default:
			return
		}
	}
}

func (p *Parser) parseJoin(stmt *Statement) {
	if p.matchWord("STRAIGHT_JOIN") {
		p.parseTableRef(stmt)
		if p.ok() && p.matchWord("ON") {
			p.parseExpr(precLowest)
		}
		return
	}

	p.matchWord("NATURAL")
	switch {
	case p.matchWord("LEFT", "RIGHT", "FULL"):
		p.matchWord("OUTER")
	case p.matchWord("INNER", "CROSS"):
	}
	if !p.expectWord("JOIN") {
		return
	}
	p.parseTableRef(stmt)
	if !p.ok() {
		return
	}

	switch {
	case p.matchWord("ON"):
		p.parseExpr(precLowest)
	case p.matchWord("USING"):
		if !p.expect(TokenLParen) {
			return
		}
		for {
			if !p.expect(TokenIdent) || !p.match(TokenComma) {
				break
			}
		}
		p.expect(TokenRParen)
	}
}

func (p *Parser) parseTableRef(stmt *Statement) {
	if p.match(TokenLParen) {
		if p.checkWord("SELECT") || p.check(TokenLParen) && isWord(p.peek(), "SELECT") {
			p.parseQuery(nil)
		} else {
			p.parseTableRefs(stmt)
		}
		p.expect(TokenRParen)
		if p.ok() {
			p.parseAlias(false)
		}
		return
	}

	name, ok := p.parseQualifiedName()
	if !ok {
		return
	}
	if stmt != nil {
		stmt.Tables = append(stmt.Tables, name)
	}
	p.parseAlias(false)
}

// parseQualifiedName parses name[.name[.name]].
func (p *Parser) parseQualifiedName() (string, bool) {
	tok := p.token()
	if !p.expect(TokenIdent) {
		return "", false
	}
	parts := []string{tok.Literal}
	for p.check(TokenDot) {
		p.nextToken()
		tok = p.token()
		if !p.expect(TokenIdent) {
			return "", false
		}
		parts = append(parts, tok.Literal)
	}
	return strings.Join(parts, "."), true
}

func (p *Parser) parseInsert(stmt *Statement) {
	p.nextToken() // INSERT or REPLACE
	p.matchWord("LOW_PRIORITY", "DELAYED", "HIGH_PRIORITY")
	p.matchWord("IGNORE")
	p.matchWord("INTO")

	name, ok := p.parseQualifiedName()
	if !ok {
		return
	}
	stmt.Tables = append(stmt.Tables, name)

	if p.check(TokenLParen) && !isWord(p.peek(), "SELECT") {
		p.nextToken()
		for {
			if _, ok := p.parseQualifiedName(); !ok || !p.match(TokenComma) {
				break
			}
		}
		p.expect(TokenRParen)
	}
	if !p.ok() {
		return
	}

	switch {
	case p.matchWord("VALUES", "VALUE"):
		for {
			p.parseRow()
			if !p.ok() || !p.match(TokenComma) {
				break
			}
		}
	case p.matchWord("SET"):
		p.parseAssignments()
	case p.checkWord("SELECT") || p.check(TokenLParen):
		p.parseQuery(nil)
	default:
		p.fail("VALUES, SET or SELECT")
	}

	if p.ok() && p.matchWord("ON") {
		if p.expectWord("DUPLICATE") && p.expectWord("KEY") && p.expectWord("UPDATE") {
			p.parseAssignments()
		}
	}
}

func (p *Parser) parseRow() {
	if !p.expect(TokenLParen) {
		return
	}
	if !p.check(TokenRParen) {
		p.parseExprList()
	}
	p.expect(TokenRParen)
}

func (p *Parser) parseUpdate(stmt *Statement) {
	p.nextToken() // UPDATE
	p.matchWord("LOW_PRIORITY")
	p.matchWord("IGNORE")

	p.parseTableRefs(stmt)
	if !p.ok() || !p.expectWord("SET") {
		return
	}
	p.parseAssignments()

	if p.ok() && p.matchWord("WHERE") {
		stmt.HasWhere = true
		p.parseExpr(precLowest)
	}
	if p.ok() {
		p.parseOrderLimit()
	}
}

func (p *Parser) parseAssignments() {
	for {
		if _, ok := p.parseQualifiedName(); !ok {
			return
		}
		if !p.expect(TokenEq) {
			return
		}
		p.parseExpr(precLowest)
		if !p.ok() || !p.match(TokenComma) {
			return
		}
	}
}
