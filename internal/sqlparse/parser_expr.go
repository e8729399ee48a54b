package sqlparse

// Operator precedence, lowest to highest.
const (
	precLowest = iota
	precOr
	precXor
	precAnd
	precNot
	precCompare
	precAdditive
	precMultiplicative
	precUnary
)

// wordFunctions are reserved words that are also function names when
// followed by "(".
var wordFunctions = map[string]struct{}{
	"LEFT": {}, "RIGHT": {}, "MOD": {}, "INSERT": {}, "VALUES": {}, "DEFAULT": {},
}

func (p *Parser) infixPrecedence() int {
	tok := p.token()
	switch tok.Type {
	case TokenDPipe:
		return precOr
	case TokenDAmp:
		return precAnd
	case TokenEq, TokenNullSafe, TokenNe, TokenLt, TokenGt, TokenLe, TokenGe:
		return precCompare
	case TokenPlus, TokenMinus:
		return precAdditive
	case TokenStar, TokenSlash, TokenMod:
		return precMultiplicative
	case TokenKeyword, TokenIdent:
		switch {
		case isWord(tok, "OR"):
			return precOr
		case isWord(tok, "XOR"):
			return precXor
		case isWord(tok, "AND"):
			return precAnd
		case isWord(tok, "IS"), isWord(tok, "IN"), isWord(tok, "LIKE"), isWord(tok, "REGEXP"),
			isWord(tok, "RLIKE"), isWord(tok, "BETWEEN"):
			return precCompare
		case isWord(tok, "NOT"):
			next := p.peek()
			if isWord(next, "IN") || isWord(next, "LIKE") || isWord(next, "REGEXP") ||
				isWord(next, "RLIKE") || isWord(next, "BETWEEN") {
				return precCompare
			}
		case isWord(tok, "DIV"), isWord(tok, "MOD"):
			return precMultiplicative
		}
	}
	return 0
}

// parseExpr parses an expression whose binary operators all bind tighter
// than minPrec.
func (p *Parser) parseExpr(minPrec int) {
	p.parseUnary()
	for p.ok() {
		prec := p.infixPrecedence()
		if prec == 0 || prec <= minPrec {
			return
		}
		p.parseInfix(prec)
	}
}

func (p *Parser) parseExprList() {
	for {
		p.parseExpr(precLowest)
		if !p.ok() || !p.match(TokenComma) {
			return
		}
	}
}

func (p *Parser) parseUnary() {
	switch {
	case p.matchWord("NOT"):
		p.parseExpr(precNot)
	case p.match(TokenMinus), p.match(TokenPlus), p.match(TokenTilde), p.match(TokenBang):
		p.parseExpr(precMultiplicative)
	default:
		p.parsePrimary()
	}
}

func (p *Parser) parseInfix(prec int) {
	op := p.nextToken()
	switch {
	case isWord(op, "IS"):
		p.matchWord("NOT")
		if !p.matchWord("NULL", "TRUE", "FALSE", "UNKNOWN") {
			p.fail("NULL")
		}
	case isWord(op, "NOT"):
		p.parseInfix(prec)
	case isWord(op, "IN"):
		if !p.expect(TokenLParen) {
			return
		}
		if p.checkWord("SELECT") {
			p.parseQuery(nil)
		} else {
			p.parseExprList()
		}
		p.expect(TokenRParen)
	case isWord(op, "BETWEEN"):
		p.parseExpr(precCompare)
		if p.ok() && p.expectWord("AND") {
			p.parseExpr(precCompare)
		}
	case isWord(op, "LIKE"):
		p.parseExpr(precCompare)
		if p.ok() && p.matchWord("ESCAPE") {
			p.parseExpr(precCompare)
		}
	default:
		// Comparisons take an optional ANY/ALL/SOME subquery.
		if prec == precCompare && p.checkWord("ANY", "ALL", "SOME") && p.peek().Type == TokenLParen {
			p.nextToken()
			p.parseSubquery()
			return
		}
		p.parseExpr(prec)
	}
}

func (p *Parser) parseSubquery() {
	if !p.expect(TokenLParen) {
		return
	}
	p.parseQuery(nil)
	p.expect(TokenRParen)
}

func (p *Parser) parsePrimary() {
	tok := p.token()
	switch tok.Type {
	case TokenNumber, TokenString, TokenParam, TokenVariable:
		p.nextToken()
		return
	case TokenLParen:
		p.nextToken()
		if p.checkWord("SELECT") {
			p.parseQuery(nil)
		} else {
			p.parseExprList()
		}
		p.expect(TokenRParen)
		return
	case TokenIdent:
		p.parseNameOrCall()
		return
	case TokenKeyword:
		switch {
		case p.matchWord("NULL", "TRUE", "FALSE"):
			return
		case isWord(tok, "DEFAULT") && p.peek().Type != TokenLParen:
			p.nextToken()
			return
		case isWord(tok, "EXISTS"):
			p.nextToken()
			p.parseSubquery()
			return
		case isWord(tok, "CASE"):
			p.parseCase()
			return
		}
		if _, ok := wordFunctions[tok.Upper()]; ok && p.peek().Type == TokenLParen {
			p.nextToken()
			p.parseCallArgs("")
			return
		}
	}
	p.fail("expression")
}

// parseNameOrCall parses a column reference (a, t.a, db.t.a, t.*) or a
// function call.
func (p *Parser) parseNameOrCall() {
	name := p.nextToken()
	if p.check(TokenLParen) && !name.Quoted {
		p.parseCallArgs(name.Upper())
		return
	}
	for p.match(TokenDot) {
		if p.match(TokenStar) {
			return
		}
		if !p.expect(TokenIdent) {
			return
		}
	}
}

func (p *Parser) parseCallArgs(fn string) {
	p.expect(TokenLParen)
	if p.match(TokenRParen) {
		return
	}
	if p.match(TokenStar) {
		p.expect(TokenRParen)
		return
	}
	p.matchWord("DISTINCT", "ALL")

	switch fn {
	case "CAST", "CONVERT":
		p.parseExpr(precLowest)
		if p.ok() && (p.matchWord("AS") || p.match(TokenComma) || p.matchWord("USING")) {
			p.parseTypeName()
		}
	default:
		p.parseExprList()
		// GROUP_CONCAT(x ORDER BY y SEPARATOR ',')
		if p.ok() {
			p.parseOrderLimit()
		}
		if p.ok() && p.matchWord("SEPARATOR") {
			p.expect(TokenString)
		}
	}
	p.expect(TokenRParen)
}

// parseTypeName parses a type such as CHAR, DECIMAL(10, 2) or SIGNED INTEGER.
func (p *Parser) parseTypeName() {
	if !p.expect(TokenIdent) {
		return
	}
	p.match(TokenIdent)
	if p.match(TokenLParen) {
		p.parseExprList()
		p.expect(TokenRParen)
	}
}

func (p *Parser) parseCase() {
	p.nextToken() // CASE
	if !p.checkWord("WHEN") {
		p.parseExpr(precLowest)
	}
	whens := 0
	for p.ok() && p.matchWord("WHEN") {
		whens++
		p.parseExpr(precLowest)
		if p.ok() && p.expectWord("THEN") {
			p.parseExpr(precLowest)
		}
	}
	if !p.ok() {
		return
	}
	if whens == 0 {
		p.fail("WHEN")
		return
	}
	if p.matchWord("ELSE") {
		p.parseExpr(precLowest)
	}
	if p.ok() {
		p.expectWord("END")
	}
}
