package completion

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlsh/internal/sqlparse"
)

// InputContext is the grammatical position of the cursor in a partially
// typed statement.
type InputContext int

// Input contexts.
const (
	ContextGeneral InputContext = iota
	ContextUse
	ContextSelect
	ContextFrom
	ContextWhere
	ContextInsertInto
	ContextUpdate
	ContextOrderBy
	ContextGroupBy
	ContextHaving
	ContextJoinOn
)

var contextNames = [...]string{
	ContextGeneral:    "General",
	ContextUse:        "UseCommand",
	ContextSelect:     "SelectClause",
	ContextFrom:       "FromClause",
	ContextWhere:      "WhereClause",
	ContextInsertInto: "InsertIntoClause",
	ContextUpdate:     "UpdateClause",
	ContextOrderBy:    "OrderByClause",
	ContextGroupBy:    "GroupByClause",
	ContextHaving:     "HavingClause",
	ContextJoinOn:     "JoinOnClause",
}

func (c InputContext) String() string {
	if c >= 0 && int(c) < len(contextNames) {
		return contextNames[c]
	}
	return fmt.Sprintf("InputContext(%d)", int(c))
}

// input is a line prepared once for all strategies.
type input struct {
	raw   string   // trimmed line
	norm  string   // upper-cased, whitespace collapsed to single spaces
	words []string // words of norm split on whitespace and ( ) , ;
}

func newInput(line string) *input {
	raw := strings.TrimSpace(line)
	norm := strings.Join(strings.Fields(strings.ToUpper(raw)), " ")
	words := strings.FieldsFunc(norm, func(r rune) bool {
		return r == ' ' || r == '(' || r == ')' || r == ',' || r == ';'
	})
	return &input{raw: raw, norm: norm, words: words}
}

// strategy is one classification tier. classify returns false when the
// tier has no opinion about the line.
type strategy struct {
	name     string
	classify func(in *input) (InputContext, bool)
}

// Analyzer classifies lines by trying its strategies in order; the first
// strategy with an opinion wins.
type Analyzer struct {
	strategies []strategy
}

// NewAnalyzer returns the standard analyzer: the USE fast path, a full
// parse, incomplete-statement heuristics, then a word scan.
func NewAnalyzer() *Analyzer {
	return &Analyzer{strategies: []strategy{
		{name: "use", classify: classifyUse},
		{name: "grammar", classify: classifyGrammar},
		{name: "suffix", classify: classifySuffix},
		{name: "contains", classify: classifyContains},
		{name: "prefix", classify: classifyPrefix},
		{name: "word-scan", classify: classifyWordScan},
	}}
}

// Classify returns the context of line. It never fails; lines nothing
// recognizes are ContextGeneral.
func (a *Analyzer) Classify(line string) InputContext {
	ctx, _ := a.Explain(line)
	return ctx
}

// Explain is Classify that also names the strategy that decided.
func (a *Analyzer) Explain(line string) (InputContext, string) {
	in := newInput(line)
	if in.norm == "" {
		return ContextGeneral, ""
	}
	for _, s := range a.strategies {
		if ctx, ok := s.classify(in); ok {
			return ctx, s.name
		}
	}
	return ContextGeneral, ""
}

func classifyUse(in *input) (InputContext, bool) {
	first, _, _ := strings.Cut(in.norm, " ")
	if first == "USE" {
		return ContextUse, true
	}
	return ContextGeneral, false
}

func classifyGrammar(in *input) (InputContext, bool) {
	stmt, err := sqlparse.Parse(in.raw)
	if err != nil {
		return ContextGeneral, false
	}
	switch stmt.Kind {
	case sqlparse.KindSelect:
		switch {
		case stmt.HasWhere:
			return ContextWhere, true
		case stmt.HasFrom:
			return ContextFrom, true
		}
		return ContextSelect, true
	case sqlparse.KindInsert:
		return ContextInsertInto, true
	case sqlparse.KindUpdate:
		return ContextUpdate, true
	}
	return ContextGeneral, true
}

type clauseRule struct {
	pattern string
	ctx     InputContext
}

// Checked in order; the first match wins.
var suffixRules = []clauseRule{
	{"WHERE", ContextWhere},
	{"FROM", ContextFrom},
	{"JOIN", ContextFrom},
	{"ON", ContextJoinOn},
	{"ORDER BY", ContextOrderBy},
	{"GROUP BY", ContextGroupBy},
	{"HAVING", ContextHaving},
}

var containsRules = []clauseRule{
	{"WHERE ", ContextWhere},
	{"FROM ", ContextFrom},
	{"JOIN ", ContextFrom},
	{" ON ", ContextJoinOn},
	{"ORDER BY ", ContextOrderBy},
	{"GROUP BY ", ContextGroupBy},
	{"HAVING ", ContextHaving},
}

func classifySuffix(in *input) (InputContext, bool) {
	for _, r := range suffixRules {
		if strings.HasSuffix(in.norm, r.pattern) && wordBoundaryBefore(in.norm, len(in.norm)-len(r.pattern)) {
			return r.ctx, true
		}
	}
	return ContextGeneral, false
}

func classifyContains(in *input) (InputContext, bool) {
	for _, r := range containsRules {
		if containsWord(in.norm, r.pattern) {
			return r.ctx, true
		}
	}
	return ContextGeneral, false
}

func classifyPrefix(in *input) (InputContext, bool) {
	if len(in.words) == 0 {
		return ContextGeneral, false
	}
	switch in.words[0] {
	case "SELECT":
		return ContextSelect, true
	case "UPDATE":
		return ContextUpdate, true
	case "INSERT":
		if len(in.words) > 1 && in.words[1] == "INTO" {
			return ContextInsertInto, true
		}
	}
	return ContextGeneral, false
}

func classifyWordScan(in *input) (InputContext, bool) {
	for i, w := range in.words {
		next := ""
		if i+1 < len(in.words) {
			next = in.words[i+1]
		}
		switch {
		case w == "WHERE":
			return ContextWhere, true
		case w == "FROM", w == "JOIN":
			return ContextFrom, true
		case w == "ORDER" && next == "BY":
			return ContextOrderBy, true
		case w == "GROUP" && next == "BY":
			return ContextGroupBy, true
		case w == "HAVING":
			return ContextHaving, true
		}
	}

	if len(in.words) > 0 {
		switch in.words[0] {
		case "SELECT":
			return ContextSelect, true
		case "INSERT":
			return ContextInsertInto, true
		case "UPDATE":
			return ContextUpdate, true
		}
	}
	return ContextGeneral, false
}

// containsWord reports whether pattern occurs in s starting at a word
// boundary.
func containsWord(s, pattern string) bool {
	for from := 0; from <= len(s)-len(pattern); {
		i := strings.Index(s[from:], pattern)
		if i < 0 {
			return false
		}
		if pattern[0] == ' ' || wordBoundaryBefore(s, from+i) {
			return true
		}
		from += i + 1
	}
	return false
}

// wordBoundaryBefore reports whether position i in s starts a new word.
func wordBoundaryBefore(s string, i int) bool {
	if i <= 0 {
		return true
	}
	return !isIdentByte(s[i-1])
}

func isIdentByte(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '$' || c == '`' || c >= 0x80
}
