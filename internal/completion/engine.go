package completion

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqlsh/internal/metadata"
)

// Base scores per candidate kind, before matching against the typed word.
const (
	baseDatabase     = 90
	baseCurrentTable = 95
	baseTable        = 85
	baseColumn       = 90
	baseColumnSample = 80
	baseFunction     = 75
	baseCondition    = 70
	baseKeyword      = 65
	basePlaceholder  = 50
)

// Per-context caps on the number of suggestions returned.
const (
	limitDatabases = 20
	limitTables    = 15
	limitColumns   = 15
	limitSelect    = 12
	limitGeneral   = 10

	selectColumnSample   = 10
	fallbackColumnSample = 20

	// Catalog entries scoring at or below this are dropped when a word is typed.
	minCatalogRelevance = 50
	// Sampled columns must score above this to be kept.
	minSampleRelevance = 70
)

// Limit returns the maximum number of suggestions returned for ctx.
func Limit(ctx InputContext) int {
	switch ctx {
	case ContextUse:
		return limitDatabases
	case ContextFrom, ContextInsertInto, ContextUpdate:
		return limitTables
	case ContextWhere, ContextHaving, ContextJoinOn, ContextOrderBy, ContextGroupBy:
		return limitColumns
	case ContextSelect:
		return limitSelect
	}
	return limitGeneral
}

// Engine produces ranked suggestions from the metadata cache and the static
// catalogs. It does no I/O and never blocks on the cache.
type Engine struct {
	cache    *metadata.Cache
	current  *CurrentDatabase
	analyzer *Analyzer
	logger   *slog.Logger
}

// NewEngine creates an engine reading cache. current may be shared with
// the session; nil creates a private one.
func NewEngine(cache *metadata.Cache, current *CurrentDatabase, logger *slog.Logger) *Engine {
	if current == nil {
		current = &CurrentDatabase{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		cache:    cache,
		current:  current,
		analyzer: NewAnalyzer(),
		logger:   logger,
	}
}

// SetCurrentDatabase updates the database used to rank tables and resolve
// unqualified table names.
func (e *Engine) SetCurrentDatabase(name string) {
	e.current.Set(name)
}

// CurrentDatabase returns the active database, if any.
func (e *Engine) CurrentDatabase() (string, bool) {
	return e.current.Get()
}

// Classify returns the input context of line.
func (e *Engine) Classify(line string) InputContext {
	return e.analyzer.Classify(line)
}

// Explain returns the input context of line and the strategy that chose it.
func (e *Engine) Explain(line string) (InputContext, string) {
	return e.analyzer.Explain(line)
}

type request struct {
	line      string // text up to the cursor, used for classification
	full      string // whole line, used to find referenced tables
	word      string // partial word at the cursor
	qualifier string // name before a "." preceding word, if any
}

// Suggest returns suggestions for line, where word is the partial word at
// its end, ordered by relevance and capped per context.
func (e *Engine) Suggest(line, word string) []Suggestion {
	return e.suggest(request{line: line, full: line, word: word})
}

// Complete returns the offset in line where the word under cursor starts
// and the suggestions for it. cursor is a byte offset into line.
func (e *Engine) Complete(line string, cursor int) (int, []Suggestion) {
	cursor = max(0, min(cursor, len(line)))
	before := line[:cursor]

	start := WordStart(before, cursor)
	qualifier := qualifierBefore(before, start)
	if start < cursor && before[start] == '`' {
		start++
	}
	return start, e.suggest(request{
		line:      before,
		full:      line,
		word:      before[start:],
		qualifier: qualifier,
	})
}

func (e *Engine) suggest(r request) []Suggestion {
	ctx := e.analyzer.Classify(r.line)

	var out []Suggestion
	switch ctx {
	case ContextUse:
		out = e.databaseSuggestions(r.word)
	case ContextFrom, ContextInsertInto, ContextUpdate:
		var ok bool
		out, ok = e.tableSuggestions(r.qualifier, r.word)
		if ctx == ContextFrom && ok && len(out) == 0 && r.word == "" {
			out = append(out, CommandSuggestion("-- No tables available --",
				"Connect to a database with tables", basePlaceholder))
		}
	case ContextSelect:
		switch {
		case slices.Contains(newInput(r.full).words, "FROM"):
			out = append(e.columnsForQuery(r), functionSuggestions(r.word)...)
		case r.word == "":
			out = keywordSuggestions("")
			out = append(out,
				CommandSuggestion("*", "Select all columns", 95),
				CommandSuggestion("COUNT(*)", "Count all rows", 90))
		default:
			out = dedupeText(append(functionSuggestions(r.word), keywordSuggestions(r.word)...))
			if len(r.word) >= 2 {
				out = append(out, e.columnSample(r.word, selectColumnSample)...)
			}
		}
	case ContextWhere, ContextHaving, ContextJoinOn:
		out = append(e.columnsForQuery(r), conditionSuggestions(r.word)...)
	case ContextOrderBy, ContextGroupBy:
		out = e.columnsForQuery(r)
	default:
		out = keywordSuggestions(r.word)
		if r.word == "" {
			out = append(out, commandSuggestions()...)
		}
	}

	return rank(out, Limit(ctx))
}

// rank sorts by relevance, keeping the original order for ties, and
// truncates to limit.
func rank(out []Suggestion, limit int) []Suggestion {
	slices.SortStableFunc(out, func(a, b Suggestion) int {
		return cmp.Compare(b.Relevance, a.Relevance)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dedupeText drops suggestions whose text, ignoring case, was already
// seen. Names like COUNT or DATE are both functions and keywords.
func dedupeText(in []Suggestion) []Suggestion {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		key := strings.ToUpper(s.Text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// view runs fn against the metadata snapshot unless a refresh holds the
// lock, in which case it reports false.
func (e *Engine) view(fn func(*metadata.Snapshot)) bool {
	if e.cache == nil {
		return false
	}
	if !e.cache.TryView(fn) {
		e.logger.Debug("metadata busy, skipping schema suggestions")
		return false
	}
	return true
}

func (e *Engine) databaseSuggestions(word string) []Suggestion {
	var out []Suggestion
	ok := e.view(func(s *metadata.Snapshot) {
		for _, db := range s.Databases() {
			if word != "" && !hasPrefixFold(db, word) {
				continue
			}
			out = append(out, DatabaseSuggestion(db, Score(db, word, baseDatabase)))
		}
	})
	if ok && len(out) == 0 && word == "" {
		out = append(out, CommandSuggestion("-- No databases available --",
			"Connect to a server with databases", basePlaceholder))
	}
	return out
}

// tableSuggestions lists tables, current database first. ok is false when
// the snapshot could not be read.
func (e *Engine) tableSuggestions(qualifier, word string) (out []Suggestion, ok bool) {
	cur, hasCur := e.current.Get()

	var current, others []Suggestion
	ok = e.view(func(s *metadata.Snapshot) {
		databases := s.Databases()
		if qualifier != "" && s.HasDatabase(qualifier) {
			databases = []string{qualifier}
			cur, hasCur = qualifier, true
		}
		for _, db := range databases {
			inScope := hasCur && strings.EqualFold(db, cur)
			base := baseTable
			if inScope {
				base = baseCurrentTable
			}
			for _, table := range s.Tables(db) {
				if word != "" && !hasPrefixFold(table, word) {
					continue
				}
				sug := TableSuggestion(table, db, Score(table, word, base))
				if inScope {
					current = append(current, sug)
				} else {
					others = append(others, sug)
				}
			}
		}
	})
	return append(current, others...), ok
}

// columnsForQuery suggests the columns of the tables referenced in the
// line. Without any table reference it falls back to a sample of all
// columns.
func (e *Engine) columnsForQuery(r request) []Suggestion {
	tables := ExtractTableNames(r.full)
	if r.qualifier != "" {
		tables = []string{r.qualifier}
	}
	if len(tables) == 0 {
		return e.columnSample(r.word, fallbackColumnSample)
	}

	cur, hasCur := e.current.Get()
	var out []Suggestion
	seen := make(map[string]struct{})
	resolved := false
	e.view(func(s *metadata.Snapshot) {
		for _, ref := range tables {
			db, table, ok := resolveTable(s, ref, cur, hasCur)
			if !ok {
				continue
			}
			resolved = true
			qualified := db + "." + table
			for _, col := range s.Columns(db, table) {
				if r.word != "" && !hasPrefixFold(col, r.word) {
					continue
				}
				key := metadata.ColumnKey(db, table) + "." + strings.ToLower(col)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, ColumnSuggestion(col, qualified, Score(col, r.word, baseColumn)))
			}
		}
	})

	// An unresolvable qualifier is usually an alias; fall back to the tables
	// named in the statement.
	if !resolved && r.qualifier != "" {
		return e.columnsForQuery(request{line: r.line, full: r.full, word: r.word})
	}
	return out
}

// resolveTable finds the database holding ref. Qualified references are
// looked up directly; unqualified ones prefer the current database and
// otherwise take the first database containing the table.
func resolveTable(s *metadata.Snapshot, ref, cur string, hasCur bool) (db, table string, ok bool) {
	db, table = splitQualified(ref)
	if db != "" {
		return db, table, s.HasColumns(db, table)
	}
	if hasCur && s.HasColumns(cur, table) {
		return cur, table, true
	}
	for _, candidate := range s.DatabasesWithTable(table) {
		if s.HasColumns(candidate, table) {
			return candidate, table, true
		}
	}
	return "", table, false
}

// columnSample returns up to limit columns from any table that match word
// well enough.
func (e *Engine) columnSample(word string, limit int) []Suggestion {
	var out []Suggestion
	e.view(func(s *metadata.Snapshot) {
		for _, db := range s.Databases() {
			for _, table := range s.Tables(db) {
				for _, col := range s.Columns(db, table) {
					rel := Score(col, word, baseColumnSample)
					if rel <= minSampleRelevance {
						continue
					}
					out = append(out, ColumnSuggestion(col, db+"."+table, rel))
					if len(out) >= limit {
						return
					}
				}
			}
		}
	})
	return out
}

func catalogSuggestions(entries []Entry, word string, base int, build func(text, desc string, rel int) Suggestion) []Suggestion {
	var out []Suggestion
	for _, entry := range entries {
		rel := Score(entry.Text, word, base)
		if word == "" || rel > minCatalogRelevance {
			out = append(out, build(entry.Text, entry.Description, rel))
		}
	}
	return out
}

func functionSuggestions(word string) []Suggestion {
	return catalogSuggestions(functionCatalog, word, baseFunction, FunctionSuggestion)
}

func conditionSuggestions(word string) []Suggestion {
	return catalogSuggestions(conditionCatalog, word, baseCondition, KeywordSuggestion)
}

func keywordSuggestions(word string) []Suggestion {
	var out []Suggestion
	for _, kw := range keywordCatalog {
		rel := Score(kw, word, baseKeyword)
		if word == "" || rel > minCatalogRelevance {
			out = append(out, KeywordSuggestion(kw, "SQL keyword: "+kw, rel))
		}
	}
	return out
}

func commandSuggestions() []Suggestion {
	out := make([]Suggestion, 0, len(commandCatalog))
	for _, c := range commandCatalog {
		out = append(out, CommandSuggestion(c.Text, c.Description, c.Relevance))
	}
	return out
}

// WordStart returns the offset where the word ending at cursor begins,
// scanning back to whitespace or one of ( , . ;.
func WordStart(line string, cursor int) int {
	cursor = max(0, min(cursor, len(line)))
	for i := cursor; i > 0; i-- {
		switch line[i-1] {
		case ' ', '\t', '\n', '\r', '(', ',', '.', ';':
			return i
		}
	}
	return 0
}

// qualifierBefore returns the identifier in front of a "." that directly
// precedes start, without backticks.
func qualifierBefore(line string, start int) string {
	if start == 0 || line[start-1] != '.' {
		return ""
	}
	end := start - 1
	i := end
	for i > 0 && isIdentByte(line[i-1]) {
		i--
	}
	return strings.ReplaceAll(line[i:end], "`", "")
}
