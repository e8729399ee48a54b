package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqlsh/internal/testutil"
)

func runes(ss ...string) [][]rune {
	out := make([][]rune, len(ss))
	for i, s := range ss {
		out[i] = []rune(s)
	}
	return out
}

func TestCompleter_Do(t *testing.T) {
	c := NewCompleter(newTestEngine(t, scenarioSource()))

	tests := []struct {
		name       string
		line       string
		wantCands  [][]rune
		wantLength int
	}{
		{"database", "USE sa", runes("les"), 2},
		{"table", "select * from us", runes("ers"), 2},
		{"keyword keeps lower case", "sel", runes("ect"), 3},
		{"keyword keeps upper case", "SEL", runes("ECT"), 3},
		{"column", "SELECT * FROM users WHERE em", runes("ail"), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := []rune(tt.line)
			cands, length := c.Do(line, len(line))
			assert.Equal(t, tt.wantCands, cands)
			assert.Equal(t, tt.wantLength, length)
		})
	}
}

func TestCompleter_NoKeywordFallbackAfterTarget(t *testing.T) {
	c := NewCompleter(newTestEngine(t, &testutil.SchemaSource{}))

	line := []rune("USE ")
	cands, length := c.Do(line, len(line))
	assert.Empty(t, cands, "the placeholder is never inserted")
	assert.Equal(t, 0, length)

	line = []rune("SELECT * FROM ")
	cands, _ = c.Do(line, len(line))
	assert.Empty(t, cands, "the table placeholder is never inserted")
}

func TestCandidates(t *testing.T) {
	suggestions := []Suggestion{
		ColumnSuggestion("name", "test_db.users", 95),
		ColumnSuggestion("name", "sales.customers", 95),
		KeywordSuggestion("NATURAL", "SQL keyword: NATURAL", 95),
		ColumnSuggestion("id", "test_db.users", 70),
		TableSuggestion("`na me`", "test_db", 90),
		CommandSuggestion("-- No databases available --", "", 50),
		ColumnSuggestion("na", "test_db.t", 100),
	}

	got := Candidates("na", suggestions)
	assert.Equal(t, runes("me", "tural", " me"), got)
}

func TestMatchCase(t *testing.T) {
	assert.Equal(t, "ect", matchCase("sel", "ECT"))
	assert.Equal(t, "ECT", matchCase("SEL", "ECT"))
	assert.Equal(t, "ECT", matchCase("Sel", "ECT"))
	assert.Equal(t, "ECT", matchCase("", "ECT"))
	assert.Equal(t, "ECT", matchCase("_", "ECT"))
}
