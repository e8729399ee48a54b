package completion

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlsh/internal/metadata"
	"github.com/leapstack-labs/sqlsh/internal/testutil"
)

// scenarioSource is the two-database schema: test_db (users, orders) and
// sales (customers).
func scenarioSource() *testutil.SchemaSource {
	src := testutil.NewSchemaSource()
	src.Databases = []string{"test_db", "sales"}
	return src
}

func newTestEngine(t *testing.T, src *testutil.SchemaSource) *Engine {
	t.Helper()
	cache := metadata.NewCache(metadata.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, cache.Refresh(context.Background(), src))
	return NewEngine(cache, nil, testutil.NewTestLogger(t))
}

func texts(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Text
	}
	return out
}

func TestEngine_UseSuggestsDatabases(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	got := e.Suggest("USE ", "")
	require.Len(t, got, 2)
	assert.Equal(t, []string{"test_db", "sales"}, texts(got))
	for _, s := range got {
		assert.Equal(t, CategoryDatabase, s.Category)
		assert.Equal(t, 90, s.Relevance)
	}

	got = e.Suggest("USE sa", "sa")
	require.Len(t, got, 1)
	assert.Equal(t, "sales", got[0].Text)
	assert.Equal(t, 95, got[0].Relevance)
}

func TestEngine_SelectWithoutWord(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	got := e.Suggest("SELECT ", "")
	require.Len(t, got, 12)
	assert.Equal(t, "*", got[0].Text)
	assert.Equal(t, 95, got[0].Relevance)
	assert.Equal(t, "COUNT(*)", got[1].Text)
	assert.Equal(t, 90, got[1].Relevance)
	assert.Equal(t, "Select all columns", got[0].Description)
}

func TestEngine_WhereSuggestsColumnsOfReferencedTable(t *testing.T) {
	e := newTestEngine(t, scenarioSource())
	e.SetCurrentDatabase("test_db")

	got := e.Suggest("select * from orders where", "")
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, []string{"order_id", "user_id", "amount"}, texts(got[:3]))
	for _, s := range got[:3] {
		assert.Equal(t, CategoryColumn, s.Category)
		assert.Contains(t, s.Description, "test_db.orders")
	}
	assert.Len(t, got, 13, "three columns and ten condition operators")
	for _, s := range got[3:] {
		assert.Equal(t, CategoryKeyword, s.Category)
	}
}

func TestEngine_WherePrefersMatchingColumn(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	got := e.Suggest("SELECT * FROM users WHERE na", "na")
	require.NotEmpty(t, got)
	assert.Equal(t, "name", got[0].Text)
	assert.Equal(t, 95, got[0].Relevance)
	assert.Equal(t, "Column: name (from table test_db.users)", got[0].Description)
}

func TestEngine_FromRanksCurrentDatabaseFirst(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	got := e.Suggest("SELECT * FROM ", "")
	assert.Equal(t, []string{"users", "orders", "customers"}, texts(got))

	e.SetCurrentDatabase("sales")
	got = e.Suggest("SELECT * FROM ", "")
	assert.Equal(t, []string{"customers", "users", "orders"}, texts(got))
	assert.Equal(t, 95, got[0].Relevance)
	assert.Equal(t, 85, got[1].Relevance)
	assert.Equal(t, "Table: customers (in sales database)", got[0].Description)
}

func TestEngine_FromFiltersByPrefix(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	got := e.Suggest("SELECT * FROM us", "us")
	require.Len(t, got, 1)
	assert.Equal(t, "users", got[0].Text)

	assert.Empty(t, e.Suggest("SELECT * FROM zz", "zz"))
}

func TestEngine_InsertAndUpdateSuggestTables(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	assert.Equal(t, []string{"users", "orders", "customers"}, texts(e.Suggest("INSERT INTO ", "")))
	assert.Equal(t, []string{"orders"}, texts(e.Suggest("UPDATE or", "or")))
}

func TestEngine_SystemDatabasesHaveNoTables(t *testing.T) {
	e := newTestEngine(t, testutil.NewSchemaSource())

	assert.Equal(t, []string{"test_db", "sales", "mysql"}, texts(e.Suggest("USE ", "")))
	assert.NotContains(t, texts(e.Suggest("SELECT * FROM ", "")), "user")
}

func TestEngine_SelectWithWord(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	got := e.Suggest("SELECT co", "co")
	require.Len(t, got, 12)
	assert.Equal(t, "COUNT", got[0].Text)
	assert.Equal(t, CategoryFunction, got[0].Category)
	assert.Equal(t, "CONCAT", got[1].Text)
	for _, s := range got {
		assert.Greater(t, s.Relevance, 50)
	}

	got = e.Suggest("SELECT em", "em")
	assert.Contains(t, texts(got), "email")
}

func TestEngine_SelectAfterFromSuggestsColumns(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	start, got := e.Complete("SELECT  FROM orders", len("SELECT "))
	assert.Equal(t, len("SELECT "), start)
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, []string{"order_id", "user_id", "amount"}, texts(got[:3]))
	assert.Equal(t, CategoryFunction, got[3].Category)
}

func TestEngine_OrderByAndGroupBy(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	assert.Equal(t, []string{"id", "name", "email"}, texts(e.Suggest("SELECT * FROM users ORDER BY", "")))
	assert.Equal(t, []string{"order_id", "user_id", "amount"}, texts(e.Suggest("SELECT COUNT(*) FROM orders GROUP BY", "")))
}

func TestEngine_GeneralContext(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	got := e.Suggest("", "")
	require.Len(t, got, 10)
	assert.Equal(t, "SELECT * FROM", got[0].Text)
	assert.Equal(t, CategoryCommand, got[0].Category)
	assert.Equal(t, "SHOW DATABASES", got[1].Text)

	got = e.Suggest("sel", "sel")
	require.NotEmpty(t, got)
	assert.Equal(t, "SELECT", got[0].Text)
	assert.Equal(t, "SQL keyword: SELECT", got[0].Description)
}

func TestEngine_ColumnsAreNotDuplicated(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	got := e.Suggest("SELECT * FROM users JOIN test_db.users WHERE ", "")
	var columns []string
	for _, s := range got {
		if s.Category == CategoryColumn {
			columns = append(columns, s.Text)
		}
	}
	assert.Equal(t, []string{"id", "name", "email"}, columns)
}

func TestEngine_ResultsAreSortedAndCapped(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	lines := []struct{ line, word string }{
		{"", ""},
		{"SELECT ", ""},
		{"SELECT co", "co"},
		{"USE ", ""},
		{"SELECT * FROM ", ""},
		{"SELECT * FROM users WHERE ", ""},
		{"SELECT * FROM users u JOIN orders o ON ", ""},
	}
	for _, l := range lines {
		got := e.Suggest(l.line, l.word)
		assert.LessOrEqual(t, len(got), Limit(e.Classify(l.line)), l.line)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].Relevance, got[i].Relevance, l.line)
		}
		for _, s := range got {
			assert.GreaterOrEqual(t, s.Relevance, 0)
			assert.LessOrEqual(t, s.Relevance, 100)
		}
	}
}

func TestEngine_EmptyCachePlaceholder(t *testing.T) {
	e := newTestEngine(t, &testutil.SchemaSource{})

	got := e.Suggest("USE ", "")
	require.Len(t, got, 1)
	assert.Equal(t, "-- No databases available --", got[0].Text)
	assert.Equal(t, 50, got[0].Relevance)

	assert.Empty(t, e.Suggest("USE x", "x"))

	got = e.Suggest("SELECT * FROM ", "")
	require.Len(t, got, 1)
	assert.Equal(t, "-- No tables available --", got[0].Text)
	assert.Equal(t, CategoryCommand, got[0].Category)
	assert.Equal(t, 50, got[0].Relevance)

	assert.Empty(t, e.Suggest("SELECT * FROM us", "us"))
	assert.Empty(t, e.Suggest("INSERT INTO ", ""), "only FROM gets the placeholder")
}

func TestEngine_UnloadedCacheShowsPlaceholder(t *testing.T) {
	e := NewEngine(metadata.NewCache(), nil, nil)

	got := e.Suggest("USE ", "")
	require.Len(t, got, 1, "an unloaded snapshot is empty, not busy")
	assert.Equal(t, "-- No databases available --", got[0].Text)

	nilCache := NewEngine(nil, nil, nil)
	assert.Empty(t, nilCache.Suggest("USE ", ""))
}

func TestEngine_BusyCacheYieldsNoSchemaSuggestions(t *testing.T) {
	src := scenarioSource()
	src.Entered = make(chan struct{})
	src.Release = make(chan struct{})

	cache := metadata.NewCache()
	e := NewEngine(cache, nil, testutil.NewTestLogger(t))

	done := make(chan error, 1)
	go func() {
		done <- cache.Refresh(context.Background(), src)
	}()
	<-src.Entered

	assert.Empty(t, e.Suggest("SELECT * FROM ", ""), "no placeholder while the lock is held")
	assert.Empty(t, e.Suggest("USE ", ""), "no placeholder while the lock is held")
	assert.NotEmpty(t, e.Suggest("SELECT ", ""), "catalog suggestions do not need the cache")

	close(src.Release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"users", "orders", "customers"}, texts(e.Suggest("SELECT * FROM ", "")))
}

func TestEngine_Complete(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	start, got := e.Complete("USE sa", 6)
	assert.Equal(t, 4, start)
	assert.Equal(t, []string{"sales"}, texts(got))

	line := "SELECT * FROM `us"
	start, got = e.Complete(line, len(line))
	assert.Equal(t, 15, start)
	assert.Equal(t, []string{"users"}, texts(got))
}

func TestEngine_CompleteWithDatabaseQualifier(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	line := "SELECT * FROM sales."
	start, got := e.Complete(line, len(line))
	assert.Equal(t, len(line), start)
	assert.Equal(t, []string{"customers"}, texts(got))
}

func TestEngine_CompleteWithAliasQualifier(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	line := "SELECT o. FROM orders o"
	start, got := e.Complete(line, len("SELECT o."))
	assert.Equal(t, len("SELECT o."), start)
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, []string{"order_id", "user_id", "amount"}, texts(got[:3]))
}

func TestEngine_CompleteWithTableQualifier(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	line := "SELECT * FROM users JOIN orders WHERE users."
	_, got := e.Complete(line, len(line))
	var columns []string
	for _, s := range got {
		if s.Category == CategoryColumn {
			columns = append(columns, s.Text)
		}
	}
	assert.Equal(t, []string{"id", "name", "email"}, columns)
}

func TestEngine_CompleteClampsCursor(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	start, got := e.Complete("USE sa", 100)
	assert.Equal(t, 4, start)
	assert.Equal(t, []string{"sales"}, texts(got))

	start, _ = e.Complete("USE sa", -3)
	assert.Equal(t, 0, start)
}

func TestWordStart(t *testing.T) {
	tests := []struct {
		line   string
		cursor int
		want   int
	}{
		{"", 0, 0},
		{"abc", 3, 0},
		{"SELECT na", 9, 7},
		{"SELECT t.na", 11, 9},
		{"COUNT(x", 7, 6},
		{"a,b", 3, 2},
		{"SELECT ", 7, 7},
		{"SELECT na", 3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WordStart(tt.line, tt.cursor), "%q at %d", tt.line, tt.cursor)
	}
}

func TestQualifierBefore(t *testing.T) {
	assert.Equal(t, "sales", qualifierBefore("FROM sales.", 11))
	assert.Equal(t, "sales", qualifierBefore("FROM `sales`.", 13))
	assert.Equal(t, "", qualifierBefore("FROM sales", 5))
	assert.Equal(t, "", qualifierBefore("", 0))
}

func TestEngine_SelectWithoutFromHasNoDuplicates(t *testing.T) {
	e := newTestEngine(t, scenarioSource())

	for _, word := range []string{"D", "DA", "CO", "MO", "C"} {
		got := e.Suggest("SELECT "+word, word)
		seen := map[string]bool{}
		for _, s := range got {
			key := strings.ToUpper(s.Text)
			assert.False(t, seen[key], "%q suggested twice for %q", s.Text, word)
			seen[key] = true
		}
	}

	got := e.Suggest("SELECT COU", "COU")
	require.NotEmpty(t, got)
	assert.Equal(t, "COUNT", got[0].Text)
	assert.Equal(t, CategoryFunction, got[0].Category, "the function entry wins over the keyword")
}
