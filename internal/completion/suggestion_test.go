package completion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuggestion_ClampsRelevance(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-20, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{250, 100},
	}
	for _, tt := range tests {
		s := NewSuggestion("x", "", CategoryKeyword, tt.in)
		assert.Equal(t, tt.want, s.Relevance, "relevance %d", tt.in)
	}
}

func TestSuggestionConstructors(t *testing.T) {
	db := DatabaseSuggestion("sales", 90)
	assert.Equal(t, "sales", db.Text)
	assert.Equal(t, "Database: sales", db.Description)
	assert.Equal(t, CategoryDatabase, db.Category)

	table := TableSuggestion("orders", "test_db", 95)
	assert.Equal(t, "Table: orders (in test_db database)", table.Description)
	assert.Equal(t, CategoryTable, table.Category)

	col := ColumnSuggestion("amount", "test_db.orders", 90)
	assert.Equal(t, "Column: amount (from table test_db.orders)", col.Description)
	assert.Equal(t, CategoryColumn, col.Category)

	assert.Equal(t, CategoryKeyword, KeywordSuggestion("AND", "Logical AND", 70).Category)
	assert.Equal(t, CategoryFunction, FunctionSuggestion("SUM", "Sum values", 75).Category)
	assert.Equal(t, CategoryCommand, CommandSuggestion("USE", "Switch", 80).Category)
}

func TestCategory_IconAndString(t *testing.T) {
	tests := []struct {
		c    Category
		name string
		icon string
	}{
		{CategoryDatabase, "database", "🗄️"},
		{CategoryTable, "table", "📊"},
		{CategoryColumn, "column", "📋"},
		{CategoryKeyword, "keyword", "🔵"},
		{CategoryFunction, "function", "⚡"},
		{CategoryCommand, "command", "⚙️"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.c.String())
		assert.Equal(t, tt.icon, tt.c.Icon())
	}
	assert.Equal(t, "Category(42)", Category(42).String())
	assert.Equal(t, "?", Category(42).Icon())
}

func TestSuggestion_Display(t *testing.T) {
	s := ColumnSuggestion("amount", "test_db.orders", 90)
	assert.Equal(t, "📋 amount - Column: amount (from table test_db.orders)", s.Display())
}

func TestSuggestion_JSON(t *testing.T) {
	data, err := json.Marshal(FunctionSuggestion("SUM", "Sum values", 75))
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"SUM","description":"Sum values","category":"function","relevance":75}`, string(data))
}
