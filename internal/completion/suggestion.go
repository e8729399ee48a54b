// Package completion implements context-aware SQL completion: it classifies
// a partially typed statement, gathers candidates from cached schema names
// and static catalogs, scores them against the word being typed, and returns
// a ranked, bounded list.
package completion

import "fmt"

// Category is the kind of thing a suggestion names.
type Category int

// Suggestion categories.
const (
	CategoryDatabase Category = iota
	CategoryTable
	CategoryColumn
	CategoryKeyword
	CategoryFunction
	CategoryCommand
)

var categoryNames = [...]string{
	CategoryDatabase: "database",
	CategoryTable:    "table",
	CategoryColumn:   "column",
	CategoryKeyword:  "keyword",
	CategoryFunction: "function",
	CategoryCommand:  "command",
}

var categoryIcons = [...]string{
	CategoryDatabase: "🗄️",
	CategoryTable:    "📊",
	CategoryColumn:   "📋",
	CategoryKeyword:  "🔵",
	CategoryFunction: "⚡",
	CategoryCommand:  "⚙️",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Icon returns the glyph shown next to suggestions of this category.
func (c Category) Icon() string {
	if c >= 0 && int(c) < len(categoryIcons) {
		return categoryIcons[c]
	}
	return "?"
}

// MaxRelevance is the highest relevance score.
const MaxRelevance = 100

// Suggestion is one completion candidate.
type Suggestion struct {
	Text        string   `json:"text"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Relevance   int      `json:"relevance"`
}

// NewSuggestion builds a suggestion with relevance clamped to [0, 100].
func NewSuggestion(text, description string, category Category, relevance int) Suggestion {
	return Suggestion{
		Text:        text,
		Description: description,
		Category:    category,
		Relevance:   clamp(relevance),
	}
}

func clamp(relevance int) int {
	switch {
	case relevance < 0:
		return 0
	case relevance > MaxRelevance:
		return MaxRelevance
	}
	return relevance
}

// DatabaseSuggestion names a database.
func DatabaseSuggestion(name string, relevance int) Suggestion {
	return NewSuggestion(name, "Database: "+name, CategoryDatabase, relevance)
}

// TableSuggestion names a table of database.
func TableSuggestion(name, database string, relevance int) Suggestion {
	return NewSuggestion(name, fmt.Sprintf("Table: %s (in %s database)", name, database), CategoryTable, relevance)
}

// ColumnSuggestion names a column; table is the qualified "db.table".
func ColumnSuggestion(name, table string, relevance int) Suggestion {
	return NewSuggestion(name, fmt.Sprintf("Column: %s (from table %s)", name, table), CategoryColumn, relevance)
}

// KeywordSuggestion names a keyword or operator.
func KeywordSuggestion(keyword, description string, relevance int) Suggestion {
	return NewSuggestion(keyword, description, CategoryKeyword, relevance)
}

// FunctionSuggestion names a built-in function.
func FunctionSuggestion(name, description string, relevance int) Suggestion {
	return NewSuggestion(name, description, CategoryFunction, relevance)
}

// CommandSuggestion is a full command template.
func CommandSuggestion(command, description string, relevance int) Suggestion {
	return NewSuggestion(command, description, CategoryCommand, relevance)
}

// Display renders the suggestion as "icon text - description".
func (s Suggestion) Display() string {
	return fmt.Sprintf("%s %s - %s", s.Category.Icon(), s.Text, s.Description)
}

// MarshalText lets Category appear by name in JSON output.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
