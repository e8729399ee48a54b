package sqlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     StatementKind
		hasFrom  bool
		hasWhere bool
		tables   []string
	}{
		{
			name:  "select without from",
			input: "SELECT 1 + 2 AS three",
			kind:  KindSelect,
		},
		{
			name:  "select column list",
			input: "select name, age",
			kind:  KindSelect,
		},
		{
			name:    "select from",
			input:   "SELECT * FROM users",
			kind:    KindSelect,
			hasFrom: true,
			tables:  []string{"users"},
		},
		{
			name:     "select from where",
			input:    "SELECT u.name FROM users u WHERE u.age > 30 AND u.name LIKE 'a%';",
			kind:     KindSelect,
			hasFrom:  true,
			hasWhere: true,
			tables:   []string{"users"},
		},
		{
			name:    "joins",
			input:   "SELECT * FROM shop.orders o LEFT OUTER JOIN `users` AS u ON o.user_id = u.id JOIN items USING (item_id)",
			kind:    KindSelect,
			hasFrom: true,
			tables:  []string{"shop.orders", "users", "items"},
		},
		{
			name:     "grouping and ordering",
			input:    "SELECT status, COUNT(*) FROM orders WHERE amount BETWEEN 1 AND 10 GROUP BY status HAVING COUNT(*) > 1 ORDER BY 2 DESC LIMIT 5, 10",
			kind:     KindSelect,
			hasFrom:  true,
			hasWhere: true,
			tables:   []string{"orders"},
		},
		{
			name:     "subqueries",
			input:    "SELECT * FROM (SELECT id FROM a) x WHERE id IN (SELECT id FROM b WHERE c IS NOT NULL) AND EXISTS (SELECT 1)",
			kind:     KindSelect,
			hasFrom:  true,
			hasWhere: true,
		},
		{
			name:  "expressions",
			input: "SELECT CASE WHEN a THEN 'x' ELSE 'y' END, CAST(b AS DECIMAL(10, 2)), LEFT(c, 3), GROUP_CONCAT(d ORDER BY d SEPARATOR ','), -e, NOT f, t.*",
			kind:  KindSelect,
		},
		{
			name:    "union",
			input:   "SELECT a FROM t1 UNION ALL SELECT a FROM t2 ORDER BY a",
			kind:    KindSelect,
			hasFrom: true,
			tables:  []string{"t1"},
		},
		{
			name:   "insert values",
			input:  "INSERT INTO users (id, name) VALUES (1, 'a'), (2, 'b')",
			kind:   KindInsert,
			tables: []string{"users"},
		},
		{
			name:   "insert select",
			input:  "INSERT INTO archive SELECT * FROM orders",
			kind:   KindInsert,
			tables: []string{"archive"},
		},
		{
			name:   "insert on duplicate key",
			input:  "INSERT INTO t SET a = 1 ON DUPLICATE KEY UPDATE a = a + 1",
			kind:   KindInsert,
			tables: []string{"t"},
		},
		{
			name:     "update",
			input:    "UPDATE users SET name = 'x', age = DEFAULT WHERE id = ?",
			kind:     KindUpdate,
			hasWhere: true,
			tables:   []string{"users"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, stmt.Kind)
			assert.Equal(t, tt.hasFrom, stmt.HasFrom, "HasFrom")
			assert.Equal(t, tt.hasWhere, stmt.HasWhere, "HasWhere")
			if tt.tables != nil {
				assert.Equal(t, tt.tables, stmt.Tables)
			}
		})
	}
}

func TestParse_Incomplete(t *testing.T) {
	inputs := []string{
		"",
		";",
		"SELECT",
		"SELECT * FROM",
		"SELECT * FROM users WHERE",
		"select * from orders where",
		"SELECT name FROM employees WHERE age > 30 AND",
		"SELECT * FROM users JOIN",
		"SELECT * FROM users u JOIN orders o ON",
		"SELECT * FROM users ORDER BY",
		"SELECT COUNT(*) FROM orders GROUP BY status HAVING",
		"SELECT name,",
		"SELECT a.",
		"INSERT INTO",
		"INSERT INTO users VALUES (",
		"UPDATE users SET",
		"SELECT 'open",
		"SELECT 1 2 3",
		"USE test_db",
		"SHOW TABLES",
		"DELETE FROM users",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			stmt, err := Parse(input)
			require.Error(t, err)
			assert.Nil(t, stmt)

			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseError_Error(t *testing.T) {
	_, err := Parse("SELECT * FROM users WHERE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.Contains(t, err.Error(), "expected expression")
}
