package completion

import (
	"slices"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is a catalog item with a fixed description.
type Entry struct {
	Text        string
	Description string
}

// Command is a curated full-command template with a hand-assigned score.
type Command struct {
	Entry
	Relevance int
}

var functionCatalog = []Entry{
	{"COUNT", "Count rows"},
	{"SUM", "Sum values"},
	{"AVG", "Average value"},
	{"MAX", "Maximum value"},
	{"MIN", "Minimum value"},
	{"NOW", "Current time"},
	{"CONCAT", "String concatenation"},
	{"UPPER", "Convert to uppercase"},
	{"LOWER", "Convert to lowercase"},
	{"SUBSTRING", "String substring"},
	{"LENGTH", "String length"},
	{"TRIM", "Remove spaces"},
	{"DATE", "Date function"},
	{"YEAR", "Get year"},
	{"MONTH", "Get month"},
	{"DAY", "Get day"},
}

var conditionCatalog = []Entry{
	{"AND", "Logical AND"},
	{"OR", "Logical OR"},
	{"NOT", "Logical NOT"},
	{"IN", "Contains in list"},
	{"LIKE", "Pattern matching"},
	{"BETWEEN", "Range condition"},
	{"IS NULL", "Is null value"},
	{"IS NOT NULL", "Is not null value"},
	{"EXISTS", "Exists subquery"},
	{"REGEXP", "Regular expression match"},
}

var commandCatalog = []Command{
	{Entry{"SELECT * FROM", "Query all data from table"}, 95},
	{Entry{"SHOW DATABASES", "Show all databases"}, 90},
	{Entry{"SHOW TABLES", "Show all tables in current database"}, 85},
	{Entry{"USE", "Switch to specified database"}, 80},
	{Entry{"DESCRIBE", "View table structure"}, 75},
	{Entry{"INSERT INTO", "Insert data"}, 70},
	{Entry{"UPDATE", "Update data"}, 65},
	{Entry{"DELETE FROM", "Delete data"}, 60},
}

var keywordSource = []string{
	// statements and objects
	"SELECT", "FROM", "WHERE", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER",
	"TABLE", "DATABASE", "INDEX", "VIEW", "TRIGGER", "PROCEDURE", "FUNCTION",
	// types
	"INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE",
	"VARCHAR", "CHAR", "TEXT", "LONGTEXT", "MEDIUMTEXT", "TINYTEXT",
	"DATE", "TIME", "DATETIME", "TIMESTAMP", "YEAR",
	"BINARY", "VARBINARY", "BLOB", "LONGBLOB", "MEDIUMBLOB", "TINYBLOB", "JSON", "GEOMETRY",
	// constraints
	"PRIMARY", "KEY", "FOREIGN", "REFERENCES", "UNIQUE", "NOT", "NULL", "DEFAULT",
	"AUTO_INCREMENT", "UNSIGNED", "ZEROFILL",
	// query clauses
	"DISTINCT", "ALL", "AS", "JOIN", "INNER", "LEFT", "RIGHT", "FULL", "OUTER", "CROSS", "ON", "USING",
	"UNION", "INTERSECT", "EXCEPT", "ORDER", "BY", "GROUP", "HAVING", "LIMIT", "OFFSET",
	"INTO", "VALUES", "SET",
	// conditions
	"AND", "OR", "IN", "EXISTS", "BETWEEN", "LIKE", "REGEXP", "RLIKE", "IS", "ISNULL",
	"CASE", "WHEN", "THEN", "ELSE", "END",
	// aggregate and string functions
	"COUNT", "SUM", "AVG", "MIN", "MAX", "GROUP_CONCAT",
	"CONCAT", "SUBSTRING", "LENGTH", "CHAR_LENGTH", "UPPER", "LOWER", "TRIM", "LTRIM", "RTRIM",
	"REPLACE", "REVERSE",
	// math
	"ABS", "CEIL", "CEILING", "FLOOR", "ROUND", "MOD", "POW", "POWER", "SQRT", "RAND", "SIGN", "PI",
	"DEGREES", "RADIANS", "SIN", "COS", "TAN",
	// date and time
	"NOW", "CURDATE", "CURTIME", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND",
	"DAYOFWEEK", "DAYOFYEAR", "WEEKDAY", "DATE_ADD", "DATE_SUB", "DATEDIFF", "DATE_FORMAT", "STR_TO_DATE",
	// control flow
	"IF", "IFNULL", "NULLIF", "COALESCE",
	// administration and transactions
	"SHOW", "DESCRIBE", "DESC", "EXPLAIN", "USE", "GRANT", "REVOKE", "FLUSH", "RESET",
	"START", "STOP", "RESTART", "BEGIN", "COMMIT", "ROLLBACK", "SAVEPOINT", "RELEASE",
	"TRANSACTION", "READ", "WRITE", "ONLY", "LOCK", "UNLOCK", "TABLES",
	"ENGINE", "CHARSET", "COLLATE", "TEMPORARY", "CASCADE", "RESTRICT",
}

var (
	keywordCatalog []string
	keywordTrie    = patricia.NewTrie()
)

func init() {
	for _, kw := range keywordSource {
		if keywordTrie.Insert(patricia.Prefix(kw), len(keywordCatalog)) {
			keywordCatalog = append(keywordCatalog, kw)
		}
	}
}

// Keywords returns the keyword catalog in catalog order.
func Keywords() []string {
	return slices.Clone(keywordCatalog)
}

// Functions returns the function catalog.
func Functions() []Entry {
	return slices.Clone(functionCatalog)
}

// Conditions returns the condition operator catalog.
func Conditions() []Entry {
	return slices.Clone(conditionCatalog)
}

// Commands returns the curated command templates.
func Commands() []Command {
	return slices.Clone(commandCatalog)
}

// IsKeyword reports whether word (any case) is in the keyword catalog.
func IsKeyword(word string) bool {
	return word != "" && keywordTrie.Match(patricia.Prefix(strings.ToUpper(word)))
}

// KeywordsWithPrefix returns the catalog keywords starting with prefix
// (any case), in catalog order.
func KeywordsWithPrefix(prefix string) []string {
	if prefix == "" {
		return Keywords()
	}
	var idx []int
	_ = keywordTrie.VisitSubtree(patricia.Prefix(strings.ToUpper(prefix)), func(_ patricia.Prefix, item patricia.Item) error {
		idx = append(idx, item.(int))
		return nil
	})
	slices.Sort(idx)

	out := make([]string, len(idx))
	for i, n := range idx {
		out[i] = keywordCatalog[n]
	}
	return out
}
