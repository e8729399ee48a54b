package completion

import "strings"

// ExtractTableNames returns the table references of line: every token that
// follows FROM or JOIN, plus comma-separated continuations of a FROM list.
// Backticks and trailing punctuation are stripped, keywords and subqueries
// are ignored, and duplicates (ignoring case) are dropped. Qualified names
// keep their "db.table" form.
func ExtractTableNames(line string) []string {
	var (
		names    []string
		seen     = make(map[string]struct{})
		expect   bool // next token names a table
		fromList bool // inside a FROM list, where a trailing comma starts another table
	)

	for _, raw := range strings.Fields(line) {
		upper := strings.ToUpper(strings.Trim(raw, ",;"))
		switch {
		case upper == "FROM":
			expect, fromList = true, true
			continue
		case upper == "JOIN":
			expect, fromList = true, false
			continue
		case raw == ",":
			if fromList {
				expect = true
			}
			continue
		}

		if expect {
			expect = false
			name := cleanTableToken(raw)
			if name != "" && !strings.HasPrefix(name, "(") && !IsKeyword(name) {
				key := strings.ToLower(name)
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					names = append(names, name)
				}
			}
		} else if fromList && upper != "AS" && IsKeyword(upper) {
			fromList = false
		}

		if fromList && strings.HasSuffix(strings.TrimRight(raw, ";"), ",") {
			expect = true
		}
	}
	return names
}

func cleanTableToken(raw string) string {
	name := strings.ReplaceAll(raw, "`", "")
	return strings.TrimRight(name, ",;)")
}

// splitQualified splits "db.table" into its parts; unqualified names return
// an empty database.
func splitQualified(name string) (database, table string) {
	if i := strings.LastIndexByte(name, '.'); i > 0 && i < len(name)-1 {
		return name[:i], name[i+1:]
	}
	return "", name
}
