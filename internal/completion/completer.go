package completion

import (
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
)

// Completer adapts an Engine to readline's tab completion.
type Completer struct {
	engine *Engine
}

var _ readline.AutoCompleter = (*Completer)(nil)

// NewCompleter returns a readline.AutoCompleter backed by engine.
func NewCompleter(engine *Engine) *Completer {
	return &Completer{engine: engine}
}

// Do implements readline.AutoCompleter. Candidates are the remainders of
// the suggestions after the typed word; length is the typed word's length
// in runes.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	pos = max(0, min(pos, len(line)))
	text := string(line)
	cursor := len(string(line[:pos]))

	start, suggestions := c.engine.Complete(text, cursor)
	word := text[start:cursor]

	candidates := Candidates(word, suggestions)
	if len(candidates) == 0 && !endsWithTarget(text[:cursor]) {
		candidates = keywordCandidates(word)
	}
	return candidates, utf8.RuneCountInString(word)
}

// Candidates turns suggestions into readline candidates for word. Only
// suggestions that extend word are kept, backticks are stripped, and
// keywords follow the case of what was typed.
func Candidates(word string, suggestions []Suggestion) [][]rune {
	var out [][]rune
	seen := make(map[string]struct{})
	for _, s := range suggestions {
		if isPlaceholder(s) {
			continue
		}
		suffix, ok := remainder(strings.ReplaceAll(s.Text, "`", ""), word)
		if !ok || suffix == "" {
			continue
		}
		if s.Category == CategoryKeyword || s.Category == CategoryFunction || s.Category == CategoryCommand {
			suffix = matchCase(word, suffix)
		}
		if _, dup := seen[suffix]; dup {
			continue
		}
		seen[suffix] = struct{}{}
		out = append(out, []rune(suffix))
	}
	return out
}

func keywordCandidates(word string) [][]rune {
	keywords := KeywordsWithPrefix(word)
	if len(keywords) > limitGeneral {
		keywords = keywords[:limitGeneral]
	}
	var out [][]rune
	for _, kw := range keywords {
		if suffix, ok := remainder(kw, word); ok && suffix != "" {
			out = append(out, []rune(matchCase(word, suffix)))
		}
	}
	return out
}

// remainder returns text without its first len(word) runes when text
// starts with word, ignoring case.
func remainder(text, word string) (string, bool) {
	if !hasPrefixFold(text, word) {
		return "", false
	}
	runes := []rune(text)
	n := utf8.RuneCountInString(word)
	if n > len(runes) {
		return "", false
	}
	return string(runes[n:]), true
}

// matchCase lower-cases suffix when word was typed in lower case.
func matchCase(word, suffix string) string {
	if word != "" && word == strings.ToLower(word) && word != strings.ToUpper(word) {
		return strings.ToLower(suffix)
	}
	return suffix
}

func isPlaceholder(s Suggestion) bool {
	return s.Category == CategoryCommand && strings.HasPrefix(s.Text, "--")
}

// endsWithTarget reports whether the line just opened a table or database
// name, where offering keywords would be noise.
func endsWithTarget(line string) bool {
	upper := strings.ToUpper(line)
	for _, suffix := range []string{"FROM ", "JOIN ", "USE "} {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}
