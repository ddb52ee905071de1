// Package sql provides DDL statement scanning and dependency ordering.
package sql

import (
	"strings"
)

// Statement is one parsed CREATE TABLE unit from a batch.
type Statement struct {
	// TableName is the extracted identifier. Identity within a batch.
	TableName string
	// Raw is the original fragment with the terminator re-appended.
	Raw string
	// DependsOn lists table names referenced via REFERENCES, duplicates
	// collapsed, in order of first appearance. Self-references are kept.
	DependsOn []string
}

// ContainsCreateTable reports whether the text contains a CREATE TABLE
// statement, case-insensitively. Used as the DML safeguard: input without
// it is passed through untouched.
func ContainsCreateTable(sqlText string) bool {
	return strings.Contains(strings.ToUpper(sqlText), "CREATE TABLE")
}

// SplitStatements splits a batch on statement terminators, ignoring
// semicolons inside single-quoted, double-quoted, or backtick-quoted
// runs. Fragments are trimmed and empty fragments discarded.
func SplitStatements(sqlText string) []string {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateBacktick
	)

	var fragments []string
	var current strings.Builder
	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlText {
		if state == stateNormal && char == ';' {
			if frag := strings.TrimSpace(current.String()); frag != "" {
				fragments = append(fragments, frag)
			}
			current.Reset()
			prevChar = char
			continue
		}

		current.WriteRune(char)

		switch state {
		case stateNormal:
			switch char {
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			case '`':
				state = stateBacktick
			}
		case stateSingleQuote:
			// Handle both backslash escape (\') and SQL standard escape ('')
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		case stateBacktick:
			if char == '`' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	if frag := strings.TrimSpace(current.String()); frag != "" {
		fragments = append(fragments, frag)
	}

	return fragments
}

// ParseCreateTable scans a fragment for a CREATE TABLE header and its
// REFERENCES targets. Returns false if the fragment has no parseable
// header; such fragments are excluded from dependency ordering.
func ParseCreateTable(fragment string) (Statement, bool) {
	s := &scanner{input: fragment}

	name, ok := s.scanCreateTableHeader()
	if !ok {
		return Statement{}, false
	}

	return Statement{
		TableName: name,
		Raw:       fragment + ";",
		DependsOn: s.scanReferences(),
	}, true
}

// scanner walks a statement fragment extracting identifiers. It is not a
// SQL parser; it recognizes just enough structure for dependency ordering.
type scanner struct {
	input string
	pos   int
}

// scanCreateTableHeader finds the first CREATE TABLE keyword pair and
// extracts the table identifier: a bare, backtick-, or double-quote-
// delimited word followed (after optional whitespace) by an opening paren.
func (s *scanner) scanCreateTableHeader() (string, bool) {
	for {
		idx := s.findKeyword("CREATE")
		if idx < 0 {
			return "", false
		}
		s.pos = idx + len("CREATE")

		if !s.skipRequiredSpace() {
			continue
		}
		if !s.matchKeyword("TABLE") {
			continue
		}
		if !s.skipRequiredSpace() {
			continue
		}

		name, ok := s.scanIdentifier()
		if !ok {
			continue
		}

		// The identifier must introduce a column list.
		save := s.pos
		s.skipSpace()
		if s.pos < len(s.input) && s.input[s.pos] == '(' {
			return name, true
		}
		s.pos = save
	}
}

// scanReferences collects every REFERENCES <identifier> occurrence after
// the current position. Duplicates are collapsed; self-references kept.
func (s *scanner) scanReferences() []string {
	var deps []string
	seen := make(map[string]bool)

	for {
		idx := s.findKeyword("REFERENCES")
		if idx < 0 {
			return deps
		}
		s.pos = idx + len("REFERENCES")

		if !s.skipRequiredSpace() {
			continue
		}

		name, ok := s.scanIdentifier()
		if !ok {
			continue
		}

		// The referenced identifier must be followed by a column list or
		// whitespace (e.g. before ON DELETE); a bare trailing identifier
		// is not treated as a reference.
		if !s.referenceTerminated() {
			continue
		}

		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
}

// referenceTerminated checks the character after a referenced identifier.
func (s *scanner) referenceTerminated() bool {
	if s.pos < len(s.input) && isSpace(s.input[s.pos]) {
		return true
	}
	save := s.pos
	s.skipSpace()
	ok := s.pos < len(s.input) && s.input[s.pos] == '('
	s.pos = save
	return ok
}

// findKeyword returns the index of the next case-insensitive, word-bounded
// occurrence of the keyword at or after the current position, or -1.
// The comparison walks the input byte by byte so the returned offset is
// always valid in s.input, even when surrounding text contains multi-byte
// runes whose upper-case form has a different encoded length.
func (s *scanner) findKeyword(keyword string) int {
	for idx := s.pos; idx+len(keyword) <= len(s.input); idx++ {
		if !strings.EqualFold(s.input[idx:idx+len(keyword)], keyword) {
			continue
		}
		before := idx == 0 || !isWordChar(s.input[idx-1])
		afterIdx := idx + len(keyword)
		after := afterIdx >= len(s.input) || !isWordChar(s.input[afterIdx])
		if before && after {
			return idx
		}
	}
	return -1
}

// matchKeyword consumes the keyword at the current position if present.
func (s *scanner) matchKeyword(keyword string) bool {
	end := s.pos + len(keyword)
	if end > len(s.input) {
		return false
	}
	if !strings.EqualFold(s.input[s.pos:end], keyword) {
		return false
	}
	if end < len(s.input) && isWordChar(s.input[end]) {
		return false
	}
	s.pos = end
	return true
}

// scanIdentifier consumes a single-word identifier, optionally delimited
// by backticks or double quotes.
func (s *scanner) scanIdentifier() (string, bool) {
	quote := byte(0)
	if s.pos < len(s.input) && (s.input[s.pos] == '`' || s.input[s.pos] == '"') {
		quote = s.input[s.pos]
		s.pos++
	}

	start := s.pos
	for s.pos < len(s.input) && isWordChar(s.input[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	name := s.input[start:s.pos]

	if quote != 0 {
		if s.pos >= len(s.input) || s.input[s.pos] != quote {
			return "", false
		}
		s.pos++
	}

	return name, true
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.input) && isSpace(s.input[s.pos]) {
		s.pos++
	}
}

// skipRequiredSpace consumes at least one whitespace character.
func (s *scanner) skipRequiredSpace() bool {
	start := s.pos
	s.skipSpace()
	return s.pos > start
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
