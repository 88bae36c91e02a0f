package engine

import "strings"

// Split breaks a free-form text blob into individual statements, honoring
// quoted-literal boundaries. A semicolon inside a single- or double-quoted
// string never terminates a statement; a quote immediately preceded by a
// backslash does not open or close a literal. Single linear pass, no
// backtracking.
//
// Empty fragments (after trimming) are dropped. A trailing fragment with
// no terminating semicolon is kept.
func Split(raw string) []string {
	var statements []string
	var current strings.Builder

	inQuotes := false
	var quoteChar rune
	var prev rune

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			statements = append(statements, s)
		}
		current.Reset()
	}

	for _, r := range raw {
		switch {
		case (r == '"' || r == '\'') && prev != '\\':
			if !inQuotes {
				inQuotes = true
				quoteChar = r
			} else if r == quoteChar {
				inQuotes = false
			}
			current.WriteRune(r)
		case r == ';' && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
		prev = r
	}
	flush()

	return statements
}
