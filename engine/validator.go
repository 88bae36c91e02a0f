package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationResult is the outcome of statically checking one statement.
// Reason is populated iff Accepted is false.
type ValidationResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// allowedClauses are the read-only clause keywords a statement may start with.
var allowedClauses = []string{"select", "with", "show", "describe", "explain"}

// bannedKeywords are mutating keywords that reject a statement outright,
// checked in this fixed order; the first match is reported.
var bannedKeywords = []string{"drop", "delete", "insert", "update", "alter", "create", "truncate"}

var (
	allowedPrefixPattern = regexp.MustCompile(`^(?:` + strings.Join(allowedClauses, "|") + `)\b`)

	// Word-boundary matching, not substring containment: an identifier like
	// update_count must not trip the UPDATE ban.
	bannedKeywordPatterns = func() []*regexp.Regexp {
		patterns := make([]*regexp.Regexp, len(bannedKeywords))
		for i, kw := range bannedKeywords {
			patterns[i] = regexp.MustCompile(`\b` + kw + `\b`)
		}
		return patterns
	}()

	selectWordPattern = regexp.MustCompile(`\bselect\b`)
	fromWordPattern   = regexp.MustCompile(`\bfrom\b`)
)

// Validate runs the fixed-order static checks on one statement.
// This is a safety gate, not a parser: it deliberately over-rejects
// ambiguous syntax rather than attempting full SQL parsing, since a false
// rejection only costs the user an edit while unsafe execution is
// unrecoverable. First failing check wins.
func Validate(statement string) ValidationResult {
	trimmed := strings.TrimSpace(statement)
	if trimmed == "" {
		return reject("empty")
	}

	lower := strings.ToLower(trimmed)

	if !allowedPrefixPattern.MatchString(lower) {
		return reject(fmt.Sprintf("must start with an allowed clause: %s",
			strings.ToUpper(strings.Join(allowedClauses, ", "))))
	}

	// Keyword ban is independent of, and overrides, the prefix check:
	// "select 1; drop table x" fused into one statement still names DROP.
	for i, pattern := range bannedKeywordPatterns {
		if pattern.MatchString(lower) {
			return reject(fmt.Sprintf("forbidden keyword: %s", strings.ToUpper(bannedKeywords[i])))
		}
	}

	if strings.Count(trimmed, "(") != strings.Count(trimmed, ")") {
		return reject("unmatched parentheses")
	}

	selects := len(selectWordPattern.FindAllString(lower, -1))
	froms := len(fromWordPattern.FindAllString(lower, -1))
	if selects > froms && !strings.Contains(lower, "union") {
		return reject("missing FROM clause or syntax error")
	}

	return ValidationResult{Accepted: true}
}

func reject(reason string) ValidationResult {
	return ValidationResult{Accepted: false, Reason: reason}
}
