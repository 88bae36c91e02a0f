package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Empty(t *testing.T) {
	for _, stmt := range []string{"", "   ", "\n\t"} {
		vr := Validate(stmt)
		assert.False(t, vr.Accepted)
		assert.Equal(t, "empty", vr.Reason)
	}
}

func TestValidate_AllowedClauses(t *testing.T) {
	accepted := []string{
		"SELECT * FROM t",
		"select 1 from t",
		"  WITH cte AS (SELECT 1 FROM t) SELECT * FROM cte",
		"SHOW TABLES",
		"DESCRIBE t",
		"EXPLAIN SELECT * FROM t",
	}
	for _, stmt := range accepted {
		vr := Validate(stmt)
		assert.True(t, vr.Accepted, "expected accept: %q (reason: %s)", stmt, vr.Reason)
	}
}

func TestValidate_DisallowedPrefix(t *testing.T) {
	vr := Validate("GRANT ALL ON t TO user")
	assert.False(t, vr.Accepted)
	assert.Contains(t, vr.Reason, "must start with an allowed clause")
	// The message lists the allowed set
	for _, clause := range []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "EXPLAIN"} {
		assert.Contains(t, vr.Reason, clause)
	}
}

func TestValidate_KeywordPrecedence(t *testing.T) {
	// Starts with an allowed clause, but the keyword ban overrides
	vr := Validate("select 1; DROP TABLE x")
	assert.False(t, vr.Accepted)
	assert.Contains(t, vr.Reason, "DROP")
}

func TestValidate_BannedKeywords(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM t WHERE id IN (DELETE FROM u)": "DELETE",
		"WITH x AS (INSERT INTO t VALUES (1)) SELECT * FROM x": "INSERT",
		"SELECT * FROM t; UPDATE t SET a = 1":                  "UPDATE",
		"SELECT alter_me FROM ALTER TABLE t":                   "ALTER",
		"EXPLAIN CREATE TABLE t (a INT)":                       "CREATE",
		"SELECT truncate FROM t":                               "TRUNCATE",
	}
	for stmt, keyword := range cases {
		vr := Validate(stmt)
		assert.False(t, vr.Accepted, "expected reject: %q", stmt)
		assert.Contains(t, vr.Reason, keyword)
	}
}

func TestValidate_FirstBannedKeywordReported(t *testing.T) {
	// Keywords are checked in fixed order; drop precedes delete even when
	// delete appears first in the text
	vr := Validate("select 1 from t where a = 'x' and delete and drop")
	assert.False(t, vr.Accepted)
	assert.Contains(t, vr.Reason, "DROP", "drop is checked before delete")
}

func TestValidate_WordBoundaryNotSubstring(t *testing.T) {
	// Identifiers merely containing banned words are legitimate
	accepted := []string{
		"SELECT update_count FROM t",
		"SELECT created_at, updated_at FROM t",
		"SELECT dropped_frames FROM t",
		"SELECT inserted, altered FROM t",
	}
	for _, stmt := range accepted {
		vr := Validate(stmt)
		assert.True(t, vr.Accepted, "expected accept: %q (reason: %s)", stmt, vr.Reason)
	}
}

func TestValidate_UnmatchedParentheses(t *testing.T) {
	vr := Validate("SELECT COUNT(* FROM t")
	assert.False(t, vr.Accepted)
	assert.Equal(t, "unmatched parentheses", vr.Reason)

	assert.True(t, Validate("SELECT COUNT(*) FROM t").Accepted)
}

func TestValidate_FromHeuristic(t *testing.T) {
	// Equal select/from counts: accepted
	assert.True(t, Validate("SELECT a, (SELECT b FROM y) FROM t").Accepted)

	// More selects than froms without union: rejected
	vr := Validate("SELECT a, (SELECT b) FROM t")
	assert.False(t, vr.Accepted)
	assert.Equal(t, "missing FROM clause or syntax error", vr.Reason)

	// union suppresses the heuristic
	assert.True(t, Validate("SELECT 1 UNION SELECT 2 FROM t").Accepted)
}

func TestValidate_ChecksRunInOrder(t *testing.T) {
	// An empty statement never reports a keyword
	vr := Validate("   ")
	assert.Equal(t, "empty", vr.Reason)

	// Prefix failure reported before keyword ban
	vr = Validate("DROP TABLE x")
	assert.Contains(t, vr.Reason, "must start with an allowed clause")
}
