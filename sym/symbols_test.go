package sym

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	assert.Equal(t, "database", Name(DB))
	assert.Equal(t, "execute", Name(RUN))
	assert.Equal(t, "history", Name(HX))
	assert.Equal(t, "", Name("not-a-glyph"))
}

func TestGlyphsAreDistinct(t *testing.T) {
	glyphs := []string{DB, RUN, SPLIT, CHECK, TPL, HX, INGEST, OK, FAIL}
	seen := make(map[string]bool, len(glyphs))
	for _, g := range glyphs {
		assert.False(t, seen[g], "duplicate glyph %q", g)
		seen[g] = true
	}
}
