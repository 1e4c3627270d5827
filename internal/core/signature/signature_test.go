package signature

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_Deterministic(t *testing.T) {
	first := Compute("1:2", "cat-qa", "Button color is off-brand")
	for range 10 {
		assert.Equal(t, first, Compute("1:2", "cat-qa", "Button color is off-brand"))
	}
}

func TestCompute_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{16}$`)

	for _, sig := range []string{
		Compute("1:2", "cat-qa", "note"),
		Compute("", "", ""),
		Compute("9:9", "cat-a11y", "unicode ✓ body"),
	} {
		assert.True(t, pattern.MatchString(sig), "signature %q is not 16 hex digits", sig)
	}
}

func TestCompute_DiffersByField(t *testing.T) {
	base := Compute("1:2", "cat-qa", "note")

	assert.NotEqual(t, base, Compute("1:3", "cat-qa", "note"))
	assert.NotEqual(t, base, Compute("1:2", "cat-a11y", "note"))
	assert.NotEqual(t, base, Compute("1:2", "cat-qa", "other note"))
}

func TestCompute_SeparatorPreventsFieldBleed(t *testing.T) {
	// Concatenation without a separator would make these collide.
	assert.NotEqual(t, Compute("ab", "c", "d"), Compute("a", "bc", "d"))
	assert.NotEqual(t, Compute("a", "bc", "d"), Compute("a", "b", "cd"))
}

func TestCompute_EmptyFieldsAllowed(t *testing.T) {
	assert.NotPanics(t, func() { Compute("1:2", "", "") })
	assert.NotEqual(t, Compute("1:2", "", "x"), Compute("1:2", "x", ""))
}
