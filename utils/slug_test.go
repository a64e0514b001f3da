package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Summer Collection":        "summer-collection",
		"Men's T-Shirts":           "men-s-t-shirts",
		"  Trimmed  ":              "trimmed",
		"UPPER lower 123":          "upper-lower-123",
		"trailing punctuation!!!":  "trailing-punctuation",
		"--weird---input--":        "weird-input",
		"Kurta & Pyjama Set (New)": "kurta-pyjama-set-new",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}
