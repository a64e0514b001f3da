package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	num := GenerateOrderNumber()
	require.Regexp(t, regexp.MustCompile(`^ORD-\d{12}-[0-9A-F]{4}$`), num)
}

func TestGenerateOrderNumberDisambiguates(t *testing.T) {
	// numbers generated in the same second must still differ
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[GenerateOrderNumber()] = true
	}
	assert.Greater(t, len(seen), 1)
}
