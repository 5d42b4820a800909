package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Typos within edit distance 2
		{"lst", "list"},
		{"lisst", "list"},
		{"mtch", "match"},
		{"macth", "match"},
		{"mpc", "mcp"},
		{"versio", "version"},
		{"hep", "help"},

		// Too far - no suggestion (distance > 2)
		{"xyz", ""},
		{"foobar", ""},
		{"listinglisting", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestCommand(tt.input))
		})
	}
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("list", "list"))
	assert.Equal(t, 1, editDistance("list", "lst"))
	assert.Equal(t, 4, editDistance("", "list"))
	assert.Equal(t, 2, editDistance("macth", "match"))
}
