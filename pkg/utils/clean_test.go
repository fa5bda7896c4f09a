package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "# Header\n\nSome text",
			expected: "# Header\n\nSome text",
		},
		{
			name:     "wrapped with language hint",
			input:    "```markdown\n# Header\n\nSome text\n```",
			expected: "# Header\n\nSome text",
		},
		{
			name:     "wrapped without language hint",
			input:    "```\n# Header\n```",
			expected: "# Header",
		},
		{
			name:     "inner code block preserved",
			input:    "Look:\n```go\nfmt.Println(\"hi\")\n```\nDone",
			expected: "Look:\n```go\nfmt.Println(\"hi\")\n```\nDone",
		},
		{
			name:     "wrapped response with inner code block",
			input:    "```markdown\nLook:\n```go\ncode\n```\n```",
			expected: "Look:\n```go\ncode\n```",
		},
		{
			name:     "lone fence",
			input:    "```",
			expected: "```",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}
