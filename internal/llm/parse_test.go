package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "raw object",
			in:   `{"complexity":{"time":"O(n)"}}`,
			want: map[string]any{"complexity": map[string]any{"time": "O(n)"}},
		},
		{
			name: "fenced json",
			in:   "Here you go:\n```json\n{\"a\": 1}\n```\nthanks",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "fenced without language",
			in:   "```\n{\"b\": true}\n```",
			want: map[string]any{"b": true},
		},
		{
			name: "padded object",
			in:   "  \n{\"c\": \"d\"}\n ",
			want: map[string]any{"c": "d"},
		},
		{
			name: "prose",
			in:   "I cannot help with that.",
			want: map[string]any{"raw": "I cannot help with that."},
		},
		{
			name: "broken fence",
			in:   "```json\n{oops}\n```",
			want: map[string]any{"raw": "```json\n{oops}\n```"},
		},
		{
			name: "array is not an object",
			in:   `[1,2]`,
			want: map[string]any{"raw": `[1,2]`},
		},
		{
			name: "null",
			in:   `null`,
			want: map[string]any{"raw": `null`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseJSON(tt.in))
		})
	}
}
