package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected string
		wantErr  bool
	}{
		{
			name:     "plain object",
			response: `{"sql_query": "SELECT 1"}`,
			expected: `{"sql_query": "SELECT 1"}`,
		},
		{
			name:     "object in markdown fence",
			response: "Here you go:\n```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "think tags stripped",
			response: "<think>reasoning about movies</think>{\"a\": 1}",
			expected: `{"a": 1}`,
		},
		{
			name:     "nested object",
			response: `prefix {"outer": {"inner": [1, 2]}} suffix`,
			expected: `{"outer": {"inner": [1, 2]}}`,
		},
		{
			name:     "braces inside strings",
			response: `{"q": "WHERE name = '{{Person_name1}}'"}`,
			expected: `{"q": "WHERE name = '{{Person_name1}}'"}`,
		},
		{
			name:     "array",
			response: `noise [1, 2, 3] trailing`,
			expected: `[1, 2, 3]`,
		},
		{
			name:     "no json",
			response: "I cannot answer that.",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStripSQLFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sql fence",
			input:    "```sql\nSELECT * FROM movies\n```",
			expected: "SELECT * FROM movies",
		},
		{
			name:     "bare fence",
			input:    "```\nSELECT 1\n```",
			expected: "SELECT 1",
		},
		{
			name:     "no fence",
			input:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "escaped newlines",
			input:    `SELECT *\nFROM movies`,
			expected: "SELECT * FROM movies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripSQLFences(tt.input))
		})
	}
}
