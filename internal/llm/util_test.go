package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple object",
			input:    `{"score": 0.8}`,
			expected: `{"score": 0.8}`,
		},
		{
			name:     "preamble and trailing text",
			input:    "Hier ist meine Bewertung:\n{\"score\": 0.8, \"accepted\": true}\nViel Erfolg!",
			expected: `{"score": 0.8, "accepted": true}`,
		},
		{
			name:     "nested objects",
			input:    `Output: {"outer": {"inner": "value"}}`,
			expected: `{"outer": {"inner": "value"}}`,
		},
		{
			name:     "string with braces inside",
			input:    `{"template": "Hello {name}!"}`,
			expected: `{"template": "Hello {name}!"}`,
		},
		{
			name:     "code fence",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "no object",
			input:    "not json",
			expected: "",
		},
		{
			name:     "closing before opening",
			input:    "} nothing {",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSONObject(tt.input))
		})
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewCohereClient(DefaultCohereConfig(), "")
	assert.Error(t, err)

	client, err := NewCohereClient(nil, "test-key")
	assert.NoError(t, err)
	assert.Equal(t, "command-r-plus-08-2024", client.GetModel(TierAdvanced))
	assert.NoError(t, client.Close())
}
