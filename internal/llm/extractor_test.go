package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	schema := ExtractionSchema{
		Name:        "Test",
		Description: "Describe the thing.",
		Fields: []SchemaField{
			{Name: "title", Type: `"string"`, Required: true},
			{Name: "tags", Type: `["string"]`, Description: "short labels"},
		},
	}

	prompt := BuildExtractionPrompt(schema, "Makerspace Lübeck")

	assert.Contains(t, prompt, "Describe the thing.")
	assert.Contains(t, prompt, `"title": "string" (required),`)
	assert.Contains(t, prompt, `"tags": ["string"] // short labels`)
	assert.Contains(t, prompt, "\"\"\"\nMakerspace Lübeck\n\"\"\"")
}

func TestWebSearchSchema(t *testing.T) {
	schema := WebSearchSchema(7)
	assert.Equal(t, "WebSearchResults", schema.Name)
	assert.Contains(t, schema.Description, "up to 7 organizations")
	assert.Len(t, schema.Fields, 1)
	assert.True(t, schema.Fields[0].Required)
}
