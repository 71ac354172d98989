// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based structured output.
// It provides a reusable way to describe the JSON object a prompt must return.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "WebSearchResults")
	Description string        // System prompt preamble describing the task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Only report pages that exist; never invent URLs.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// WebSearchSchema returns the schema for hosted web search answers.
func WebSearchSchema(maxResults int) ExtractionSchema {
	return ExtractionSchema{
		Name: "WebSearchResults",
		Description: fmt.Sprintf(`You are a web research assistant helping an event organizer find exhibitors.
Search the web for the query below and report up to %d organizations (maker spaces, FabLabs,
repair cafés, hackerspaces, clubs) with their own website. Prefer German-language sources.`, maxResults),
		Fields: []SchemaField{
			{
				Name:        "results",
				Type:        `[{"title": "string", "url": "string", "snippet": "string"}]`,
				Description: "One entry per organization page; snippet is one or two sentences from or about the page",
				Required:    true,
			},
		},
	}
}
