package review

import "google.golang.org/genai"

// The response schema is declared twice on purpose: once in the Gemini
// request (native schema-constrained generation) and once as a JSON Schema
// document used to validate every reply after parsing, whatever the
// provider. Both describe the same contract; keep them in sync.

// responseContract is the versioned JSON Schema for the model's reply.
const responseContract = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "summary": {"type": "string", "minLength": 1},
    "scores": {
      "type": "object",
      "properties": {
        "logic": {"type": "number"},
        "content": {"type": "number"},
        "structure": {"type": "number"},
        "feasibility": {"type": "number"},
        "scientific": {"type": "number"}
      },
      "required": ["logic", "content", "structure", "feasibility", "scientific"]
    },
    "comments": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "original_text_context": {"type": "string", "minLength": 1},
          "critique": {"type": "string", "minLength": 1},
          "suggestion": {"type": "string", "minLength": 1},
          "severity": {"type": "string", "enum": ["critical", "minor", "good"]}
        },
        "required": ["original_text_context", "critique", "suggestion", "severity"]
      }
    }
  },
  "required": ["summary", "scores", "comments"]
}`

// responseSchema builds the Gemini declaration of the same contract.
func responseSchema() *genai.Schema {
	scoreField := func(name string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: "Score 0-100 for " + name}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeString,
				Description: "A comprehensive executive summary of the review, addressing the student directly.",
			},
			"scores": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"logic":       scoreField("logic"),
					"content":     scoreField("content"),
					"structure":   scoreField("structure"),
					"feasibility": scoreField("feasibility"),
					"scientific":  scoreField("scientific"),
				},
				Required: []string{"logic", "content", "structure", "feasibility", "scientific"},
			},
			"comments": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"original_text_context": {
							Type:        genai.TypeString,
							Description: "The specific sentence or paragraph being critiqued.",
						},
						"critique": {
							Type:        genai.TypeString,
							Description: "What is wrong or needs attention.",
						},
						"suggestion": {
							Type:        genai.TypeString,
							Description: "Specific instruction on how to fix it.",
						},
						"severity": {
							Type: genai.TypeString,
							Enum: []string{"critical", "minor", "good"},
						},
					},
					Required: []string{"original_text_context", "critique", "suggestion", "severity"},
				},
			},
		},
		Required: []string{"summary", "scores", "comments"},
	}
}
