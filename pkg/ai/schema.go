package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const outlineSchema = `{
  "type": "object",
  "required": ["modules"],
  "properties": {
    "modules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["module_title", "lessons"],
        "properties": {
          "module_title": {"type": "string", "minLength": 1},
          "lessons": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["title", "summary"],
              "properties": {
                "title": {"type": "string", "minLength": 1},
                "summary": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

const helpSchema = `{
  "type": "object",
  "required": ["answer"],
  "properties": {
    "answer": {"type": "string", "minLength": 1},
    "sources": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	outlineValidator = jsonschema.MustCompileString("outline.schema.json", outlineSchema)
	helpValidator    = jsonschema.MustCompileString("help.schema.json", helpSchema)
)

// decodeValidated checks content against the schema and then decodes it into target.
func decodeValidated(schema *jsonschema.Schema, content string, target interface{}) error {
	content = stripCodeFence(content)

	var document interface{}
	if err := json.Unmarshal([]byte(content), &document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := json.Unmarshal([]byte(content), target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// stripCodeFence removes a markdown code fence some models wrap around JSON despite the response format.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
