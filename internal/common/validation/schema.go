// Package validation checks externally supplied configuration documents
// against JSON schemas before they reach the analysis core.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema constrains an external pattern-catalog file: two non-empty
// tag→pattern tables plus an optional email pattern override.
const catalogSchema = `{
  "type": "object",
  "required": ["intents", "products"],
  "additionalProperties": false,
  "properties": {
    "intents": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "products": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "email_pattern": {"type": "string", "minLength": 1}
  }
}`

// ValidateCatalogDocument validates a raw JSON catalog definition against
// the catalog schema. It returns a single error listing every violation.
func ValidateCatalogDocument(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(catalogSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("catalog validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid catalog document: %s", strings.Join(msgs, "; "))
}
