package executor

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ErrResponseSchemaInvalid is returned by validateResponseSchema when a
// TOOL/REST node's response body does not conform to its configured
// response_schema.
var ErrResponseSchemaInvalid = fmt.Errorf("executor: REST node response failed schema validation")

// validateResponseSchema checks body against a JSON Schema object, grounded
// on the teacher's SchemaValidatorExecutor (originally a standalone node
// type) generalized into a REST-response-validation step: this project has
// no generic SchemaValidator node, so xeipuuv/gojsonschema is wired here
// instead, where a node family actually produces a body worth validating.
func validateResponseSchema(schema map[string]interface{}, body []byte) error {
	if schema == nil {
		return nil
	}
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("invalid response schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("response schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	descriptions := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		descriptions = append(descriptions, e.String())
	}
	return fmt.Errorf("%w: %v", ErrResponseSchemaInvalid, descriptions)
}
