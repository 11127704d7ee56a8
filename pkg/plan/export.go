package plan

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ReplySchemaJSON reflects the translator reply contract into a JSON
// Schema document. The schema is embedded verbatim in the translation
// prompt and used to validate replies before a plan is built from them.
func ReplySchemaJSON() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Reply{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal reply schema: %w", err)
	}
	return data, nil
}
