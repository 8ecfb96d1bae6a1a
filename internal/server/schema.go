package server

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed graph.schema.json
var graphSchemaJSON []byte

var graphSchema = mustLoadSchema(graphSchemaJSON)

func mustLoadSchema(b []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		panic(fmt.Sprintf("loading graph schema: %v", err))
	}
	return s
}

// validateGraphJSON checks a client-supplied roadmap graph against the
// embedded schema and joins every violation into one error.
func validateGraphJSON(raw []byte) error {
	res, err := graphSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("current_roadmap is not valid JSON: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("current_roadmap failed schema validation: %s", strings.Join(msgs, "; "))
}
