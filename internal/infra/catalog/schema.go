package catalog

import (
	"encoding/json"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"slackmcp/internal/domain"
)

// InputSchema renders a descriptor's argument table as a JSON schema for MCP
// clients. The dispatcher re-validates independently; this is advisory.
func InputSchema(desc domain.Descriptor) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(desc.Args))
	var required []string
	for name, spec := range desc.Args {
		prop := &jsonschema.Schema{
			Type:        schemaType(spec.Type),
			Description: spec.Description,
		}
		if spec.Default != nil {
			if encoded, err := json.Marshal(spec.Default); err == nil {
				prop.Default = json.RawMessage(encoded)
			}
		}
		properties[name] = prop
		if spec.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           properties,
		Required:             required,
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

func schemaType(argType domain.ArgType) string {
	switch argType {
	case domain.ArgInteger:
		return "integer"
	case domain.ArgBoolean:
		return "boolean"
	default:
		return "string"
	}
}
