package agent

import "personal-assistant/pkg/llmprovider"

// ToolDescriptor describes one callable tool: its unique name, a
// description for the LLM, and the schema its arguments must satisfy.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"input_schema"`
	// Endpoint identifies the adapter that serves this tool.
	Endpoint string `json:"endpoint"`
}

// Schema is the subset of JSON Schema the tool catalog uses: a flat
// object with typed properties and a required list.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes one argument.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ObjectSchema builds an object schema from properties and a required list.
func ObjectSchema(props map[string]Property, required ...string) Schema {
	return Schema{Type: "object", Properties: props, Required: required}
}

// AsMap renders the schema in the generic JSON Schema shape LLM
// function-calling APIs expect.
func (s Schema) AsMap() map[string]interface{} {
	props := make(map[string]interface{}, len(s.Properties))
	for name, p := range s.Properties {
		prop := map[string]interface{}{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		props[name] = prop
	}

	out := map[string]interface{}{
		"type":       s.Type,
		"properties": props,
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

// FunctionDefinitions converts catalog descriptors to the LLM
// function-calling format.
func FunctionDefinitions(descriptors []ToolDescriptor) []llmprovider.Tool {
	tools := make([]llmprovider.Tool, 0, len(descriptors))
	for _, d := range descriptors {
		tools = append(tools, llmprovider.Tool{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.InputSchema.AsMap(),
		})
	}
	return tools
}
