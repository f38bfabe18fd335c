package agent

import (
	"fmt"
	"strings"
)

// ValidateArgs checks LLM-supplied arguments against a tool's schema
// before dispatch: required fields must be present, every supplied field
// must be declared, and values must match the declared primitive type
// (and enum, when one is declared). Returns nil when the arguments are
// acceptable.
func ValidateArgs(d ToolDescriptor, args map[string]interface{}) error {
	var problems []string

	for _, name := range d.InputSchema.Required {
		if _, ok := args[name]; !ok {
			problems = append(problems, fmt.Sprintf("missing required argument %q", name))
		}
	}

	for name, value := range args {
		prop, ok := d.InputSchema.Properties[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown argument %q", name))
			continue
		}
		if value == nil {
			continue
		}
		if err := checkType(name, prop, value); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid arguments for tool %q: %s", d.Name, strings.Join(problems, "; "))
	}
	return nil
}

func checkType(name string, prop Property, value interface{}) error {
	switch prop.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("argument %q must be a string", name)
		}
		if len(prop.Enum) > 0 && !containsString(prop.Enum, s) {
			return fmt.Errorf("argument %q must be one of [%s]", name, strings.Join(prop.Enum, ", "))
		}
	case "number", "integer":
		// JSON numbers decode as float64; the LLM clients hand them through as-is.
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			return fmt.Errorf("argument %q must be a number", name)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument %q must be a boolean", name)
		}
	case "array":
		if _, ok := value.([]interface{}); !ok {
			return fmt.Errorf("argument %q must be an array", name)
		}
	case "object":
		if _, ok := value.(map[string]interface{}); !ok {
			return fmt.Errorf("argument %q must be an object", name)
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
