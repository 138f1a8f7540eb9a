package slack

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"slackmcp/internal/domain"
)

// validateArgs checks args against the descriptor and returns the parameter
// map to send upstream, with defaults applied. All problems are reported in
// one pass so the agent can correct a call in a single step.
func validateArgs(desc domain.Descriptor, args map[string]any) (map[string]any, error) {
	var problems []string
	params := make(map[string]any, len(desc.Args))

	for name := range args {
		if _, known := desc.Args[name]; !known {
			problems = append(problems, fmt.Sprintf("unknown argument %q", name))
		}
	}

	for name, spec := range desc.Args {
		value, supplied := args[name]
		if !supplied {
			if spec.Required {
				problems = append(problems, fmt.Sprintf("missing required argument %q", name))
			} else if spec.Default != nil {
				params[name] = spec.Default
			}
			continue
		}
		coerced, err := coerce(name, spec.Type, value)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		params[name] = coerced
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, domain.E(domain.KindValidation, "dispatch.validate",
			fmt.Sprintf("%s: %s", desc.Name, strings.Join(problems, "; ")), nil)
	}
	return params, nil
}

// coerce enforces the declared type. JSON decoding hands integers over as
// float64, so integral floats are accepted for integer arguments.
func coerce(name string, argType domain.ArgType, value any) (any, error) {
	switch argType {
	case domain.ArgString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must be a string", name)
		}
		return s, nil
	case domain.ArgInteger:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return v, nil
		case float64:
			if math.Trunc(v) != v {
				return nil, fmt.Errorf("argument %q must be an integer", name)
			}
			return int64(v), nil
		default:
			return nil, fmt.Errorf("argument %q must be an integer", name)
		}
	case domain.ArgBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("argument %q must be a boolean", name)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("argument %q has unsupported type", name)
	}
}
