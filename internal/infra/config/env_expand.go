package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// expandConfigEnv replaces ${VAR} and ${VAR:-default} references in the
// config's string scalars before viper sees the document. Unset variables
// without a default expand to empty and are reported in the returned list.
func expandConfigEnv(raw []byte) (string, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return "", nil, fmt.Errorf("parse config: %w", err)
	}

	missing := make(map[string]struct{})
	expandNode(&root, missing)

	expanded, err := yaml.Marshal(&root)
	if err != nil {
		return "", nil, fmt.Errorf("encode expanded config: %w", err)
	}
	return string(expanded), missingList(missing), nil
}

func expandNode(node *yaml.Node, missing map[string]struct{}) {
	switch node.Kind {
	case yaml.ScalarNode:
		expandScalar(node, missing)
	case yaml.AliasNode:
		if node.Alias != nil {
			expandNode(node.Alias, missing)
		}
	default:
		for _, child := range node.Content {
			expandNode(child, missing)
		}
	}
}

func expandScalar(node *yaml.Node, missing map[string]struct{}) {
	if node.Tag != "" && node.Tag != "!!str" {
		return
	}
	if !strings.Contains(node.Value, "$") {
		return
	}

	expanded := expandRef(node.Value, missing)
	if expanded == node.Value {
		return
	}

	// Quoted scalars stay strings regardless of what the variable held.
	if node.Style != 0 {
		node.Tag = "!!str"
		node.Value = expanded
		return
	}

	tag, value := retagExpandedScalar(expanded)
	node.Tag = tag
	node.Value = value
}

// expandRef resolves one scalar's references. os.Expand hands over the
// full text between braces, so "VAR:-default" arrives as a single ref.
func expandRef(value string, missing map[string]struct{}) string {
	return os.Expand(value, func(ref string) string {
		name, fallback, hasFallback := strings.Cut(ref, ":-")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		if hasFallback {
			return fallback
		}
		missing[name] = struct{}{}
		return ""
	})
}

func missingList(missing map[string]struct{}) []string {
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// retagExpandedScalar restores the YAML type an unquoted substitution
// would have had if written literally. The config schema only holds
// strings, integers, and booleans.
func retagExpandedScalar(value string) (string, string) {
	trimmed := strings.TrimSpace(value)
	if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return "!!int", trimmed
	}
	if trimmed == "true" || trimmed == "false" {
		return "!!bool", trimmed
	}
	return "!!str", value
}
