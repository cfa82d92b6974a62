package common

import (
	"fmt"
	"strings"
)

// GetUserFromArgs returns the "user" argument exactly as given. Names are
// identifiers, so surrounding whitespace is part of the name.
func GetUserFromArgs(args map[string]interface{}) (string, error) {
	return GetRequiredString(args, "user")
}

// GetRequiredString returns a non-empty string argument unchanged.
func GetRequiredString(args map[string]interface{}, name string) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", fmt.Errorf("%s is required", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	if s == "" {
		return "", fmt.Errorf("%s cannot be empty", name)
	}
	return s, nil
}

// GetOptionalString returns a trimmed string argument, or "" when absent.
// Use it for values such as date bounds, not for identifiers.
func GetOptionalString(args map[string]interface{}, name string) string {
	if s, ok := args[name].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// userFromArgs is the best-effort user for audit records.
func userFromArgs(args map[string]interface{}) string {
	s, _ := args["user"].(string)
	return s
}
