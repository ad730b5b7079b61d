package cli

import (
	"fmt"
	"strings"
)

// parseNameSet splits a comma-separated list into a normalized set.
func parseNameSet(raw string) map[string]struct{} {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	out := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		out[name] = struct{}{}
	}
	return out
}

// included reports whether name passes the only filter. A nil set includes everything.
func included(name string, only map[string]struct{}) bool {
	if only == nil {
		return true
	}
	_, ok := only[strings.ToLower(name)]
	return ok
}

// validateNames rejects set members that are not in allowed.
func validateNames(set map[string]struct{}, allowed ...string) error {
	for name := range set {
		known := false
		for _, a := range allowed {
			if strings.EqualFold(name, a) {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown section %q (expected one of %s)", name, strings.Join(allowed, ", "))
		}
	}
	return nil
}
