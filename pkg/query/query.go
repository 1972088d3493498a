// Copyright (c) 2026 GalleManga. All rights reserved.

// Package query parses list-shaped values out of query strings and form fields.
package query

import (
	"strings"
)

// StringSlice parses a single comma-separated string into a trimmed slice of
// strings. Empty entries and case-insensitive duplicates are dropped, keeping
// the first spelling.
func StringSlice(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean == "" {
			continue
		}
		key := strings.ToLower(clean)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, clean)
	}
	return res
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally inside a pattern.
func EscapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
