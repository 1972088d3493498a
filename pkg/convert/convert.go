// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package convert provides quick type-conversion utilities for form and query values.

The lenient helpers (ToBool, ToIntD) swallow parse failures. Use ToInt64 when a
malformed value must be reported back to the client instead of read as zero.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToIntD converts a string to an int, returning the provided default if parsing fails or string is empty.
func ToIntD(str string, def int) int {
	if str == "" {
		return def
	}

	if v, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
		return v
	}

	return def
}

// ToInt64 parses a base-10 integer. The boolean is false for empty or malformed input.
func ToInt64(str string) (int64, bool) {
	str = strings.TrimSpace(str)
	if str == "" {
		return 0, false
	}

	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ToBool parses a boolean string ("true", "1", "on", "false", "0").
// It returns false on empty string or parse error.
func ToBool(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	// HTML checkboxes submit "on"
	if strings.EqualFold(s, "on") {
		return true
	}

	v, _ := strconv.ParseBool(s)
	return v
}
