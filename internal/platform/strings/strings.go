// Package strings holds the few string guards module wiring and repos share
package strings

import std "strings"

// MustString returns s when it has non blank content, otherwise it panics naming what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes a mount path like /browse or /meta to one leading
// slash and no trailing slash. A root or empty path panics
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// SQLNull maps blank text to a NULL query argument
func SQLNull(s string) any {
	if std.TrimSpace(s) == "" {
		return nil
	}
	return s
}
