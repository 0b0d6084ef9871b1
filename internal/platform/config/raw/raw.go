// Package raw reads the environment without logging, so the logger can bootstrap from it
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed view over the process environment
type Conf struct{ prefix string }

// New returns an unprefixed view
func New() Conf { return Conf{} }

// Prefix returns a child view, e.g. raw.New().Prefix("LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Lookup returns the qualified name of key and its trimmed value
func (c Conf) Lookup(key string) (name, value string) {
	name = c.prefix + key
	return name, strings.TrimSpace(os.Getenv(name))
}

// Get returns the value of key, or def when unset or blank
func (c Conf) Get(key, def string) string {
	if _, v := c.Lookup(key); v != "" {
		return v
	}
	return def
}

// GetBool accepts strconv bools plus "yes"; anything else is def
func (c Conf) GetBool(key string, def bool) bool {
	_, v := c.Lookup(key)
	if strings.EqualFold(v, "yes") {
		return true
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// GetInt returns a non-negative int, or def
func (c Conf) GetInt(key string, def int) int {
	_, v := c.Lookup(key)
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return n
	}
	return def
}
