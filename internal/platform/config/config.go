// Package config reads typed settings from the environment.
// Required keys panic through the root logger, invalid optional values warn and fall back
package config

import (
	"strconv"
	"strings"
	"time"

	"showroom/internal/platform/config/raw"
	"showroom/internal/platform/logger"
)

// Conf is a prefixed view over the environment, e.g. New().Prefix("CORE_").Prefix("BROWSE_")
type Conf struct{ env raw.Conf }

// New returns the unprefixed root view
func New() Conf { return Conf{env: raw.New()} }

// Prefix returns a child view scoped under p
func (c Conf) Prefix(p string) Conf { return Conf{env: c.env.Prefix(p)} }

// MustString returns the value of key and panics when it is unset or blank
func (c Conf) MustString(key string) string {
	name, v := c.env.Lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", name).Msg("missing required env")
	}
	return v
}

// MayString returns the value of key or def
func (c Conf) MayString(key, def string) string { return c.env.Get(key, def) }

// MayInt parses key as an int
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool parses key with strconv.ParseBool
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration parses key with time.ParseDuration, e.g. "90s"
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayEnum returns the allowed spelling matching key case-insensitively, or def when unset.
// A value outside allowed is a deployment error and panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	name, v := c.env.Lookup(key)
	if v == "" {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	logger.Get().Panic().Str("key", name).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return def
}

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	name, v := c.env.Lookup(key)
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		logger.Get().Warn().Err(err).Str("key", name).Str("value", v).Msg("invalid env value, using default")
		return def
	}
	return out
}
