// Package config reads prefixed environment variables and optional YAML files
package config

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	perr "walletsync/internal/platform/errors"
	"walletsync/internal/platform/logger"

	"gopkg.in/yaml.v3"
)

// Conf is a prefixed view over the environment, e.g. New().Prefix("CONVERGE_")
type Conf struct{ prefix string }

// New returns an unprefixed view
func New() Conf { return Conf{} }

// Prefix returns a view whose keys start with p
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MayString returns the value of key or def
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// may parses key with parse, an unparsable value is logged and def is used
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Msg("invalid env value, using default")
		return def
	}
	return v
}

// MayInt returns key as an int or def
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool returns key as a bool or def
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration returns key as a duration such as 250ms or 2s, or def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits key on commas and drops blank items, def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayYAML decodes the YAML file named by key into out
// it reports false with no error when the key is unset, unknown fields are rejected
func (c Conf) MayYAML(key string, out any) (bool, error) {
	path := c.MayString(key, "")
	if path == "" {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "config: open %s=%s", c.key(key), path)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return false, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "config: decode %s", path)
	}
	return true, nil
}
