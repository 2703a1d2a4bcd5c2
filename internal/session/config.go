package session

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the session-scoped properties. HYBRID enables
// the relationalizer; it defaults to false.
type Config struct {
	Hybrid bool `yaml:"hybrid"`
}

// LoadConfig parses a YAML session-properties document. Unknown keys are
// rejected; an
// empty document yields the default configuration.
func LoadConfig(r io.Reader) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("session config: %w", err)
	}
	return c, nil
}

// Set assigns one property by name, the REPL-facing equivalent of
// LoadConfig. Property names are matched exactly against the two
// spellings in use (`HYBRID` in the wire surface, `hybrid` in YAML); any
// other spelling is an unknown property.
func (c *Config) Set(name, value string) error {
	switch name {
	case "HYBRID", "hybrid":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("session config: property %s wants a bool, got %q", name, value)
		}
		c.Hybrid = b
		return nil
	}
	return fmt.Errorf("session config: unknown property %q", name)
}
