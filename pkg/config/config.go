// Package config loads csg tool settings from TOML.
package config

import (
	"bytes"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Output formats understood by the CLI.
const (
	FormatJSON = "json"
	FormatOBJ  = "obj"
)

// Duration is a time.Duration written as a string such as "5s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Sphere struct {
	Slices int `toml:"slices"`
	Stacks int `toml:"stacks"`
}

type Cylinder struct {
	Slices int `toml:"slices"`
}

type SDF struct {
	Cells int `toml:"cells"`
}

type Output struct {
	Format string `toml:"format"`
}

// Config holds every tunable of the CLI.
type Config struct {
	Timeout  Duration `toml:"timeout"`
	Sphere   Sphere   `toml:"sphere"`
	Cylinder Cylinder `toml:"cylinder"`
	SDF      SDF      `toml:"sdf"`
	Output   Output   `toml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Timeout:  Duration{5 * time.Second},
		Sphere:   Sphere{Slices: 24, Stacks: 12},
		Cylinder: Cylinder{Slices: 32},
		SDF:      SDF{Cells: 64},
		Output:   Output{Format: FormatJSON},
	}
}

// Parse decodes TOML over the defaults, so a file only needs the keys it
// changes. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.Timeout.Duration <= 0:
		return errors.Errorf("timeout must be positive, got %s", c.Timeout)
	case c.Sphere.Slices < 3 || c.Sphere.Stacks < 2:
		return errors.Errorf("sphere needs at least 3 slices and 2 stacks, got %d and %d", c.Sphere.Slices, c.Sphere.Stacks)
	case c.Cylinder.Slices < 3:
		return errors.Errorf("cylinder needs at least 3 slices, got %d", c.Cylinder.Slices)
	case c.SDF.Cells < 4:
		return errors.Errorf("sdf cells must be at least 4, got %d", c.SDF.Cells)
	case c.Output.Format != FormatJSON && c.Output.Format != FormatOBJ:
		return errors.Errorf("output format must be %q or %q, got %q", FormatJSON, FormatOBJ, c.Output.Format)
	}
	return nil
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	b, err := toml.Marshal(c)
	return b, errors.Wrap(err, "encoding config")
}
