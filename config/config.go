// Package config loads noteblock.yaml or noteblock.toml. Every field has a
// default, so a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jsphweid/noteblock/block"
	"github.com/jsphweid/noteblock/constants"
	"github.com/jsphweid/noteblock/generator"
)

type Config struct {
	Rows      int     `yaml:"rows" toml:"rows"`
	MinBPM    float64 `yaml:"min_bpm" toml:"min_bpm"`
	OutDir    string  `yaml:"out_dir" toml:"out_dir"`
	HistoryDB string  `yaml:"history_db" toml:"history_db"`
	Blocks    Blocks  `yaml:"blocks" toml:"blocks"`
	Serve     Serve   `yaml:"serve" toml:"serve"`
}

// Blocks names the wood used for each structural role.
type Blocks struct {
	Line   string `yaml:"line" toml:"line"`
	Wiring string `yaml:"wiring" toml:"wiring"`
	Slab   string `yaml:"slab" toml:"slab"`
}

type Serve struct {
	Addr           string   `yaml:"addr" toml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" toml:"max_body_bytes"`
}

func Defaults() Config {
	return Config{
		Rows:      16,
		MinBPM:    60,
		OutDir:    constants.GetOutDir(),
		HistoryDB: constants.GetHistoryPath(),
		Blocks: Blocks{
			Line:   "birch",
			Wiring: "dark_oak",
			Slab:   "upside_down_dark_oak",
		},
		Serve: Serve{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
	}
}

// Load reads path over the defaults, choosing the decoder by extension.
// NOTEBLOCK_OUT_DIR wins over the file.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		if err := decode(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if dir := constants.GetOutDir(); dir != "" {
		cfg.OutDir = dir
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(b), cfg); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: unsupported config format %q", path, filepath.Ext(path))
	}
	return nil
}

func (c *Config) Normalize() {
	c.OutDir = strings.TrimSpace(c.OutDir)
	c.HistoryDB = strings.TrimSpace(c.HistoryDB)
	c.Blocks.Line = strings.ToLower(strings.TrimSpace(c.Blocks.Line))
	c.Blocks.Wiring = strings.ToLower(strings.TrimSpace(c.Blocks.Wiring))
	c.Blocks.Slab = strings.ToLower(strings.TrimSpace(c.Blocks.Slab))
	c.Serve.Addr = strings.TrimSpace(c.Serve.Addr)
	origins := c.Serve.AllowedOrigins[:0]
	for _, o := range c.Serve.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Serve.AllowedOrigins = origins
}

func (c Config) Validate() error {
	if c.Rows < 1 {
		return fmt.Errorf("rows must be positive, got %d", c.Rows)
	}
	if c.MinBPM <= 0 {
		return fmt.Errorf("min_bpm must be positive, got %v", c.MinBPM)
	}
	if c.Serve.MaxBodyBytes <= 0 {
		return fmt.Errorf("serve.max_body_bytes must be positive, got %d", c.Serve.MaxBodyBytes)
	}
	if c.Rows%2 != 0 {
		return fmt.Errorf("rows must be even, got %d", c.Rows)
	}
	for _, role := range []struct {
		name       string
		wood       string
		upsideDown bool
	}{
		{"blocks.line", c.Blocks.Line, false},
		{"blocks.wiring", c.Blocks.Wiring, false},
		{"blocks.slab", c.Blocks.Slab, true},
	} {
		w, err := block.ParseWood(role.wood)
		if err != nil {
			return err
		}
		if w.UpsideDown() != role.upsideDown {
			if role.upsideDown {
				return fmt.Errorf("%s: %q is not an upside-down slab wood", role.name, role.wood)
			}
			return fmt.Errorf("%s: %q only exists as a slab", role.name, role.wood)
		}
	}
	return nil
}

// Options turns the block settings into generator options for one run.
func (c Config) Options(rows, interval int) (generator.Options, error) {
	line, err := block.ParseWood(c.Blocks.Line)
	if err != nil {
		return generator.Options{}, err
	}
	wiring, err := block.ParseWood(c.Blocks.Wiring)
	if err != nil {
		return generator.Options{}, err
	}
	slab, err := block.ParseWood(c.Blocks.Slab)
	if err != nil {
		return generator.Options{}, err
	}
	return generator.Options{
		Rows:        rows,
		Interval:    interval,
		LineBlock:   block.Plank(line),
		WiringBlock: block.Plank(wiring),
		WiringSlab:  block.Slab(slab),
	}, nil
}
