// Package config loads tool settings from an HCL file.
//
// A config file has optional canvas, force, store and log blocks:
//
//	canvas {
//	  width       = 960
//	  height      = 600
//	  node_radius = 20
//	}
//	force {
//	  charge        = -500
//	  link_distance = 140
//	  seed          = 7
//	}
//	store {
//	  path       = "positions.db"
//	  reload_ttl = "24h"
//	}
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
//
// Omitted blocks and attributes keep their defaults. String values may
// refer to ${home}, ${config_dir} (the directory holding the file) and
// ${env.NAME}.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
	"github.com/Bubbleman532/turing-sandbox/pkg/store"
)

// EnvPath names the environment variable consulted when no path is given.
const EnvPath = "TMVIZ_CONFIG"

// Config is the resolved configuration.
type Config struct {
	Diagram   diagram.Options
	StorePath string
	ReloadTTL time.Duration
	LogLevel  string
	LogFormat string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Diagram: diagram.Options{
			NodeRadius: diagram.DefaultNodeRadius,
			Layout:     diagram.DefaultLayoutOptions(),
		},
		StorePath: "tmviz.db",
		ReloadTTL: store.DefaultReloadTTL,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// hclFile is the decoding schema of a config file.
type hclFile struct {
	Canvas *hclCanvas `hcl:"canvas,block"`
	Force  *hclForce  `hcl:"force,block"`
	Store  *hclStore  `hcl:"store,block"`
	Log    *hclLog    `hcl:"log,block"`
}

type hclCanvas struct {
	Width      *float64 `hcl:"width,optional"`
	Height     *float64 `hcl:"height,optional"`
	NodeRadius *float64 `hcl:"node_radius,optional"`
}

type hclForce struct {
	LinkDistance *float64 `hcl:"link_distance,optional"`
	LinkStrength *float64 `hcl:"link_strength,optional"`
	Charge       *float64 `hcl:"charge,optional"`
	Gravity      *float64 `hcl:"gravity,optional"`
	Theta        *float64 `hcl:"theta,optional"`
	Friction     *float64 `hcl:"friction,optional"`
	Seed         *int64   `hcl:"seed,optional"`
}

type hclStore struct {
	Path      *string `hcl:"path,optional"`
	ReloadTTL *string `hcl:"reload_ttl,optional"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// Load reads the config file at path. An empty path falls back to
// $TMVIZ_CONFIG; a missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes HCL source. filename is used in diagnostics.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, evalContext(filename), &parsed); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", filename, diags)
	}

	cfg := Default()
	if err := parsed.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// evalContext exposes the variables config values may interpolate.
func evalContext(filename string) *hcl.EvalContext {
	vars := make(map[string]cty.Value)

	home, _ := os.UserHomeDir()
	vars["home"] = cty.StringVal(home)

	dir := filepath.Dir(filename)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	vars["config_dir"] = cty.StringVal(dir)

	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = cty.StringVal(v)
		}
	}
	if len(env) > 0 {
		vars["env"] = cty.MapVal(env)
	} else {
		vars["env"] = cty.MapValEmpty(cty.String)
	}

	return &hcl.EvalContext{Variables: vars}
}

func (f *hclFile) apply(cfg *Config) error {
	if c := f.Canvas; c != nil {
		setFloat(&cfg.Diagram.Layout.Width, c.Width)
		setFloat(&cfg.Diagram.Layout.Height, c.Height)
		setFloat(&cfg.Diagram.NodeRadius, c.NodeRadius)
	}
	if fc := f.Force; fc != nil {
		lo := &cfg.Diagram.Layout
		setFloat(&lo.LinkDistance, fc.LinkDistance)
		setFloat(&lo.LinkStrength, fc.LinkStrength)
		setFloat(&lo.Charge, fc.Charge)
		setFloat(&lo.Gravity, fc.Gravity)
		setFloat(&lo.Theta, fc.Theta)
		setFloat(&lo.Friction, fc.Friction)
		if fc.Seed != nil {
			lo.Seed = *fc.Seed
		}
	}
	if s := f.Store; s != nil {
		if s.Path != nil {
			cfg.StorePath = *s.Path
		}
		if s.ReloadTTL != nil {
			ttl, err := time.ParseDuration(*s.ReloadTTL)
			if err != nil {
				return fmt.Errorf("store.reload_ttl: %w", err)
			}
			cfg.ReloadTTL = ttl
		}
	}
	if l := f.Log; l != nil {
		if l.Level != nil {
			switch *l.Level {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = *l.Level
			default:
				return fmt.Errorf("log.level: unknown level %q", *l.Level)
			}
		}
		if l.Format != nil {
			switch *l.Format {
			case "text", "json":
				cfg.LogFormat = *l.Format
			default:
				return fmt.Errorf("log.format: unknown format %q", *l.Format)
			}
		}
	}
	if cfg.Diagram.Layout.Width <= 0 || cfg.Diagram.Layout.Height <= 0 {
		return errors.New("canvas: width and height must be positive")
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Diagnostics unwraps HCL diagnostics from an error returned by Load or
// Parse, if any.
func Diagnostics(err error) hcl.Diagnostics {
	var diags hcl.Diagnostics
	if errors.As(err, &diags) {
		return diags
	}
	return nil
}
