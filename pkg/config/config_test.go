package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	src := `
canvas {
  width       = 960
  node_radius = 24
}
force {
  charge = -300
  seed   = 7
}
store {
  path       = "pos.db"
  reload_ttl = "1h"
}
log {
  level  = "debug"
  format = "json"
}
`
	cfg, err := Parse([]byte(src), "test.hcl")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	lo := cfg.Diagram.Layout
	if lo.Width != 960 || lo.Height != 500 {
		t.Errorf("Expected 960x500 canvas, got %vx%v", lo.Width, lo.Height)
	}
	if cfg.Diagram.NodeRadius != 24 {
		t.Errorf("Expected radius 24, got %v", cfg.Diagram.NodeRadius)
	}
	if lo.Charge != -300 || lo.Seed != 7 {
		t.Errorf("Expected charge -300 seed 7, got %v %v", lo.Charge, lo.Seed)
	}
	if lo.LinkDistance != 140 || lo.Friction != 0.9 {
		t.Errorf("Expected untouched force defaults, got %+v", lo)
	}
	if cfg.StorePath != "pos.db" || cfg.ReloadTTL != time.Hour {
		t.Errorf("Unexpected store settings %q %v", cfg.StorePath, cfg.ReloadTTL)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("Unexpected log settings %q %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestParseVariables(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMVIZ_TEST_LEVEL", "warn")

	src := `
store { path = "${config_dir}/pos.db" }
log   { level = env.TMVIZ_TEST_LEVEL }
`
	cfg, err := Parse([]byte(src), filepath.Join(dir, "tmviz.hcl"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if want := filepath.Join(dir, "pos.db"); cfg.StorePath != want {
		t.Errorf("Expected store path %q, got %q", want, cfg.StorePath)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected level from environment, got %q", cfg.LogLevel)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil, "empty.hcl")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		diags bool
	}{
		{"syntax", "canvas {", true},
		{"unknown block", "window {}\n", true},
		{"unknown attribute", "canvas {\n  depth = 3\n}\n", true},
		{"wrong type", "canvas {\n  width = \"wide\"\n}\n", true},
		{"bad duration", "store {\n  reload_ttl = \"soon\"\n}\n", false},
		{"bad level", "log {\n  level = \"loud\"\n}\n", false},
		{"zero height", "canvas {\n  height = 0\n}\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			if err == nil {
				t.Fatalf("Expected error")
			}
			if got := Diagnostics(err) != nil; got != tt.diags {
				t.Errorf("Expected diagnostics=%v, got %v (%v)", tt.diags, got, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.hcl"))
	if err != nil {
		t.Fatalf("Expected missing file to give defaults, got %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}

	path := filepath.Join(dir, "tmviz.hcl")
	if err := os.WriteFile(path, []byte("log {\n  level = \"warn\"\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPath, path)
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected level from $%s, got %q", EnvPath, cfg.LogLevel)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level, format string
		debug         bool
		prefix        string
	}{
		{"debug", "json", true, "{"},
		{"info", "text", false, "time="},
		{"bogus", "text", false, "time="},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(tt.level, tt.format, &buf)
			log.Debug("hidden?")
			log.Info("shown")

			out := buf.String()
			if got := strings.Contains(out, "hidden?"); got != tt.debug {
				t.Errorf("Expected debug output %v, got %v", tt.debug, got)
			}
			if !strings.HasPrefix(out, tt.prefix) {
				t.Errorf("Expected output to start with %q, got %q", tt.prefix, out)
			}
		})
	}
}
