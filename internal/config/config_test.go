package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Engine.Timeout != 1500*time.Millisecond {
		t.Errorf("timeout = %s, want 1.5s", cfg.Engine.Timeout)
	}
	if cfg.Engine.Transpiler != "esbuild" {
		t.Errorf("transpiler = %q", cfg.Engine.Transpiler)
	}
	if len(cfg.Engine.Bindings) != 6 {
		t.Errorf("bindings = %v", cfg.Engine.Bindings)
	}
	if len(cfg.Workspace.Folders) != 2 || !cfg.Storage.Enabled {
		t.Errorf("workspace/storage = %+v %+v", cfg.Workspace, cfg.Storage)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	data := `
engine:
  timeout: 3s
  transpiler: none
  bindings: [print]
log:
  format: json
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "8081")
	t.Setenv("PLAYGROUND_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Timeout != 3*time.Second || cfg.Engine.Transpiler != "none" {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if len(cfg.Engine.Bindings) != 1 || cfg.Engine.Bindings[0] != "print" {
		t.Errorf("bindings = %v", cfg.Engine.Bindings)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("port = %d, want 8081 from PORT", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	chdirTemp(t)
	base, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"timeout too long", func(c *Config) { c.Engine.Timeout = 2 * time.Minute }, "engine.timeout"},
		{"zero timeout", func(c *Config) { c.Engine.Timeout = 0 }, "engine.timeout"},
		{"unknown binding", func(c *Config) { c.Engine.Bindings = []string{"print", "require"} }, "require"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"no folders", func(c *Config) { c.Workspace.Folders = nil }, "workspace.folders"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"write timeout shorter than run", func(c *Config) {
			c.Server.WriteTimeout = 300 * time.Millisecond
			c.Engine.Timeout = time.Second
		}, "server.write_timeout"},
		{"write timeout equal to run budget", func(c *Config) {
			c.Server.WriteTimeout = 2 * time.Second
			c.Engine.Timeout = 1750 * time.Millisecond
			c.Engine.Grace = 250 * time.Millisecond
		}, "server.write_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestValidateWriteTimeout(t *testing.T) {
	chdirTemp(t)
	base, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		name  string
		write time.Duration
	}{
		{"disabled", 0},
		{"longer than run budget", 2 * time.Second},
	} {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			c.Engine.Timeout = time.Second
			c.Engine.Grace = 250 * time.Millisecond
			c.Server.WriteTimeout = tt.write
			if err := c.Validate(); err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
