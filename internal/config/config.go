package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/sandbox"
)

// MaxTimeout bounds engine.timeout.
const MaxTimeout = time.Minute

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type EngineConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	Grace          time.Duration `mapstructure:"grace"`
	MaxConcurrent  int           `mapstructure:"max_concurrent"`
	MaxOutputBytes int           `mapstructure:"max_output_bytes"`
	Transpiler     string        `mapstructure:"transpiler"`
	Bindings       []string      `mapstructure:"bindings"`
}

type WorkspaceConfig struct {
	Root    string   `mapstructure:"root"`
	Folders []string `mapstructure:"folders"`
}

type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

type LimitsConfig struct {
	GlobalRPS     float64 `mapstructure:"global_rps"`
	PerIPRPS      float64 `mapstructure:"per_ip_rps"`
	PerIPBurst    int     `mapstructure:"per_ip_burst"`
	MaxConcurrent int     `mapstructure:"max_concurrent"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Log       LogConfig       `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("engine.timeout", 1500*time.Millisecond)
	v.SetDefault("engine.grace", 250*time.Millisecond)
	v.SetDefault("engine.max_concurrent", 0)
	v.SetDefault("engine.max_output_bytes", 1<<20)
	v.SetDefault("engine.transpiler", "esbuild")
	v.SetDefault("engine.bindings", []string{"console", "print", "setTimeout", "clearTimeout", "setInterval", "clearInterval"})

	v.SetDefault("workspace.root", ".")
	v.SetDefault("workspace.folders", []string{"js", "ts"})

	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.db_path", filepath.Join(os.Getenv("HOME"), ".playground", "runs.db"))

	v.SetDefault("limits.global_rps", 100.0)
	v.SetDefault("limits.per_ip_rps", 10.0)
	v.SetDefault("limits.per_ip_burst", 20)
	v.SetDefault("limits.max_concurrent", 50)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration from path, or from playground.yaml in the working
// directory or $HOME/.playground when path is empty. A missing file is not an
// error when searching. Environment variables prefixed PLAYGROUND_ override
// file values; PORT is honoured for server.port.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("playground")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.playground")
	}

	v.SetEnvPrefix("PLAYGROUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "PLAYGROUND_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks bounds that the engine and server rely on. The write
// timeout must outlast the slowest run so its diagnostic can still be sent.
func (c *Config) Validate() error {
	if c.Engine.Timeout <= 0 || c.Engine.Timeout > MaxTimeout {
		return fmt.Errorf("engine.timeout must be in (0, %s], got %s", MaxTimeout, c.Engine.Timeout)
	}
	if c.Engine.Grace < 0 {
		return fmt.Errorf("engine.grace must not be negative, got %s", c.Engine.Grace)
	}
	if w := c.Server.WriteTimeout; w > 0 && w <= c.Engine.Timeout+c.Engine.Grace {
		return fmt.Errorf("server.write_timeout (%s) must exceed engine.timeout + engine.grace (%s)",
			w, c.Engine.Timeout+c.Engine.Grace)
	}
	if c.Engine.MaxConcurrent < 0 {
		return fmt.Errorf("engine.max_concurrent must not be negative, got %d", c.Engine.MaxConcurrent)
	}
	if c.Engine.MaxOutputBytes < 0 {
		return fmt.Errorf("engine.max_output_bytes must not be negative, got %d", c.Engine.MaxOutputBytes)
	}
	if err := sandbox.PolicyFromNames(c.Engine.Bindings, c.Engine.MaxOutputBytes).Validate(); err != nil {
		return fmt.Errorf("engine.bindings: %w", err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if len(c.Workspace.Folders) == 0 {
		return errors.New("workspace.folders must not be empty")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
