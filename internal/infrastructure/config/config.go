package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/vitals/pkg/domain/health"
)

// Config is the top-level vitals configuration.
type Config struct {
	Source   Source        `yaml:"source"`
	Analysis health.Config `yaml:"analysis"`
	Log      Log           `yaml:"log"`
	MCP      MCP           `yaml:"mcp"`
}

// Source selects and configures the record source.
type Source struct {
	Type    string        `yaml:"type"`
	File    File          `yaml:"file"`
	GitHub  GitHub        `yaml:"github"`
	Jira    Jira          `yaml:"jira"`
	Retry   Retry         `yaml:"retry"`
	Timeout time.Duration `yaml:"timeout"`
}

// File configures the snapshot file source.
type File struct {
	Path string `yaml:"path"`
}

// GitHub configures the GitHub issues source.
type GitHub struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// Jira configures the Jira source.
type Jira struct {
	BaseURL  string `yaml:"base_url"`
	Email    string `yaml:"email"`
	APIToken string `yaml:"api_token"`
}

// Retry configures retries of data-source reads.
type Retry struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MCP configures the MCP server.
type MCP struct {
	Transport string `yaml:"transport"`
	Addr      string `yaml:"addr"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from cfgFile (or the default locations), applies
// VITALS_* environment overrides and validates the result.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("source.type", SourceFile)
	v.SetDefault("source.file.path", DefaultSnapshotPath)
	v.SetDefault("source.github.token", "")
	v.SetDefault("source.github.base_url", "")
	v.SetDefault("source.jira.base_url", "")
	v.SetDefault("source.jira.email", "")
	v.SetDefault("source.jira.api_token", "")
	v.SetDefault("source.retry.max_attempts", DefaultRetry.MaxAttempts)
	v.SetDefault("source.retry.initial_delay", DefaultRetry.InitialDelay)
	v.SetDefault("source.timeout", DefaultSourceTimeout)
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("log.format", DefaultLog.Format)
	v.SetDefault("mcp.transport", DefaultMCP.Transport)
	v.SetDefault("mcp.addr", DefaultMCP.Addr)
	if err := setAnalysisDefaults(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("source.github.token", EnvPrefix+"_SOURCE_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = v.BindEnv("source.jira.api_token", EnvPrefix+"_SOURCE_JIRA_API_TOKEN", "JIRA_API_TOKEN")

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}

	// Missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Source.File.Path = expandPath(cfg.Source.File.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setAnalysisDefaults registers every key of health.DefaultConfig under
// "analysis." so file and env values overlay individual thresholds.
func setAnalysisDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(health.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode analysis defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("failed to decode analysis defaults: %w", err)
	}
	setDefaults(v, "analysis", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := prefix + "." + k
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Validate checks the source selection and the analysis settings.
func (c *Config) Validate() error {
	switch c.Source.Type {
	case SourceFile:
		if c.Source.File.Path == "" {
			return fmt.Errorf("source.file.path is required for the file source")
		}
	case SourceGitHub:
	case SourceJira:
		if c.Source.Jira.BaseURL == "" {
			return fmt.Errorf("source.jira.base_url is required for the jira source")
		}
	default:
		return fmt.Errorf("unknown source type %q (expected file, github or jira)", c.Source.Type)
	}
	if c.Source.Retry.MaxAttempts < 1 {
		return fmt.Errorf("source.retry.max_attempts must be at least 1")
	}
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (expected text or json)", c.Log.Format)
	}
	return nil
}

// Redacted returns a copy safe to print, with credentials masked.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "****"
	}
	c.Source.GitHub.Token = mask(c.Source.GitHub.Token)
	c.Source.Jira.APIToken = mask(c.Source.Jira.APIToken)
	return c
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
