// Package config loads the server's behaviour-affecting options (spec §6.3)
// from an optional TOML file plus environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config mirrors spec §6.3, organised by concern.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Namespace NamespaceConfig `toml:"namespace"`
	Tools     ToolsConfig     `toml:"tools"`
	Security  SecurityConfig  `toml:"security"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	DataPath       string `toml:"data_path"`
	EmbeddingModel string `toml:"embedding_model"`
}

type NamespaceConfig struct {
	Default    string `toml:"default"`
	AutoCreate bool   `toml:"auto_create"`
}

// ToolsConfig holds per-tool deadlines in seconds (spec §5). The map is not
// read from the config file; it comes from the defaults and the
// JIVE_TOOL_TIMEOUT_* environment overrides.
type ToolsConfig struct {
	TimeoutSeconds map[string]int `toml:"-"`
}

type SecurityConfig struct {
	CORSOrigins        []string `toml:"cors_origins"`
	RateLimitPerSecond float64  `toml:"rate_limit_per_second"`
	RateLimitBurst     int      `toml:"rate_limit_burst"`
}

// defaultToolTimeouts mirrors spec §5's defaults.
func defaultToolTimeouts() map[string]int {
	return map[string]int{
		"jive_execute_work_item":  300,
		"jive_sync_data":          120,
		"jive_search_content":     30,
		"jive_track_progress":     90,
		"jive_manage_work_item":   60,
		"jive_get_work_item":      30,
		"jive_get_hierarchy":      60,
		"jive_reorder_work_items": 30,
	}
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8090,
			LogLevel: "INFO",
		},
		Database: DatabaseConfig{
			DataPath:       "./jive-data",
			EmbeddingModel: "local-hash-384",
		},
		Namespace: NamespaceConfig{
			Default:    "default",
			AutoCreate: true,
		},
		Tools: ToolsConfig{TimeoutSeconds: defaultToolTimeouts()},
		Security: SecurityConfig{
			CORSOrigins:        []string{"*"},
			RateLimitPerSecond: 10,
			RateLimitBurst:     20,
		},
	}
}

// Load reads an optional TOML file at path (ignored if it doesn't exist),
// then applies JIVE_-prefixed environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
			if cfg.Tools.TimeoutSeconds == nil {
				cfg.Tools.TimeoutSeconds = defaultToolTimeouts()
			}
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JIVE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("JIVE_SERVER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("JIVE_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("JIVE_DATA_PATH"); v != "" {
		cfg.Database.DataPath = v
	}
	if v := os.Getenv("JIVE_EMBEDDING_MODEL"); v != "" {
		cfg.Database.EmbeddingModel = v
	}
	if v := os.Getenv("JIVE_NAMESPACE_DEFAULT"); v != "" {
		cfg.Namespace.Default = v
	}
	if v := os.Getenv("JIVE_NAMESPACE_AUTO_CREATE"); v != "" {
		cfg.Namespace.AutoCreate = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("JIVE_CORS_ORIGINS"); v != "" {
		cfg.Security.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("JIVE_RATE_LIMIT_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Security.RateLimitPerSecond = f
		}
	}
	if v := os.Getenv("JIVE_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.RateLimitBurst = n
		}
	}
	for tool := range cfg.Tools.TimeoutSeconds {
		envKey := "JIVE_TOOL_TIMEOUT_" + strings.ToUpper(strings.TrimPrefix(tool, "jive_"))
		if v := os.Getenv(envKey); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.Tools.TimeoutSeconds[tool] = n
			}
		}
	}
}

// NamespaceRoot returns the isolated storage root for a namespace label
// (spec §6.4): the default namespace lives at data_path's root, every other
// namespace at data_path/namespaces/<name>/.
func (c *Config) NamespaceRoot(namespace string) string {
	if namespace == "" || namespace == c.Namespace.Default {
		return c.Database.DataPath
	}
	return filepath.Join(c.Database.DataPath, "namespaces", namespace)
}

// ToolTimeout returns the configured timeout for a tool, falling back to 30s.
func (c *Config) ToolTimeout(tool string) int {
	if s, ok := c.Tools.TimeoutSeconds[tool]; ok {
		return s
	}
	return 30
}
