package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/acpoke/acpoke-bridge/internal/biz/usecase"
)

// ConfigEnv names the env var holding the config file path
const ConfigEnv = "ACPOKE_CONFIG"

// Config represents application configuration
type Config struct {
	// Plugin metadata
	Plugin PluginConfig `yaml:"plugin"`

	// Poke pipeline configuration
	Poke PokeConfig `yaml:"poke"`

	// Messaging adapter endpoint
	Adapter AdapterConfig `yaml:"adapter"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// HTTP API configuration
	API APIConfig `yaml:"api"`

	// Source is the file the config was loaded from, empty for defaults only
	Source string `yaml:"-"`
}

// PluginConfig contains plugin metadata
type PluginConfig struct {
	Name        string `yaml:"name"`
	Enabled     bool   `yaml:"enabled"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// PokeConfig contains poke pipeline settings
type PokeConfig struct {
	CommandName       string   `yaml:"command_name"`
	CooldownSeconds   int      `yaml:"cooldown_seconds"`
	Debug             bool     `yaml:"debug"`
	Shapes            []string `yaml:"shapes"`
	SelfAliases       []string `yaml:"self_aliases"`
	CooldownOnFailure bool     `yaml:"cooldown_on_failure"`
}

// AdapterConfig contains the OneBot HTTP adapter endpoint
type AdapterConfig struct {
	Scheme         string `yaml:"scheme"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StorageConfig contains the SQLite location
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// APIConfig contains the HTTP API listen address
type APIConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns the built-in configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Plugin: PluginConfig{
			Name:        "poke_plugin",
			Enabled:     true,
			Version:     "1.0.0",
			Description: "QQ 戳一戳插件",
		},
		Poke: PokeConfig{
			CommandName:     usecase.DefaultCommandName,
			CooldownSeconds: 300,
			Shapes:          append([]string(nil), usecase.DefaultShapeOrder...),
			SelfAliases:     append([]string(nil), usecase.DefaultSelfAliases...),
		},
		Adapter: AdapterConfig{
			Scheme:         "http",
			Host:           "127.0.0.1",
			Port:           3000,
			TimeoutSeconds: 5,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(homeDir, ".acpoke", "acpoke.db"),
		},
		API: APIConfig{
			Listen: "127.0.0.1:8090",
		},
	}
}

// Load loads the defaults, overlays the YAML file, then overlays env vars.
// An empty path falls back to $ACPOKE_CONFIG, then to the usual locations.
// A missing file is not an error unless the path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(ConfigEnv)
		explicit = path != ""
	}

	paths := []string{path}
	if !explicit {
		paths = candidatePaths()
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if explicit {
				return nil, fmt.Errorf("failed to read config %s: %w", p, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", p, err)
		}
		cfg.Source = p
		break
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func candidatePaths() []string {
	paths := []string{
		"configs/acpoke.yaml",
		"acpoke.yaml",
		"/etc/acpoke/acpoke.yaml",
	}
	// Add path relative to executable
	if execPath, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "acpoke.yaml"))
	}
	return paths
}

// applyEnv overlays environment variables
func (c *Config) applyEnv() error {
	if val := os.Getenv("ADAPTER_HOST"); val != "" {
		c.Adapter.Host = val
	}
	if val := os.Getenv("ADAPTER_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return &ConfigError{Field: "ADAPTER_PORT", Message: "must be an integer"}
		}
		c.Adapter.Port = port
	}
	if val := os.Getenv("POKE_COOLDOWN_SECONDS"); val != "" {
		secs, err := strconv.Atoi(val)
		if err != nil {
			return &ConfigError{Field: "POKE_COOLDOWN_SECONDS", Message: "must be an integer"}
		}
		c.Poke.CooldownSeconds = secs
	}
	if val := os.Getenv("POKE_DEBUG"); val != "" {
		debug, err := strconv.ParseBool(val)
		if err != nil {
			return &ConfigError{Field: "POKE_DEBUG", Message: "must be a boolean"}
		}
		c.Poke.Debug = debug
	}
	if val := os.Getenv("POKE_COMMAND_NAME"); val != "" {
		c.Poke.CommandName = val
	}
	if val := os.Getenv("POKE_SHAPES"); val != "" {
		c.Poke.Shapes = splitList(val)
	}
	if val := os.Getenv("POKE_DB_PATH"); val != "" {
		c.Storage.DBPath = val
	}
	if val := os.Getenv("API_LISTEN"); val != "" {
		c.API.Listen = val
	}
	return nil
}

// fillDefaults fills in default values for empty fields
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Poke.CommandName == "" {
		c.Poke.CommandName = defaults.Poke.CommandName
	}
	if len(c.Poke.Shapes) == 0 {
		c.Poke.Shapes = defaults.Poke.Shapes
	}
	if len(c.Poke.SelfAliases) == 0 {
		c.Poke.SelfAliases = defaults.Poke.SelfAliases
	}
	if c.Adapter.Scheme == "" {
		c.Adapter.Scheme = defaults.Adapter.Scheme
	}
	if c.Adapter.TimeoutSeconds == 0 {
		c.Adapter.TimeoutSeconds = defaults.Adapter.TimeoutSeconds
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = defaults.Storage.DBPath
	}
	if c.API.Listen == "" {
		c.API.Listen = defaults.API.Listen
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Save writes the configuration as YAML
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// CooldownWindow returns the cooldown window
func (c *PokeConfig) CooldownWindow() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// Timeout returns the per-request adapter timeout
func (c *AdapterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ToPokeConfig converts to pipeline configuration
func (c *Config) ToPokeConfig() usecase.PokeConfig {
	return usecase.PokeConfig{
		Enabled:           c.Plugin.Enabled,
		Debug:             c.Poke.Debug,
		CooldownOnFailure: c.Poke.CooldownOnFailure,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Adapter.Host == "" {
		return &ConfigError{Field: "adapter.host", Message: "required"}
	}
	if c.Adapter.Port < 0 || c.Adapter.Port > 65535 {
		return &ConfigError{Field: "adapter.port", Message: "out of range"}
	}
	switch c.Adapter.Scheme {
	case "http", "https":
	default:
		return &ConfigError{Field: "adapter.scheme", Message: "must be http or https"}
	}
	if c.Adapter.TimeoutSeconds < 0 {
		return &ConfigError{Field: "adapter.timeout_seconds", Message: "must not be negative"}
	}
	if c.Poke.CooldownSeconds < 0 {
		return &ConfigError{Field: "poke.cooldown_seconds", Message: "must not be negative"}
	}
	if _, err := usecase.BuildShapes(c.Poke.Shapes, c.Poke.CommandName); err != nil {
		return &ConfigError{Field: "poke.shapes", Message: err.Error()}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
