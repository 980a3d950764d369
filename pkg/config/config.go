package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/soundprediction/go-domainprompts/pkg/prompts"
)

// EnvPrefix prefixes every environment override, e.g. DOMAINPROMPTS_SERVER_PORT.
const EnvPrefix = "DOMAINPROMPTS"

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Prompt routing configuration
	Prompts PromptsConfig `mapstructure:"prompts"`

	// Render cache configuration
	Cache CacheConfig `mapstructure:"cache"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // color, text, json
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PromptsConfig controls how source descriptions map to template sets.
type PromptsConfig struct {
	// DefaultAliases keeps the built-in alias table underneath Aliases.
	DefaultAliases bool `mapstructure:"default_aliases"`
	// Aliases route a source description to another registered key.
	Aliases map[string]string `mapstructure:"aliases"`
	// Bindings register a source description to a built-in set name.
	Bindings map[string]string `mapstructure:"bindings"`
	// TemplatesDir holds extra YAML bundles, registered under their set name.
	TemplatesDir string `mapstructure:"templates_dir"`
}

// AliasTable returns the effective alias table.
func (p PromptsConfig) AliasTable() map[string]string {
	table := map[string]string{}
	if p.DefaultAliases {
		maps.Copy(table, prompts.DefaultAliases())
	}
	maps.Copy(table, p.Aliases)
	return table
}

// RegistryOptions converts the prompt settings into registry options.
// Bindings whose set name is listed in external are left out; those sets
// come from the templates directory rather than the built-ins.
func (p PromptsConfig) RegistryOptions(external ...string) []prompts.RegistryOption {
	opts := []prompts.RegistryOption{prompts.WithAliases(p.AliasTable())}
	for _, key := range slices.Sorted(maps.Keys(p.Bindings)) {
		if name := p.Bindings[key]; !slices.Contains(external, name) {
			opts = append(opts, prompts.WithBinding(key, name))
		}
	}
	return opts
}

// CacheConfig holds render cache configuration
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Path    string        `mapstructure:"path"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// Loader reads configuration from defaults, an optional file and the
// environment.
type Loader struct {
	v    *viper.Viper
	file string
	mu   sync.Mutex
}

// NewLoader creates a loader. An empty configFile searches for
// domainprompts.yaml in the working directory and $HOME/.domainprompts.
func NewLoader(configFile string) *Loader {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("domainprompts")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.domainprompts")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, file: configFile}
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	return NewLoader(configFile).Load()
}

// Load reads the config file, if any, and decodes the result. A missing
// file is only an error when it was named explicitly.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return l.decode()
}

// ConfigFileUsed returns the file the last Load read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) decode() (*Config, error) {
	config := &Config{}
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Watch calls onChange with the reloaded configuration whenever the config
// file changes. Load must have found a file first.
func (l *Loader) Watch(onChange func(*Config, error)) error {
	if l.v.ConfigFileUsed() == "" {
		return errors.New("no config file to watch")
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		l.mu.Lock()
		cfg, err := l.decode()
		l.mu.Unlock()
		onChange(cfg, err)
	})
	l.v.WatchConfig()
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode %q", c.Server.Mode)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	for from, to := range c.Prompts.Aliases {
		if from == to {
			return fmt.Errorf("alias %q points at itself", from)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "color")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	// Prompt defaults
	v.SetDefault("prompts.default_aliases", true)
	v.SetDefault("prompts.templates_dir", "")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.ttl", "1h")
}
