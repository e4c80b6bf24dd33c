package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

const appName = "stusearch"

type Config struct {
	StorageDir    string              `toml:"storage_dir" env:"STUSEARCH_STORAGE_DIR"`
	History       bool                `toml:"history" env:"STUSEARCH_HISTORY"`
	Backend       BackendConfig       `toml:"backend"`
	Web           WebConfig           `toml:"web"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type BackendConfig struct {
	BaseURL             string   `toml:"base_url" env:"STUSEARCH_BACKEND_URL" validate:"required,url"`
	Timeout             Duration `toml:"timeout" validate:"gte=0"`
	FenceStaleResponses bool     `toml:"fence_stale_responses" env:"STUSEARCH_FENCE_STALE"`
}

type WebConfig struct {
	Host       string   `toml:"host" env:"STUSEARCH_WEB_HOST" validate:"required"`
	Port       int      `toml:"port" env:"STUSEARCH_WEB_PORT" validate:"min=1,max=65535"`
	SessionTTL Duration `toml:"session_ttl" validate:"gt=0"`
}

type NotificationsConfig struct {
	Lifetime Duration `toml:"lifetime" validate:"gt=0"`
	Exit     Duration `toml:"exit" validate:"gte=0"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// durationEnv carries duration overrides; cleanenv parses time.Duration
// natively but walks into struct fields such as Duration.
type durationEnv struct {
	BackendTimeout time.Duration `env:"STUSEARCH_BACKEND_TIMEOUT"`
	SessionTTL     time.Duration `env:"STUSEARCH_SESSION_TTL"`
}

func applyEnv(cfg *Config) error {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return err
	}
	var de durationEnv
	if err := cleanenv.ReadEnv(&de); err != nil {
		return err
	}
	if _, ok := os.LookupEnv("STUSEARCH_BACKEND_TIMEOUT"); ok {
		cfg.Backend.Timeout = Duration{de.BackendTimeout}
	}
	if _, ok := os.LookupEnv("STUSEARCH_SESSION_TTL"); ok {
		cfg.Web.SessionTTL = Duration{de.SessionTTL}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Compare wrapped durations by their nanosecond value.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if d, ok := v.Interface().(Duration); ok {
			return int64(d.Duration)
		}
		return nil
	}, Duration{})
}

func defaults() Config {
	return Config{
		History: true,
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000/api",
		},
		Web: WebConfig{
			Host:       "localhost",
			Port:       8080,
			SessionTTL: Duration{12 * time.Hour},
		},
		Notifications: NotificationsConfig{
			Lifetime: Duration{3 * time.Second},
			Exit:     Duration{300 * time.Millisecond},
		},
	}
}

func GetDefaultConfig() (*Config, error) {
	cfg := defaults()
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	cfg.StorageDir = storageDir
	return &cfg, nil
}

// LoadConfig reads configPath (defaults when it does not exist), applies
// STUSEARCH_* environment overrides and validates the result.
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshaling config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		cfg.StorageDir = storageDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the web listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// HistoryPath is the search history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.StorageDir, "history.db")
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the commented sample config.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template := configTemplate
	if c.StorageDir != "" {
		template = strings.Replace(template, "/home/user/.local/share/stusearch", c.StorageDir, 1)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

// GetDefaultStorageDir returns $XDG_DATA_HOME/stusearch, creating it.
func GetDefaultStorageDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/stusearch, creating it.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
