package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jcommit/jcommit/internal/pkg/ai"
	apperrors "github.com/jcommit/jcommit/internal/pkg/errors"
	"github.com/jcommit/jcommit/internal/pkg/security"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = ".jcommit.toml"
	// DefaultConfigFileExt is the default config file format.
	DefaultConfigFileExt = "toml"
)

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	v          *viper.Viper
	configPath string
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses the default path (~/.jcommit.toml).
func NewManager(configPath string) (*ViperManager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, DefaultConfigFileName)
	}

	v := newViper(configPath)

	// Defaults first, then env bindings for every key.
	setDefaults(v)
	bindEnvVars(v)

	return &ViperManager{
		v:          v,
		configPath: configPath,
	}, nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigType(DefaultConfigFileExt)
	v.SetConfigFile(configPath)
	return v
}

// bindEnvVars binds each key to its environment variables. The names are
// explicit because api_key also honours the conventional OPENAI_API_KEY.
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("api_endpoint", "JCOMMIT_API_ENDPOINT")
	_ = v.BindEnv("model", "JCOMMIT_MODEL")
	_ = v.BindEnv("api_key", "OPENAI_API_KEY", "JCOMMIT_API_KEY")
	_ = v.BindEnv("is_azure", "JCOMMIT_IS_AZURE")
	_ = v.BindEnv("api_version", "JCOMMIT_API_VERSION")
	_ = v.BindEnv("prompt", "JCOMMIT_PROMPT")

	_ = v.BindEnv("ui.color_enabled", "JCOMMIT_UI_COLOR_ENABLED")

	_ = v.BindEnv("history.enabled", "JCOMMIT_HISTORY_ENABLED")
	_ = v.BindEnv("history.max_entries", "JCOMMIT_HISTORY_MAX_ENTRIES")
	_ = v.BindEnv("history.file_path", "JCOMMIT_HISTORY_FILE_PATH")

	_ = v.BindEnv("security.notice_acknowledged", "JCOMMIT_SECURITY_NOTICE_ACKNOWLEDGED")
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_endpoint", ai.DefaultBaseURL)
	v.SetDefault("model", ai.DefaultModel)
	v.SetDefault("api_key", "")
	v.SetDefault("is_azure", false)
	v.SetDefault("api_version", "")
	v.SetDefault("prompt", "")

	v.SetDefault("ui.color_enabled", true)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.max_entries", 1000)
	homeDir, _ := os.UserHomeDir()
	v.SetDefault("history.file_path", filepath.Join(homeDir, ".jcommit", "history.json"))

	v.SetDefault("security.notice_acknowledged", false)
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// readConfig reads the file into m.v, treating a missing file as empty.
func (m *ViperManager) readConfig() error {
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return apperrors.NewInvalidConfigError(fmt.Sprintf("failed to read config file: %v", err))
	}
	return nil
}

// Load loads the configuration from file, environment, and defaults.
// Priority: flags > env > file > defaults
func (m *ViperManager) Load() (*Config, error) {
	if err := m.readConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("failed to unmarshal config: %v", err))
	}

	return &cfg, nil
}

// Init creates a new configuration file with default values.
// Sets file permissions to 0600 for security.
func (m *ViperManager) Init() error {
	if m.ConfigExists() {
		return fmt.Errorf("config file already exists at %s", m.configPath)
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Only defaults are written; values from the environment stay out of the file.
	fresh := newViper(m.configPath)
	setDefaults(fresh)
	if err := fresh.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Set sets a configuration value by key and writes it to the file.
// Supports nested keys using dot notation (e.g., "history.max_entries").
func (m *ViperManager) Set(key string, value string) error {
	key = strings.ToLower(key)
	if !m.isKnownKey(key) {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("unknown config key: %s", key))
	}

	convertedValue, err := convertValue(value, m.v.Get(key))
	if err != nil {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("failed to convert value for key %s: %v", key, err))
	}

	// Edit the file contents alone so env values are never persisted.
	file := newViper(m.configPath)
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	file.Set(key, convertedValue)

	if err := file.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	m.v.Set(key, convertedValue)
	return nil
}

func (m *ViperManager) isKnownKey(key string) bool {
	for _, k := range m.v.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// convertValue converts a string value to the appropriate type based on the existing value type.
func convertValue(value string, existingValue interface{}) (interface{}, error) {
	if existingValue == nil {
		return value, nil
	}

	switch existingValue.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int, int64:
		return strconv.ParseInt(value, 10, 64)
	case float32, float64:
		return strconv.ParseFloat(value, 64)
	default:
		return value, nil
	}
}

// Get retrieves a configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	if err := m.readConfig(); err != nil {
		return "", err
	}

	value := m.v.Get(key)
	if value == nil {
		return "", fmt.Errorf("key not found: %s", key)
	}

	return fmt.Sprintf("%v", value), nil
}

// List returns all configuration values as a map.
func (m *ViperManager) List() map[string]interface{} {
	// Fall back to defaults and env on unreadable files.
	_ = m.readConfig()

	return m.v.AllSettings()
}

// Keys returns every known configuration key in sorted order.
func (m *ViperManager) Keys() []string {
	keys := m.v.AllKeys()
	sort.Strings(keys)
	return keys
}

// SetOverride sets a temporary override for a configuration key.
// This is used for command-line flag overrides that shouldn't persist.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.v.Set(key, value)
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
func MaskAPIKey(key string) string {
	return security.MaskAPIKey(key)
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// AcknowledgeNotice records that the data notice has been shown. The
// config file is created if needed.
func (m *ViperManager) AcknowledgeNotice() error {
	return m.Set("security.notice_acknowledged", "true")
}

// IsNoticeAcknowledged reports whether the data notice has been shown.
func (m *ViperManager) IsNoticeAcknowledged() bool {
	_ = m.readConfig()
	return m.v.GetBool("security.notice_acknowledged")
}
