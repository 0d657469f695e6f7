// Package config provides configuration management for jcommit.
package config

import (
	"fmt"
	"net/url"

	"github.com/jcommit/jcommit/internal/pkg/ai"
	apperrors "github.com/jcommit/jcommit/internal/pkg/errors"
)

// Config represents the complete jcommit configuration. The top-level keys
// are flat so existing ~/.jcommit.toml files keep working.
type Config struct {
	APIEndpoint string `mapstructure:"api_endpoint"`
	Model       string `mapstructure:"model"`
	APIKey      string `mapstructure:"api_key"`
	IsAzure     bool   `mapstructure:"is_azure"`
	APIVersion  string `mapstructure:"api_version"`
	Prompt      string `mapstructure:"prompt"`

	UI       UIConfig       `mapstructure:"ui"`
	History  HistoryConfig  `mapstructure:"history"`
	Security SecurityConfig `mapstructure:"security"`
}

// UIConfig contains UI-related settings.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// HistoryConfig contains history-related settings.
type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	MaxEntries int    `mapstructure:"max_entries"`
	FilePath   string `mapstructure:"file_path"`
}

// SecurityConfig contains security-related settings.
type SecurityConfig struct {
	// NoticeAcknowledged is set once the user has seen the notice that
	// diffs are sent to the completion endpoint.
	NoticeAcknowledged bool `mapstructure:"notice_acknowledged"`
}

// Service returns the completion service configuration.
func (c *Config) Service() ai.ServiceConfig {
	return ai.ServiceConfig{
		BaseURL:      c.APIEndpoint,
		Model:        c.Model,
		APIKey:       c.APIKey,
		Flavor:       ai.FlavorFromAzure(c.IsAzure),
		APIVersion:   c.APIVersion,
		SystemPrompt: c.Prompt,
	}
}

// Validate checks the values that would otherwise only fail once a
// request is attempted.
func (c *Config) Validate() error {
	if c.APIEndpoint != "" {
		u, err := url.Parse(c.APIEndpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return apperrors.NewInvalidConfigError(
				fmt.Sprintf("api_endpoint %q is not an http(s) URL", c.APIEndpoint))
		}
	}
	if c.IsAzure && c.Model == "" {
		return apperrors.NewInvalidConfigError("model must name the Azure deployment when is_azure is set")
	}
	if c.History.Enabled && c.History.MaxEntries < 0 {
		return apperrors.NewInvalidConfigError("history.max_entries must not be negative")
	}
	return nil
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Config, error)
	Set(key string, value string) error
	Get(key string) (string, error)
	Init() error
	List() map[string]interface{}
	GetConfigPath() string
}
