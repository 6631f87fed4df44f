package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// IdentityConfig configures the external identity provider collaborator.
type IdentityConfig struct {
	Issuer      string   `yaml:"issuer" validate:"required"`
	SigningKey  string   `yaml:"signingKey" validate:"required"`
	AdminEmails []string `yaml:"adminEmails" validate:"required,min=1,dive,email"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string         `yaml:"databaseURL" validate:"required"`
	ListenAddr  string         `yaml:"listenAddr,omitempty"`
	Identity    IdentityConfig `yaml:"identity" validate:"required"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from volunteerhub.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads and validates the configuration with an environment suffix
// For example, env="test" will look for "volunteerhub.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// findConfigFile searches for volunteerhub.yaml in current directory and home directory
// If env is provided, it adds it as an extension (e.g., "volunteerhub.test.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := "volunteerhub.yaml"
	if env != "" {
		configFileName = "volunteerhub." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
