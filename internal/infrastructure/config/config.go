package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server   Server   `mapstructure:"server"`
	Security Security `mapstructure:"security"`
	Keystore Keystore `mapstructure:"keystore"`
}

// Server configuration
type Server struct {
	Port string `mapstructure:"port"`
}

// Security holds the request-integrity settings. HMACKeyEncoding is the
// protocol marker deciding how the pre-shared key is interpreted: "raw"
// uses the UTF-8 bytes as-is, "base64url" decodes the key first. Peers
// must agree on the marker or every signature mismatches.
type Security struct {
	HMACKey         string `mapstructure:"hmacKey"`
	HMACKeyEncoding string `mapstructure:"hmacKeyEncoding"`
}

// Keystore locates the validator key. JSON takes precedence over File
// when both are set; Passphrase unlocks the V3 keystore blob.
type Keystore struct {
	File       string `mapstructure:"file"`
	JSON       string `mapstructure:"json"`
	Passphrase string `mapstructure:"passphrase"`
}

// LoadConfig loads configuration from YAML file
// Uses CONFIG_ENV environment variable to determine which config file to load
func LoadConfig(configDir string) (*Config, error) {
	configEnv := os.Getenv("CONFIG_ENV")
	if configEnv == "" {
		configEnv = "local"
	}

	// Load base app-config.yaml as template/defaults (if it exists)
	baseConfigPath := fmt.Sprintf("%s/app-config.yaml", configDir)
	baseConfigExists := false
	if _, err := os.Stat(baseConfigPath); err == nil {
		viper.SetConfigFile(baseConfigPath)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read base config file: %w", err)
		}
		baseConfigExists = true
	}

	// Load environment-specific config (e.g., local.yaml when CONFIG_ENV=local)
	envConfigPath := fmt.Sprintf("%s/%s.yaml", configDir, configEnv)
	if _, err := os.Stat(envConfigPath); err == nil {
		if baseConfigExists {
			// Merge environment config on top of base config
			viper.SetConfigFile(envConfigPath)
			if err := viper.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to merge env config file: %w", err)
			}
		} else {
			// If no base config, load environment config directly
			viper.SetConfigFile(envConfigPath)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read env config file: %w", err)
			}
		}
	}
	// With neither file present the service still runs on defaults and
	// environment variables.

	// Also read from environment variables (with prefix)
	viper.SetEnvPrefix("BRIDGE")
	viper.AutomaticEnv()

	// Bind environment variables
	viper.BindEnv("server.port", "BRIDGE_SERVER_PORT", "PORT")
	viper.BindEnv("security.hmacKey", "BRIDGE_HMAC_KEY", "HMAC_KEY")
	viper.BindEnv("security.hmacKeyEncoding", "BRIDGE_HMAC_KEY_ENCODING")
	viper.BindEnv("keystore.file", "BRIDGE_KEYSTORE_FILE")
	viper.BindEnv("keystore.passphrase", "BRIDGE_KEYSTORE_PASSPHRASE")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Security.HMACKey == "" {
		cfg.Security.HMACKey = "default-hmac-key-change-in-production"
	}
	if cfg.Security.HMACKeyEncoding == "" {
		cfg.Security.HMACKeyEncoding = "raw"
	}

	return &cfg, nil
}
