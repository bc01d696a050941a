package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	EnvEndpoint    = "INVOICETERM_ENDPOINT"
	EnvDownloadDir = "INVOICETERM_DOWNLOAD_DIR"
	EnvLogFile     = "INVOICETERM_LOG_FILE"
	EnvLogLevel    = "LOG_LEVEL"

	DefaultEndpoint    = "http://localhost:8000"
	DefaultDownloadDir = "invoices"
	DefaultLogLevel    = "info"
)

type Config struct {
	Endpoint    string
	DownloadDir string
	ConfigDir   string
	Logger      LoggerConfig
}

type LoggerConfig struct {
	File  string
	Level string
}

// Load reads envFile, or when it is empty the first of ".env" in the
// working directory and in the config directory, then the process
// environment. Variables already set in the environment win over .env
// values. A missing or malformed envFile is an error.
func Load(envFile string) (*Config, error) {
	configDir, err := defaultConfigDir()
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else {
		for _, f := range []string{".env", filepath.Join(configDir, ".env")} {
			if err := godotenv.Load(f); err == nil {
				break
			}
		}
	}

	return &Config{
		Endpoint:    getEnv(EnvEndpoint, DefaultEndpoint),
		DownloadDir: getEnv(EnvDownloadDir, DefaultDownloadDir),
		ConfigDir:   configDir,
		Logger: LoggerConfig{
			File:  getEnv(EnvLogFile, filepath.Join(configDir, "invoiceterm.log")),
			Level: getEnv(EnvLogLevel, DefaultLogLevel),
		},
	}, nil
}

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "invoiceterm"), nil
}

// Overrides holds command-line values; empty fields leave the loaded value.
type Overrides struct {
	Endpoint    string
	DownloadDir string
	LogFile     string
	LogLevel    string
}

func (c *Config) Apply(o Overrides) {
	if o.Endpoint != "" {
		c.Endpoint = o.Endpoint
	}
	if o.DownloadDir != "" {
		c.DownloadDir = o.DownloadDir
	}
	if o.LogFile != "" {
		c.Logger.File = o.LogFile
	}
	if o.LogLevel != "" {
		c.Logger.Level = o.LogLevel
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
