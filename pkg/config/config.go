// Package config loads service configuration from an optional YAML file and
// environment variables. Every setting has a default; file values override
// defaults and environment variables override the file. The two settings an
// operator usually cares about are SERVER_PORT (default 5555) and
// DATABASE_FILE_PATH (default ./data/hondana.sqlite).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	Environment               string        `koanf:"environment"`
	ImageDir                  string        `koanf:"image_dir"`
	ImageMaxBytes             int64         `koanf:"image_max_bytes"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
}

const configFileENV = "CONFIG_FILE"

func New() (*Config, error) {
	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseFilePath:          "./data/hondana.sqlite",
		DatabaseMaxRetries:        5,
		Environment:               "development",
		ImageDir:                  "./data/images",
		ImageMaxBytes:             5 << 20,
		ServerPort:                5555,
	}

	k := koanf.New(".")

	configFilePath := os.Getenv(configFileENV)
	if configFilePath == "" {
		configFilePath = "./config.yaml"
	}
	if _, err := os.Stat(configFilePath); err == nil {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "failed to load config file")
		}
	}

	err := k.Load(env.Provider("", ".", strings.ToLower), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return cfg, nil
}

// NewForTest returns a Config with test-friendly values: an in-memory
// database and no connect-retry delays. Tests override paths as needed.
func NewForTest() *Config {
	return &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 1,
		DatabaseConnectRetryDelay: 0,
		DatabaseFilePath:          ":memory:",
		DatabaseMaxRetries:        5,
		Environment:               "test",
		ImageMaxBytes:             5 << 20,
	}
}
