package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/hupe1980/memquery/logging"
)

// Configuration keys.
const (
	keyLogLevel      = "log.level"
	keyLogFormat     = "log.format"
	keyStoreDriver   = "store.driver"
	keyStorePath     = "store.path"
	keyStoreSnapshot = "store.snapshot"
	keyStrict        = "resolver.strict"
)

// Store drivers.
const (
	driverMemory = "memory"
	driverSQLite = "sqlite"
)

const envPrefix = "MEMQUERY"

// Config is the resolved CLI configuration.
type Config struct {
	LogLevel      string
	LogFormat     string
	StoreDriver   string
	StorePath     string
	StoreSnapshot string
	Strict        bool
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyStoreDriver, driverMemory)
	v.SetDefault(keyStorePath, "memquery.db")
	v.SetDefault(keyStoreSnapshot, "")
	v.SetDefault(keyStrict, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadConfig reads the optional config file and resolves all keys.
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		LogLevel:      v.GetString(keyLogLevel),
		LogFormat:     v.GetString(keyLogFormat),
		StoreDriver:   strings.ToLower(v.GetString(keyStoreDriver)),
		StorePath:     v.GetString(keyStorePath),
		StoreSnapshot: v.GetString(keyStoreSnapshot),
		Strict:        v.GetBool(keyStrict),
	}

	switch cfg.StoreDriver {
	case driverMemory, driverSQLite:
	default:
		return nil, fmt.Errorf("unknown store driver %q (want %s or %s)", cfg.StoreDriver, driverMemory, driverSQLite)
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or text)", cfg.LogFormat)
	}

	return cfg, nil
}

func (c *Config) logger(out io.Writer) (*logging.QueryLogger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    c.LogFormat,
		Output:    out,
		Component: "cli",
	}), nil
}
