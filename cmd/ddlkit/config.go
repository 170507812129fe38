package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "DDLKIT"

// Config holds the settings shared by every subcommand. Values come from
// flags, then DDLKIT_* environment variables (optionally loaded from a .env
// file), then an optional config file, then defaults.
type Config struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"`
	Schema   string `mapstructure:"schema"`
	Dir      string `mapstructure:"dir"`
}

// addCommonFlags registers the flags every subcommand accepts.
func addCommonFlags(fs *pflag.FlagSet) {
	fs.String("schema", "", "TOML schema file")
	fs.String("driver", "", "database driver: mysql or sqlite3 (env DDLKIT_DRIVER)")
	fs.String("dsn", "", "data source name (env DDLKIT_DSN)")
	fs.String("log-level", "", "debug, info, warn or error (env DDLKIT_LOG_LEVEL)")
	fs.String("env-file", ".env", "dotenv file loaded into the environment when present")
	fs.String("config", "", "optional config file (toml, yaml or json)")
}

// loadConfig resolves the settings of a parsed flag set.
func loadConfig(fs *pflag.FlagSet) (Config, error) {
	envFile, _ := fs.GetString("env-file")
	if err := loadEnvFile(envFile, fs.Changed("env-file")); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("driver", "mysql")
	v.SetDefault("log_level", "info")
	v.SetDefault("dsn", "")
	v.SetDefault("schema", "")
	v.SetDefault("dir", "")

	for key, flag := range map[string]string{
		"driver":    "driver",
		"dsn":       "dsn",
		"log_level": "log-level",
		"schema":    "schema",
		"dir":       "dir",
	} {
		if f := fs.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, errors.Trace(err)
			}
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Annotatef(err, "config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Trace(err)
	}
	return cfg, nil
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is only an error when requested explicitly.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.Annotatef(err, "env file %s", path)
	}
	return errors.Annotatef(godotenv.Load(path), "env file %s", path)
}
