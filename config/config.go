// Package config loads the TaskAPI settings.
//
// Values are resolved in this order, later sources winning:
// built-in defaults, the optional TOML file named by --config, environment
// variables (a .env file is loaded into the environment by main) and flags.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	StoreMemory = "memory"
	StoreMySQL  = "mysql"
)

// Config is the full runtime configuration of the service.
type Config struct {
	Port            string        `toml:"port"`
	Store           string        `toml:"store"`
	LogLevel        string        `toml:"log_level"`
	ShutdownTimeout time.Duration `toml:"-"`

	DB   DBConfig   `toml:"db"`
	Rate RateConfig `toml:"rate"`
	Auth AuthConfig `toml:"auth"`
}

type DBConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Address  string `toml:"address"`
	Name     string `toml:"name"`
}

// RateConfig configures the token bucket shared by every route.
type RateConfig struct {
	Limit float64 `toml:"limit"`
	Burst int     `toml:"burst"`
}

// AuthConfig enables bearer tokens when SecretKey is set.
type AuthConfig struct {
	SecretKey     string `toml:"secret_key"`
	AdminUsername string `toml:"admin_username"`
	AdminPassword string `toml:"admin_password"`
	UserUsername  string `toml:"user_username"`
	UserPassword  string `toml:"user_password"`
}

// Defaults returns the configuration used when nothing else is given.
func Defaults() Config {
	return Config{
		Port:            "8080",
		Store:           StoreMemory,
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		DB: DBConfig{
			Address: "127.0.0.1:3306",
			Name:    "taskdb",
		},
		Rate: RateConfig{
			Limit: 50,
			Burst: 100,
		},
	}
}

// Flags returns the command line flags, each bound to its environment variable.
func Flags() []cli.Flag {
	d := Defaults()
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to a TOML config file", EnvVars: []string{"TASKAPI_CONFIG"}},
		&cli.StringFlag{Name: "port", Value: d.Port, Usage: "HTTP listen port", EnvVars: []string{"PORT"}},
		&cli.StringFlag{Name: "store", Value: d.Store, Usage: "task store: memory or mysql", EnvVars: []string{"STORE"}},
		&cli.StringFlag{Name: "log-level", Value: d.LogLevel, Usage: "logrus level", EnvVars: []string{"LOG_LEVEL"}},
		&cli.StringFlag{Name: "db-username", Usage: "MySQL user", EnvVars: []string{"DB_USERNAME"}},
		&cli.StringFlag{Name: "db-password", Usage: "MySQL password", EnvVars: []string{"DB_PASSWORD"}},
		&cli.StringFlag{Name: "db-address", Value: d.DB.Address, Usage: "MySQL host:port", EnvVars: []string{"DB_ADDRESS"}},
		&cli.StringFlag{Name: "db-name", Value: d.DB.Name, Usage: "MySQL database", EnvVars: []string{"DB_NAME"}},
		&cli.Float64Flag{Name: "rate-limit", Value: d.Rate.Limit, Usage: "requests per second", EnvVars: []string{"RATE_LIMIT"}},
		&cli.IntFlag{Name: "rate-burst", Value: d.Rate.Burst, Usage: "request burst size", EnvVars: []string{"RATE_BURST"}},
		&cli.StringFlag{Name: "secret-key", Usage: "JWT signing key, empty disables auth", EnvVars: []string{"SECRET_KEY"}},
		&cli.StringFlag{Name: "admin-username", EnvVars: []string{"USER_USERNAME_ADMIN"}},
		&cli.StringFlag{Name: "admin-password", EnvVars: []string{"USER_PASSWORD_ADMIN"}},
		&cli.StringFlag{Name: "user-username", EnvVars: []string{"USER_USERNAME_NORMAL"}},
		&cli.StringFlag{Name: "user-password", EnvVars: []string{"USER_PASSWORD_NORMAL"}},
	}
}

// Load builds the Config for the running command.
func Load(c *cli.Context) (Config, error) {
	cfg := Defaults()

	if path := c.String("config"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	setString(c, "port", &cfg.Port)
	setString(c, "store", &cfg.Store)
	setString(c, "log-level", &cfg.LogLevel)
	setString(c, "db-username", &cfg.DB.Username)
	setString(c, "db-password", &cfg.DB.Password)
	setString(c, "db-address", &cfg.DB.Address)
	setString(c, "db-name", &cfg.DB.Name)
	setString(c, "secret-key", &cfg.Auth.SecretKey)
	setString(c, "admin-username", &cfg.Auth.AdminUsername)
	setString(c, "admin-password", &cfg.Auth.AdminPassword)
	setString(c, "user-username", &cfg.Auth.UserUsername)
	setString(c, "user-password", &cfg.Auth.UserPassword)
	if c.IsSet("rate-limit") {
		cfg.Rate.Limit = c.Float64("rate-limit")
	}
	if c.IsSet("rate-burst") {
		cfg.Rate.Burst = c.Int("rate-burst")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the service cannot start with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is not configured")
	}
	switch c.Store {
	case StoreMemory:
	case StoreMySQL:
		if c.DB.Username == "" || c.DB.Address == "" || c.DB.Name == "" {
			return fmt.Errorf("db.username, db.address and db.name are required for the mysql store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Rate.Limit <= 0 || c.Rate.Burst <= 0 {
		return fmt.Errorf("rate.limit and rate.burst must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Level returns the parsed log level; Validate has already rejected bad values.
func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func setString(c *cli.Context, name string, dst *string) {
	if c.IsSet(name) {
		*dst = c.String(name)
	}
}
