// Package config loads the database connection settings the CLI passes to
// the core. Settings come from a TOML file, overridden by SCHEMASYNC_*
// environment variables, so credentials can stay out of the file entirely.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	mysqldriver "github.com/go-sql-driver/mysql"
)

// DefaultPath is where Load looks when no --config flag is given.
const DefaultPath = "schemasync.toml"

// Config holds everything needed to reach one database.
type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// Load reads the TOML file at path and applies environment overrides.
// A missing file is only an error when the environment does not provide a
// complete configuration on its own.
func Load(path string) (*Config, error) {
	cfg := &Config{Host: "127.0.0.1", Port: 3306}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: decode %q: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Database == "" {
		return nil, fmt.Errorf("config: no database configured; set it in %q or via SCHEMASYNC_DATABASE", path)
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config: no user configured; set it in %q or via SCHEMASYNC_USER", path)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SCHEMASYNC_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("SCHEMASYNC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("SCHEMASYNC_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("SCHEMASYNC_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("SCHEMASYNC_DATABASE"); v != "" {
		c.Database = v
	}
}

// DSN builds the go-sql-driver connection string.
func (c *Config) DSN() string {
	dc := mysqldriver.NewConfig()
	dc.Net = "tcp"
	dc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	dc.User = c.User
	dc.Passwd = c.Password
	dc.DBName = c.Database
	dc.ParseTime = true
	dc.Timeout = 10 * time.Second
	return dc.FormatDSN()
}
