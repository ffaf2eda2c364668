package database

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLitePath = "data/slackattack.db"
)

// Config holds the conversation audit store settings. The store is off
// unless Enabled is set.
type Config struct {
	Enabled bool   `yaml:"enabled" envconfig:"DB_ENABLED"`
	Driver  string `yaml:"driver" envconfig:"DB_DRIVER"`
	// Path is the SQLite database file; ":memory:" keeps it in process.
	Path string `yaml:"path" envconfig:"DB_PATH"`

	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// DriverName returns the normalized driver, SQLite when unset.
func (c Config) DriverName() string {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

// Validate checks the settings the selected driver needs.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql", "pg":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Driver)
	}
	if c.DriverName() == DriverPostgres && (strings.TrimSpace(c.Host) == "" || strings.TrimSpace(c.Name) == "") {
		return fmt.Errorf("database.host and database.name are required for postgres")
	}
	return nil
}

func (c Config) sqlitePath() string {
	if p := strings.TrimSpace(c.Path); p != "" {
		return p
	}
	return defaultSQLitePath
}

func (c Config) sslMode() string {
	if c.SSLMode == "" {
		return "disable"
	}
	return c.SSLMode
}

func (c Config) port() string {
	if c.Port == "" {
		return "5432"
	}
	return c.Port
}

// PostgresDSN is the key/value connection string used by lib/pq.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		c.User, c.Password, c.Host, c.port(), c.Name, c.sslMode(),
	)
}

// MigrateURL is the URL form expected by golang-migrate.
func (c Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.port(),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.sslMode()}}.Encode(),
	}
	return u.String()
}

// SQLiteDSN adds the pragmas used for every SQLite connection.
func (c Config) SQLiteDSN() string {
	path := c.sqlitePath()
	if path == ":memory:" {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}
