package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection settings of the document store
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the configuration from the environment.
// A .env file in the working directory is loaded first if present.
//
// Variables: NERVAL_DB_HOST, NERVAL_DB_PORT, NERVAL_DB_DATABASE, NERVAL_DB_USERNAME,
// NERVAL_DB_PASSWORD, NERVAL_DB_SCHEMA and NERVAL_DB_SSLMODE.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	// Missing .env files are fine, the environment may already be set
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("NERVAL_DB_HOST"),
		Port:     os.Getenv("NERVAL_DB_PORT"),
		Database: os.Getenv("NERVAL_DB_DATABASE"),
		Username: os.Getenv("NERVAL_DB_USERNAME"),
		Password: os.Getenv("NERVAL_DB_PASSWORD"),
		Schema:   os.Getenv("NERVAL_DB_SCHEMA"),
		SSLMode:  os.Getenv("NERVAL_DB_SSLMODE"),
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	if err := config.Validate(); err != nil {
		return nil, NewError("database configuration", err)
	}
	return config, nil
}

// Validate checks that all required fields are set
func (c *DatabaseConfiguration) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.Port == "" {
		missing = append(missing, "port")
	}
	if c.Database == "" {
		missing = append(missing, "database")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing database settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN builds the postgres connection string
func (c *DatabaseConfiguration) DSN() string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   c.Database,
	}
	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	if c.Schema != "" {
		query.Set("search_path", c.Schema)
	}
	dsn.RawQuery = query.Encode()
	return dsn.String()
}

// Database wraps the sql connection with the logger used by all handlers
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens and pings a postgres connection
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if config == nil {
		return nil, NewError("database configuration", fmt.Errorf("configuration is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	instance, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, NewError("open database", err)
	}
	instance.SetMaxOpenConns(10)
	instance.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := instance.PingContext(ctx); err != nil {
		_ = instance.Close()
		return nil, NewError("ping database", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger.With(slog.String("database", name)),
	}, nil
}

// NewTestDatabase connects with a debug logger and panics on failure
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	db, err := NewDatabase("test", config, NewLogger(slog.LevelDebug))
	if err != nil {
		panic(err)
	}
	return db
}

// Close closes the underlying connection
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

// SetTestDatabaseConfigEnvs points the configuration at the test container
func SetTestDatabaseConfigEnvs(t *testing.T, dbPort string) {
	t.Setenv("NERVAL_DB_HOST", "localhost")
	t.Setenv("NERVAL_DB_PORT", dbPort)
	t.Setenv("NERVAL_DB_DATABASE", "database")
	t.Setenv("NERVAL_DB_USERNAME", "user")
	t.Setenv("NERVAL_DB_PASSWORD", "password")
	t.Setenv("NERVAL_DB_SCHEMA", "public")
	t.Setenv("NERVAL_DB_SSLMODE", "disable")
}
