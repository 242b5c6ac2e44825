package sqlitefunc

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	kitErrors "github.com/c0deZ3R0/go-lww-kit/errors"
	"github.com/c0deZ3R0/go-lww-kit/logging"
)

// DefaultDriverName is the database/sql driver name registered by Open when
// the config does not override it.
const DefaultDriverName = "sqlite3_keeplast"

// Config holds configuration options for opening a SQLite database with the
// keep_last functions installed on every connection.
type Config struct {
	// DriverName is the database/sql driver name to register.
	// Defaults to DefaultDriverName.
	DriverName string

	// DataSourceName is the connection string for the SQLite database.
	DataSourceName string

	// EnableWAL enables Write-Ahead Logging mode for better concurrency.
	// When true, automatically appends "?_journal_mode=WAL" to
	// DataSourceName.
	EnableWAL bool

	// Connection pool settings.
	// Defaults: MaxOpen=25, MaxIdle=5, Lifetime=1h, IdleTime=5m
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// setDefaults applies default values to the config
func (c *Config) setDefaults() {
	if c.DriverName == "" {
		c.DriverName = DefaultDriverName
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.EnableWAL {
		if !strings.Contains(c.DataSourceName, "_journal_mode=") {
			c.DataSourceName += "?_journal_mode=WAL"
		}
	}
}

// DefaultConfig returns a Config with production defaults for the given
// data source.
func DefaultConfig(dataSourceName string) *Config {
	config := &Config{
		DataSourceName: dataSourceName,
		EnableWAL:      true,
	}
	config.setDefaults()
	return config
}

var (
	driversMu sync.Mutex
	drivers   = map[string]bool{}
)

// RegisterDriver registers a database/sql driver under name whose
// connections all carry the keep_last functions. Calling it again with the
// same name is a no-op, but the name must not collide with a driver
// registered elsewhere in the process.
func RegisterDriver(name string) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if drivers[name] {
		return
	}
	sql.Register(name, &sqlite3.SQLiteDriver{
		ConnectHook: Register,
	})
	drivers[name] = true
}

// Open registers the configured driver and opens the database, applying
// pool settings and verifying connectivity.
func Open(config *Config) (*sql.DB, error) {
	if config == nil {
		return nil, kitErrors.NewValidationError(kitErrors.Op(opOpen), fmt.Errorf("config cannot be nil"))
	}
	config.setDefaults()
	if config.DataSourceName == "" {
		return nil, kitErrors.NewValidationError(kitErrors.Op(opOpen), fmt.Errorf("DataSourceName is required"))
	}

	logger := logging.WithComponent(logging.Component("sqlitefunc"))
	logger.Info("Opening SQLite database with keep_last functions",
		slog.String("driver", config.DriverName),
		slog.String("data_source", config.DataSourceName),
		slog.Bool("wal_enabled", config.EnableWAL),
	)

	RegisterDriver(config.DriverName)

	db, err := sql.Open(config.DriverName, config.DataSourceName)
	if err != nil {
		return nil, kitErrors.NewStorageError(kitErrors.Op(opOpen), err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, kitErrors.NewStorageError(kitErrors.Op(opOpen), err)
	}

	logger.Info("SQLite database ready",
		slog.Int("max_open_conns", config.MaxOpenConns),
		slog.Int("max_idle_conns", config.MaxIdleConns),
	)
	return db, nil
}
