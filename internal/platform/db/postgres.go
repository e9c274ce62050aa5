package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Database wraps the gorm handle shared by the repositories of one process.
type Database struct {
	DB     *gorm.DB
	Driver string
}

// Dialector resolves the gorm dialector for a configured driver name.
func Dialector(driver string, dsn string) (gorm.Dialector, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database dsn is required")
	}
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// Connect opens the database and verifies it answers a ping.
func Connect(ctx context.Context, driver string, dsn string) (*Database, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm %s: %w", dialector.Name(), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve %s sql db handle: %w", dialector.Name(), err)
	}
	if dialector.Name() == DriverSQLite {
		// one writer connection keeps in-memory databases shared and avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", dialector.Name(), err)
	}
	return &Database{DB: db, Driver: dialector.Name()}, nil
}

// ConnectWithRetry keeps calling Connect every delay until it succeeds or ctx
// is cancelled.
func ConnectWithRetry(ctx context.Context, driver string, dsn string, delay time.Duration, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = time.Second
	}
	for attempt := 1; ; attempt++ {
		database, err := Connect(ctx, driver, dsn)
		if err == nil {
			logger.Info("database connected",
				"event", "db_connected",
				"module", "internal/platform/db",
				"layer", "platform",
				"driver", database.Driver,
				"attempts", attempt,
			)
			return database, nil
		}
		logger.Warn("waiting for database connection",
			"event", "db_connect_retry",
			"module", "internal/platform/db",
			"layer", "platform",
			"attempt", attempt,
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Ping issues a trivial statement so idle connections are not reaped.
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.WithContext(ctx).Exec("SELECT 1").Error
}

func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
