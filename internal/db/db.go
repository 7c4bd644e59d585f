package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const pingTimeout = 5 * time.Second

func Init(driver, connection string) (*sqlx.DB, error) {
	// SQLite: create data directory if needed
	if driver == "sqlite" && !isMemory(connection) {
		dir := filepath.Dir(connection)
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(driver, sqliteDSN(driver, connection))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if driver == "sqlite" {
		// One writer. An in-memory database also only exists per connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	if !isMemory(connection) {
		// Recycling the only connection would drop an in-memory database.
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	slog.Info("database connected", "driver", driver)

	err = Ping(context.Background(), db)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Open connects and brings the schema up to date.
func Open(driver, connection string) (*sqlx.DB, error) {
	db, err := Init(driver, connection)
	if err != nil {
		return nil, err
	}

	err = RunMigrations(db.DB, driver)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Ping checks the connection with a bounded timeout.
func Ping(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

func isMemory(connection string) bool {
	return connection == ":memory:" || strings.Contains(connection, "mode=memory")
}

// sqliteDSN turns on foreign keys so verification records follow their goal.
func sqliteDSN(driver, connection string) string {
	if driver != "sqlite" || strings.Contains(connection, "foreign_keys") {
		return connection
	}
	sep := "?"
	if strings.Contains(connection, "?") {
		sep = "&"
	}
	return connection + sep + "_pragma=foreign_keys(1)"
}
