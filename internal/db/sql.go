package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/jmehdipour/paynotify/internal/config"
)

const (
	DriverMySQL      = "mysql"
	DriverClickHouse = "clickhouse"
)

// NewMySQL opens the notification store.
func NewMySQL(c config.DatabaseConfig) (*sqlx.DB, error) {
	return open(DriverMySQL, c, 5*time.Second)
}

// NewClickHouse opens the reporting store,
// e.g. clickhouse://default:@localhost:9000/paynotify?dial_timeout=5s&compress=true
func NewClickHouse(c config.DatabaseConfig) (*sqlx.DB, error) {
	return open(DriverClickHouse, c, 3*time.Second)
}

func open(driver string, c config.DatabaseConfig, defaultPing time.Duration) (*sqlx.DB, error) {
	if c.DSN == "" {
		return nil, fmt.Errorf("empty %s DSN", driver)
	}
	db, err := sqlx.Open(driver, c.DSN)
	if err != nil {
		return nil, err
	}

	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	if c.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(c.ConnMaxIdleTime)
	}

	timeout := c.PingTimeout
	if timeout <= 0 {
		timeout = defaultPing
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}
