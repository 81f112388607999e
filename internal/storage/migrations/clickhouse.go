package migrations

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ClickhouseExecer is satisfied by clickhouse driver.Conn.
type ClickhouseExecer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// databaseName restricts names interpolated into CREATE DATABASE.
var databaseName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EnsureClickhouseDatabase creates the database named in dsn using a
// connection that is not bound to it.
func EnsureClickhouseDatabase(ctx context.Context, admin ClickhouseExecer, dsn string) error {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return err
	}
	if err := admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+dbName); err != nil {
		return fmt.Errorf("create database %s: %w", dbName, err)
	}
	return nil
}

// RunClickhouseMigrations applies every embedded ClickHouse migration.
func RunClickhouseMigrations(ctx context.Context, conn ClickhouseExecer) error {
	migrations, err := Load("clickhouse")
	if err != nil {
		return err
	}
	for _, m := range migrations {
		for _, stmt := range m.Statements {
			if err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.Name, err)
			}
		}
	}
	return nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	if !databaseName.MatchString(db) {
		return "", fmt.Errorf("invalid clickhouse database name %q", db)
	}
	return db, nil
}
