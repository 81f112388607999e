package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresExecer is satisfied by *pgxpool.Pool and *postgres.Pool.
type PostgresExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// RunPostgresMigrations applies every embedded PostgreSQL migration.
func RunPostgresMigrations(ctx context.Context, db PostgresExecer) error {
	migrations, err := Load("postgres")
	if err != nil {
		return err
	}
	for _, m := range migrations {
		for _, stmt := range m.Statements {
			if _, err := db.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.Name, err)
			}
		}
	}
	return nil
}
