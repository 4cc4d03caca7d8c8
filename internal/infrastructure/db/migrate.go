package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the minimal tables this app needs. No external
// migration tool; the schema is one table.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists device_tokens (
			token text primary key,
			platform text not null default 'android',
			created_at timestamptz not null default now()
		);`,
		`create index if not exists device_tokens_platform_idx on device_tokens(platform);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
