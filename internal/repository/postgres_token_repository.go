package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTokenRepository stores device tokens in Postgres so
// registrations survive restarts.
type PostgresTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTokenRepository(pool *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{pool: pool}
}

func (r *PostgresTokenRepository) RegisterToken(token, platform string, timestamp int64) error {
	_, err := r.pool.Exec(context.Background(), `
		insert into device_tokens(token, platform, created_at)
		values ($1, $2, $3)
		on conflict (token) do update set platform = excluded.platform
	`, token, platform, time.Unix(timestamp, 0))
	return err
}

func (r *PostgresTokenRepository) UnregisterToken(token string) error {
	_, err := r.pool.Exec(context.Background(), `delete from device_tokens where token = $1`, token)
	return err
}

func (r *PostgresTokenRepository) GetAllTokens() []string {
	rows, err := r.pool.Query(context.Background(), `select token from device_tokens`)
	if err != nil {
		return []string{}
	}
	defer rows.Close()

	tokens := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func (r *PostgresTokenRepository) GetTokenCount() int {
	var count int
	err := r.pool.QueryRow(context.Background(), `select count(*) from device_tokens`).Scan(&count)
	if err != nil {
		return 0
	}
	return count
}
