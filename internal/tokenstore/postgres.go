package tokenstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV keeps values in the pos_kv table created by the persistence migrations.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// NewPostgresKV wraps a pool.
func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

func (p *PostgresKV) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	const query = `SELECT key, value FROM pos_kv WHERE key = ANY($1)`
	rows, err := p.pool.Query(ctx, query, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (p *PostgresKV) Set(ctx context.Context, values map[string]string) error {
	const query = `
        INSERT INTO pos_kv (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for k, v := range values {
			if _, err := tx.Exec(ctx, query, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *PostgresKV) Delete(ctx context.Context, keys ...string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM pos_kv WHERE key = ANY($1)`, keys)
	return err
}
