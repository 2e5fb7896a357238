package localstate

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

// NewPostgres stores entries in the local_state table.
func NewPostgres(pool *pgxpool.Pool, logger logrus.FieldLogger) Repository {
	return &postgresRepo{pool: pool, logger: componentLogger(logger, "postgres")}
}

func (r *postgresRepo) Get(ctx context.Context, session, name string) ([]byte, error) {
	const q = `
SELECT value::text
FROM local_state
WHERE session_id = $1 AND name = $2
`
	var value string
	if err := r.pool.QueryRow(ctx, q, session, name).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).WithFields(logrus.Fields{"session": session, "name": name}).Error("get entry failed")
		return nil, err
	}
	return []byte(value), nil
}

func (r *postgresRepo) Put(ctx context.Context, session, name string, value []byte) error {
	const q = `
INSERT INTO local_state (session_id, name, value, updated_at)
VALUES ($1, $2, $3::jsonb, now())
ON CONFLICT (session_id, name) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
`
	if _, err := r.pool.Exec(ctx, q, session, name, string(value)); err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{"session": session, "name": name}).Error("put entry failed")
		return err
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, session, name string) error {
	const q = `DELETE FROM local_state WHERE session_id = $1 AND name = $2`
	if _, err := r.pool.Exec(ctx, q, session, name); err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{"session": session, "name": name}).Error("delete entry failed")
		return err
	}
	return nil
}
