package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"authgate/internal/domain"
)

// SessionRepository registra tokens emitidos con fines informativos.
// Ningun camino de verificacion consulta esta tabla.
type SessionRepository interface {
	Create(ctx context.Context, record domain.SessionRecord) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PgSessionRepository implementa SessionRepository usando pgxpool.
type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, record domain.SessionRecord) error {
	const query = `
		INSERT INTO user_sessions (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.UserID,
		record.TokenHash,
		record.ExpiresAt,
		record.CreatedAt,
	)
	return err
}

func (r *PgSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
