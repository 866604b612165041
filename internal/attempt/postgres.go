package attempt

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/errors"
)

const codeUniqueViolation = "23505"

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Exists(ctx context.Context, userID, windowID int64) (bool, error) {
	const stmt = `SELECT EXISTS (SELECT 1 FROM game_attempts WHERE user_id = $1 AND window_id = $2);`

	var ok bool
	err := s.db.QueryRow(ctx, stmt, userID, windowID).Scan(&ok)
	return ok, err
}

func (s *PostgresStore) Insert(ctx context.Context, a *domain.Attempt) error {
	const stmt = `
INSERT INTO game_attempts (user_id, window_id, score, completed_at)
VALUES ($1, $2, $3, $4)
RETURNING id;`

	err := s.db.QueryRow(ctx, stmt, a.UserID, a.WindowID, a.Score, a.CompletedAt).Scan(&a.ID)

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return errors.New(errors.CodeAlreadyExists, errors.WithCause(err))
	}

	return err
}

func (s *PostgresStore) Last(ctx context.Context, userID int64) (*domain.Attempt, error) {
	const stmt = `
SELECT id, user_id, window_id, score, completed_at
FROM game_attempts
WHERE user_id = $1
ORDER BY completed_at DESC, id DESC
LIMIT 1;`

	var a domain.Attempt
	err := s.db.QueryRow(ctx, stmt, userID).Scan(&a.ID, &a.UserID, &a.WindowID, &a.Score, &a.CompletedAt)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM game_attempts;`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
