package attempt

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/errors"
	"github.com/victornm/tutormate/internal/storage"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Exists(ctx context.Context, userID, windowID int64) (bool, error) {
	const stmt = `SELECT EXISTS (SELECT 1 FROM game_attempts WHERE user_id = ? AND window_id = ?);`

	var ok bool
	err := s.db.QueryRowContext(ctx, stmt, userID, windowID).Scan(&ok)
	return ok, err
}

// Insert relies on the unique index: a conflicting row leaves nothing
// inserted, which is reported as already exists.
func (s *SQLiteStore) Insert(ctx context.Context, a *domain.Attempt) error {
	const stmt = `
INSERT INTO game_attempts (user_id, window_id, score, completed_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, window_id) DO NOTHING;`

	res, err := s.db.ExecContext(ctx, stmt, a.UserID, a.WindowID, a.Score.String(), storage.FormatTime(a.CompletedAt))
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New(errors.CodeAlreadyExists)
	}

	a.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) Last(ctx context.Context, userID int64) (*domain.Attempt, error) {
	const stmt = `
SELECT id, user_id, window_id, score, completed_at
FROM game_attempts
WHERE user_id = ?
ORDER BY completed_at DESC, id DESC
LIMIT 1;`

	var (
		a           domain.Attempt
		score, done string
	)
	err := s.db.QueryRowContext(ctx, stmt, userID).Scan(&a.ID, &a.UserID, &a.WindowID, &score, &done)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if a.Score, err = decimal.NewFromString(score); err != nil {
		return nil, fmt.Errorf("parse score: %w", err)
	}
	if a.CompletedAt, err = storage.ParseTime(done); err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}

	return &a, nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM game_attempts;`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
