package mastery

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/storage"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore expects a handle from storage.OpenSQLite; its single
// connection serializes the read-modify-write transactions.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Modify(ctx context.Context, studentID, conceptID string, fn func(m *domain.ConceptMastery)) (_ *domain.ConceptMastery, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = stderrors.Join(err, tx.Rollback())
		}
	}()

	const (
		insStmt = `
INSERT INTO concept_mastery (student_id, concept_id, last_practiced)
VALUES (?, ?, ?)
ON CONFLICT (student_id, concept_id) DO NOTHING;`

		selStmt = `
SELECT mastery_score, last_practiced, last_mistake, history
FROM concept_mastery
WHERE student_id = ? AND concept_id = ?;`

		updStmt = `
UPDATE concept_mastery
SET mastery_score = ?, last_practiced = ?, last_mistake = ?, history = ?
WHERE student_id = ? AND concept_id = ?;`
	)

	if _, err = tx.ExecContext(ctx, insStmt, studentID, conceptID, storage.FormatTime(time.Now())); err != nil {
		return nil, fmt.Errorf("insert mastery: %w", err)
	}

	m := domain.ConceptMastery{StudentID: studentID, ConceptID: conceptID}
	var (
		score, practiced, hist string
		mistake                sql.NullString
	)
	err = tx.QueryRowContext(ctx, selStmt, studentID, conceptID).Scan(&score, &practiced, &mistake, &hist)
	if err != nil {
		return nil, fmt.Errorf("select mastery: %w", err)
	}
	if m.Score, err = decimal.NewFromString(score); err != nil {
		return nil, fmt.Errorf("parse score: %w", err)
	}
	if m.LastPracticed, err = storage.ParseTime(practiced); err != nil {
		return nil, fmt.Errorf("parse last_practiced: %w", err)
	}
	if mistake.Valid {
		m.LastMistake = &mistake.String
	}
	if err = json.Unmarshal([]byte(hist), &m.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	fn(&m)

	b, err := json.Marshal(m.History)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}

	var lastMistake sql.NullString
	if m.LastMistake != nil {
		lastMistake = sql.NullString{String: *m.LastMistake, Valid: true}
	}

	_, err = tx.ExecContext(ctx, updStmt, m.Score.String(), storage.FormatTime(m.LastPracticed), lastMistake, string(b), studentID, conceptID)
	if err != nil {
		return nil, fmt.Errorf("update mastery: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &m, nil
}

func (s *SQLiteStore) List(ctx context.Context, studentID string) ([]domain.ConceptStatus, error) {
	const stmt = `
SELECT concept_id, mastery_score, last_practiced
FROM concept_mastery
WHERE student_id = ?;`

	rows, err := s.db.QueryContext(ctx, stmt, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ConceptStatus
	for rows.Next() {
		var (
			st               domain.ConceptStatus
			score, practiced string
		)
		if err := rows.Scan(&st.ConceptID, &score, &practiced); err != nil {
			return nil, err
		}
		if st.MasteryScore, err = decimal.NewFromString(score); err != nil {
			return nil, fmt.Errorf("parse score: %w", err)
		}
		if st.LastPracticed, err = storage.ParseTime(practiced); err != nil {
			return nil, fmt.Errorf("parse last_practiced: %w", err)
		}
		res = append(res, st)
	}

	return res, rows.Err()
}
