package mastery

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victornm/tutormate/internal/domain"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Modify locks the row with SELECT ... FOR UPDATE, so concurrent updates of
// the same concept apply one after another.
func (s *PostgresStore) Modify(ctx context.Context, studentID, conceptID string, fn func(m *domain.ConceptMastery)) (_ *domain.ConceptMastery, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = stderrors.Join(err, tx.Rollback(ctx))
		}
	}()

	const (
		insStmt = `
INSERT INTO concept_mastery (student_id, concept_id, last_practiced)
VALUES ($1, $2, $3)
ON CONFLICT (student_id, concept_id) DO NOTHING;`

		selStmt = `
SELECT mastery_score, last_practiced, last_mistake, history
FROM concept_mastery
WHERE student_id = $1 AND concept_id = $2
FOR UPDATE;`

		updStmt = `
UPDATE concept_mastery
SET mastery_score = $3, last_practiced = $4, last_mistake = $5, history = $6
WHERE student_id = $1 AND concept_id = $2;`
	)

	if _, err = tx.Exec(ctx, insStmt, studentID, conceptID, time.Now()); err != nil {
		return nil, fmt.Errorf("insert mastery: %w", err)
	}

	m := domain.ConceptMastery{StudentID: studentID, ConceptID: conceptID}
	var history []byte
	err = tx.QueryRow(ctx, selStmt, studentID, conceptID).Scan(&m.Score, &m.LastPracticed, &m.LastMistake, &history)
	if err != nil {
		return nil, fmt.Errorf("select mastery: %w", err)
	}
	if err = json.Unmarshal(history, &m.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	fn(&m)

	history, err = json.Marshal(m.History)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}

	_, err = tx.Exec(ctx, updStmt, studentID, conceptID, m.Score, m.LastPracticed, m.LastMistake, string(history))
	if err != nil {
		return nil, fmt.Errorf("update mastery: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &m, nil
}

func (s *PostgresStore) List(ctx context.Context, studentID string) ([]domain.ConceptStatus, error) {
	const stmt = `
SELECT concept_id, mastery_score, last_practiced
FROM concept_mastery
WHERE student_id = $1;`

	rows, err := s.db.Query(ctx, stmt, studentID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.ConceptStatus, error) {
		var st domain.ConceptStatus
		err := r.Scan(&st.ConceptID, &st.MasteryScore, &st.LastPracticed)
		return st, err
	})
}
