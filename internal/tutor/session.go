package tutor

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/victornm/tutormate/internal/errors"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	updateRetries     = 3
)

// Session is the state of one tutoring flow, from quiz upload to graded practice.
type Session struct {
	ID           string          `json:"id"`
	StudentID    string          `json:"student_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Quiz         *Quiz           `json:"quiz,omitempty"`
	Responses    *Responses      `json:"responses,omitempty"`
	Normalized   *NormalizedQuiz `json:"normalized,omitempty"`
	Diagnosis    *Diagnosis      `json:"diagnosis,omitempty"`
	WeakConcepts []WeakConcept   `json:"weak_concepts,omitempty"`
	Practice     *PracticeSet    `json:"practice,omitempty"`
	Grade        *GradeReport    `json:"grade,omitempty"`
}

type SessionStoreConfig struct {
	Redis  redis.UniversalClient
	Prefix string
	// TTL is refreshed on every write.
	TTL time.Duration
}

// SessionStore keeps sessions as JSON documents in Redis.
type SessionStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewSessionStore(c SessionStoreConfig) *SessionStore {
	s := &SessionStore{
		redis:  c.Redis,
		prefix: c.Prefix,
		ttl:    c.TTL,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	return s
}

func (s *SessionStore) Create(ctx context.Context, studentID string) (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	ss := &Session{
		ID:        id.String(),
		StudentID: studentID,
		CreatedAt: time.Now().UTC(),
	}

	b, err := json.Marshal(ss)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(ss.ID), b, s.ttl).Err(); err != nil {
		return nil, errors.Unavailable(fmt.Errorf("save session: %w", err))
	}

	return ss, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	b, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("session not found: %s", id))
	}
	if err != nil {
		return nil, errors.Unavailable(fmt.Errorf("get session: %w", err))
	}

	return decodeSession(b)
}

// Update applies fn to the stored session under WATCH and writes it back.
// Concurrent writers to the same session are retried a few times.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(ss *Session) error) (*Session, error) {
	key := s.key(id)

	var out *Session
	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if stderrors.Is(err, redis.Nil) {
			return errors.New(errors.CodeNotFound, errors.WithMessagef("session not found: %s", id))
		}
		if err != nil {
			return errors.Unavailable(fmt.Errorf("get session: %w", err))
		}

		ss, err := decodeSession(b)
		if err != nil {
			return err
		}
		if err := fn(ss); err != nil {
			return err
		}

		nb, err := json.Marshal(ss)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, nb, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		out = ss
		return nil
	}

	for range updateRetries {
		err := s.redis.Watch(ctx, txf, key)
		if stderrors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	return nil, errors.New(errors.CodeUnavailable, errors.WithMessagef("session %s is busy", id))
}

func decodeSession(b []byte) (*Session, error) {
	var ss Session
	if err := json.Unmarshal(b, &ss); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &ss, nil
}

func (s *SessionStore) key(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}
