package mastery_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/tutormate/internal/domain"
	"github.com/victornm/tutormate/internal/errors"
	"github.com/victornm/tutormate/internal/event"
	"github.com/victornm/tutormate/internal/mastery"
	"github.com/victornm/tutormate/internal/storage"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func makeService(t *testing.T, eb *event.Bus) (*mastery.Service, *mastery.SQLiteStore) {
	t.Helper()

	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "mastery.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(context.Background(), storage.DriverSQLite, db))

	st := mastery.NewSQLiteStore(db)
	s := mastery.NewService(mastery.Config{
		EventBus: eb,
		Store:    st,
		Now:      func() time.Time { return now },
	})
	return s, st
}

func seed(t *testing.T, st *mastery.SQLiteStore, student, concept, score string) {
	t.Helper()

	_, err := st.Modify(context.Background(), student, concept, func(m *domain.ConceptMastery) {
		m.Score = decimal.RequireFromString(score)
		m.LastPracticed = now.Add(-time.Hour)
	})
	require.NoError(t, err)
}

func TestService_Apply(t *testing.T) {
	type outputs struct {
		mastery *domain.ConceptMastery
		err     error
	}

	tests := map[string]struct {
		arrange func(t *testing.T, st *mastery.SQLiteStore) mastery.ApplyRequest
		assert  func(t *testing.T, out outputs)
	}{
		"first correct update creates the row": {
			arrange: func(*testing.T, *mastery.SQLiteStore) mastery.ApplyRequest {
				return mastery.ApplyRequest{StudentID: "s1", ConceptID: "fractions", Correct: true}
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				require.Equal(t, "0.1", out.mastery.Score.String())
				require.Nil(t, out.mastery.LastMistake)
				require.True(t, out.mastery.LastPracticed.Equal(now))
				require.Len(t, out.mastery.History, 1)
				require.Equal(t, "0.1", out.mastery.History[0].Delta.String())
			},
		},
		"correct update clamps at one": {
			arrange: func(t *testing.T, st *mastery.SQLiteStore) mastery.ApplyRequest {
				seed(t, st, "s1", "fractions", "0.95")
				return mastery.ApplyRequest{StudentID: "s1", ConceptID: "fractions", Correct: true}
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				require.Equal(t, "1", out.mastery.Score.String())
				require.Equal(t, "0.1", out.mastery.History[len(out.mastery.History)-1].Delta.String(), "history keeps the raw delta")
			},
		},
		"incorrect update clamps at zero": {
			arrange: func(t *testing.T, st *mastery.SQLiteStore) mastery.ApplyRequest {
				seed(t, st, "s1", "fractions", "0.02")
				return mastery.ApplyRequest{StudentID: "s1", ConceptID: "fractions", Mistake: "Failed question: 1/2 + 1/4"}
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				require.True(t, out.mastery.Score.IsZero())
				require.NotNil(t, out.mastery.LastMistake)
				require.Equal(t, "Failed question: 1/2 + 1/4", *out.mastery.LastMistake)

				last := out.mastery.History[len(out.mastery.History)-1]
				require.Equal(t, "-0.05", last.Delta.String())
				require.Equal(t, out.mastery.LastMistake, last.Mistake)
			},
		},
		"correct update clears the last mistake": {
			arrange: func(t *testing.T, st *mastery.SQLiteStore) mastery.ApplyRequest {
				_, err := st.Modify(context.Background(), "s1", "fractions", func(m *domain.ConceptMastery) {
					mistake := "old"
					m.Score = decimal.RequireFromString("0.5")
					m.LastMistake = &mistake
				})
				require.NoError(t, err)
				return mastery.ApplyRequest{StudentID: "s1", ConceptID: "fractions", Correct: true}
			},
			assert: func(t *testing.T, out outputs) {
				require.NoError(t, out.err)
				require.Equal(t, "0.6", out.mastery.Score.String())
				require.Nil(t, out.mastery.LastMistake)
			},
		},
		"missing concept is rejected": {
			arrange: func(*testing.T, *mastery.SQLiteStore) mastery.ApplyRequest {
				return mastery.ApplyRequest{StudentID: "s1", ConceptID: " "}
			},
			assert: func(t *testing.T, out outputs) {
				require.True(t, errors.Is(out.err, errors.CodeInvalidArgument))
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s, st := makeService(t, nil)
			req := tt.arrange(t, st)

			m, err := s.Apply(context.Background(), req)
			tt.assert(t, outputs{mastery: m, err: err})
		})
	}
}

func TestService_Apply_History(t *testing.T) {
	s, _ := makeService(t, nil)
	ctx := context.Background()

	outcomes := []bool{true, true, false, true}
	var m *domain.ConceptMastery
	for _, ok := range outcomes {
		var err error
		m, err = s.Apply(ctx, mastery.ApplyRequest{StudentID: "s1", ConceptID: "algebra", Correct: ok, Mistake: "x"})
		require.NoError(t, err)
	}

	require.Equal(t, "0.25", m.Score.String())
	require.Len(t, m.History, len(outcomes))
	require.Equal(t, "-0.05", m.History[2].Delta.String())
	require.Nil(t, m.History[0].Mistake)
	require.Equal(t, "x", *m.History[2].Mistake)
}

func TestService_Apply_Concurrent(t *testing.T) {
	s, _ := makeService(t, nil)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Apply(ctx, mastery.ApplyRequest{StudentID: "s1", ConceptID: "geometry", Correct: true})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	m, err := s.Apply(ctx, mastery.ApplyRequest{StudentID: "s1", ConceptID: "geometry", Correct: false})
	require.NoError(t, err)
	require.Len(t, m.History, n+1, "no update should be lost")
	require.Equal(t, "0.75", m.Score.String())
}

func TestService_ApplyReport(t *testing.T) {
	eb := event.NewBus()
	s, _ := makeService(t, eb)

	var (
		mu     sync.Mutex
		events []domain.EventMasteryUpdated
	)
	event.Subscribe(eb, func(_ context.Context, e domain.EventMasteryUpdated) error {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
		return nil
	})

	res, err := s.ApplyReport(context.Background(), "s1", []mastery.Outcome{
		{ConceptID: "fractions", Question: "1/2 + 1/2", Correct: true},
		{ConceptID: "decimals", Question: "0.1 + 0.2", Correct: false},
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, "Failed question: 0.1 + 0.2", *res[1].LastMistake)

	eb.Stop()
	require.Len(t, events, 2)
}

func TestService_Status(t *testing.T) {
	s, _ := makeService(t, nil)
	ctx := context.Background()

	st, err := s.Status(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, st)

	for _, c := range []string{"a", "b"} {
		_, err := s.Apply(ctx, mastery.ApplyRequest{StudentID: "s1", ConceptID: c, Correct: true})
		require.NoError(t, err)
	}

	st, err = s.Status(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, st, 2)
	for _, c := range st {
		require.Equal(t, "0.1", c.MasteryScore.String())
		require.True(t, c.LastPracticed.Equal(now))
	}
}
