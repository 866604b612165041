package llm

import (
	"context"
	"sync"
)

// MockReply is one canned Mock answer.
type MockReply struct {
	Text string
	Err  error
}

// Mock replays canned replies in order and records every request. Replies
// still go through schema validation, so malformed text fails like it would
// with a real model. It reports the provider as unavailable once drained.
type Mock struct {
	mu      sync.Mutex
	replies []MockReply
	calls   []Request
}

func NewMock(replies ...MockReply) *Mock {
	return &Mock{replies: replies}
}

func (m *Mock) ModelID() string { return "mock" }

func (m *Mock) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if len(m.replies) == 0 {
		return nil, &ErrProviderUnavailable{}
	}

	r := m.replies[0]
	m.replies = m.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	return finish(req, r.Text, "mock", Usage{})
}

// Reply queues more replies.
func (m *Mock) Reply(replies ...MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

// Calls returns the requests received so far.
func (m *Mock) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}
