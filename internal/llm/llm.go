// Package llm is a provider-neutral client for structured LLM generation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider generates one completion. When the request carries a Schema the
// returned Content is JSON that passed validation against it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// UserPrompt is a single-turn request body.
func UserPrompt(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

// Schema is a JSON Schema the response must satisfy. Name doubles as the
// cache key of the compiled schema, so it must be unique per definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	// Content is the validated JSON when a schema was requested.
	Content json.RawMessage
	// Text is the raw model output.
	Text  string
	Model string
	Usage Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// GenerateJSON runs req and decodes the validated content into T.
func GenerateJSON[T any](ctx context.Context, p Provider, req Request) (T, error) {
	var v T

	resp, err := p.Generate(ctx, req)
	if err != nil {
		return v, err
	}

	if err := json.Unmarshal(resp.Content, &v); err != nil {
		return v, &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("decode: %w", err)}
	}
	return v, nil
}

// finish turns raw model text into a Response, validating it when req has a schema.
func finish(req Request, text, model string, usage Usage) (*Response, error) {
	resp := &Response{Text: text, Model: model, Usage: usage}
	if req.Schema == nil {
		return resp, nil
	}

	content := json.RawMessage(StripFences(text))
	if err := validate(req.Schema, content); err != nil {
		return nil, err
	}
	resp.Content = content
	return resp, nil
}
