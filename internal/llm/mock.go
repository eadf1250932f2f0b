package llm

import (
	"context"
	"sync"
)

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	CompleteResponse           string
	CompleteError              error
	CheckContradictionResponse bool
	CheckContradictionError    error

	// Call tracking for assertions
	mu                      sync.Mutex
	CompleteCalls           []string
	CheckContradictionCalls []struct{ A, B string }
}

func NewMockClient() *MockClient {
	return &MockClient{
		CompleteResponse: "[]",
	}
}

func (c *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.CompleteCalls = append(c.CompleteCalls, prompt)
	c.mu.Unlock()
	if c.CompleteError != nil {
		return "", c.CompleteError
	}
	return c.CompleteResponse, nil
}

func (c *MockClient) CheckContradiction(ctx context.Context, stmtA, stmtB string) (bool, error) {
	c.mu.Lock()
	c.CheckContradictionCalls = append(c.CheckContradictionCalls, struct{ A, B string }{stmtA, stmtB})
	c.mu.Unlock()
	if c.CheckContradictionError != nil {
		return false, c.CheckContradictionError
	}
	return c.CheckContradictionResponse, nil
}
