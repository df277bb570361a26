package model

import (
	"context"
)

// Provider is a stateless text-generation backend: one request in, one
// response out. Implementations must honor ctx cancellation.
type Provider interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

type ProviderFunc func(ctx context.Context, req *Request) (*Response, error)

func (f ProviderFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

type ProviderConfig struct {
	Type    string `json:"type"`
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}
