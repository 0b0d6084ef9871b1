package domain

import "context"

// OpenInput starts a session on a target, optionally hydrated from a query string
type OpenInput struct {
	Target
	Query string `json:"query,omitempty" validate:"omitempty,max=2000" example:"sort=priceAsc&tradable=yes"`
}

// StateInput re-hydrates a session from a query string
type StateInput struct {
	Query string `json:"query" validate:"max=2000" example:"min=100&max=900&condition=used"`
}

// Opened is a new session and its first view
type Opened struct {
	ID   string `json:"id" example:"6f1c8d0e-2b8e-4f5a-9d57-0c3b1f0e9a11"`
	View View   `json:"view"`
}

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Browse(ctx context.Context, t Target, query string) (View, error)
	Open(ctx context.Context, in OpenInput) (Opened, error)
	View(ctx context.Context, id string) (View, error)
	More(ctx context.Context, id string) (View, error)
	Restore(ctx context.Context, id string, in StateInput) (View, error)
	Retry(ctx context.Context, id string) (View, error)
	Close(ctx context.Context, id string) error
}
