package domain

import (
	"context"
	"time"
)

// SearchClient defines the interface for the upstream shopping search API.
// Pagination is deterministic via the 1-based absolute start offset.
type SearchClient interface {
	Search(ctx context.Context, query string, pageStart, pageSize int) (*SearchPage, error)
}

// Store is the narrow read/write contract the tracking core has with
// persistent storage. Observations are append-only; the core never updates
// or deletes them.
type Store interface {
	ListClients(ctx context.Context) ([]Client, error)
	ListProducts(ctx context.Context, clientID int64) ([]TrackedProduct, error)
	ListKeywords(ctx context.Context, clientID int64) ([]Keyword, error)
	AppendObservations(ctx context.Context, batch []RankObservation) error
}

// Registry is the registration/read surface used by the delivery layer,
// outside the tracking core.
type Registry interface {
	CreateClient(ctx context.Context, name, memo string) (*Client, error)
	AddProduct(ctx context.Context, p *TrackedProduct) error
	AddKeyword(ctx context.Context, clientID int64, text string) (*Keyword, error)
	History(ctx context.Context, clientID int64, keyword string, since time.Time) ([]RankObservation, error)
}

// CredentialsProvider supplies upstream API credentials. ok == false is a
// fatal precondition for a run, not a retryable error.
type CredentialsProvider interface {
	Credentials() (id, secret string, ok bool)
}
