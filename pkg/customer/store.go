package customer

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no token list exists for a (wallet, project)
// pair.
var ErrNotFound = errors.New("customer keys not found")

// Keys is the token list a customer declared for one project ahead of
// migration. Unique on (KeplrWalletPubkey, ProjectID).
type Keys struct {
	KeplrWalletPubkey string    `json:"keplr_wallet_pubkey" validate:"required"`
	ProjectID         string    `json:"project_id" validate:"required"`
	TokenIDs          []string  `json:"token_ids" validate:"required,min=1"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

// Store defines the interface for customer token list persistence
type Store interface {
	// Save inserts the token list, or replaces it when one already exists
	// for the (wallet, project) pair.
	Save(ctx context.Context, keys *Keys) error

	// Get returns the token list for a (wallet, project) pair.
	Get(ctx context.Context, keplrWalletPubkey, projectID string) (*Keys, error)
}
