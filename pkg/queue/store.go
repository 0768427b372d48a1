package queue

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a queue item lookup finds no matching record.
var ErrNotFound = errors.New("queue item not found")

// Status is the lifecycle state of a migration queue item. Transitions are
// strictly pending -> processing -> {success, error}; success and error are
// terminal, resetting an error item is an administrative action.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Item is one token migration recorded durably. Unique on
// (KeplrWalletPubkey, ProjectID, TokenID).
type Item struct {
	ID                   string
	KeplrWalletPubkey    string
	StarknetWalletPubkey string
	ProjectID            string
	TokenID              string
	TransactionHash      string
	ErrorReason          string
	Status               Status
	ClaimedAt            *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Store defines the interface for migration queue persistence. It is the only
// component mutated by concurrent workers; every state transition is a
// conditional update guarded by the item id and its expected prior status.
type Store interface {
	// Enqueue records a pending item for the unique key. If an item already
	// exists it is returned as-is with its current status, never overwritten.
	Enqueue(ctx context.Context, item *Item) (*Item, error)

	// ClaimBatch atomically selects up to n pending items and transitions
	// them to processing. Two concurrent callers never receive the same item.
	ClaimBatch(ctx context.Context, n int) ([]*Item, error)

	// MarkSuccess finalizes a processing item with its mint transaction hash.
	MarkSuccess(ctx context.Context, id, txHash string) error

	// MarkError finalizes a processing item with the failure reason.
	MarkError(ctx context.Context, id, reason string) error

	// ReclaimStale returns processing items claimed before the deadline back
	// to pending, so work lost to a crashed worker is eventually retried.
	ReclaimStale(ctx context.Context, deadline time.Time) (int, error)

	// ListByCustomer returns all items for a (wallet, project) pair, oldest
	// first.
	ListByCustomer(ctx context.Context, keplrWalletPubkey, projectID string) ([]*Item, error)

	// CountPending reports the number of items waiting to be claimed.
	CountPending(ctx context.Context) (int, error)
}
