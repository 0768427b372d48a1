package bridge

// TODO: remove the mock impl and use mockery to generate mock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carbonable/juno-starknet-bridge/pkg/customer"
	"github.com/carbonable/juno-starknet-bridge/pkg/queue"
)

// MockHistory is a mock implementation of TransferHistory
type MockHistory struct {
	TransfersForTokenFunc func(ctx context.Context, contract, tokenID string) ([]Transfer, error)
}

func (m *MockHistory) TransfersForToken(ctx context.Context, contract, tokenID string) ([]Transfer, error) {
	if m.TransfersForTokenFunc != nil {
		return m.TransfersForTokenFunc(ctx, contract, tokenID)
	}
	return nil, nil
}

// MockOracle is a mock implementation of BalanceOracle
type MockOracle struct {
	BalanceOfFunc func(ctx context.Context, owner, contract, tokenID string) (decimal.Decimal, error)
}

func (m *MockOracle) BalanceOf(ctx context.Context, owner, contract, tokenID string) (decimal.Decimal, error) {
	if m.BalanceOfFunc != nil {
		return m.BalanceOfFunc(ctx, owner, contract, tokenID)
	}
	return decimal.Zero, nil
}

// MockQueue is a mock implementation of queue.Store
type MockQueue struct {
	EnqueueFunc        func(ctx context.Context, item *queue.Item) (*queue.Item, error)
	ClaimBatchFunc     func(ctx context.Context, n int) ([]*queue.Item, error)
	MarkSuccessFunc    func(ctx context.Context, id, txHash string) error
	MarkErrorFunc      func(ctx context.Context, id, reason string) error
	ReclaimStaleFunc   func(ctx context.Context, deadline time.Time) (int, error)
	ListByCustomerFunc func(ctx context.Context, keplrWalletPubkey, projectID string) ([]*queue.Item, error)
	CountPendingFunc   func(ctx context.Context) (int, error)
}

func (m *MockQueue) Enqueue(ctx context.Context, item *queue.Item) (*queue.Item, error) {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, item)
	}
	out := *item
	out.Status = queue.StatusPending
	return &out, nil
}

func (m *MockQueue) ClaimBatch(ctx context.Context, n int) ([]*queue.Item, error) {
	if m.ClaimBatchFunc != nil {
		return m.ClaimBatchFunc(ctx, n)
	}
	return nil, nil
}

func (m *MockQueue) MarkSuccess(ctx context.Context, id, txHash string) error {
	if m.MarkSuccessFunc != nil {
		return m.MarkSuccessFunc(ctx, id, txHash)
	}
	return nil
}

func (m *MockQueue) MarkError(ctx context.Context, id, reason string) error {
	if m.MarkErrorFunc != nil {
		return m.MarkErrorFunc(ctx, id, reason)
	}
	return nil
}

func (m *MockQueue) ReclaimStale(ctx context.Context, deadline time.Time) (int, error) {
	if m.ReclaimStaleFunc != nil {
		return m.ReclaimStaleFunc(ctx, deadline)
	}
	return 0, nil
}

func (m *MockQueue) ListByCustomer(ctx context.Context, keplrWalletPubkey, projectID string) ([]*queue.Item, error) {
	if m.ListByCustomerFunc != nil {
		return m.ListByCustomerFunc(ctx, keplrWalletPubkey, projectID)
	}
	return nil, nil
}

func (m *MockQueue) CountPending(ctx context.Context) (int, error) {
	if m.CountPendingFunc != nil {
		return m.CountPendingFunc(ctx)
	}
	return 0, nil
}

// MockCustomerStore is a mock implementation of customer.Store
type MockCustomerStore struct {
	SaveFunc func(ctx context.Context, keys *customer.Keys) error
	GetFunc  func(ctx context.Context, keplrWalletPubkey, projectID string) (*customer.Keys, error)
}

func (m *MockCustomerStore) Save(ctx context.Context, keys *customer.Keys) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, keys)
	}
	return nil
}

func (m *MockCustomerStore) Get(ctx context.Context, keplrWalletPubkey, projectID string) (*customer.Keys, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, keplrWalletPubkey, projectID)
	}
	return nil, customer.ErrNotFound
}
