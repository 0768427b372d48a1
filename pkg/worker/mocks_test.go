package worker

// TODO: remove the mock impl and use mockery to generate mock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carbonable/juno-starknet-bridge/pkg/queue"
)

// MockStore is a mock implementation of queue.Store
type MockStore struct {
	EnqueueFunc        func(ctx context.Context, item *queue.Item) (*queue.Item, error)
	ClaimBatchFunc     func(ctx context.Context, n int) ([]*queue.Item, error)
	MarkSuccessFunc    func(ctx context.Context, id, txHash string) error
	MarkErrorFunc      func(ctx context.Context, id, reason string) error
	ReclaimStaleFunc   func(ctx context.Context, deadline time.Time) (int, error)
	ListByCustomerFunc func(ctx context.Context, keplrWalletPubkey, projectID string) ([]*queue.Item, error)
	CountPendingFunc   func(ctx context.Context) (int, error)
}

func (m *MockStore) Enqueue(ctx context.Context, item *queue.Item) (*queue.Item, error) {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, item)
	}
	return item, nil
}

func (m *MockStore) ClaimBatch(ctx context.Context, n int) ([]*queue.Item, error) {
	if m.ClaimBatchFunc != nil {
		return m.ClaimBatchFunc(ctx, n)
	}
	return nil, nil
}

func (m *MockStore) MarkSuccess(ctx context.Context, id, txHash string) error {
	if m.MarkSuccessFunc != nil {
		return m.MarkSuccessFunc(ctx, id, txHash)
	}
	return nil
}

func (m *MockStore) MarkError(ctx context.Context, id, reason string) error {
	if m.MarkErrorFunc != nil {
		return m.MarkErrorFunc(ctx, id, reason)
	}
	return nil
}

func (m *MockStore) ReclaimStale(ctx context.Context, deadline time.Time) (int, error) {
	if m.ReclaimStaleFunc != nil {
		return m.ReclaimStaleFunc(ctx, deadline)
	}
	return 0, nil
}

func (m *MockStore) ListByCustomer(ctx context.Context, keplrWalletPubkey, projectID string) ([]*queue.Item, error) {
	if m.ListByCustomerFunc != nil {
		return m.ListByCustomerFunc(ctx, keplrWalletPubkey, projectID)
	}
	return nil, nil
}

func (m *MockStore) CountPending(ctx context.Context) (int, error) {
	if m.CountPendingFunc != nil {
		return m.CountPendingFunc(ctx)
	}
	return 0, nil
}

// MockMinter is a mock implementation of Minter
type MockMinter struct {
	HasTokenFunc func(ctx context.Context, project, tokenID string) (bool, error)
	MintFunc     func(ctx context.Context, to, project, tokenID string) (string, error)
}

func (m *MockMinter) HasToken(ctx context.Context, project, tokenID string) (bool, error) {
	if m.HasTokenFunc != nil {
		return m.HasTokenFunc(ctx, project, tokenID)
	}
	return false, nil
}

func (m *MockMinter) Mint(ctx context.Context, to, project, tokenID string) (string, error) {
	if m.MintFunc != nil {
		return m.MintFunc(ctx, to, project, tokenID)
	}
	return "0xmock", nil
}

// MockOracle is a mock implementation of bridge.BalanceOracle
type MockOracle struct {
	BalanceOfFunc func(ctx context.Context, owner, contract, tokenID string) (decimal.Decimal, error)
}

func (m *MockOracle) BalanceOf(ctx context.Context, owner, contract, tokenID string) (decimal.Decimal, error) {
	if m.BalanceOfFunc != nil {
		return m.BalanceOfFunc(ctx, owner, contract, tokenID)
	}
	return decimal.Zero, nil
}
