// Package worker drains the migration queue: it claims pending items in
// batches, mints each token on Starknet and records the terminal status.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/carbonable/juno-starknet-bridge/internal/metrics"
	"github.com/carbonable/juno-starknet-bridge/pkg/bridge"
	"github.com/carbonable/juno-starknet-bridge/pkg/config"
	"github.com/carbonable/juno-starknet-bridge/pkg/queue"
)

// Minter defines the interface for destination chain mint interactions
type Minter interface {
	HasToken(ctx context.Context, project, tokenID string) (bool, error)
	Mint(ctx context.Context, to, project, tokenID string) (string, error)
}

// Engine is the migration queue consumer. Any number of engine instances may
// run against the same store; the store's atomic claim keeps them from
// stepping on each other.
type Engine struct {
	config   *config.Config
	store    queue.Store
	minter   Minter
	balances bridge.BalanceOracle
	logger   *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewEngine creates a new migration worker engine
func NewEngine(
	cfg *config.Config,
	store queue.Store,
	minter Minter,
	balances bridge.BalanceOracle,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		config:   cfg,
		store:    store,
		minter:   minter,
		balances: balances,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start starts the worker engine
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Starting migration worker engine",
		zap.Int("batch_size", e.config.Bridge.BatchSize),
		zap.Duration("poll_interval", e.config.Bridge.PollInterval))

	e.wg.Add(1)
	go e.run(ctx)

	return nil
}

// Stop stops the worker engine
func (e *Engine) Stop() {
	e.logger.Info("Stopping migration worker engine")
	close(e.stopCh)
	e.wg.Wait()
	e.logger.Info("Migration worker engine stopped")
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.Bridge.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-ticker.C:
			if err := e.RunCycle(ctx); err != nil {
				e.logger.Error("Worker cycle failed", zap.Error(err))
			}
		}
	}
}

// RunCycle executes one worker cycle: reclaim stale claims, claim a batch and
// process every claimed item. Item failures are recorded on the item and
// never abort the rest of the batch.
func (e *Engine) RunCycle(ctx context.Context) error {
	reclaimed, err := e.store.ReclaimStale(ctx, time.Now().Add(-e.config.Bridge.ReclaimAfter))
	if err != nil {
		e.logger.Error("Failed to reclaim stale items", zap.Error(err))
	} else if reclaimed > 0 {
		e.logger.Warn("Reclaimed stale processing items", zap.Int("count", reclaimed))
		metrics.ReclaimedItems.Add(float64(reclaimed))
	}

	batch, err := e.store.ClaimBatch(ctx, e.config.Bridge.BatchSize)
	if err != nil {
		return err
	}
	metrics.ClaimedBatchSize.Observe(float64(len(batch)))

	if len(batch) == 0 {
		return e.updatePendingGauge(ctx)
	}

	e.logger.Info("Claimed migration batch", zap.Int("size", len(batch)))

	for _, item := range batch {
		e.processItem(ctx, item)
	}

	return e.updatePendingGauge(ctx)
}

// processItem drives one claimed item to a terminal status.
func (e *Engine) processItem(ctx context.Context, item *queue.Item) {
	logger := e.logger.With(
		zap.String("id", item.ID),
		zap.String("project", item.ProjectID),
		zap.String("token", item.TokenID))

	// The balance may have changed between submission and processing.
	balance, err := e.balances.BalanceOf(ctx, item.KeplrWalletPubkey, item.ProjectID, item.TokenID)
	if err != nil {
		logger.Error("Balance re-check failed", zap.Error(err))
		e.markError(ctx, item, "failed to re-check origin chain balance: "+err.Error())
		return
	}
	if !balance.IsZero() {
		logger.Warn("Origin chain balance is not zero")
		e.markError(ctx, item, bridge.ErrBalanceNotZero.Error())
		return
	}

	minted, err := e.minter.HasToken(ctx, item.ProjectID, item.TokenID)
	if err != nil {
		logger.Error("Mint existence check failed", zap.Error(err))
		e.markError(ctx, item, "failed to check destination chain: "+err.Error())
		return
	}
	if minted {
		logger.Warn("Token already minted on destination chain")
		e.markError(ctx, item, bridge.ErrTokenAlreadyMinted.Error())
		return
	}

	start := time.Now()
	txHash, err := e.minter.Mint(ctx, item.StarknetWalletPubkey, item.ProjectID, item.TokenID)
	metrics.MintDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Error("Mint failed", zap.String("tx_hash", txHash), zap.Error(err))
		metrics.MintsTotal.WithLabelValues("error").Inc()
		e.markError(ctx, item, err.Error())
		return
	}

	logger.Info("Mint succeeded", zap.String("tx_hash", txHash))
	metrics.MintsTotal.WithLabelValues("success").Inc()

	if err := e.store.MarkSuccess(ctx, item.ID, txHash); err != nil {
		logger.Error("Failed to mark item success", zap.Error(err))
		metrics.ErrorsTotal.WithLabelValues("queue", "mark_success").Inc()
	}
}

func (e *Engine) markError(ctx context.Context, item *queue.Item, reason string) {
	if err := e.store.MarkError(ctx, item.ID, reason); err != nil {
		e.logger.Error("Failed to mark item error",
			zap.String("id", item.ID),
			zap.Error(err))
		metrics.ErrorsTotal.WithLabelValues("queue", "mark_error").Inc()
	}
}

func (e *Engine) updatePendingGauge(ctx context.Context) error {
	pending, err := e.store.CountPending(ctx)
	if err != nil {
		return err
	}
	metrics.PendingItems.Set(float64(pending))
	return nil
}
