package bridge

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/carbonable/juno-starknet-bridge/internal/metrics"
	apperrors "github.com/carbonable/juno-starknet-bridge/pkg/app/errors"
	"github.com/carbonable/juno-starknet-bridge/pkg/auth"
	"github.com/carbonable/juno-starknet-bridge/pkg/customer"
	"github.com/carbonable/juno-starknet-bridge/pkg/queue"
)

// TransferHistory reads NFT transfer history from the origin chain,
// pre-filtered to (contract, tokenID) and ordered most-recent-first.
type TransferHistory interface {
	TransfersForToken(ctx context.Context, contract, tokenID string) ([]Transfer, error)
}

// BalanceOracle reads how many units of a token an account still holds on
// the origin chain.
type BalanceOracle interface {
	BalanceOf(ctx context.Context, owner, contract, tokenID string) (decimal.Decimal, error)
}

// Pipeline runs the synchronous validation gauntlet for a migration request
// and records the surviving tokens as pending queue items. All checks are
// pure reads; the queue write in the final stage is the only side effect, and
// it happens only once every token has passed every check.
type Pipeline struct {
	history   TransferHistory
	balances  BalanceOracle
	queue     queue.Store
	customers customer.Store
	junoAdmin string
	logger    *zap.Logger
}

// NewPipeline creates a new migration request pipeline
func NewPipeline(
	history TransferHistory,
	balances BalanceOracle,
	queueStore queue.Store,
	customers customer.Store,
	junoAdmin string,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		history:   history,
		balances:  balances,
		queue:     queueStore,
		customers: customers,
		junoAdmin: junoAdmin,
		logger:    logger,
	}
}

// Submit validates one migration request end to end and enqueues its tokens.
//
// Stage order, short-circuiting on the first failure:
//  1. Verify the ADR-36 signature over the canonical request message.
//  2. Resolve the token list, falling back to the customer's saved list when
//     the request carries none.
//  3. Per token: prove single-hop custody transfer to the bridge admin.
//  4. Per token: require a zero origin-chain balance.
//  5. Enqueue every token as pending. Enqueue is idempotent on the
//     (wallet, project, token) key; an existing item is returned with its
//     current status rather than being reset.
func (p *Pipeline) Submit(ctx context.Context, req *Request) ([]*queue.Item, error) {
	message := auth.CanonicalMessage(req.ProjectID, req.TokenIDs, req.StarknetAccountAddr)
	ok, err := auth.Verify(&req.SignedHash, req.KeplrWalletPubkey, message)
	if err != nil || !ok {
		metrics.SubmissionsTotal.WithLabelValues("invalid_signature").Inc()
		return nil, apperrors.BadRequestError(ErrInvalidSignature, "invalid signature")
	}

	tokenIDs, err := p.resolveTokens(ctx, req)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	p.logger.Info("migration submission",
		zap.String("wallet", req.KeplrWalletPubkey),
		zap.String("project", req.ProjectID),
		zap.Strings("tokens", tokenIDs))

	for _, tokenID := range tokenIDs {
		if err := p.validateToken(ctx, req, tokenID); err != nil {
			metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
	}

	for _, tokenID := range tokenIDs {
		balance, err := p.balances.BalanceOf(ctx, req.KeplrWalletPubkey, req.ProjectID, tokenID)
		if err != nil {
			metrics.ErrorsTotal.WithLabelValues("juno", "balance").Inc()
			return nil, apperrors.DependencyFailureError(err, "failed to fetch origin chain balance")
		}
		if !balance.IsZero() {
			metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
			tokenErr := &TokenError{TokenID: tokenID, Err: ErrBalanceNotZero}
			return nil, apperrors.BadRequestError(tokenErr, tokenErr.Error())
		}
	}

	items := make([]*queue.Item, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		item, err := p.queue.Enqueue(ctx, &queue.Item{
			KeplrWalletPubkey:    req.KeplrWalletPubkey,
			StarknetWalletPubkey: req.StarknetAccountAddr,
			ProjectID:            req.ProjectID,
			TokenID:              tokenID,
		})
		if err != nil {
			metrics.ErrorsTotal.WithLabelValues("queue", "enqueue").Inc()
			return nil, apperrors.GeneralError(err)
		}
		items = append(items, item)
	}

	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	metrics.TokensEnqueued.Add(float64(len(items)))
	return items, nil
}

// resolveTokens picks the effective token list for a request.
func (p *Pipeline) resolveTokens(ctx context.Context, req *Request) ([]string, error) {
	if len(req.TokenIDs) > 0 {
		return req.TokenIDs, nil
	}

	keys, err := p.customers.Get(ctx, req.KeplrWalletPubkey, req.ProjectID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, apperrors.ResourceNotFoundError(ErrNoTokens, ErrNoTokens.Error())
		}
		return nil, apperrors.GeneralError(err)
	}
	if len(keys.TokenIDs) == 0 {
		return nil, apperrors.ResourceNotFoundError(ErrNoTokens, ErrNoTokens.Error())
	}
	return keys.TokenIDs, nil
}

// validateToken runs the provenance check for a single token.
func (p *Pipeline) validateToken(ctx context.Context, req *Request, tokenID string) error {
	history, err := p.history.TransfersForToken(ctx, req.ProjectID, tokenID)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("juno", "history").Inc()
		return apperrors.DependencyFailureError(err, "failed to fetch transfer history")
	}

	err = ValidateCustody(history, tokenID, req.KeplrWalletPubkey, p.junoAdmin)
	if err == nil {
		return nil
	}

	p.logger.Warn("custody validation failed",
		zap.String("wallet", req.KeplrWalletPubkey),
		zap.String("token", tokenID),
		zap.Error(err))

	if errors.Is(err, ErrNoCustodyRecord) {
		return apperrors.ResourceNotFoundError(err, err.Error())
	}
	return apperrors.BadRequestError(err, err.Error())
}
