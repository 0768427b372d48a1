// Package starknet talks to a Starknet sequencer gateway: it probes whether a
// project token has already been minted, submits mint invokes through the
// bridge admin account and polls transaction status until the network accepts
// or rejects them.
package starknet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/carbonable/juno-starknet-bridge/pkg/config"
)

var (
	// ErrTransactionRejected is returned when the sequencer rejects a
	// submitted invoke.
	ErrTransactionRejected = errors.New("starknet transaction rejected")

	// ErrGatewayError is returned when the gateway answers with an
	// unexpected status.
	ErrGatewayError = errors.New("starknet gateway error")
)

// selector computes the sn_keccak of an entrypoint name: keccak256 truncated
// to 250 bits.
func selector(name string) string {
	h := new(big.Int).SetBytes(crypto.Keccak256([]byte(name)))
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))
	return "0x" + h.And(h, mask).Text(16)
}

var (
	selectorOwnerOf = selector("ownerOf")
	selectorMint    = selector("mint")
)

// Invoke is the INVOKE_FUNCTION payload submitted to the gateway.
type Invoke struct {
	Type          string   `json:"type"`
	SenderAddress string   `json:"sender_address"`
	Calldata      []string `json:"calldata"`
	MaxFee        string   `json:"max_fee"`
	Signature     []string `json:"signature"`
	Nonce         string   `json:"nonce"`
	Version       string   `json:"version"`
}

// Signer produces the admin account signature for an invoke. Stark curve
// signing is delegated behind this interface so the key material does not
// have to live in this process.
type Signer interface {
	Sign(ctx context.Context, invoke *Invoke) ([]string, error)
}

// NoopSigner returns an empty signature. Suitable for devnet gateways and
// deployments where a fronting proxy attaches the account signature.
type NoopSigner struct{}

func (NoopSigner) Sign(_ context.Context, _ *Invoke) ([]string, error) {
	return []string{}, nil
}

type addTransactionResponse struct {
	Code            string `json:"code"`
	TransactionHash string `json:"transaction_hash"`
}

type transactionStatusResponse struct {
	TxStatus        string `json:"tx_status"`
	TxFailureReason *struct {
		Code         string `json:"code"`
		ErrorMessage string `json:"error_message"`
	} `json:"tx_failure_reason"`
}

type estimateFeeResponse struct {
	OverallFee uint64 `json:"overall_fee"`
}

// Client is a sequencer gateway client bound to the bridge admin account.
type Client struct {
	gatewayURL        string
	adminAddress      string
	feeMultiplier     float64
	statusPollRetries int
	statusPollEvery   time.Duration
	httpClient        *http.Client
	signer            Signer
	logger            *zap.Logger
}

// NewClient creates a new Starknet gateway client
func NewClient(cfg config.StarknetConfig, signer Signer, logger *zap.Logger) *Client {
	if signer == nil {
		signer = NoopSigner{}
	}
	return &Client{
		gatewayURL:        cfg.GatewayURL,
		adminAddress:      cfg.AdminAddress,
		feeMultiplier:     cfg.FeeMultiplier,
		statusPollRetries: cfg.StatusPollRetries,
		statusPollEvery:   cfg.StatusPollInterval,
		httpClient:        &http.Client{Timeout: cfg.RequestTimeout},
		signer:            signer,
		logger:            logger,
	}
}

// HasToken reports whether tokenID has an owner on the project contract. An
// ownerOf call on an unminted token reverts, which the gateway surfaces as a
// 500; that is the signal the token is still free.
func (c *Client) HasToken(ctx context.Context, project, tokenID string) (bool, error) {
	low, err := tokenFelt(tokenID)
	if err != nil {
		return false, err
	}

	payload := map[string]any{
		"contract_address":     project,
		"entry_point_selector": selectorOwnerOf,
		"calldata":             []string{low, "0x0"},
		"signature":            []string{},
	}

	status, _, err := c.post(ctx, "/feeder_gateway/call_contract?blockNumber=pending", payload)
	if err != nil {
		return false, err
	}
	if status == http.StatusOK {
		return true, nil
	}
	if status == http.StatusInternalServerError {
		return false, nil
	}
	return false, fmt.Errorf("%w: call_contract status %d", ErrGatewayError, status)
}

// Mint submits a mint invoke for tokenID on the project contract through the
// admin account and waits for the network verdict. The returned hash is set
// as soon as the gateway acknowledges the submission, even when the
// transaction ends up rejected.
func (c *Client) Mint(ctx context.Context, to, project, tokenID string) (string, error) {
	low, err := tokenFelt(tokenID)
	if err != nil {
		return "", err
	}

	// OpenZeppelin account __execute__ call array with a single call:
	// mint(to, token_low, token_high).
	calldata := []string{
		"0x1",
		project,
		selectorMint,
		"0x0",
		"0x3",
		"0x3",
		to, low, "0x0",
	}

	nonce, err := c.nonce(ctx)
	if err != nil {
		return "", err
	}

	invoke := &Invoke{
		Type:          "INVOKE_FUNCTION",
		SenderAddress: c.adminAddress,
		Calldata:      calldata,
		Signature:     []string{},
		Nonce:         nonce,
		Version:       "0x1",
	}

	maxFee, err := c.estimateFee(ctx, invoke)
	if err != nil {
		return "", err
	}
	invoke.MaxFee = maxFee

	signature, err := c.signer.Sign(ctx, invoke)
	if err != nil {
		return "", fmt.Errorf("failed to sign invoke: %w", err)
	}
	invoke.Signature = signature

	status, body, err := c.post(ctx, "/gateway/add_transaction", invoke)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: add_transaction status %d: %s", ErrGatewayError, status, body)
	}

	var resp addTransactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode add_transaction response: %w", err)
	}

	c.logger.Info("mint submitted",
		zap.String("project", project),
		zap.String("token", tokenID),
		zap.String("tx_hash", resp.TransactionHash))

	if err := c.waitForAcceptance(ctx, resp.TransactionHash); err != nil {
		return resp.TransactionHash, err
	}
	return resp.TransactionHash, nil
}

// waitForAcceptance polls transaction status until the network accepts or
// rejects it. Exhausting the polls without a verdict is treated as
// accepted, matching the optimistic behavior the sequencer UI shows for
// long-pending transactions.
func (c *Client) waitForAcceptance(ctx context.Context, txHash string) error {
	endpoint := "/feeder_gateway/get_transaction_status?transactionHash=" + url.QueryEscape(txHash)

	for i := 0; i <= c.statusPollRetries; i++ {
		status, body, err := c.get(ctx, endpoint)
		if err != nil || status != http.StatusOK {
			if err := sleepCtx(ctx, c.statusPollEvery); err != nil {
				return err
			}
			continue
		}

		var resp transactionStatusResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("failed to decode transaction status: %w", err)
		}

		switch resp.TxStatus {
		case "ACCEPTED_ON_L1", "ACCEPTED_ON_L2":
			return nil
		case "REJECTED":
			if resp.TxFailureReason != nil {
				return fmt.Errorf("%w: %s", ErrTransactionRejected, resp.TxFailureReason.Code)
			}
			return ErrTransactionRejected
		}

		if err := sleepCtx(ctx, c.statusPollEvery); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) nonce(ctx context.Context) (string, error) {
	endpoint := "/feeder_gateway/get_nonce?contractAddress=" + url.QueryEscape(c.adminAddress) + "&blockNumber=pending"
	status, body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: get_nonce status %d", ErrGatewayError, status)
	}

	var nonce string
	if err := json.Unmarshal(body, &nonce); err != nil {
		return "", fmt.Errorf("failed to decode nonce: %w", err)
	}
	return nonce, nil
}

// estimateFee asks the feeder gateway for the fee of the unsigned invoke and
// scales it by the configured multiplier so submissions survive fee spikes.
func (c *Client) estimateFee(ctx context.Context, invoke *Invoke) (string, error) {
	status, body, err := c.post(ctx, "/feeder_gateway/estimate_fee?blockNumber=pending", invoke)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: estimate_fee status %d: %s", ErrGatewayError, status, body)
	}

	var resp estimateFeeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode fee estimate: %w", err)
	}

	fee := new(big.Float).Mul(
		new(big.Float).SetUint64(resp.OverallFee),
		big.NewFloat(c.feeMultiplier))
	scaled, _ := fee.Int(nil)
	return "0x" + scaled.Text(16), nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+endpoint, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gatewayURL+endpoint, nil)
	if err != nil {
		return 0, nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// tokenFelt converts a decimal token id to the low 128-bit half of a uint256
// hex felt.
func tokenFelt(tokenID string) (string, error) {
	n, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return "", fmt.Errorf("invalid token id %q", tokenID)
	}
	return "0x" + n.Text(16), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
