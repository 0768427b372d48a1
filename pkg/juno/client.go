// Package juno reads NFT custody facts from a Juno LCD endpoint: the transfer
// history of a cw721 contract and the remaining token balance of an account.
package juno

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/carbonable/juno-starknet-bridge/pkg/bridge"
	"github.com/carbonable/juno-starknet-bridge/pkg/config"
)

// ErrServerError is returned when the LCD node answers with a 5xx status.
var ErrServerError = errors.New("juno blockchain server error")

const retryInterval = 15 * time.Second

type txsResponse struct {
	Txs []struct {
		Body struct {
			Messages []txMessage `json:"messages"`
		} `json:"body"`
	} `json:"txs"`
}

type txMessage struct {
	Contract string `json:"contract"`
	Sender   string `json:"sender"`
	Msg      struct {
		TransferNft *struct {
			Recipient string `json:"recipient"`
			TokenID   string `json:"token_id"`
		} `json:"transfer_nft"`
	} `json:"msg"`
}

type smartQueryResponse struct {
	Data struct {
		Balance string `json:"balance"`
	} `json:"data"`
}

// Client is a thin LCD REST client scoped to the two reads the bridge needs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pageLimit  int
	maxRetries uint64
	logger     *zap.Logger
}

// NewClient creates a new Juno LCD client
func NewClient(cfg config.JunoConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.LCDURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		pageLimit:  cfg.TxPageLimit,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// TransfersForToken returns every transfer_nft execution on contract touching
// tokenID, most recent first. The LCD returns transactions oldest first, so
// the flattened list is reversed before returning.
func (c *Client) TransfersForToken(ctx context.Context, contract, tokenID string) ([]bridge.Transfer, error) {
	endpoint := fmt.Sprintf(
		"/cosmos/tx/v1beta1/txs?events=execute._contract_address=%%27%s%%27&pagination.limit=%d&pagination.offset=0&pagination.count_total=true",
		url.QueryEscape(contract), c.pageLimit)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp txsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode transaction response: %w", err)
	}

	var transfers []bridge.Transfer
	for _, tx := range resp.Txs {
		for _, msg := range tx.Body.Messages {
			if msg.Msg.TransferNft == nil {
				continue
			}
			if msg.Msg.TransferNft.TokenID != tokenID {
				continue
			}
			transfers = append(transfers, bridge.Transfer{
				Contract:  msg.Contract,
				Sender:    msg.Sender,
				Recipient: msg.Msg.TransferNft.Recipient,
				TokenID:   msg.Msg.TransferNft.TokenID,
			})
		}
	}

	for i, j := 0, len(transfers)-1; i < j; i, j = i+1, j-1 {
		transfers[i], transfers[j] = transfers[j], transfers[i]
	}

	return transfers, nil
}

// BalanceOf queries the contract for the units of tokenID still held by
// owner. A migrated customer is expected to report zero.
func (c *Client) BalanceOf(ctx context.Context, owner, contract, tokenID string) (decimal.Decimal, error) {
	query, err := json.Marshal(map[string]any{
		"balance": map[string]string{
			"owner":    owner,
			"token_id": tokenID,
		},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to encode balance query: %w", err)
	}

	endpoint := fmt.Sprintf("/cosmwasm/wasm/v1/contract/%s/smart/%s",
		url.PathEscape(contract), base64.StdEncoding.EncodeToString(query))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return decimal.Zero, err
	}

	var resp smartQueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode balance response: %w", err)
	}
	if resp.Data.Balance == "" {
		return decimal.Zero, nil
	}

	balance, err := decimal.NewFromString(resp.Data.Balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance %q: %w", resp.Data.Balance, err)
	}
	return balance, nil
}

// get performs one LCD read, retrying transport failures on a fixed interval.
// A response from the node, whatever its status, stops the retry loop; only
// 5xx statuses are turned into errors.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("juno lcd request failed", zap.String("endpoint", endpoint), zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return backoff.Permanent(fmt.Errorf("%w: status %d", ErrServerError, resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), c.maxRetries),
		ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return body, nil
}
