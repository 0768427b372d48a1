package bridge

import (
	"errors"
	"fmt"

	"github.com/carbonable/juno-starknet-bridge/pkg/auth"
)

// Transfer is a single NFT custody movement extracted from the origin
// chain's transaction history.
type Transfer struct {
	Contract  string
	Sender    string
	Recipient string
	TokenID   string
}

// Request is one client submission covering one or more tokens of a single
// project. TokenIDs may be empty, in which case the token list previously
// saved for (wallet, project) is used.
type Request struct {
	SignedHash          auth.SignedHash `json:"signed_hash" validate:"required"`
	StarknetAccountAddr string          `json:"starknet_account_addr" validate:"required"`
	StarknetProjectAddr string          `json:"starknet_project_addr" validate:"required"`
	KeplrWalletPubkey   string          `json:"keplr_wallet_pubkey" validate:"required"`
	ProjectID           string          `json:"project_id" validate:"required"`
	TokenIDs            []string        `json:"tokens_id"`
}

var (
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrNoCustodyRecord       = errors.New("no custody record found for token")
	ErrCurrentOwnerNotAdmin  = errors.New("token was not transferred to the bridge admin")
	ErrPreviousOwnerMismatch = errors.New("token did not belong to the requesting wallet")
	ErrBalanceNotZero        = errors.New("origin chain balance is not zero")
	ErrTokenAlreadyMinted    = errors.New("token has already been minted")
	ErrNoTokens              = errors.New("no token ids found for wallet and project")
)

// TokenError attaches the offending token id to a validation failure so the
// caller can report which token of a multi-token request was rejected.
type TokenError struct {
	TokenID string
	Err     error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token %s: %s", e.TokenID, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}
