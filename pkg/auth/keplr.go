// Package auth verifies Keplr signArbitrary (ADR-36) signatures produced by
// origin-chain wallet keys.
package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// compressedPubKeyLen is the length of a compressed secp256k1 public key
	compressedPubKeyLen = 33

	// signatureLen is the length of a raw r||s secp256k1 signature
	signatureLen = 64
)

// SignedHash carries the signature material sent by the frontend: the signing
// pubkey as reported by Keplr and the base64 signature itself.
type SignedHash struct {
	PubKey    PubKey `json:"pub_key"`
	Signature string `json:"signature"`
}

// PubKey is the Keplr representation of a secp256k1 public key.
type PubKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// adr36SignDoc is the amino sign doc Keplr builds for signArbitrary.
// Field order matches the lexicographic key ordering the wallet signs over.
type adr36SignDoc struct {
	AccountNumber string         `json:"account_number"`
	ChainID       string         `json:"chain_id"`
	Fee           adr36Fee       `json:"fee"`
	Memo          string         `json:"memo"`
	Msgs          []adr36SignMsg `json:"msgs"`
	Sequence      string         `json:"sequence"`
}

type adr36Fee struct {
	Amount []string `json:"amount"`
	Gas    string   `json:"gas"`
}

type adr36SignMsg struct {
	Type  string       `json:"type"`
	Value adr36MsgData `json:"value"`
}

type adr36MsgData struct {
	Data   string `json:"data"`
	Signer string `json:"signer"`
}

// CanonicalMessage derives the deterministic message a customer signs for one
// migration request. Binding the project, the token list and the destination
// account prevents replaying the signature against a different request.
func CanonicalMessage(projectID string, tokenIDs []string, starknetAccountAddr string) []byte {
	msg := fmt.Sprintf("migrate|%s|%s|%s", projectID, strings.Join(tokenIDs, ","), starknetAccountAddr)
	return []byte(msg)
}

// SignDocDigest builds the ADR-36 sign doc for the given signer and message
// and returns its sha256 digest, the value the wallet actually signed.
func SignDocDigest(signer string, message []byte) ([]byte, error) {
	doc := adr36SignDoc{
		AccountNumber: "0",
		ChainID:       "",
		Fee: adr36Fee{
			Amount: []string{},
			Gas:    "0",
		},
		Memo: "",
		Msgs: []adr36SignMsg{
			{
				Type: "sign/MsgSignData",
				Value: adr36MsgData{
					Data:   base64.StdEncoding.EncodeToString(message),
					Signer: signer,
				},
			},
		},
		Sequence: "0",
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal sign doc: %w", err)
	}

	digest := sha256.Sum256(raw)
	return digest[:], nil
}

// Verify checks that signed carries a valid secp256k1 signature over the
// ADR-36 sign doc for (signer, message), produced by the claimed wallet key.
// Malformed input is reported as a rejection, never a panic.
func Verify(signed *SignedHash, claimedPubKey string, message []byte) (bool, error) {
	if signed == nil {
		return false, fmt.Errorf("nil signed hash")
	}

	pubKey, err := base64.StdEncoding.DecodeString(signed.PubKey.Value)
	if err != nil {
		return false, fmt.Errorf("invalid pubkey encoding: %w", err)
	}
	if len(pubKey) != compressedPubKeyLen {
		return false, fmt.Errorf("invalid pubkey length: expected %d, got %d", compressedPubKeyLen, len(pubKey))
	}

	// The key embedded in the signature payload must be the wallet key the
	// request claims custody for, otherwise any key could vouch for any wallet.
	if signed.PubKey.Value != claimedPubKey {
		return false, nil
	}

	sig, err := base64.StdEncoding.DecodeString(signed.Signature)
	if err != nil {
		return false, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != signatureLen {
		return false, fmt.Errorf("invalid signature length: expected %d, got %d", signatureLen, len(sig))
	}

	digest, err := SignDocDigest(claimedPubKey, message)
	if err != nil {
		return false, err
	}

	return crypto.VerifySignature(pubKey, digest, sig), nil
}
