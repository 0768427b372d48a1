package bridge

import (
	"errors"
	"testing"
)

const (
	testCustomer = "k3plr-pk1"
	testAdmin    = "juno-admin-account"
)

func transfer(sender, recipient, tokenID string) Transfer {
	return Transfer{
		Contract:  "juno-project-contract",
		Sender:    sender,
		Recipient: recipient,
		TokenID:   tokenID,
	}
}

func TestValidateCustody_EmptyHistory(t *testing.T) {
	err := ValidateCustody(nil, "255", testCustomer, testAdmin)
	if !errors.Is(err, ErrNoCustodyRecord) {
		t.Fatalf("expected ErrNoCustodyRecord, got %v", err)
	}

	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("expected TokenError, got %T", err)
	}
	if tokenErr.TokenID != "255" {
		t.Fatalf("expected token 255, got %s", tokenErr.TokenID)
	}
}

func TestValidateCustody_SingleHopToAdmin(t *testing.T) {
	history := []Transfer{
		transfer(testCustomer, testAdmin, "255"),
		transfer("carbonABLE", testCustomer, "255"),
	}

	if err := ValidateCustody(history, "255", testCustomer, testAdmin); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
}

func TestValidateCustody_MostRecentRecipientNotAdmin(t *testing.T) {
	// The token went back to the customer after an earlier transfer to the
	// admin; the most recent entry is the one that counts.
	history := []Transfer{
		transfer("carbonABLE", testCustomer, "255"),
		transfer("carbonABLE", "not-the-customer", "255"),
		transfer("sender-1", testAdmin, "255"),
	}

	err := ValidateCustody(history, "255", testCustomer, testAdmin)
	if !errors.Is(err, ErrCurrentOwnerNotAdmin) {
		t.Fatalf("expected ErrCurrentOwnerNotAdmin, got %v", err)
	}
}

func TestValidateCustody_NeverReachedAdmin(t *testing.T) {
	history := []Transfer{
		transfer("sender-1", "not-juno-admin-account", "255"),
		transfer("carbonABLE", "not-the-customer", "255"),
	}

	err := ValidateCustody(history, "255", testCustomer, testAdmin)
	if !errors.Is(err, ErrCurrentOwnerNotAdmin) {
		t.Fatalf("expected ErrCurrentOwnerNotAdmin, got %v", err)
	}
}

func TestValidateCustody_SenderNotCustomer(t *testing.T) {
	history := []Transfer{
		transfer("someone-else", testAdmin, "255"),
	}

	err := ValidateCustody(history, "255", testCustomer, testAdmin)
	if !errors.Is(err, ErrPreviousOwnerMismatch) {
		t.Fatalf("expected ErrPreviousOwnerMismatch, got %v", err)
	}
}

func TestValidateCustody_MultipleTokensIndependent(t *testing.T) {
	history := []Transfer{
		transfer(testCustomer, testAdmin, "255"),
		transfer(testCustomer, testAdmin, "254"),
	}

	for _, tokenID := range []string{"254", "255"} {
		if err := ValidateCustody(history, tokenID, testCustomer, testAdmin); err != nil {
			t.Fatalf("expected token %s to pass, got %v", tokenID, err)
		}
	}
}

func TestValidateCustody_IgnoresOtherTokens(t *testing.T) {
	// Transfers of unrelated tokens must not count as custody records.
	history := []Transfer{
		transfer(testCustomer, testAdmin, "254"),
	}

	err := ValidateCustody(history, "255", testCustomer, testAdmin)
	if !errors.Is(err, ErrNoCustodyRecord) {
		t.Fatalf("expected ErrNoCustodyRecord, got %v", err)
	}
}
