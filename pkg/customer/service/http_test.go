package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/carbonable/juno-starknet-bridge/pkg/customer"
)

// TODO: remove the mock impl and use mockery to generate mock

type mockStore struct {
	saved *customer.Keys
}

func (m *mockStore) Save(_ context.Context, keys *customer.Keys) error {
	m.saved = keys
	return nil
}

func (m *mockStore) Get(_ context.Context, _, _ string) (*customer.Keys, error) {
	return nil, customer.ErrNotFound
}

func newTestServer(store customer.Store) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, store, zap.NewNop())
	return r
}

func TestCustomerHTTP_Save(t *testing.T) {
	store := &mockStore{}
	handler := newTestServer(store)

	body := `{"keplr_wallet_pubkey": "wallet-a", "project_id": "project-1", "token_ids": ["254", "255"]}`
	req := httptest.NewRequest(http.MethodPost, "/customer/data", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Message != "Saved customer tokens" {
		t.Fatalf("unexpected message %q", got.Message)
	}

	if store.saved == nil {
		t.Fatalf("expected keys to be saved")
	}
	if store.saved.KeplrWalletPubkey != "wallet-a" || len(store.saved.TokenIDs) != 2 {
		t.Fatalf("unexpected saved keys: %+v", store.saved)
	}
}

func TestCustomerHTTP_Save_InvalidJSON(t *testing.T) {
	handler := newTestServer(&mockStore{})

	req := httptest.NewRequest(http.MethodPost, "/customer/data", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCustomerHTTP_Save_EmptyTokenList(t *testing.T) {
	store := &mockStore{}
	handler := newTestServer(store)

	body := `{"keplr_wallet_pubkey": "wallet-a", "project_id": "project-1", "token_ids": []}`
	req := httptest.NewRequest(http.MethodPost, "/customer/data", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if store.saved != nil {
		t.Fatalf("expected nothing saved, got %+v", store.saved)
	}
}
