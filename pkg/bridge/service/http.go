// Package service exposes the migration submission pipeline over HTTP.
package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/carbonable/juno-starknet-bridge/pkg/app/errors"
	apphttp "github.com/carbonable/juno-starknet-bridge/pkg/app/http"
	"github.com/carbonable/juno-starknet-bridge/pkg/bridge"
	"github.com/carbonable/juno-starknet-bridge/pkg/queue"
)

// ItemResponse is the per-token view of a queue item returned to clients.
type ItemResponse struct {
	TokenID         string `json:"token_id"`
	MigrationStatus string `json:"migration_status"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	ErrorReason     string `json:"error_reason,omitempty"`
}

// SubmitResponse is the envelope for a successful bridge submission.
type SubmitResponse struct {
	Message string         `json:"message"`
	Items   []ItemResponse `json:"items"`
}

// HTTP wraps the pipeline and queue store to provide HTTP endpoints
type HTTP struct {
	pipeline *bridge.Pipeline
	store    queue.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// RegisterRoutes registers the bridge endpoints on the given chi router
func RegisterRoutes(r chi.Router, pipeline *bridge.Pipeline, store queue.Store, logger *zap.Logger) {
	h := &HTTP{
		pipeline: pipeline,
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}

	r.Post("/bridge", apphttp.HandleError(h.submit))
	r.Get("/customer/data/{keplr_wallet_pubkey}/{project_id}", apphttp.HandleError(h.migrationState))
}

// submit handles migration submissions
func (h *HTTP) submit(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req bridge.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := h.validate.Struct(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid request payload")
	}

	items, err := h.pipeline.Submit(r.Context(), &req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &SubmitResponse{
		Message: "Migration request enqueued",
		Items:   toItemResponses(items),
	})
	return nil
}

// migrationState reports the queue state of every token a customer submitted
// for a project.
func (h *HTTP) migrationState(w http.ResponseWriter, r *http.Request) error {
	wallet := chi.URLParam(r, "keplr_wallet_pubkey")
	projectID := chi.URLParam(r, "project_id")

	items, err := h.store.ListByCustomer(r.Context(), wallet, projectID)
	if err != nil && !errors.Is(err, queue.ErrNotFound) {
		return apperrors.GeneralError(err)
	}
	if len(items) == 0 {
		return apperrors.ResourceNotFoundError(nil, "no migrations found for wallet and project")
	}

	h.writeJSON(w, http.StatusOK, toItemResponses(items))
	return nil
}

func toItemResponses(items []*queue.Item) []ItemResponse {
	resp := make([]ItemResponse, len(items))
	for i, item := range items {
		resp[i] = ItemResponse{
			TokenID:         item.TokenID,
			MigrationStatus: string(item.Status),
			TransactionHash: item.TransactionHash,
			ErrorReason:     item.ErrorReason,
		}
	}
	return resp
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
