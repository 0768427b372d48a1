// Package service exposes customer token list storage over HTTP.
package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/carbonable/juno-starknet-bridge/pkg/app/errors"
	apphttp "github.com/carbonable/juno-starknet-bridge/pkg/app/http"
	"github.com/carbonable/juno-starknet-bridge/pkg/customer"
)

// HTTP wraps the customer keys store to provide HTTP endpoints
type HTTP struct {
	store    customer.Store
	validate *validator.Validate
	logger   *zap.Logger
}

// RegisterRoutes registers the customer data endpoints on the given chi router
func RegisterRoutes(r chi.Router, store customer.Store, logger *zap.Logger) {
	h := &HTTP{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}

	r.Post("/customer/data", apphttp.HandleError(h.save))
}

// save records the token list a customer intends to migrate
func (h *HTTP) save(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var keys customer.Keys
	if err := json.Unmarshal(body, &keys); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := h.validate.Struct(&keys); err != nil {
		return apperrors.BadRequestError(err, "invalid request payload")
	}

	if err := h.store.Save(r.Context(), &keys); err != nil {
		return apperrors.GeneralError(err)
	}

	h.logger.Info("saved customer tokens",
		zap.String("wallet", keys.KeplrWalletPubkey),
		zap.String("project", keys.ProjectID),
		zap.Int("tokens", len(keys.TokenIDs)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "Saved customer tokens"})
	return nil
}
