// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/cujulink/internal/domain/types"
)

// ChainDependencies defines the interface for chain checks and generation.
type ChainDependencies interface {
	ValidateChain(ctx context.Context, req types.ValidateChainRequest) (types.ValidationResult, error)
	Challenge(ctx context.Context) (types.Challenge, error)
	RandomChain(ctx context.Context, length int) ([]types.LinkDetail, error)
}

// ChainHandler handles chain validation, challenges and generated chains.
type ChainHandler struct {
	deps ChainDependencies
}

// NewChainHandler creates a new chain handler.
func NewChainHandler(deps ChainDependencies) *ChainHandler {
	return &ChainHandler{deps: deps}
}

// HandleValidate handles POST /validate_chain requests.
func (h *ChainHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate_chain"
	var req types.ValidateChainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorFor(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.ValidateChain(r.Context(), req)
	if err != nil {
		writeErrorFor(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleChallenge handles GET /chain requests.
func (h *ChainHandler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	const op = "api.chain"
	out, err := h.deps.Challenge(r.Context())
	if err != nil {
		writeErrorFor(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGenerate handles GET /generate_player_chain?length=N requests.
func (h *ChainHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_player_chain"
	raw := r.URL.Query().Get("length")
	if raw == "" {
		writeErrorFor(w, r, NewKind(op, errMissing("length")))
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeErrorFor(w, r, WrapKind(op, ErrBadRequest, fmt.Errorf("length must be an integer, got %q", raw)))
		return
	}
	out, err := h.deps.RandomChain(r.Context(), n)
	if err != nil {
		writeErrorFor(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
