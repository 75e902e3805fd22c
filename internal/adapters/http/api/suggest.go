// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// SuggestDependencies defines the interface for name suggestions.
type SuggestDependencies interface {
	SuggestNames(ctx context.Context, query string) ([]string, error)
}

// SuggestHandler handles name suggestion requests.
type SuggestHandler struct {
	deps SuggestDependencies
}

// NewSuggestHandler creates a new suggest handler.
func NewSuggestHandler(deps SuggestDependencies) *SuggestHandler {
	return &SuggestHandler{deps: deps}
}

// HandleSuggest handles GET /suggest_player_names?query= requests.
// A missing or blank query yields an empty list.
func (h *SuggestHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	const op = "api.suggest_player_names"
	out, err := h.deps.SuggestNames(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeErrorFor(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
