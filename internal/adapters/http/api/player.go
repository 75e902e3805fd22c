// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/cujulink/internal/domain/types"
)

// PlayerDependencies defines the interface for single player lookups.
type PlayerDependencies interface {
	PlayerData(ctx context.Context, name string) (types.PlayerData, error)
}

// PlayerHandler handles player lookups.
type PlayerHandler struct {
	deps PlayerDependencies
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps PlayerDependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

// HandlePlayerData handles GET /get_player_data?player_name= requests.
func (h *PlayerHandler) HandlePlayerData(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player_data"
	name := r.URL.Query().Get("player_name")
	if strings.TrimSpace(name) == "" {
		writeErrorFor(w, r, NewKind(op, errMissing("player_name")))
		return
	}
	out, err := h.deps.PlayerData(r.Context(), name)
	if err != nil {
		writeErrorFor(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
