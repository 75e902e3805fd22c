// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/cujulink/internal/domain/types"
)

// FindLinkDependencies defines the interface for link searches.
type FindLinkDependencies interface {
	FindLink(ctx context.Context, req types.FindLinkRequest) ([]types.LinkDetail, error)
}

// FindLinkHandler handles link searches. Searches are the expensive call, so
// they share a token bucket and each one runs under a deadline.
type FindLinkHandler struct {
	deps    FindLinkDependencies
	timeout time.Duration
	limiter *rate.Limiter
}

// NewFindLinkHandler creates a new find link handler.
func NewFindLinkHandler(deps FindLinkDependencies, timeout time.Duration, limiter *rate.Limiter) *FindLinkHandler {
	return &FindLinkHandler{deps: deps, timeout: timeout, limiter: limiter}
}

// HandleFindLink handles GET /find_link?start_player=&end_player=&link_type= requests.
func (h *FindLinkHandler) HandleFindLink(w http.ResponseWriter, r *http.Request) {
	const op = "api.find_link"
	if !h.limiter.Allow() {
		writeErrorFor(w, r, NewKind(op, ErrRateLimited))
		return
	}

	q := r.URL.Query()
	req := types.FindLinkRequest{
		StartPlayer: q.Get("start_player"),
		EndPlayer:   q.Get("end_player"),
		LinkType:    q.Get("link_type"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	out, err := h.deps.FindLink(ctx, req)
	if errors.Is(err, context.DeadlineExceeded) {
		writeErrorFor(w, r, WrapKind(op, ErrTimeout, err))
		return
	}
	if err != nil {
		writeErrorFor(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
