// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/cujulink/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SuggestDependencies
	ChainDependencies
	FindLinkDependencies
	PlayerDependencies
}

// Defaults applied when the server is built without options.
const (
	defaultFindTimeout = 5 * time.Second
	defaultFindRate    = 20
	defaultFindBurst   = 40
	maxBodyBytes       = 1 << 20
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	suggestHandler  *SuggestHandler
	chainHandler    *ChainHandler
	findLinkHandler *FindLinkHandler
	playerHandler   *PlayerHandler
}

type serverOptions struct {
	findTimeout time.Duration
	findRate    rate.Limit
	findBurst   int
}

// Option configures a Server.
type Option func(*serverOptions)

// WithFindTimeout bounds how long a single find_link search may run.
func WithFindTimeout(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.findTimeout = d
		}
	}
}

// WithFindRateLimit sets the token bucket shared by all find_link requests.
func WithFindRateLimit(perSecond float64, burst int) Option {
	return func(o *serverOptions) {
		if perSecond > 0 && burst > 0 {
			o.findRate = rate.Limit(perSecond)
			o.findBurst = burst
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{
		findTimeout: defaultFindTimeout,
		findRate:    defaultFindRate,
		findBurst:   defaultFindBurst,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		suggestHandler:  NewSuggestHandler(deps),
		chainHandler:    NewChainHandler(deps),
		findLinkHandler: NewFindLinkHandler(deps, o.findTimeout, rate.NewLimiter(o.findRate, o.findBurst)),
		playerHandler:   NewPlayerHandler(deps),
	}
}

// Register attaches all HTTP routes to mux. Method-qualified patterns make the
// mux answer 405 for other methods.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /suggest_player_names", MetricsMiddleware(s.suggestHandler.HandleSuggest, "suggest_player_names"))
	mux.HandleFunc("POST /validate_chain", MetricsMiddleware(s.chainHandler.HandleValidate, "validate_chain"))
	mux.HandleFunc("GET /chain", MetricsMiddleware(s.chainHandler.HandleChallenge, "chain"))
	mux.HandleFunc("GET /generate_player_chain", MetricsMiddleware(s.chainHandler.HandleGenerate, "generate_player_chain"))
	mux.HandleFunc("GET /find_link", MetricsMiddleware(s.findLinkHandler.HandleFindLink, "find_link"))
	mux.HandleFunc("GET /get_player_data", MetricsMiddleware(s.playerHandler.HandlePlayerData, "get_player_data"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// Stats mirrors the service statistics shape.
type Stats = types.Stats
