// Package types contains the request and response shapes shared by the
// service and the HTTP API.
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidate checks request DTOs. Initialized in init() with custom validators.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	requestValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = requestValidate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid request")

// Period is a service period split for display.
type Period struct {
	Season string `json:"season"`
	Team   string `json:"team"`
}

// LinkDetail describes one step of a chain and the periods the two players share.
type LinkDetail struct {
	Player      string   `json:"player"`
	WikiURL     string   `json:"wiki_url"`
	NextPlayer  string   `json:"next_player"`
	CommonClubs []Period `json:"common_clubs"`
	CommonIntl  []Period `json:"common_intl"`
}

// PlayerData is the public view of one player.
type PlayerData struct {
	OriginalName string   `json:"original_name"`
	WikiURL      string   `json:"wiki_url"`
	FullRecord   string   `json:"full_record"`
	ClubCareer   []Period `json:"club_career"`
	IntlCareer   []Period `json:"intl_career"`
}

// Challenge is a random start/end pair for the player to connect.
type Challenge struct {
	ChallengeID string `json:"challenge_id"`
	StartPlayer string `json:"start_player"`
	EndPlayer   string `json:"end_player"`
}

// InvalidLink is one broken pair of a submitted chain.
type InvalidLink struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// ValidationResult is the outcome of a chain check.
type ValidationResult struct {
	Valid        bool          `json:"valid"`
	InvalidLinks []InvalidLink `json:"invalid_links"`
}

// ValidateChainRequest is the body of POST /validate_chain.
type ValidateChainRequest struct {
	StartPlayer         string   `json:"start_player" validate:"notblank"`
	EndPlayer           string   `json:"end_player" validate:"notblank"`
	IntermediatePlayers []string `json:"intermediate_players" validate:"dive,notblank"`
	LinkType            string   `json:"link_type" validate:"omitempty,oneof=club both"`
}

// Names returns the full chain in order.
func (r *ValidateChainRequest) Names() []string {
	out := make([]string, 0, len(r.IntermediatePlayers)+2)
	out = append(out, r.StartPlayer)
	out = append(out, r.IntermediatePlayers...)
	return append(out, r.EndPlayer)
}

// Validate checks the request fields.
func (r *ValidateChainRequest) Validate() error {
	return validationError(requestValidate.Struct(r))
}

// FindLinkRequest holds the query of GET /find_link.
type FindLinkRequest struct {
	StartPlayer string `json:"start_player" validate:"notblank"`
	EndPlayer   string `json:"end_player" validate:"notblank"`
	LinkType    string `json:"link_type" validate:"omitempty,oneof=club both"`
}

// Validate checks the request fields.
func (r *FindLinkRequest) Validate() error {
	return validationError(requestValidate.Struct(r))
}

// GenerateChainRequest holds the query of GET /generate_player_chain.
type GenerateChainRequest struct {
	Length int `json:"length" validate:"gte=2"`
	Max    int `json:"-" validate:"-"`
}

// Validate checks the requested length against the configured maximum.
func (r *GenerateChainRequest) Validate() error {
	if err := validationError(requestValidate.Struct(r)); err != nil {
		return err
	}
	if r.Max > 0 && r.Length > r.Max {
		return fmt.Errorf("%w: length must be at most %d", ErrInvalidRequest, r.Max)
	}
	return nil
}

// Stats summarizes the service state.
type Stats struct {
	Players         int     `json:"players"`
	StoreGeneration uint64  `json:"store_generation"`
	RosterSize      int     `json:"roster_size"`
	SnapshotCached  bool    `json:"snapshot_cached"`
	SnapshotBuiltAt string  `json:"snapshot_built_at,omitempty"`
	ParseFailures   int     `json:"parse_failures"`
	Searches        uint64  `json:"searches"`
	Validations     uint64  `json:"validations"`
	Suggestions     uint64  `json:"suggestions"`
	AvgSearchMillis float64 `json:"avg_search_ms"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "notblank":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}
