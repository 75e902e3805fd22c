package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/cujulink/internal/adapters/http/api"
	service "github.com/okian/cujulink/internal/app"
	"github.com/okian/cujulink/internal/domain/types"
	"github.com/okian/cujulink/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// mockDependencies returns canned answers; a nil err field means success.
type mockDependencies struct {
	suggestions []string
	validation  types.ValidationResult
	links       []types.LinkDetail
	player      types.PlayerData
	challenge   types.Challenge
	err         error
	block       bool

	gotValidate types.ValidateChainRequest
	gotFind     types.FindLinkRequest
	gotLength   int
}

func (m *mockDependencies) SuggestNames(_ context.Context, _ string) ([]string, error) {
	return m.suggestions, m.err
}

func (m *mockDependencies) ValidateChain(_ context.Context, req types.ValidateChainRequest) (types.ValidationResult, error) {
	m.gotValidate = req
	return m.validation, m.err
}

func (m *mockDependencies) FindLink(ctx context.Context, req types.FindLinkRequest) ([]types.LinkDetail, error) {
	m.gotFind = req
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.links, m.err
}

func (m *mockDependencies) PlayerData(_ context.Context, _ string) (types.PlayerData, error) {
	return m.player, m.err
}

func (m *mockDependencies) Challenge(_ context.Context) (types.Challenge, error) {
	return m.challenge, m.err
}

func (m *mockDependencies) RandomChain(_ context.Context, length int) ([]types.LinkDetail, error) {
	m.gotLength = length
	return m.links, m.err
}

type mockStatsProvider struct {
	stats types.Stats
}

func (m *mockStatsProvider) GetStats(_ context.Context) types.Stats {
	return m.stats
}

func newHandler(deps *mockDependencies, opts ...api.Option) http.Handler {
	server := api.NewServer(deps, &mockStatsProvider{stats: types.Stats{Players: 3}}, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return api.RequestIDMiddleware(mux)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body.Code
}

func sampleLinks() []types.LinkDetail {
	return []types.LinkDetail{{
		Player:      "Player X",
		WikiURL:     "https://example.org/x",
		NextPlayer:  "Player Y",
		CommonClubs: []types.Period{{Season: "1990", Team: "TeamA"}},
		CommonIntl:  []types.Period{},
	}}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		h := newHandler(&mockDependencies{})

		Convey("Then the health endpoint serves metrics", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "cujulink_")
		})

		Convey("Then the stats endpoint serves JSON", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats types.Stats
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats.Players, ShouldEqual, 3)
		})

		Convey("Then a wrong method is rejected", func() {
			So(do(h, http.MethodPost, "/find_link", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(h, http.MethodGet, "/validate_chain", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then every response carries a request id", func() {
			w := do(h, http.MethodGet, "/stats", "")
			_, err := uuid.Parse(w.Header().Get(api.RequestIDHeader))
			So(err, ShouldBeNil)
		})

		Convey("Then a caller's request id is echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})
	})
}

func TestSuggestHandler(t *testing.T) {
	Convey("Given suggestions from the service", t, func() {
		deps := &mockDependencies{suggestions: []string{"Lionel Messi", "Leo Mess"}}
		h := newHandler(deps)

		Convey("When querying", func() {
			w := do(h, http.MethodGet, "/suggest_player_names?query=messi", "")

			Convey("Then the names are returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got []string
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldResemble, []string{"Lionel Messi", "Leo Mess"})
			})
		})
	})
}

func TestValidateChainHandler(t *testing.T) {
	Convey("Given a validation result", t, func() {
		deps := &mockDependencies{validation: types.ValidationResult{
			Valid:        false,
			InvalidLinks: []types.InvalidLink{{From: "Player X", To: "Player Z", Reason: "no_common_team"}},
		}}
		h := newHandler(deps)

		Convey("When posting a chain", func() {
			body := `{"start_player":"Player X","end_player":"Player Z","intermediate_players":[],"link_type":"club"}`
			w := do(h, http.MethodPost, "/validate_chain", body)

			Convey("Then the request reaches the service and the result is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotValidate.StartPlayer, ShouldEqual, "Player X")
				So(deps.gotValidate.LinkType, ShouldEqual, "club")
				var got types.ValidationResult
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Valid, ShouldBeFalse)
				So(got.InvalidLinks[0].Reason, ShouldEqual, "no_common_team")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(h, http.MethodPost, "/validate_chain", "{not json")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})

		Convey("When the service rejects the input", func() {
			deps.err = fmt.Errorf("%w: start_player is required", service.ErrInvalidInput)
			w := do(h, http.MethodPost, "/validate_chain", `{}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "start_player is required")
			})
		})
	})
}

func TestFindLinkHandler(t *testing.T) {
	Convey("Given a link from the service", t, func() {
		deps := &mockDependencies{links: sampleLinks()}
		h := newHandler(deps)

		Convey("When searching", func() {
			w := do(h, http.MethodGet, "/find_link?start_player=Player+X&end_player=Player+Y&link_type=club", "")

			Convey("Then the query reaches the service and the links are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotFind, ShouldResemble, types.FindLinkRequest{StartPlayer: "Player X", EndPlayer: "Player Y", LinkType: "club"})
				var got []types.LinkDetail
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldResemble, sampleLinks())
			})
		})

		Convey("When there is no link", func() {
			deps.err = fmt.Errorf("%w: a to b", service.ErrNoLink)
			w := do(h, http.MethodGet, "/find_link?start_player=a&end_player=b", "")

			Convey("Then it is a no_link 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(errorCode(w), ShouldEqual, "no_link")
			})
		})

		Convey("When the service fails unexpectedly", func() {
			deps.err = errors.New("disk on fire")
			w := do(h, http.MethodGet, "/find_link?start_player=a&end_player=b", "")

			Convey("Then it is an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(errorCode(w), ShouldEqual, "internal_error")
			})
		})
	})

	Convey("Given a search that outlives its deadline", t, func() {
		deps := &mockDependencies{block: true}
		h := newHandler(deps, api.WithFindTimeout(10*time.Millisecond))

		Convey("Then the request times out", func() {
			w := do(h, http.MethodGet, "/find_link?start_player=a&end_player=b", "")
			So(w.Code, ShouldEqual, http.StatusGatewayTimeout)
			So(errorCode(w), ShouldEqual, "timeout")
		})
	})

	Convey("Given a limiter allowing a single search", t, func() {
		deps := &mockDependencies{links: sampleLinks()}
		h := newHandler(deps, api.WithFindRateLimit(0.001, 1))

		Convey("Then the second search is rate limited", func() {
			So(do(h, http.MethodGet, "/find_link?start_player=a&end_player=b", "").Code, ShouldEqual, http.StatusOK)
			w := do(h, http.MethodGet, "/find_link?start_player=a&end_player=b", "")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(errorCode(w), ShouldEqual, "rate_limited")
		})
	})
}

func TestPlayerHandler(t *testing.T) {
	Convey("Given a stored player", t, func() {
		deps := &mockDependencies{player: types.PlayerData{OriginalName: "Lionel Messi"}}
		h := newHandler(deps)

		Convey("When looking it up", func() {
			w := do(h, http.MethodGet, "/get_player_data?player_name=messi", "")

			Convey("Then the record is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got types.PlayerData
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.OriginalName, ShouldEqual, "Lionel Messi")
			})
		})

		Convey("When the name is missing", func() {
			w := do(h, http.MethodGet, "/get_player_data", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "player_name is required")
		})

		Convey("When the player is unknown", func() {
			deps.err = service.ErrPlayerNotFound
			w := do(h, http.MethodGet, "/get_player_data?player_name=nobody", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})
	})
}

func TestChainHandlers(t *testing.T) {
	Convey("Given a challenge and a generated chain", t, func() {
		deps := &mockDependencies{
			challenge: types.Challenge{ChallengeID: "id", StartPlayer: "Player X", EndPlayer: "Player Z"},
			links:     sampleLinks(),
		}
		h := newHandler(deps)

		Convey("Then /chain returns the challenge", func() {
			w := do(h, http.MethodGet, "/chain", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got types.Challenge
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got, ShouldResemble, deps.challenge)
		})

		Convey("Then /generate_player_chain passes the length through", func() {
			w := do(h, http.MethodGet, "/generate_player_chain?length=4", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.gotLength, ShouldEqual, 4)
		})

		Convey("Then a missing or malformed length is a bad request", func() {
			So(do(h, http.MethodGet, "/generate_player_chain", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/generate_player_chain?length=four", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then too few players is a bad request", func() {
			deps.err = service.ErrNotEnoughPlayers
			So(do(h, http.MethodGet, "/chain", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOperationErrors(t *testing.T) {
	Convey("Given an operation error with a kind and a cause", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both are reachable with errors.Is", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("Then Wrap keeps nil as nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.NewKind("api.op", api.ErrTimeout).Error(), ShouldEqual, "api.op: request timed out")
		})
	})
}
