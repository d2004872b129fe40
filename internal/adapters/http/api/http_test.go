package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/okian/gridiron/internal/adapters/http/api"
	"github.com/okian/gridiron/internal/adapters/provider"
	"github.com/okian/gridiron/internal/adapters/repository"
	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDependencies struct {
	mu              sync.Mutex
	scoreboardCalls int
	rankingsCalls   int
	result          service.ScoreboardResult
	scoreboardErr   error
	rankings        []types.RankingRecord
	rankingsErr     error
	gotStart        types.Date
	gotEnd          types.Date
}

func (m *mockDependencies) Scoreboard(_ context.Context, _ types.League, start, end types.Date) (service.ScoreboardResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreboardCalls++
	m.gotStart, m.gotEnd = start, end
	return m.result, m.scoreboardErr
}

func (m *mockDependencies) TeamRankings(_ context.Context, _ types.League) ([]types.RankingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankingsCalls++
	return m.rankings, m.rankingsErr
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newRouter(deps *mockDependencies) http.Handler {
	r := api.NewRouter()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"gamesAssembled": 3}}).Register(context.Background(), r)
	return r
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestScoreboardRoute(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDependencies{}
		h := newRouter(deps)

		Convey("When the league is unknown", func() {
			w := serve(h, "/scoreboard/nfl/2020-01-12/2020-01-19")

			Convey("Then 422 should be returned without calling the service", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(decodeError(w)["code"], ShouldEqual, "validation_error")
				So(deps.scoreboardCalls, ShouldEqual, 0)
			})
		})

		Convey("When a date is malformed", func() {
			for _, path := range []string{
				"/scoreboard/NFL/2020-1-12/2020-01-19",
				"/scoreboard/NFL/2020-01-12/19-01-2020",
				"/scoreboard/NFL/2020-02-30/2020-03-01",
			} {
				w := serve(h, path)
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			}

			Convey("Then the service should not be called", func() {
				So(deps.scoreboardCalls, ShouldEqual, 0)
			})
		})

		Convey("When records are assembled", func() {
			at, _ := types.ParseDate("2020-01-12")
			deps.result = service.ScoreboardResult{Records: []types.ScoreboardRecord{{
				EventID:        1233827,
				EventDate:      at,
				EventTime:      types.Clock{Time: at.Add(15*time.Hour + 5*time.Minute)},
				AwayTeamID:     64,
				AwayNickName:   "Texans",
				AwayCity:       "Houston",
				AwayRank:       9,
				AwayRankPoints: 7.01,
				HomeTeamID:     65,
				HomeNickName:   "Chiefs",
				HomeCity:       "Kansas City",
				HomeRank:       2,
				HomeRankPoints: 33.42,
			}}}
			w := serve(h, "/scoreboard/NFL/2020-01-12/2020-01-19")

			Convey("Then the records should use the fixed field names", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				var rows []map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				So(rows[0]["event_id"], ShouldEqual, 1233827.0)
				So(rows[0]["event_date"], ShouldEqual, "2020-01-12")
				So(rows[0]["event_time"], ShouldEqual, "15:05:00")
				So(rows[0]["away_rank_points"], ShouldEqual, 7.01)
				So(rows[0]["home_city"], ShouldEqual, "Kansas City")
				So(len(rows[0]), ShouldEqual, 13)
			})

			Convey("Then the service should receive the parsed dates", func() {
				So(deps.gotStart.String(), ShouldEqual, "2020-01-12")
				So(deps.gotEnd.String(), ShouldEqual, "2020-01-19")
			})
		})

		Convey("When there are no games", func() {
			w := serve(h, "/scoreboard/NFL/2020-01-12/2020-01-19")

			Convey("Then an empty array should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, "[]\n")
			})
		})

		Convey("When the provider answers 503", func() {
			deps.result = service.ScoreboardResult{Upstream: &provider.StatusError{
				StatusCode:  http.StatusServiceUnavailable,
				ContentType: "application/json",
				Body:        []byte(`{"error":"unavailable"}`),
			}}
			w := serve(h, "/scoreboard/NFL/2020-01-12/2020-01-19")

			Convey("Then status and body should be relayed verbatim", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json")
				So(w.Body.String(), ShouldEqual, `{"error":"unavailable"}`)
			})
		})

		Convey("When assembly fails", func() {
			deps.scoreboardErr = service.ErrUnrankedTeam

			Convey("Then 500 internal_error should be returned", func() {
				w := serve(h, "/scoreboard/NFL/2020-01-12/2020-01-19")
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["code"], ShouldEqual, "internal_error")
			})
		})

		Convey("When the rankings cannot be refreshed", func() {
			deps.scoreboardErr = errors.Join(repository.ErrRefresh, provider.ErrRequest)

			Convey("Then 502 upstream_error should be returned", func() {
				w := serve(h, "/scoreboard/NFL/2020-01-12/2020-01-19")
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(decodeError(w)["code"], ShouldEqual, "upstream_error")
			})
		})
	})
}

func TestTeamRankingsRoute(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDependencies{}
		h := newRouter(deps)

		Convey("When the league is unknown", func() {
			w := serve(h, "/team_rankings/MLB")

			Convey("Then 422 should be returned without calling the service", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(deps.rankingsCalls, ShouldEqual, 0)
			})
		})

		Convey("When rankings are available", func() {
			deps.rankings = []types.RankingRecord{{TeamID: 59, Team: "Baltimore", Rank: 1, LastWeek: 1, Points: 34.216, Modifier: -0.8, AdjustedPoints: 33.416}}
			w := serve(h, "/team_rankings/NFL")

			Convey("Then they should be returned unrounded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got []types.RankingRecord
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldResemble, deps.rankings)
			})
		})

		Convey("When the provider sends an incomplete ranking", func() {
			deps.rankingsErr = fmt.Errorf("%w: %w: rankings[0]: missing adjusted_points", repository.ErrRefresh, provider.ErrDecode)
			w := serve(h, "/team_rankings/NFL")

			Convey("Then 502 upstream_error should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(decodeError(w)["message"], ShouldContainSubstring, "missing adjusted_points")
			})
		})

		Convey("When the provider fails", func() {
			deps.rankingsErr = &provider.StatusError{StatusCode: http.StatusServiceUnavailable}
			w := serve(h, "/team_rankings/NFL")

			Convey("Then 502 upstream_error should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(decodeError(w)["code"], ShouldEqual, "upstream_error")
			})
		})
	})
}

func TestAmbientRoutes(t *testing.T) {
	Convey("Given an API server", t, func() {
		h := newRouter(&mockDependencies{})

		Convey("When probing health", func() {
			w := serve(h, "/healthz")

			Convey("Then ok should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When reading stats", func() {
			w := serve(h, "/stats")

			Convey("Then the provider's stats should be encoded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"gamesAssembled":3`)
			})
		})

		Convey("When scraping metrics after a request", func() {
			serve(h, "/healthz")
			w := serve(h, "/metrics")

			Convey("Then the HTTP counters should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "gridiron_scoreboard_http_requests_total")
			})
		})

		Convey("When a request carries an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it should be echoed", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})

		Convey("When a request has no id", func() {
			w := serve(h, "/healthz")

			Convey("Then one should be assigned", func() {
				So(len(w.Header().Get(api.RequestIDHeader)), ShouldEqual, 36)
			})
		})
	})
}
