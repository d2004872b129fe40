package fakeprovider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/gridiron/internal/adapters/provider"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/internal/fakeprovider"
	"github.com/okian/gridiron/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func newServer(cfg fakeprovider.Config) (*fakeprovider.Fixtures, *fakeprovider.Server, *httptest.Server) {
	fx := fakeprovider.Generate(cfg)
	fake := fakeprovider.NewServer("secret", []*fakeprovider.Fixtures{fx})
	return fx, fake, httptest.NewServer(fake.Handler())
}

func newClient(url, key string) *provider.Client {
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	return provider.NewClient(url, key, provider.WithMetrics(m))
}

func TestGenerate(t *testing.T) {
	Convey("Given a fixture config", t, func() {
		cfg := fakeprovider.DefaultConfig()

		Convey("When generating twice", func() {
			a := fakeprovider.Generate(cfg)
			b := fakeprovider.Generate(cfg)

			Convey("Then the fixtures should be identical", func() {
				So(a.Rankings, ShouldResemble, b.Rankings)
				So(a.Games, ShouldResemble, b.Games)
			})

			Convey("Then every team should be ranked once in order", func() {
				So(len(a.Rankings), ShouldEqual, 32)
				seen := make(map[int]bool)
				for i, r := range a.Rankings {
					So(r.Rank, ShouldEqual, i+1)
					So(seen[r.TeamID], ShouldBeFalse)
					seen[r.TeamID] = true
				}
			})

			Convey("Then games should fall on weekly game days", func() {
				So(len(a.Games), ShouldEqual, cfg.Weeks*cfg.GamesPerWeek)
				So(a.FirstDay().String(), ShouldEqual, "2020-01-12")
				So(a.LastDay().String(), ShouldEqual, "2020-02-02")
				So(len(a.GamesOn(a.FirstDay())), ShouldEqual, cfg.GamesPerWeek)
				So(a.GamesOn(types.NewDate(a.FirstDay().AddDate(0, 0, 1))), ShouldBeEmpty)
			})

			Convey("Then no team should play twice on one day", func() {
				playing := make(map[int]bool)
				for _, g := range a.GamesOn(a.FirstDay()) {
					So(playing[g.Home.ID], ShouldBeFalse)
					So(playing[g.Away.ID], ShouldBeFalse)
					playing[g.Home.ID], playing[g.Away.ID] = true, true
				}
			})
		})

		Convey("When some teams are unranked", func() {
			cfg.Unranked = 3
			fx := fakeprovider.Generate(cfg)

			Convey("Then they should be missing from the rankings", func() {
				So(len(fx.Rankings), ShouldEqual, 29)
				unranked := 0
				for _, g := range fx.Games {
					if _, ok := fx.Record(g); !ok {
						unranked++
					}
				}
				So(unranked, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestServer(t *testing.T) {
	Convey("Given a fake provider", t, func() {
		fx, fake, srv := newServer(fakeprovider.DefaultConfig())
		defer srv.Close()
		ctx := context.Background()

		Convey("When the provider client fetches a week", func() {
			end := types.NewDate(fx.FirstDay().AddDate(0, 0, 6))
			sb, err := newClient(srv.URL, "secret").FetchScoreboard(ctx, types.LeagueNFL, fx.FirstDay(), end)

			Convey("Then only the game day should carry games", func() {
				So(err, ShouldBeNil)
				So(len(sb.Dates), ShouldEqual, 1)
				So(sb.GameCount(), ShouldEqual, len(fx.GamesOn(fx.FirstDay())))
				So(fake.Calls(provider.EndpointScoreboard), ShouldEqual, 1)
			})
		})

		Convey("When the provider client fetches rankings", func() {
			recs, err := newClient(srv.URL, "secret").FetchRankings(ctx, types.LeagueNFL)

			Convey("Then the string-encoded numbers should decode to the fixtures", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldResemble, fx.Rankings)
			})
		})

		Convey("When the api key is wrong", func() {
			_, err := newClient(srv.URL, "nope").FetchRankings(ctx, types.LeagueNFL)

			Convey("Then the provider should answer 401", func() {
				var se *provider.StatusError
				So(err, ShouldHaveSameTypeAs, se)
				So(err.(*provider.StatusError).StatusCode, ShouldEqual, http.StatusUnauthorized)
				So(fake.Calls(provider.EndpointTeamRankings), ShouldEqual, 1)
			})
		})

		Convey("When the league is unknown", func() {
			_, err := newClient(srv.URL, "secret").FetchRankings(ctx, types.League("CFL"))

			Convey("Then the provider should answer 404", func() {
				So(err, ShouldNotBeNil)
				So(err.(*provider.StatusError).StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a failure is injected", func() {
			fake.FailNext(provider.EndpointScoreboard, http.StatusServiceUnavailable, `{"error":"unavailable"}`)
			client := newClient(srv.URL, "secret")
			_, err := client.FetchScoreboard(ctx, types.LeagueNFL, fx.FirstDay(), fx.FirstDay())

			Convey("Then only the next call should fail", func() {
				se := err.(*provider.StatusError)
				So(se.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
				So(string(se.Body), ShouldEqual, `{"error":"unavailable"}`)

				_, err = client.FetchScoreboard(ctx, types.LeagueNFL, fx.FirstDay(), fx.FirstDay())
				So(err, ShouldBeNil)
				So(fake.Calls(provider.EndpointScoreboard), ShouldEqual, 2)
			})
		})
	})
}

func TestCheck(t *testing.T) {
	Convey("Given fixtures and a façade stand-in answering from them", t, func() {
		fx := fakeprovider.Generate(fakeprovider.DefaultConfig())
		var records []types.ScoreboardRecord
		for _, g := range fx.Between(fx.FirstDay(), fx.LastDay()) {
			rec, _ := fx.Record(g)
			records = append(records, rec)
		}

		mux := http.NewServeMux()
		mux.HandleFunc("/team_rankings/NFL", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, fx.Rankings)
		})
		mux.HandleFunc("/scoreboard/NFL/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, records)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When checking it", func() {
			report, err := fakeprovider.Check(context.Background(), &http.Client{Timeout: 5 * time.Second}, srv.URL, fx)

			Convey("Then the report should be clean", func() {
				So(err, ShouldBeNil)
				So(report.OK(), ShouldBeTrue)
				So(report.Records, ShouldEqual, len(fx.Games))
				So(report.Rankings, ShouldEqual, 32)
			})
		})

		Convey("When the stand-in drops a record", func() {
			records = records[1:]
			report, err := fakeprovider.Check(context.Background(), srv.Client(), srv.URL, fx)

			Convey("Then the report should list a mismatch", func() {
				So(err, ShouldBeNil)
				So(report.OK(), ShouldBeFalse)
				So(report.Mismatches[0], ShouldContainSubstring, "scoreboard")
			})
		})
	})
}
