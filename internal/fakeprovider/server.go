package fakeprovider

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/okian/gridiron/internal/adapters/provider"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
)

// maxRangeDays bounds how many date keys one scoreboard response lists.
const maxRangeDays = 366

type failure struct {
	status int
	body   string
}

// Server serves fixtures over the provider's URL shapes.
type Server struct {
	mu       sync.Mutex
	apiKey   string
	leagues  map[types.League]*Fixtures
	calls    map[string]int
	failures map[string][]failure
	logger   logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the request logger.
func WithServerLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer serves fx and requires apiKey on every request.
func NewServer(apiKey string, fx []*Fixtures, opts ...ServerOption) *Server {
	s := &Server{
		apiKey:   apiKey,
		leagues:  make(map[types.League]*Fixtures, len(fx)),
		calls:    make(map[string]int),
		failures: make(map[string][]failure),
		logger:   logger.Discard(),
	}
	for _, f := range fx {
		s.leagues[f.League] = f
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the provider endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/scoreboard/{league}/{start}/{end}", s.handleScoreboard)
	r.Get("/team_rankings/{league}", s.handleRankings)
	return r
}

// Calls returns how many requests endpoint has received, rejected ones included.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// FailNext makes the next request to endpoint answer with status and body.
func (s *Server) FailNext(endpoint string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = append(s.failures[endpoint], failure{status: status, body: body})
}

// begin counts the call and applies key checks and injected failures. It
// returns false when the response has already been written.
func (s *Server) begin(w http.ResponseWriter, r *http.Request, endpoint string) bool {
	s.mu.Lock()
	s.calls[endpoint]++
	var f *failure
	if q := s.failures[endpoint]; len(q) > 0 {
		f = &q[0]
		s.failures[endpoint] = q[1:]
	}
	s.mu.Unlock()

	s.logger.Debug(r.Context(), "fake provider request",
		logger.String("endpoint", endpoint),
		logger.String("path", r.URL.Path),
	)

	if r.URL.Query().Get("api_key") != s.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
		return false
	}
	if f != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
		return false
	}
	return true
}

func (s *Server) fixtures(w http.ResponseWriter, code string) (*Fixtures, bool) {
	fx, ok := s.leagues[types.League(code)]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown league"})
	}
	return fx, ok
}

type wireGame struct {
	EventID      int    `json:"event_id"`
	EventDate    string `json:"event_date"`
	AwayTeamID   string `json:"away_team_id"`
	AwayNickName string `json:"away_nick_name"`
	AwayCity     string `json:"away_city"`
	HomeTeamID   string `json:"home_team_id"`
	HomeNickName string `json:"home_nick_name"`
	HomeCity     string `json:"home_city"`
}

func (s *Server) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	if !s.begin(w, r, provider.EndpointScoreboard) {
		return
	}
	fx, ok := s.fixtures(w, chi.URLParam(r, "league"))
	if !ok {
		return
	}
	start, err1 := types.ParseDate(chi.URLParam(r, "start"))
	end, err2 := types.ParseDate(strings.TrimSuffix(chi.URLParam(r, "end"), ".json"))
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}

	results := make(map[string]any)
	for d, n := start, 0; !d.After(end.Time) && n < maxRangeDays; d, n = types.NewDate(d.AddDate(0, 0, 1)), n+1 {
		games := fx.GamesOn(d)
		if len(games) == 0 {
			results[d.String()] = []any{}
			continue
		}
		data := make(map[string]wireGame, len(games))
		for _, g := range games {
			data[g.Key] = wireGame{
				EventID:      g.EventID,
				EventDate:    g.At.Format(types.EventTimeLayout),
				AwayTeamID:   strconv.Itoa(g.Away.ID),
				AwayNickName: g.Away.NickName,
				AwayCity:     g.Away.City,
				HomeTeamID:   strconv.Itoa(g.Home.ID),
				HomeNickName: g.Home.NickName,
				HomeCity:     g.Home.City,
			}
		}
		results[d.String()] = map[string]any{"data": data}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	if !s.begin(w, r, provider.EndpointTeamRankings) {
		return
	}
	fx, ok := s.fixtures(w, strings.TrimSuffix(chi.URLParam(r, "league"), ".json"))
	if !ok {
		return
	}

	data := make([]map[string]string, 0, len(fx.Rankings))
	for _, rec := range fx.Rankings {
		data = append(data, map[string]string{
			"team_id":         strconv.Itoa(rec.TeamID),
			"team":            rec.Team,
			"rank":            strconv.Itoa(rec.Rank),
			"last_week":       strconv.Itoa(rec.LastWeek),
			"points":          formatFloat(rec.Points),
			"modifier":        formatFloat(rec.Modifier),
			"adjusted_points": formatFloat(rec.AdjustedPoints),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": map[string]any{
			"columns": map[string]string{
				"team": "Team", "rank": "Rank", "last_week": "Last Week",
				"points": "Points", "modifier": "Modifier", "adjusted_points": "Adjusted Points",
			},
			"data": data,
		},
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
