package fakeprovider

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gridiron/internal/domain/types"
)

// Generation constants.
const (
	firstEventID   = 1233800
	eventIDsPerDay = 50
	topPoints      = 40.0
	pointsStep     = 1.2
	pointsJitter   = 1.5
	modifierRange  = 1.6
	lastWeekSpread = 5
	daysPerWeek    = 7
)

var kickoffs = []struct{ hour, minute int }{
	{13, 0}, {16, 5}, {16, 25}, {20, 20},
}

// Game is one scheduled fixture.
type Game struct {
	Key     string
	EventID int
	At      time.Time
	Away    Team
	Home    Team
}

// Fixtures is a generated season for one league.
type Fixtures struct {
	League   types.League
	Rankings []types.RankingRecord
	Games    []Game

	first  types.Date
	last   types.Date
	byDate map[string][]Game
	ranks  map[int]types.RankingRecord
}

// Generate builds fixtures from cfg. The same cfg always yields the same
// fixtures, game keys included.
func Generate(cfg Config) *Fixtures {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	fx := &Fixtures{
		League: cfg.League,
		first:  cfg.SeasonStart,
		byDate: make(map[string][]Game),
		ranks:  make(map[int]types.RankingRecord),
	}

	order := rng.Perm(len(teams))
	published := len(order) - cfg.Unranked
	for i, idx := range order[:published] {
		t := teams[idx]
		points := round3(topPoints - float64(i)*pointsStep + rng.Float64()*pointsJitter)
		modifier := round3(-rng.Float64() * modifierRange)
		rec := types.RankingRecord{
			TeamID:         t.ID,
			Team:           t.City,
			Rank:           i + 1,
			LastWeek:       clamp(i+1+rng.IntN(lastWeekSpread)-lastWeekSpread/2, 1, len(teams)),
			Points:         points,
			Modifier:       modifier,
			AdjustedPoints: round3(points + modifier),
		}
		fx.Rankings = append(fx.Rankings, rec)
		fx.ranks[t.ID] = rec
	}

	for week := 0; week < cfg.Weeks; week++ {
		day := cfg.SeasonStart.AddDate(0, 0, week*daysPerWeek)
		date := types.NewDate(day)
		fx.last = date

		slate := rng.Perm(len(teams))
		for j := 0; j < cfg.GamesPerWeek; j++ {
			k := kickoffs[j*len(kickoffs)/cfg.GamesPerWeek]
			eventID := firstEventID + week*eventIDsPerDay + j
			g := Game{
				Key:     gameKey(cfg.League, eventID),
				EventID: eventID,
				At:      time.Date(day.Year(), day.Month(), day.Day(), k.hour, k.minute, 0, 0, time.UTC),
				Away:    teams[slate[2*j]],
				Home:    teams[slate[2*j+1]],
			}
			fx.Games = append(fx.Games, g)
			fx.byDate[date.String()] = append(fx.byDate[date.String()], g)
		}
	}

	sort.SliceStable(fx.Games, func(i, j int) bool {
		a, b := fx.Games[i], fx.Games[j]
		if !a.At.Equal(b.At) {
			return a.At.Before(b.At)
		}
		return a.EventID < b.EventID
	})
	return fx
}

// FirstDay returns the first game day.
func (f *Fixtures) FirstDay() types.Date { return f.first }

// LastDay returns the last game day.
func (f *Fixtures) LastDay() types.Date { return f.last }

// GamesOn returns the games scheduled on d in generation order.
func (f *Fixtures) GamesOn(d types.Date) []Game {
	return f.byDate[d.String()]
}

// Between returns the games from start to end inclusive, ordered by kickoff
// then event id.
func (f *Fixtures) Between(start, end types.Date) []Game {
	var out []Game
	for _, g := range f.Games {
		d := types.NewDate(g.At)
		if d.Before(start.Time) || d.After(end.Time) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Ranking returns the published ranking of teamID.
func (f *Fixtures) Ranking(teamID int) (types.RankingRecord, bool) {
	r, ok := f.ranks[teamID]
	return r, ok
}

// Record returns the scoreboard record the façade should produce for g. ok is
// false when either team is unranked.
func (f *Fixtures) Record(g Game) (types.ScoreboardRecord, bool) {
	home, hok := f.ranks[g.Home.ID]
	away, aok := f.ranks[g.Away.ID]
	if !hok || !aok {
		return types.ScoreboardRecord{}, false
	}
	return types.ScoreboardRecord{
		EventID:        g.EventID,
		EventDate:      types.NewDate(g.At),
		EventTime:      types.Clock{Time: g.At},
		AwayTeamID:     g.Away.ID,
		AwayNickName:   g.Away.NickName,
		AwayCity:       g.Away.City,
		AwayRank:       away.Rank,
		AwayRankPoints: types.RoundPoints(away.AdjustedPoints),
		HomeTeamID:     g.Home.ID,
		HomeNickName:   g.Home.NickName,
		HomeCity:       g.Home.City,
		HomeRank:       home.Rank,
		HomeRankPoints: types.RoundPoints(home.AdjustedPoints),
	}, true
}

func gameKey(league types.League, eventID int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(league.String()+"/"+strconv.Itoa(eventID))).String()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
