package store

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"efi-app/internal/model"

	"github.com/shopspring/decimal"
)

// seedCurrentRound is the round in progress in the demo data.
const seedCurrentRound = 10

var seedClubs = map[int][]string{
	1: {
		"Arsenal", "Aston Villa", "Bournemouth", "Brentford", "Brighton", "Chelsea", "Crystal Palace",
		"Everton", "Fulham", "Ipswich Town", "Leicester City", "Liverpool", "Manchester City",
		"Manchester United", "Newcastle United", "Nottingham Forest", "Southampton", "Tottenham",
		"West Ham", "Wolves",
	},
	2: {
		"Alavés", "Athletic Club", "Atlético Madrid", "Barcelona", "Celta Vigo", "Espanyol", "Getafe",
		"Girona", "Las Palmas", "Leganés", "Mallorca", "Osasuna", "Rayo Vallecano", "Real Betis",
		"Real Madrid", "Real Sociedad", "Sevilla", "Valencia", "Valladolid", "Villarreal",
	},
	3: {
		"Atalanta", "Bologna", "Cagliari", "Como", "Empoli", "Fiorentina", "Genoa", "Hellas Verona",
		"Inter", "Juventus", "Lazio", "Lecce", "AC Milan", "Monza", "Napoli", "Parma", "Roma",
		"Torino", "Udinese", "Venezia",
	},
	4: {
		"Augsburg", "Bayer Leverkusen", "Bayern Munich", "Bochum", "Borussia Dortmund",
		"Borussia Mönchengladbach", "Eintracht Frankfurt", "Freiburg", "Heidenheim", "Hoffenheim",
		"Holstein Kiel", "Mainz", "RB Leipzig", "St. Pauli", "Stuttgart", "Union Berlin",
		"Werder Bremen", "Wolfsburg",
	},
	5: {
		"Angers", "Auxerre", "Brest", "Le Havre", "Lens", "Lille", "Lyon", "Marseille", "Monaco",
		"Montpellier", "Nantes", "Nice", "Paris Saint-Germain", "Reims", "Rennes", "Saint-Étienne",
		"Strasbourg", "Toulouse",
	},
}

var seedNetworks = []string{"Sky Sports", "TNT Sports", "Amazon Prime", "DAZN", "beIN Sports"}

type seedRecord struct {
	w, d, l, gf, ga int
	form            []model.FormResult
}

func (r *seedRecord) add(gf, ga int) {
	r.gf += gf
	r.ga += ga
	var res model.FormResult
	switch {
	case gf > ga:
		r.w++
		res = model.FormWin
	case gf == ga:
		r.d++
		res = model.FormDraw
	default:
		r.l++
		res = model.FormLoss
	}
	r.form = append(r.form, res)
	if len(r.form) > model.FormLength {
		r.form = r.form[len(r.form)-model.FormLength:]
	}
}

// Seed fills s with a deterministic demo season for every competition in the
// default catalog. The current round straddles now so the scoreboard has both
// results and fixtures.
func Seed(ctx context.Context, s Store, now time.Time) error {
	rng := rand.New(rand.NewSource(42))
	now = now.UTC()
	season := now.Year()
	if now.Month() < time.August {
		season--
	}
	for _, c := range model.DefaultCatalog {
		if err := seedCompetition(ctx, s, c, season, now, rng); err != nil {
			return fmt.Errorf("seed %s: %w", c.Slug, err)
		}
	}
	return nil
}

func seedCompetition(ctx context.Context, s Store, c model.Competition, season int, now time.Time, rng *rand.Rand) error {
	clubs := seedClubs[c.ID]
	if len(clubs) < c.LeagueSize {
		return fmt.Errorf("%w: %d clubs for league size %d", ErrInvalidInput, len(clubs), c.LeagueSize)
	}
	clubs = clubs[:c.LeagueSize]
	n := len(clubs)

	strength := make([]float64, n)
	for i := range strength {
		strength[i] = rng.NormFloat64() * 0.6
	}

	rounds := roundRobin(n)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	roundStart := func(r int) time.Time {
		return today.AddDate(0, 0, 7*(r-seedCurrentRound)-2)
	}

	records := make([]seedRecord, n)
	prevRanks := make([]int, n)
	prevEFI := make([]float64, n)

	preseason := seedTable(c, season, 0, clubs, strength, records, prevRanks, len(rounds), 0, 0, roundStart(1).AddDate(0, 0, -1))
	if err := s.PutTable(ctx, preseason.table); err != nil {
		return err
	}
	copy(prevRanks, preseason.ranks)
	copy(prevEFI, preseason.efi)

	var (
		matches []model.MatchEvent
		trends  *model.Trends
	)
	for r := 1; r <= len(rounds); r++ {
		start := roundStart(r)
		completed := 0
		last := start
		for i, p := range rounds[r-1] {
			h, a := p[0], p[1]
			kickoff := start.AddDate(0, 0, i%3).Add(time.Duration(12+2*(i%4)) * time.Hour)
			m := model.MatchEvent{
				ID:                   int64(c.ID)*100000 + int64(r)*100 + int64(i),
				CompetitionID:        c.ID,
				Season:               season,
				Matchweek:            r,
				DisplayWithMatchweek: r,
				Time:                 kickoff,
				Club1:                clubs[h],
				Club2:                clubs[a],
				Club1Abbrev:          abbrev(clubs[h]),
				Club2Abbrev:          abbrev(clubs[a]),
			}
			m.Prob1, m.ProbD, m.Prob2 = outcomeProbabilities(strength[h], strength[a])
			if i == 0 {
				network := seedNetworks[c.ID%len(seedNetworks)]
				m.Network = &network
			}
			if r <= seedCurrentRound && kickoff.Before(now) {
				g1 := poisson(rng, 1.45*math.Exp(0.35*(strength[h]-strength[a])+0.1))
				g2 := poisson(rng, 1.15*math.Exp(0.35*(strength[a]-strength[h])))
				m.Completed = true
				m.Score1, m.Score2 = &g1, &g2
				records[h].add(g1, g2)
				records[a].add(g2, g1)
				completed++
				last = kickoff
			}
			matches = append(matches, m)
		}
		if r > seedCurrentRound {
			continue
		}
		snap := seedTable(c, season, r, clubs, strength, records, prevRanks, len(rounds), completed, len(rounds[r-1]), last)
		if err := s.PutTable(ctx, snap.table); err != nil {
			return err
		}
		if r == seedCurrentRound {
			trends = seedTrends(clubs, snap.efi, prevEFI)
		}
		copy(prevRanks, snap.ranks)
		copy(prevEFI, snap.efi)
	}
	if err := s.PutScores(ctx, matches); err != nil {
		return err
	}

	return s.PutLatest(ctx, model.Latest{
		CompetitionID: c.ID,
		Table:         model.Pointer{Season: season, Matchweek: seedCurrentRound},
		Scores:        model.Pointer{Season: season, Matchweek: seedCurrentRound},
		Seasons:       []model.Season{{Season: season, Matchweeks: seedCurrentRound}},
		Trends:        trends,
	})
}

type seedSnapshot struct {
	table model.Table
	// ranks and efi are indexed by club.
	ranks []int
	efi   []float64
}

func seedTable(c model.Competition, season, matchweek int, clubs []string, strength []float64, records []seedRecord, prevRanks []int, totalRounds, completed, total int, asOf time.Time) seedSnapshot {
	n := len(clubs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	points := func(i int) int { return 3*records[i].w + records[i].d }
	sort.SliceStable(order, func(x, y int) bool {
		i, j := order[x], order[y]
		if points(i) != points(j) {
			return points(i) > points(j)
		}
		gdI, gdJ := records[i].gf-records[i].ga, records[j].gf-records[j].ga
		if gdI != gdJ {
			return gdI > gdJ
		}
		if records[i].gf != records[j].gf {
			return records[i].gf > records[j].gf
		}
		return clubs[i] < clubs[j]
	})

	remaining := float64(totalRounds - matchweek)
	projected := make([]float64, n)
	for i := range projected {
		projected[i] = float64(points(i)) + remaining*(1.35+0.6*strength[i])
	}
	projectedOrder := append([]int(nil), order...)
	sort.SliceStable(projectedOrder, func(x, y int) bool {
		return projected[projectedOrder[x]] > projected[projectedOrder[y]]
	})
	expectedPos := make([]int, n)
	for pos, i := range projectedOrder {
		expectedPos[i] = pos
	}
	spread := 0.8 + 3.5*remaining/float64(totalRounds)

	snap := seedSnapshot{ranks: make([]int, n), efi: make([]float64, n)}
	rows := make([]model.TeamRow, 0, n)
	for pos, i := range order {
		rec := records[i]
		mp := rec.w + rec.d + rec.l
		gd := rec.gf - rec.ga
		perGame := 0.0
		if mp > 0 {
			perGame = float64(gd) / float64(mp)
		}
		efi := round(50+12*strength[i]+1.5*perGame, 1)
		change := 0
		if matchweek > 0 && prevRanks[i] > 0 {
			change = prevRanks[i] - (pos + 1)
		}
		rows = append(rows, model.TeamRow{
			UpdateDate:    asOf.Format("2006-01-02"),
			Rank:          pos + 1,
			Change:        change,
			Name:          clubs[i],
			Abbrev:        abbrev(clubs[i]),
			EFI:           efi,
			Off:           round(1.4+0.35*strength[i], 2),
			Def:           round(1.4-0.35*strength[i], 2),
			MP:            mp,
			W:             rec.w,
			D:             rec.d,
			L:             rec.l,
			GF:            rec.gf,
			GA:            rec.ga,
			GD:            gd,
			Pts:           points(i),
			Form:          append([]model.FormResult(nil), rec.form...),
			ProbPositions: positionProbabilities(n, expectedPos[i], spread),
			AvgPts:        round(projected[i], 1),
			AvgGD:         round(float64(gd)+remaining*0.6*strength[i], 1),
		})
		snap.ranks[i] = pos + 1
		snap.efi[i] = efi
	}
	snap.table = model.Table{
		CompetitionID:    c.ID,
		Season:           season,
		Matchweek:        matchweek,
		CompletedMatches: completed,
		TotalMatches:     total,
		Rows:             rows,
	}
	return snap
}

func seedTrends(clubs []string, efi, prevEFI []float64) *model.Trends {
	var up, down model.Trend
	for i, name := range clubs {
		delta := round(efi[i]-prevEFI[i], 1)
		t := model.Trend{ShortName: abbrev(name), Change: delta, Current: efi[i]}
		if delta > up.Change {
			up = t
		}
		if delta < down.Change {
			down = t
		}
	}
	return &model.Trends{Up: up, Down: down}
}

// roundRobin schedules a double round robin with the circle method; n must be even.
func roundRobin(n int) [][][2]int {
	teams := make([]int, n)
	for i := range teams {
		teams[i] = i
	}
	half := n / 2
	rounds := make([][][2]int, 0, 2*(n-1))
	for r := 0; r < n-1; r++ {
		pairs := make([][2]int, 0, half)
		for i := 0; i < half; i++ {
			h, a := teams[i], teams[n-1-i]
			if r%2 == 1 {
				h, a = a, h
			}
			pairs = append(pairs, [2]int{h, a})
		}
		rounds = append(rounds, pairs)

		last := teams[n-1]
		copy(teams[2:], teams[1:n-1])
		teams[1] = last
	}
	for r := 0; r < n-1; r++ {
		pairs := make([][2]int, len(rounds[r]))
		for i, p := range rounds[r] {
			pairs[i] = [2]int{p[1], p[0]}
		}
		rounds = append(rounds, pairs)
	}
	return rounds
}

func outcomeProbabilities(home, away float64) (p1, pd, p2 float64) {
	d := home - away + 0.2
	p1 = round(0.72/(1+math.Exp(-1.6*d)), 4)
	pd = 0.28
	p2 = round(1-p1-pd, 4)
	return p1, pd, p2
}

func positionProbabilities(n, expected int, spread float64) []decimal.Decimal {
	weights := make([]float64, n)
	sum := 0.0
	for j := range weights {
		diff := float64(j - expected)
		weights[j] = math.Exp(-diff * diff / (2 * spread * spread))
		sum += weights[j]
	}
	out := make([]decimal.Decimal, n)
	for j, w := range weights {
		out[j] = decimal.NewFromFloat(w / sum).Round(4)
	}
	return out
}

func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}

func abbrev(name string) string {
	letters := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
		if len(letters) == 3 {
			break
		}
	}
	return string(letters)
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
