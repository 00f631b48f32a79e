// Package standings orders league table rows by a sort key and assigns
// competition ranks, where tied values share a rank and the next distinct
// value resumes at its position (1, 1, 3).
package standings

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"efi-app/internal/model"
)

var ErrInvalidSortKey = errors.New("invalid sort key")

type SortKey string

const (
	KeyEFI          SortKey = "efi"
	KeyOff          SortKey = "off"
	KeyDef          SortKey = "def"
	KeyMP           SortKey = "mp"
	KeyW            SortKey = "w"
	KeyD            SortKey = "d"
	KeyL            SortKey = "l"
	KeyGF           SortKey = "gf"
	KeyGA           SortKey = "ga"
	KeyGD           SortKey = "gd"
	KeyPts          SortKey = "pts"
	KeyProbChampion SortKey = "prob_champion"
	KeyProbTop4     SortKey = "prob_top_4"
	KeyProbRel      SortKey = "prob_rel"
	KeyAvgPts       SortKey = "avg_pts"
	KeyAvgGD        SortKey = "avg_gd"
)

// DefaultSortKey is the column a table opens with.
const DefaultSortKey = KeyEFI

type keySpec struct {
	value         func(model.TeamRow) float64
	lowerIsBetter bool
}

var keySpecs = map[SortKey]keySpec{
	KeyEFI: {value: func(r model.TeamRow) float64 { return r.EFI }},
	KeyOff: {value: func(r model.TeamRow) float64 { return r.Off }},
	KeyDef: {value: func(r model.TeamRow) float64 { return r.Def }, lowerIsBetter: true},
	KeyMP:  {value: func(r model.TeamRow) float64 { return float64(r.MP) }},
	KeyW:   {value: func(r model.TeamRow) float64 { return float64(r.W) }},
	KeyD:   {value: func(r model.TeamRow) float64 { return float64(r.D) }},
	KeyL:   {value: func(r model.TeamRow) float64 { return float64(r.L) }},
	KeyGF:  {value: func(r model.TeamRow) float64 { return float64(r.GF) }},
	KeyGA:  {value: func(r model.TeamRow) float64 { return float64(r.GA) }},
	KeyGD:  {value: func(r model.TeamRow) float64 { return float64(r.GD) }},
	KeyPts: {value: func(r model.TeamRow) float64 { return float64(r.Pts) }},
	KeyProbChampion: {value: func(r model.TeamRow) float64 {
		return Probabilities(r).Champion.InexactFloat64()
	}},
	KeyProbTop4: {value: func(r model.TeamRow) float64 {
		return Probabilities(r).Top4.InexactFloat64()
	}},
	KeyProbRel: {value: func(r model.TeamRow) float64 {
		return Probabilities(r).Relegation.InexactFloat64()
	}},
	KeyAvgPts: {value: func(r model.TeamRow) float64 { return r.AvgPts }},
	KeyAvgGD:  {value: func(r model.TeamRow) float64 { return r.AvgGD }},
}

// SortKeys lists every supported key in table column order.
func SortKeys() []SortKey {
	return []SortKey{
		KeyEFI, KeyOff, KeyDef, KeyMP, KeyW, KeyD, KeyL, KeyGF, KeyGA, KeyGD, KeyPts,
		KeyProbChampion, KeyProbTop4, KeyProbRel, KeyAvgPts, KeyAvgGD,
	}
}

func ParseSortKey(value string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := keySpecs[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, value)
	}
	return key, nil
}

func (k SortKey) Valid() bool {
	_, ok := keySpecs[k]
	return ok
}

// LowerIsBetter reports the key's polarity.
func (k SortKey) LowerIsBetter() bool {
	return keySpecs[k].lowerIsBetter
}

// Value extracts the key's value from a row.
func (k SortKey) Value(row model.TeamRow) float64 {
	spec, ok := keySpecs[k]
	if !ok {
		return 0
	}
	return spec.value(row)
}

// Ranking is a display-ordered copy of the rows with a parallel rank list.
type Ranking struct {
	Rows  []model.TeamRow
	Ranks []int
}

// Rank sorts a copy of rows by key in the requested direction and assigns a
// rank to each row. Rank 1 always denotes the best row by the key's polarity,
// whatever the display direction.
func Rank(rows []model.TeamRow, key SortKey, desc bool) (Ranking, error) {
	spec, ok := keySpecs[key]
	if !ok {
		return Ranking{}, fmt.Errorf("%w: %q", ErrInvalidSortKey, string(key))
	}
	sorted := make([]model.TeamRow, len(rows))
	copy(sorted, rows)

	compare := compareFunc(key, spec)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := compare(sorted[i], sorted[j])
		if desc {
			return c > 0
		}
		return c < 0
	})

	return Ranking{
		Rows:  sorted,
		Ranks: assignRanks(sorted, compare, desc, spec.lowerIsBetter),
	}, nil
}

// compareFunc returns a three-way comparison for key. Points fall back to
// goal difference and then goals scored.
func compareFunc(key SortKey, spec keySpec) func(a, b model.TeamRow) int {
	if key == KeyPts {
		return func(a, b model.TeamRow) int {
			if a.Pts != b.Pts {
				return compareInts(a.Pts, b.Pts)
			}
			if a.GD != b.GD {
				return compareInts(a.GD, b.GD)
			}
			return compareInts(a.GF, b.GF)
		}
	}
	return func(a, b model.TeamRow) int {
		va, vb := spec.value(a), spec.value(b)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
		return 0
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// assignRanks scans sorted best-to-worst. Ascending display is scanned in
// reverse, and a lower-is-better key flips the scan once more.
func assignRanks(sorted []model.TeamRow, compare func(a, b model.TeamRow) int, desc, lowerIsBetter bool) []int {
	n := len(sorted)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if !desc {
		reverse(order)
	}
	if lowerIsBetter {
		reverse(order)
	}

	ranks := make([]int, n)
	current := 0
	for pos, idx := range order {
		if pos == 0 || compare(sorted[order[pos-1]], sorted[idx]) != 0 {
			current = pos + 1
		}
		ranks[idx] = current
	}
	return ranks
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
