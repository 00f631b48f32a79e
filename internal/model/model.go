package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type FormResult string

const (
	FormWin  FormResult = "W"
	FormDraw FormResult = "D"
	FormLoss FormResult = "L"
)

// FormLength is the number of recent results carried on every row.
const FormLength = 5

var ErrInvalidRow = errors.New("invalid team row")

// TeamRow is one club's standing snapshot for a season and matchweek.
type TeamRow struct {
	UpdateDate    string            `json:"update_date" bson:"update_date"`
	Rank          int               `json:"rank" bson:"rank"`
	Change        int               `json:"change" bson:"change"`
	IconLink      string            `json:"icon_link" bson:"icon_link"`
	Name          string            `json:"name" bson:"name"`
	Abbrev        string            `json:"abbrev,omitempty" bson:"abbrev,omitempty"`
	EFI           float64           `json:"efi" bson:"efi"`
	Off           float64           `json:"off" bson:"off"`
	Def           float64           `json:"def" bson:"def"`
	MP            int               `json:"mp" bson:"mp"`
	W             int               `json:"w" bson:"w"`
	D             int               `json:"d" bson:"d"`
	L             int               `json:"l" bson:"l"`
	GF            int               `json:"gf" bson:"gf"`
	GA            int               `json:"ga" bson:"ga"`
	GD            int               `json:"gd" bson:"gd"`
	Pts           int               `json:"pts" bson:"pts"`
	Form          []FormResult      `json:"form" bson:"form"`
	ProbPositions []decimal.Decimal `json:"prob_positions" bson:"prob_positions"`
	AvgPts        float64           `json:"avg_pts" bson:"avg_pts"`
	AvgGD         float64           `json:"avg_gd" bson:"avg_gd"`
}

// Validate checks the record arithmetic and the position-probability vector
// against a league of leagueSize clubs.
func (r TeamRow) Validate(leagueSize int) error {
	if r.GD != r.GF-r.GA {
		return fmt.Errorf("%w: %s goal difference %d != %d-%d", ErrInvalidRow, r.Name, r.GD, r.GF, r.GA)
	}
	if r.Pts != 3*r.W+r.D {
		return fmt.Errorf("%w: %s points %d do not match record %d-%d-%d", ErrInvalidRow, r.Name, r.Pts, r.W, r.D, r.L)
	}
	if r.MP != r.W+r.D+r.L {
		return fmt.Errorf("%w: %s played %d but record sums to %d", ErrInvalidRow, r.Name, r.MP, r.W+r.D+r.L)
	}
	if len(r.Form) > FormLength {
		return fmt.Errorf("%w: %s form has %d entries", ErrInvalidRow, r.Name, len(r.Form))
	}
	for _, f := range r.Form {
		switch f {
		case "", FormWin, FormDraw, FormLoss:
		default:
			return fmt.Errorf("%w: %s form entry %q", ErrInvalidRow, r.Name, f)
		}
	}
	if len(r.ProbPositions) != leagueSize {
		return fmt.Errorf("%w: %s has %d position probabilities, league size %d", ErrInvalidRow, r.Name, len(r.ProbPositions), leagueSize)
	}
	one := decimal.NewFromInt(1)
	for i, p := range r.ProbPositions {
		if p.IsNegative() || p.GreaterThan(one) {
			return fmt.Errorf("%w: %s position %d probability %s out of range", ErrInvalidRow, r.Name, i+1, p)
		}
	}
	return nil
}

// Table is the standings snapshot for one competition, season and matchweek.
type Table struct {
	CompetitionID    int       `json:"competition_id" bson:"competition_id"`
	Season           int       `json:"season" bson:"season"`
	Matchweek        int       `json:"matchweek" bson:"matchweek"`
	CompletedMatches int       `json:"completed_matches" bson:"completed_matches"`
	TotalMatches     int       `json:"total_matches" bson:"total_matches"`
	Rows             []TeamRow `json:"rows" bson:"rows"`
}

// UpdateDate is the snapshot date carried by the rows, or "" for an empty table.
func (t Table) UpdateDate() string {
	if len(t.Rows) == 0 {
		return ""
	}
	return t.Rows[0].UpdateDate
}

// CloneRows returns a copy of the rows whose slices do not alias the table.
func (t Table) CloneRows() []TeamRow {
	rows := make([]TeamRow, len(t.Rows))
	for i, r := range t.Rows {
		r.Form = append([]FormResult(nil), r.Form...)
		r.ProbPositions = append([]decimal.Decimal(nil), r.ProbPositions...)
		rows[i] = r
	}
	return rows
}
