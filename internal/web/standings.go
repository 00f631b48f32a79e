package web

import (
	"efi-app/internal/model"
	"efi-app/internal/standings"
)

// BuildTable orders the snapshot rows for display. A nil table yields the
// no-data response for matchweek.
func BuildTable(table *model.Table, matchweek int, key standings.SortKey, desc bool) (TableResponse, error) {
	resp := TableResponse{
		Ranks:     []int{},
		Sort:      key,
		Desc:      desc,
		Matchweek: matchweek,
		Caption:   standings.NewCaption(table, matchweek),
	}
	if table == nil {
		return resp, nil
	}

	ranking, err := standings.Rank(table.Rows, key, desc)
	if err != nil {
		return TableResponse{}, err
	}
	rows := make([]RowView, len(ranking.Rows))
	for i, row := range ranking.Rows {
		rows[i] = rowView(row)
	}
	resp.Table = &TableView{
		CompetitionID:    table.CompetitionID,
		Season:           table.Season,
		Matchweek:        table.Matchweek,
		CompletedMatches: table.CompletedMatches,
		TotalMatches:     table.TotalMatches,
		Rows:             rows,
	}
	resp.Ranks = ranking.Ranks
	return resp, nil
}

func rowView(row model.TeamRow) RowView {
	probs := make([]float64, len(row.ProbPositions))
	for i, p := range row.ProbPositions {
		probs[i] = p.InexactFloat64()
	}
	d := standings.Probabilities(row)
	return RowView{
		TeamRow:       row,
		ProbPositions: probs,
		ProbChampion:  d.Champion.InexactFloat64(),
		ProbTop4:      d.Top4.InexactFloat64(),
		ProbRel:       d.Relegation.InexactFloat64(),
	}
}
