package standings

import (
	"fmt"
	"time"

	"efi-app/internal/model"
)

// Caption is the two-line summary shown above a table.
type Caption struct {
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
}

var monthAbbrevs = [...]string{
	"Jan.", "Feb.", "Mar.", "Apr.", "May", "Jun.",
	"Jul.", "Aug.", "Sep.", "Oct.", "Nov.", "Dec.",
}

// FormatDate renders t as "Oct. 19, 2026", or "Oct. 19" without the year.
func FormatDate(t time.Time, includeYear bool) string {
	t = t.UTC()
	if includeYear {
		return fmt.Sprintf("%s %d, %d", monthAbbrevs[t.Month()-1], t.Day(), t.Year())
	}
	return fmt.Sprintf("%s %d", monthAbbrevs[t.Month()-1], t.Day())
}

// NewCaption describes a snapshot; table is nil when no snapshot exists for matchweek.
func NewCaption(table *model.Table, matchweek int) Caption {
	if table == nil || len(table.Rows) == 0 {
		return Caption{
			Headline: fmt.Sprintf("No matches have been played in Matchweek %d.", matchweek),
			Detail:   "Rankings update daily around midnight UTC.",
		}
	}
	c := Caption{Headline: "Rankings"}
	if date, err := time.Parse(time.DateOnly, table.UpdateDate()); err == nil {
		c.Headline = "Rankings as of " + FormatDate(date, true)
	}
	if table.Matchweek == 0 {
		c.Detail = "Preseason rankings"
	} else {
		c.Detail = fmt.Sprintf("Includes %d of %d matches played in Matchweek %d.",
			table.CompletedMatches, table.TotalMatches, table.Matchweek)
	}
	return c
}
