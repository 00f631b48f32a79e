package scoreboard

import "efi-app/internal/model"

// Highlight flags which side of a scoreboard card is emphasised. A finished
// match flags the winner, or both sides on a draw. An unfinished match flags
// every outcome sharing the highest probability.
type Highlight struct {
	Home bool `json:"home"`
	Draw bool `json:"draw"`
	Away bool `json:"away"`
}

func HighlightFor(m model.MatchEvent) Highlight {
	if m.Finished() {
		s1, s2 := *m.Score1, *m.Score2
		return Highlight{
			Home: s1 >= s2,
			Draw: s1 == s2,
			Away: s2 >= s1,
		}
	}
	if m.Completed {
		return Highlight{}
	}
	best := max(m.Prob1, m.Prob2, m.ProbD)
	return Highlight{
		Home: m.Prob1 == best,
		Draw: m.ProbD == best,
		Away: m.Prob2 == best,
	}
}
