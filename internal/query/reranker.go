package query

import "sort"

// Candidate is one retrieved passage tagged with its source domain.
type Candidate struct {
	Domain   string
	ID       string
	Content  string
	Score    float64
	Metadata map[string]interface{}
}

// ReRanker reorders retrieved candidates. Implementations may consult the
// original question text; the reference one does not.
type ReRanker interface {
	ReRank(candidates []Candidate, originalQuery string) []Candidate
}

// ScoreReRanker sorts candidates by their pre-existing relevance score,
// descending. The sort is stable so equal scores keep their original
// relative order.
type ScoreReRanker struct{}

func NewScoreReRanker() *ScoreReRanker {
	return &ScoreReRanker{}
}

func (r *ScoreReRanker) ReRank(candidates []Candidate, originalQuery string) []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
