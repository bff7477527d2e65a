package memory

import (
	"math"
	"sort"
)

// Candidate pairs a context text with its embedding. A nil embedding means
// the embedding call failed; such a candidate scores 0 and sinks below the
// relevance floor.
type Candidate struct {
	Text      string
	Embedding []float32
}

// Scored is a ranked candidate. Index points back into the input slice so
// callers can recover the record the text came from.
type Scored struct {
	Index  int
	Text   string
	Score  float64
	Tokens int
}

type Ranker struct {
	normalize bool
}

func NewRanker(normalize bool) *Ranker {
	return &Ranker{normalize: normalize}
}

// Rank scores every candidate by cosine similarity to the query embedding
// and returns them in descending score order. Equal scores keep input order.
func (r *Ranker) Rank(query []float32, cands []Candidate) []Scored {
	scored := make([]Scored, 0, len(cands))
	for i, c := range cands {
		scored = append(scored, Scored{
			Index: i,
			Text:  c.Text,
			Score: r.similarity(query, c.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// RankMMR reranks with maximal marginal relevance: each pick maximizes
// lambda*sim(query, c) - (1-lambda)*max(sim(c, picked)). Reported scores
// stay plain query relevance so relevance-floor checks keep their meaning.
func (r *Ranker) RankMMR(query []float32, cands []Candidate, lambda float64) []Scored {
	relevance := make([]float64, len(cands))
	for i, c := range cands {
		relevance[i] = r.similarity(query, c.Embedding)
	}

	remaining := make([]int, len(cands))
	for i := range remaining {
		remaining[i] = i
	}

	var picked []Scored
	var pickedIdx []int

	for len(remaining) > 0 {
		bestPos := 0
		bestVal := math.Inf(-1)

		for pos, i := range remaining {
			redundancy := 0.0
			for _, j := range pickedIdx {
				if sim := r.similarity(cands[i].Embedding, cands[j].Embedding); sim > redundancy {
					redundancy = sim
				}
			}
			val := lambda*relevance[i] - (1-lambda)*redundancy
			if val > bestVal {
				bestVal = val
				bestPos = pos
			}
		}

		i := remaining[bestPos]
		picked = append(picked, Scored{Index: i, Text: cands[i].Text, Score: relevance[i]})
		pickedIdx = append(pickedIdx, i)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}
	return picked
}

func (r *Ranker) similarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if !r.normalize {
		return dot
	}
	// A zero-norm vector carries no direction; score it 0 instead of
	// dividing by zero.
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
