package cluster

import (
	"github.com/aria-lang/msaflow-go/internal/distance"
	"github.com/aria-lang/msaflow-go/internal/msa"
)

// Derived column names written by DBSCAN post-processing.
const (
	ConsensusColumn            = "consensus_sequence"
	LevenshteinQueryColumn     = "levenshtein_query"
	LevenshteinConsensusColumn = "levenshtein_consensus"
)

// Consensus returns the majority-vote sequence of seqs. Columns are taken up
// to the shortest sequence; ties go to the character seen first.
func Consensus(seqs []string) string {
	if len(seqs) == 0 {
		return ""
	}
	n := len(seqs[0])
	for _, s := range seqs[1:] {
		n = min(n, len(s))
	}

	out := make([]byte, n)
	var counts [256]int
	order := make([]byte, 0, 32)
	for j := 0; j < n; j++ {
		order = order[:0]
		for _, s := range seqs {
			c := s[j]
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
		best := order[0]
		for _, c := range order[1:] {
			if counts[c] > counts[best] {
				best = c
			}
		}
		out[j] = best
		for _, c := range order {
			counts[c] = 0
		}
	}
	return string(out)
}

// ClusterConsensus computes one consensus per cluster label. Noise rows
// are their own consensus.
func ClusterConsensus(t *msa.Table, labels []int) []string {
	perLabel := make(map[int]string)
	for label, rows := range Members(labels) {
		if label == msa.NoiseLabel {
			continue
		}
		seqs := make([]string, len(rows))
		for k, i := range rows {
			seqs[k] = t.Sequence(i)
		}
		perLabel[label] = Consensus(seqs)
	}

	out := make([]string, t.Len())
	for i, l := range labels {
		if l == msa.NoiseLabel {
			out[i] = t.Sequence(i)
		} else {
			out[i] = perLabel[l]
		}
	}
	return out
}

// annotate adds the consensus and edit distance columns requested.
func annotate(t *msa.Table, labels []int, consensus, levenshtein bool) (*msa.Table, error) {
	if !consensus && !levenshtein {
		return t, nil
	}

	cons := ClusterConsensus(t, labels)
	out := t
	var err error
	if consensus {
		if out, err = out.WithText(ConsensusColumn, cons); err != nil {
			return nil, err
		}
	}
	if levenshtein {
		query := t.Query()
		toQuery := make([]float64, t.Len())
		toConsensus := make([]float64, t.Len())
		for i := 0; i < t.Len(); i++ {
			s := t.Sequence(i)
			toQuery[i] = float64(distance.Levenshtein(query, s))
			toConsensus[i] = float64(distance.Levenshtein(cons[i], s))
		}
		if out, err = out.WithNumeric(LevenshteinQueryColumn, toQuery); err != nil {
			return nil, err
		}
		if out, err = out.WithNumeric(LevenshteinConsensusColumn, toConsensus); err != nil {
			return nil, err
		}
	}
	return out, nil
}
