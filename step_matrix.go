package main

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// buildAssignmentMatrix builds the normalized piece by transcript weight
// matrix. Rows follow the given piece order (pieces sorted by start),
// columns the given transcript order (sorted by identifier). The entry
// for (p, t) is 1/k where k is the number of pieces whose transcript set
// contains t, so every column sums to exactly 1. Transcripts retained by
// no piece are rejected.
func buildAssignmentMatrix(pieces []*GenomicFeature, transcripts []string) (*mat.Dense, error) {
	if len(pieces) == 0 || len(transcripts) == 0 {
		return nil, nil
	}
	k := make(map[string]int, len(transcripts))
	for _, p := range pieces {
		for t := range p.Transcripts {
			k[t]++
		}
	}
	for _, t := range transcripts {
		if k[t] == 0 {
			return nil, fmt.Errorf("%w: %s", errDegenerateTranscript, t)
		}
	}
	m := mat.NewDense(len(pieces), len(transcripts), nil)
	for i, p := range pieces {
		for j, t := range transcripts {
			if p.Transcripts[t] {
				m.Set(i, j, 1/float64(k[t]))
			}
		}
	}
	return m, nil
}
