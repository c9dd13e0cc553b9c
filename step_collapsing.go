package main

import (
	"sort"
	"strings"
)

// collapseTranscripts folds transcripts that are indistinguishable at
// piece resolution. Pieces shorter than minPieceLength do not enter the
// signatures but stay in the piece list. Each group of transcripts with
// an identical sorted signature of retained piece identifiers is replaced
// by its lexicographically smallest member, and every piece's transcript
// set is rewritten through the returned replacement map.
func collapseTranscripts(pieces []*GenomicFeature, minPieceLength int) map[string]string {
	t2p := make(map[string][]string)
	for _, p := range pieces {
		if p.Len() < minPieceLength {
			continue
		}
		key := p.Key()
		for t := range p.Transcripts {
			t2p[t] = append(t2p[t], key)
		}
	}

	sig2t := make(map[string][]string)
	for t, keys := range t2p {
		sort.Strings(keys)
		sig := strings.Join(keys, "\x1f")
		sig2t[sig] = append(sig2t[sig], t)
	}

	replace := make(map[string]string)
	for _, group := range sig2t {
		if len(group) < 2 {
			continue
		}
		sort.Strings(group)
		for _, t := range group[1:] {
			replace[t] = group[0]
		}
	}

	for _, p := range pieces {
		for t := range p.Transcripts {
			if rep, ok := replace[t]; ok {
				delete(p.Transcripts, t)
				p.Transcripts[rep] = true
			}
		}
	}
	return replace
}

// canonicalTranscripts lists the transcripts reachable from the pieces
// after collapsing, sorted by identifier.
func canonicalTranscripts(pieces []*GenomicFeature) []string {
	set := make(map[string]bool)
	for _, p := range pieces {
		for t := range p.Transcripts {
			set[t] = true
		}
	}
	ts := make([]string, 0, len(set))
	for t := range set {
		ts = append(ts, t)
	}
	sort.Strings(ts)
	return ts
}
