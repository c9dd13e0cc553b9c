package main

import "sort"

type boundary struct {
	pos     int
	open    bool
	feature *GenomicFeature
}

// cobble splits a set of features into maximal non-overlapping pieces,
// ordered by start position. A boundary event list is swept left to
// right; over every span where the active set is non-empty and the
// coordinates differ, the active features are merged into one piece
// clamped to that span. Spans with no active feature are gaps and emit
// nothing, as do zero-width spans.
//
// Unless allowDuplicates is set, repeated references to the same feature
// collapse to one before the sweep.
func cobble(features []*GenomicFeature, allowDuplicates bool) ([]*GenomicFeature, error) {
	if !allowDuplicates {
		seen := make(map[*GenomicFeature]bool, len(features))
		uniq := make([]*GenomicFeature, 0, len(features))
		for _, f := range features {
			if seen[f] {
				continue
			}
			seen[f] = true
			uniq = append(uniq, f)
		}
		features = uniq
	}

	events := make([]boundary, 0, 2*len(features))
	for _, f := range features {
		events = append(events,
			boundary{pos: f.Start, open: true, feature: f},
			boundary{pos: f.End, open: false, feature: f})
	}
	// Closes sort before opens at equal coordinates so adjacent
	// features do not overlap in any span.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		return !events[i].open && events[j].open
	})

	var (
		active  []*GenomicFeature
		cobbled []*GenomicFeature
	)
	for i := 0; i < len(events)-1; i++ {
		ev := events[i]
		if ev.open {
			active = append(active, ev.feature)
		} else {
			active = removeFeature(active, ev.feature)
		}
		if len(active) == 0 || ev.pos == events[i+1].pos {
			continue
		}
		p, err := combineAll(active)
		if err != nil {
			return nil, err
		}
		p.Start = ev.pos
		p.End = events[i+1].pos
		cobbled = append(cobbled, p)
	}
	return cobbled, nil
}

// removeFeature deletes the first occurrence of f, preserving order so
// piece metadata follows the open order of the active set.
func removeFeature(active []*GenomicFeature, f *GenomicFeature) []*GenomicFeature {
	for i, a := range active {
		if a == f {
			return append(active[:i], active[i+1:]...)
		}
	}
	return active
}
