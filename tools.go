package main

import (
	"sort"
	"strconv"
	"strings"
)

// joinUnion merges two "|"-joined label sets into one, sorted for a
// stable result.
func joinUnion(a, b string) string {
	set := make(map[string]bool)
	for _, s := range strings.Split(a, "|") {
		if s != "" {
			set[s] = true
		}
	}
	for _, s := range strings.Split(b, "|") {
		if s != "" {
			set[s] = true
		}
	}
	parts := make([]string, 0, len(set))
	for s := range set {
		parts = append(parts, s)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func sortedTranscripts(f *GenomicFeature) []string {
	ts := make([]string, 0, len(f.Transcripts))
	for t := range f.Transcripts {
		ts = append(ts, t)
	}
	sort.Strings(ts)
	return ts
}

func strandSign(s float64) int8 {
	switch {
	case s > 0:
		return 1
	case s < 0:
		return -1
	}
	return 0
}

// isNum reports whether s represents a number.
func isNum(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
