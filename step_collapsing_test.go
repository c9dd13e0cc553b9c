package main

import "testing"

func TestCollapseDistinctSignatures(t *testing.T) {
	// Scenario from two overlapping exons: T1 -> (p0,p1), T2 -> (p1,p2).
	e1 := mkExon("E1", 0, 200, 1, "G1", "T1")
	e2 := mkExon("E2", 100, 300, 1, "G1", "T2")
	pieces, err := cobble([]*GenomicFeature{e1, e2}, false)
	if err != nil {
		t.Fatalf("cobble failed: %v", err)
	}

	replace := collapseTranscripts(pieces, 100)
	if len(replace) != 0 {
		t.Errorf("distinct signatures must not collapse, got %v", replace)
	}
	if got := canonicalTranscripts(pieces); len(got) != 2 || got[0] != "T1" || got[1] != "T2" {
		t.Errorf("canonical transcripts = %v, want [T1 T2]", got)
	}
}

func TestCollapseIdenticalSignatures(t *testing.T) {
	p5 := mkExon("E5", 0, 150, 1, "G1", "T3", "T4")
	p6 := mkExon("E6", 200, 350, 1, "G1", "T3", "T4")
	pieces := []*GenomicFeature{p5, p6}

	replace := collapseTranscripts(pieces, 100)
	if len(replace) != 1 || replace["T4"] != "T3" {
		t.Fatalf("replace = %v, want map[T4:T3]", replace)
	}
	for _, p := range pieces {
		if !hasTranscripts(p, "T3") {
			t.Errorf("piece %s not rewritten: %v", p.Name, p.Transcripts)
		}
	}
	if got := canonicalTranscripts(pieces); len(got) != 1 || got[0] != "T3" {
		t.Errorf("canonical transcripts = %v, want [T3]", got)
	}
}

func TestCollapseTieBreakIsLexicographic(t *testing.T) {
	p := mkExon("E1", 0, 150, 1, "G1", "T9", "T2", "T5")
	replace := collapseTranscripts([]*GenomicFeature{p}, 100)
	if len(replace) != 2 || replace["T5"] != "T2" || replace["T9"] != "T2" {
		t.Fatalf("replace = %v, want T5 and T9 mapped to T2", replace)
	}
}

func TestCollapseShortPieceExcludedFromSignature(t *testing.T) {
	// The 40bp piece does not enter signatures, so T1 and T2 look
	// identical, but it stays in the list and its membership is
	// rewritten.
	long := mkExon("EA", 0, 120, 1, "G1", "T1", "T2")
	short := mkExon("ES", 120, 160, 1, "G1", "T2")
	pieces := []*GenomicFeature{long, short}

	replace := collapseTranscripts(pieces, 100)
	if len(replace) != 1 || replace["T2"] != "T1" {
		t.Fatalf("replace = %v, want map[T2:T1]", replace)
	}
	if len(pieces) != 2 {
		t.Fatal("short piece must stay in the piece list")
	}
	if !hasTranscripts(short, "T1") {
		t.Errorf("short piece membership not rewritten: %v", short.Transcripts)
	}
}

func TestCollapseIdempotent(t *testing.T) {
	p5 := mkExon("E5", 0, 150, 1, "G1", "T3", "T4")
	p6 := mkExon("E6", 200, 350, 1, "G1", "T3", "T4")
	pieces := []*GenomicFeature{p5, p6}

	collapseTranscripts(pieces, 100)
	again := collapseTranscripts(pieces, 100)
	if len(again) != 0 {
		t.Errorf("second collapse must be a no-op, got %v", again)
	}
	if got := canonicalTranscripts(pieces); len(got) != 1 || got[0] != "T3" {
		t.Errorf("canonical transcripts = %v, want [T3]", got)
	}
}
