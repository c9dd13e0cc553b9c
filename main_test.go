package main

import (
	"math"
	"testing"

	"github.com/biogo/hts/sam"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// stubFetcher serves point reads from memory, recording the chromosome
// name it was queried with.
type stubFetcher struct {
	chrom     string
	positions []int
}

func (s *stubFetcher) fetch(chrom string, start, end int, fn func(*sam.Record)) error {
	s.chrom = chrom
	for _, pos := range s.positions {
		if pos >= start && pos < end {
			fn(&sam.Record{Pos: pos})
		}
	}
	return nil
}

func TestProcessChunk(t *testing.T) {
	e1 := mkExon("E1", 0, 100, 1, "G1", "T1")
	e2 := mkExon("E2", 50, 150, 1, "G1", "T2")
	e1.Chrom = "1"
	e2.Chrom = "1"

	stub := &stubFetcher{positions: []int{10, 10, 60, 120}}
	q := &quantifier{
		sam:       stub,
		namer:     prefixNumericNamer("chr"),
		minLength: 100,
	}

	res, err := q.processChunk([]*GenomicFeature{e1, e2}, "1", 150)
	if err != nil {
		t.Fatalf("processChunk failed: %v", err)
	}
	if stub.chrom != "chr1" {
		t.Errorf("naming policy not applied: fetched %q", stub.chrom)
	}
	if res.totalRaw != 4 || math.Abs(res.totalN-4) > 1e-9 {
		t.Errorf("chunk totals = %d raw / %v weighted, want 4/4", res.totalRaw, res.totalN)
	}
	if len(res.pieces) != 3 {
		t.Fatalf("got %d pieces, want 3", len(res.pieces))
	}

	// score = 1000 * raw / length over [0,50), [50,100), [100,150).
	wantScores := []float64{40, 20, 20}
	for i, p := range res.pieces {
		if math.Abs(p.Score-wantScores[i]) > 1e-9 {
			t.Errorf("piece %d score = %v, want %v", i, p.Score, wantScores[i])
		}
	}

	if len(res.transcripts) != 2 || res.transcripts[0] != "T1" || res.transcripts[1] != "T2" {
		t.Errorf("transcripts = %v, want [T1 T2]", res.transcripts)
	}
	r, c := res.matrix.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("matrix dims = %dx%d, want 3x2", r, c)
	}
	for j := 0; j < c; j++ {
		if sum := floats.Sum(mat.Col(nil, j, res.matrix)); math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("column %d sums to %v, want 1.0", j, sum)
		}
	}
}

func TestProcessChunkMergesDuplicates(t *testing.T) {
	dup1 := mkExon("E1", 0, 120, 1, "G1", "T1")
	dup2 := mkExon("E1", 0, 120, 1, "G1", "T2")

	stub := &stubFetcher{positions: []int{5}}
	q := &quantifier{sam: stub, minLength: 100}

	res, err := q.processChunk([]*GenomicFeature{dup1, dup2}, "chr1", 120)
	if err != nil {
		t.Fatalf("processChunk failed: %v", err)
	}
	if len(res.pieces) != 1 {
		t.Fatalf("got %d pieces, want 1", len(res.pieces))
	}
	// T1 and T2 share the signature of the single piece, so one
	// collapses into the other.
	if len(res.transcripts) != 1 || res.transcripts[0] != "T1" {
		t.Errorf("transcripts = %v, want [T1]", res.transcripts)
	}
	if res.replaced["T2"] != "T1" {
		t.Errorf("replaced = %v, want map[T2:T1]", res.replaced)
	}
	if math.Abs(res.pieces[0].Score-1000.0/120) > 1e-6 {
		t.Errorf("score = %v, want %v", res.pieces[0].Score, 1000.0/120)
	}
}
