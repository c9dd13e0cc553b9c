package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errChromosomeMismatch   = errors.New("cannot combine features from different chromosomes")
	errDegenerateTranscript = errors.New("canonical transcript retains no pieces")
	errMalformedAnnotation  = errors.New("malformed annotation row")
)

// GenomicFeature is a half-open interval [Start,End) on a chromosome.
// Exons parsed from the annotation carry a single id and one transcript;
// cobbled pieces carry the concatenated ids and merged metadata of every
// exon active over their span.
type GenomicFeature struct {
	IDs          []string
	GeneID       string
	GeneName     string
	Chrom        string
	Start        int
	End          int
	Name         string
	Score        float64
	Strand       float64
	Multiplicity int
	Transcripts  map[string]bool
}

func (f *GenomicFeature) Len() int { return f.End - f.Start }

// Key is the scalar identifier of a feature, used in transcript
// signatures.
func (f *GenomicFeature) Key() string { return strings.Join(f.IDs, "|") }

func (f *GenomicFeature) String() string {
	return fmt.Sprintf("<%s (%d-%d) %s>", f.Name, f.Start, f.End, f.GeneName)
}

func (f *GenomicFeature) clone() *GenomicFeature {
	c := *f
	c.IDs = append([]string(nil), f.IDs...)
	c.Transcripts = make(map[string]bool, len(f.Transcripts))
	for t := range f.Transcripts {
		c.Transcripts[t] = true
	}
	return &c
}

// combine merges the metadata of two features on the same chromosome.
// Identifiers are concatenated, gene ids and names unioned, display names
// joined keeping duplicates so the multiplicity signal stays visible,
// strands averaged and multiplicities summed. The interval of the result
// is left for the caller to set.
func combine(a, b *GenomicFeature) (*GenomicFeature, error) {
	if a.Chrom != b.Chrom {
		return nil, fmt.Errorf("%w: %s vs %s", errChromosomeMismatch, a.Chrom, b.Chrom)
	}
	c := &GenomicFeature{
		IDs:          append(append(make([]string, 0, len(a.IDs)+len(b.IDs)), a.IDs...), b.IDs...),
		GeneID:       joinUnion(a.GeneID, b.GeneID),
		GeneName:     joinUnion(a.GeneName, b.GeneName),
		Chrom:        a.Chrom,
		Name:         a.Name + "|" + b.Name,
		Strand:       (a.Strand + b.Strand) / 2,
		Multiplicity: a.Multiplicity + b.Multiplicity,
		Transcripts:  make(map[string]bool, len(a.Transcripts)+len(b.Transcripts)),
	}
	for t := range a.Transcripts {
		c.Transcripts[t] = true
	}
	for t := range b.Transcripts {
		c.Transcripts[t] = true
	}
	return c, nil
}

// combineAll merges a whole active set into one feature. Unlike a fold of
// pairwise combines, the strand of the result is the arithmetic mean over
// all contributors. A single feature yields an independent copy.
func combineAll(active []*GenomicFeature) (*GenomicFeature, error) {
	switch len(active) {
	case 0:
		return nil, nil
	case 1:
		return active[0].clone(), nil
	}
	merged := active[0]
	var err error
	for _, f := range active[1:] {
		merged, err = combine(merged, f)
		if err != nil {
			return nil, err
		}
	}
	sum := 0.0
	for _, f := range active {
		sum += f.Strand
	}
	merged.Strand = sum / float64(len(active))
	return merged, nil
}
