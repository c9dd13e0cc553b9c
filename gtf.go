package main

import (
	"fmt"
	"strings"

	"github.com/biogo/biogo/io/featio/gff"
)

// chromNamer maps an annotation chromosome name to the naming convention
// of the alignment file.
type chromNamer func(string) string

// prefixNumericNamer returns the default naming policy: RefSeq style
// "NC_" names pass through, purely numeric names get prefix, anything
// else is left alone.
func prefixNumericNamer(prefix string) chromNamer {
	return func(chrom string) string {
		if strings.HasPrefix(chrom, "NC_") {
			return chrom
		}
		if isNum(chrom) {
			return prefix + chrom
		}
		return chrom
	}
}

// exonFromGFF turns a GTF exon row into a GenomicFeature. The gff reader
// already delivers zero-based half-open coordinates. gene_id, gene_name
// and transcript_id attributes are required; exon_id is generated as
// E<n> when absent, counting through ecount.
func exonFromGFF(f *gff.Feature, ecount *int) (*GenomicFeature, error) {
	geneID := attr(f, "gene_id")
	geneName := attr(f, "gene_name")
	transcript := attr(f, "transcript_id")
	if geneID == "" || geneName == "" || transcript == "" {
		return nil, fmt.Errorf("%w: %s:%d-%d requires gene_id, gene_name and transcript_id",
			errMalformedAnnotation, f.SeqName, f.FeatStart, f.FeatEnd)
	}
	id := attr(f, "exon_id")
	if id == "" {
		*ecount++
		id = fmt.Sprintf("E%d", *ecount)
	}
	var score float64
	if f.FeatScore != nil {
		score = *f.FeatScore
	}
	return &GenomicFeature{
		IDs:          []string{id},
		GeneID:       geneID,
		GeneName:     geneName,
		Chrom:        f.SeqName,
		Start:        f.FeatStart,
		End:          f.FeatEnd,
		Name:         id,
		Score:        score,
		Strand:       float64(f.FeatStrand),
		Multiplicity: 1,
		Transcripts:  map[string]bool{transcript: true},
	}, nil
}

func attr(f *gff.Feature, tag string) string {
	return strings.Trim(f.FeatAttributes.Get(tag), `"`)
}
