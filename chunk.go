package main

// exonChunk is one unit of work: a group of exons whose intervals
// overlap transitively or that share a gene identifier, with the running
// maximum end coordinate of the group.
type exonChunk struct {
	exons   []*GenomicFeature
	lastend int
}

// chunkExons groups a chromosome's exons, sorted by (start, end), into
// chunks. An exon joins the current chunk while it starts before the
// running maximum end, or while its gene identifier repeats; the gene
// condition deliberately extends chunks across coordinate gaps so a
// gene's alternatively named exons are not split apart. The trailing
// chunk is flushed.
func chunkExons(chrexons []*GenomicFeature) []exonChunk {
	if len(chrexons) == 0 {
		return nil
	}
	var chunks []exonChunk
	lastend := chrexons[0].End
	lastgene := chrexons[0].GeneID
	ck := []*GenomicFeature{chrexons[0]}
	for _, exon := range chrexons[1:] {
		if exon.Start <= lastend || exon.GeneID == lastgene {
			ck = append(ck, exon)
		} else {
			chunks = append(chunks, exonChunk{exons: ck, lastend: lastend})
			ck = []*GenomicFeature{exon}
		}
		if exon.End > lastend {
			lastend = exon.End
		}
		lastgene = exon.GeneID
	}
	return append(chunks, exonChunk{exons: ck, lastend: lastend})
}

// mergeDuplicateExons folds consecutive occurrences of the same exon,
// contributed by different transcripts of the annotation, into a single
// feature carrying the transcript union. The input is sorted by
// (start, end) so occurrences of one exon are adjacent.
func mergeDuplicateExons(ckexons []*GenomicFeature) ([]*GenomicFeature, error) {
	var (
		exons []*GenomicFeature
		cur   string
	)
	for _, exon := range ckexons {
		id := exon.IDs[0]
		if len(exons) > 0 && id == cur {
			last := exons[len(exons)-1]
			merged, err := combine(last, exon)
			if err != nil {
				return nil, err
			}
			merged.Start = exon.Start
			merged.End = exon.End
			exons[len(exons)-1] = merged
			continue
		}
		exons = append(exons, exon.clone())
		cur = id
	}
	return exons, nil
}
