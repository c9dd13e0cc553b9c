package main

import (
	"fmt"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/sam"
)

var nhTag = sam.NewTag("NH")

// readCounter accumulates read counts over a region query. Every visited
// read adds 1/NH to the weighted count, where NH is its reported number
// of equally good mapping loci (1 when the tag is absent). In stranded
// mode only reads whose orientation matches the expected strand enter
// the primary counters; the rest go to the wrong-strand tally.
type readCounter struct {
	n            float64
	nRaw         int
	nWrongStrand float64
	strand       int8
	stranded     bool
}

func (c *readCounter) count(rec *sam.Record) {
	w := 1.0
	if aux := rec.AuxFields.Get(nhTag); aux != nil {
		if nh := auxInt(aux); nh > 0 {
			w = 1 / float64(nh)
		}
	}
	if c.stranded {
		reverse := rec.Flags&sam.Reverse != 0
		if (c.strand == 1 && !reverse) || (c.strand == -1 && reverse) {
			c.n += w
			c.nRaw++
		} else {
			c.nWrongStrand += w
		}
		return
	}
	c.n += w
	c.nRaw++
}

// reset clears the counters between regions that must not share counts.
func (c *readCounter) reset() {
	c.n = 0
	c.nRaw = 0
	c.nWrongStrand = 0
}

// density is the length-normalized read density of the last region.
func (c *readCounter) density(length int) float64 {
	return 1000 * float64(c.nRaw) / float64(length)
}

func auxInt(aux sam.Aux) int {
	switch v := aux.Value().(type) {
	case int:
		return v
	case int8:
		return int(v)
	case uint8:
		return int(v)
	case int16:
		return int(v)
	case uint16:
		return int(v)
	case int32:
		return int(v)
	case uint32:
		return int(v)
	}
	return 0
}

// regionFetcher is the alignment region-query capability: fn is called
// for every mapped read overlapping [start,end) on chrom.
type regionFetcher interface {
	fetch(chrom string, start, end int, fn func(*sam.Record)) error
}

// bamFetcher answers region queries from a coordinate-sorted BAM file
// through its .bai index. A fetcher must not be shared across concurrent
// callers; each worker opens its own.
type bamFetcher struct {
	f    *os.File
	r    *bam.Reader
	idx  *bam.Index
	refs map[string]*sam.Reference
}

func openBam(path string) (*bamFetcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bam file: %v", err)
	}
	if ok, err := bgzf.HasEOF(f); err != nil || !ok {
		f.Close()
		return nil, fmt.Errorf("%s is missing its BGZF EOF block: %v", path, err)
	}
	r, err := bam.NewReader(f, 1)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open bam stream: %v", err)
	}

	ir, err := os.Open(path + ".bai")
	if err != nil {
		r.Close()
		f.Close()
		return nil, fmt.Errorf("failed to open bai file: %v", err)
	}
	idx, err := bam.ReadIndex(ir)
	ir.Close()
	if err != nil {
		r.Close()
		f.Close()
		return nil, fmt.Errorf("failed to read bai data: %v", err)
	}

	refs := make(map[string]*sam.Reference)
	for _, ref := range r.Header().Refs() {
		refs[ref.Name()] = ref
	}
	return &bamFetcher{f: f, r: r, idx: idx, refs: refs}, nil
}

func (b *bamFetcher) fetch(chrom string, start, end int, fn func(*sam.Record)) error {
	ref, ok := b.refs[chrom]
	if !ok {
		return fmt.Errorf("no reference %q in BAM header", chrom)
	}
	if start < 0 {
		start = 0
	}
	if end > ref.Len() {
		end = ref.Len()
	}
	if start >= end {
		return nil
	}
	chunks, err := b.idx.Chunks(ref, start, end)
	if err != nil {
		return fmt.Errorf("failed to get chunks for %s:%d-%d: %v", chrom, start, end, err)
	}
	it, err := bam.NewIterator(b.r, chunks)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %v", err)
	}
	for it.Next() {
		rec := it.Record()
		if rec.Flags&sam.Unmapped != 0 {
			continue
		}
		if rec.Pos >= end || rec.End() <= start {
			continue
		}
		fn(rec)
	}
	return it.Close()
}

func (b *bamFetcher) Close() error {
	err := b.r.Close()
	if err != nil {
		return err
	}
	return b.f.Close()
}
