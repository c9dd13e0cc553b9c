package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"
	"gonum.org/v1/gonum/mat"
)

var (
	bamFile   = flag.String("bam", "", "indexed BAM input file (expects <file>.bai alongside)")
	gtfFile   = flag.String("gtf", "", "GTF annotation input file, sorted by chromosome")
	stranded  = flag.Bool("stranded", false, "compare read orientation against the annotation strand")
	minLength = flag.Int("minlength", 100, "minimum piece length entering transcript signatures")
	threads   = flag.Int("threads", 1, "number of chunk workers")
	chrPrefix = flag.String("chrprefix", "chr", "prefix mapping numeric annotation chromosome names to BAM references")
	help      = flag.Bool("help", false, "display help")
)

type config struct {
	bam       string
	stranded  bool
	minLength int
	threads   int
	namer     chromNamer
}

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *bamFile == "" || *gtfFile == "" {
		flag.Usage()
		os.Exit(1)
	}
	cfg := config{
		bam:       *bamFile,
		stranded:  *stranded,
		minLength: *minLength,
		threads:   *threads,
		namer:     prefixNumericNamer(*chrPrefix),
	}
	if cfg.threads < 1 {
		cfg.threads = 1
	}
	if err := rnacount(*gtfFile, cfg); err != nil {
		log.Fatalf("rnacounter: %v", err)
	}
}

// rnacount streams the annotation, which must be sorted at least by
// chromosome, loads one chromosome of exons at a time and quantifies its
// chunks.
func rnacount(annotname string, cfg config) error {
	f, err := os.Open(annotname)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := featio.NewScanner(gff.NewReader(f))
	var (
		chrexons []*GenomicFeature
		chrom    string
		ecount   int
	)
	for sc.Next() {
		gf, ok := sc.Feat().(*gff.Feature)
		if !ok || gf.Feature != "exon" {
			continue
		}
		exon, err := exonFromGFF(gf, &ecount)
		if err != nil {
			return err
		}
		if exon.End-exon.Start <= 1 {
			continue
		}
		if chrom != "" && exon.Chrom != chrom {
			if err := processChromosome(chrom, chrexons, cfg); err != nil {
				return err
			}
			chrexons = nil
		}
		chrom = exon.Chrom
		chrexons = append(chrexons, exon)
	}
	if err := sc.Error(); err != nil {
		return fmt.Errorf("%w: %v", errMalformedAnnotation, err)
	}
	if len(chrexons) > 0 {
		return processChromosome(chrom, chrexons, cfg)
	}
	return nil
}

// processChromosome sorts a chromosome's exons, cuts them into chunks
// and fans the chunks out to workers. Every worker holds its own BAM
// handle since region iterators cannot be shared. Results are re-sorted
// by start position before reporting so output does not depend on worker
// interleaving.
func processChromosome(chrom string, chrexons []*GenomicFeature, cfg config) error {
	sort.SliceStable(chrexons, func(i, j int) bool {
		if chrexons[i].Start != chrexons[j].Start {
			return chrexons[i].Start < chrexons[j].Start
		}
		return chrexons[i].End < chrexons[j].End
	})
	fmt.Printf(">> Chromosome %s\n", chrom)

	chunks := chunkExons(chrexons)
	jobs := make(chan exonChunk)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		results  []*chunkResult
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(cfg.threads)
	for w := 0; w < cfg.threads; w++ {
		go func() {
			defer wg.Done()
			sam, err := openBam(cfg.bam)
			if err != nil {
				fail(err)
				for range jobs {
				}
				return
			}
			defer sam.Close()
			q := &quantifier{
				sam:       sam,
				namer:     cfg.namer,
				minLength: cfg.minLength,
				stranded:  cfg.stranded,
			}
			for ck := range jobs {
				mu.Lock()
				failed := firstErr != nil
				mu.Unlock()
				if failed {
					continue
				}
				res, err := q.processChunk(ck.exons, chrom, ck.lastend)
				if err != nil {
					fail(err)
					continue
				}
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}
	for _, ck := range chunks {
		jobs <- ck
	}
	close(jobs)
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].pieces[0].Start < results[j].pieces[0].Start
	})
	for _, res := range results {
		printChunk(res)
	}
	return nil
}

// chunkResult is the in-memory quantification of one chunk, handed to
// the report or a downstream estimator.
type chunkResult struct {
	chrom       string
	pieces      []*GenomicFeature
	transcripts []string
	replaced    map[string]string
	matrix      *mat.Dense
	totalRaw    int
	totalN      float64
}

type quantifier struct {
	sam       regionFetcher
	namer     chromNamer
	minLength int
	stranded  bool
}

// processChunk distributes read coverage across the transcripts of one
// chunk of exons: merge duplicate exon occurrences, count the reads of
// the whole chunk, cobble the exons into pieces, collapse transcripts
// with identical piece signatures, build the assignment matrix and score
// every piece with its read density.
func (q *quantifier) processChunk(ckexons []*GenomicFeature, chrom string, lastend int) (*chunkResult, error) {
	exons, err := mergeDuplicateExons(ckexons)
	if err != nil {
		return nil, err
	}

	target := chrom
	if q.namer != nil {
		target = q.namer(chrom)
	}

	total := &readCounter{}
	if err := q.sam.fetch(target, exons[0].Start, lastend, total.count); err != nil {
		return nil, err
	}

	pieces, err := cobble(exons, false)
	if err != nil {
		return nil, err
	}

	replaced := collapseTranscripts(pieces, q.minLength)
	transcripts := canonicalTranscripts(pieces)

	matrix, err := buildAssignmentMatrix(pieces, transcripts)
	if err != nil {
		return nil, fmt.Errorf("chunk %s:%d-%d: %w", chrom, exons[0].Start, lastend, err)
	}

	pc := &readCounter{stranded: q.stranded}
	for _, p := range pieces {
		pc.reset()
		pc.strand = strandSign(p.Strand)
		if err := q.sam.fetch(target, p.Start, p.End, pc.count); err != nil {
			return nil, err
		}
		p.Score = pc.density(p.Len())
	}

	return &chunkResult{
		chrom:       chrom,
		pieces:      pieces,
		transcripts: transcripts,
		replaced:    replaced,
		matrix:      matrix,
		totalRaw:    total.nRaw,
		totalN:      total.n,
	}, nil
}

func printChunk(res *chunkResult) {
	first := res.pieces[0]
	last := res.pieces[len(res.pieces)-1]
	fmt.Printf("Chunk %s:%d-%d (%s)  total: %d raw, %.2f weighted\n",
		res.chrom, first.Start, last.End, first.GeneName, res.totalRaw, res.totalN)
	for _, p := range res.pieces {
		fmt.Printf("  %s:%d-%d\tlen=%d\tscore=%.3f\t%s\t%s\n",
			res.chrom, p.Start, p.End, p.Len(), p.Score, p.Name,
			strings.Join(sortedTranscripts(p), "|"))
	}
	if len(res.replaced) > 0 {
		dups := make([]string, 0, len(res.replaced))
		for t := range res.replaced {
			dups = append(dups, t)
		}
		sort.Strings(dups)
		for _, t := range dups {
			fmt.Printf("  collapsed %s -> %s\n", t, res.replaced[t])
		}
	}
	fmt.Printf("Transcripts: %s\n", strings.Join(res.transcripts, " "))
	if res.matrix != nil {
		fmt.Printf("%v\n", mat.Formatted(res.matrix, mat.Squeeze()))
	}
}
