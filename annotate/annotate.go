// Package annotate computes genomic-composition statistics for probe
// intervals: GC fraction and repeat-masked fraction, extracted from a genome
// sequence.  Repeat masking follows the softmasking convention, where
// lowercase bases mark repetitive sequence regardless of base identity.
package annotate

import (
	"github.com/pkg/errors"

	"github.com/grailbio/cnvref/cnv"
)

// Genome supplies subsequences of a reference genome for arbitrary 0-based,
// half-open intervals.  Both genome.New and genome.NewIndexed satisfy it;
// indexing and maintenance of the underlying sequence file are the
// collaborator's responsibility.
type Genome interface {
	Get(chrom string, start, end int) (string, error)
}

// GCContent returns the GC fraction and the lowercase (repeat-masked)
// fraction of seq.  Bases are counted case-insensitively; characters other
// than A, C, G and T (e.g. N) are not counted at all.  A sequence with no
// countable bases yields (0, 0).
func GCContent(seq string) (gc, rmask float64) {
	var atUp, atLo, gcUp, gcLo int
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'T':
			atUp++
		case 'a', 't':
			atLo++
		case 'G', 'C':
			gcUp++
		case 'g', 'c':
			gcLo++
		}
	}
	total := atUp + atLo + gcUp + gcLo
	if total == 0 {
		return 0, 0
	}
	gc = float64(gcUp+gcLo) / float64(total)
	rmask = float64(atLo+gcLo) / float64(total)
	return gc, rmask
}

// Stats extracts each region's subsequence from g and returns its GC and
// repeat-masked fractions as two parallel slices, preserving input order.
// Empty intervals yield (0, 0).
func Stats(g Genome, regions []cnv.Region) (gc, rmask []float64, err error) {
	gc = make([]float64, len(regions))
	rmask = make([]float64, len(regions))
	for i, region := range regions {
		if region.End <= region.Start {
			continue
		}
		seq, err := g.Get(region.Chrom, region.Start, region.End)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "extracting %s:%d-%d", region.Chrom, region.Start, region.End)
		}
		gc[i], rmask[i] = GCContent(seq)
	}
	return gc, rmask, nil
}

// Apply fills the rmask column of f from g and, unless keepGC is set, the gc
// column as well, marking the filled columns present.  It is the external
// annotation pass run after the reference builder has reserved the columns;
// keepGC preserves a gc column reused from a trusted prior source, which
// must stay unmodified.
func Apply(f *cnv.Profile, g Genome, keepGC bool) error {
	regions := make([]cnv.Region, len(f.Probes))
	for i := range f.Probes {
		p := &f.Probes[i]
		regions[i] = cnv.Region{Chrom: p.Chrom, Start: p.Start, End: p.End, Name: p.Gene}
	}
	gc, rmask, err := Stats(g, regions)
	if err != nil {
		return err
	}
	for i := range f.Probes {
		if !keepGC {
			f.Probes[i].GC = gc[i]
		}
		f.Probes[i].RMask = rmask[i]
	}
	if !keepGC {
		f.HasGC = true
	}
	f.HasRMask = true
	return nil
}
