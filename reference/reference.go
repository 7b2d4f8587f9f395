// Package reference builds a pooled, statistically robust copy-number
// reference profile from multiple sample coverage profiles.  The reference is
// the neutral baseline that individual samples are later compared against for
// copy-number variation.
//
// Samples of different sex are made poolable by shifting their sex-chromosome
// coverage to a single ploidy convention; the shifted coverage matrix is then
// summarized per probe with outlier-resistant biweight estimators.
package reference

import (
	"strings"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/grailbio/cnvref/cnv"
	"github.com/grailbio/cnvref/robust"
)

// Opts configures a reference build.
type Opts struct {
	// MaleNormal selects the ploidy convention of the resulting reference:
	// one copy of X (male) rather than two (female).
	MaleNormal bool
	// HasGenome reserves gc and rmask columns in the output, to be filled by
	// a later annotation pass against the genome sequence.  When the first
	// sample already carries gc values they are reused instead.
	HasGenome bool
	// IsXX reports whether a sample is genetically female.  Nil selects
	// GuessXX.  The predicate receives the chromosome label identifying X in
	// the sample's naming convention.
	IsXX func(f *cnv.Profile, chrX string) bool
}

// ChrXLabel returns the label the profile uses for the X chromosome,
// following its naming convention ("chrX" when chromosome names are
// "chr"-prefixed, bare "X" otherwise).
func ChrXLabel(f *cnv.Profile) string {
	if f.Len() > 0 && strings.HasPrefix(f.Probes[0].Chrom, "chr") {
		return "chrX"
	}
	return "X"
}

// ChrYLabel returns the Y-chromosome label matching the convention of the
// given X label.
func ChrYLabel(chrX string) string {
	return strings.TrimSuffix(chrX, "X") + "Y"
}

// GuessXX is the default sex-inference predicate: a sample is taken as XX
// when its median X-chromosome log2 coverage lies above the midpoint between
// the one-copy (-1) and two-copy (0) baselines.  Samples with no X probes
// are taken as XY, which leaves their coverage untouched under a male-normal
// reference.
func GuessXX(f *cnv.Profile, chrX string) bool {
	var xs []float64
	for i := range f.Probes {
		if f.Probes[i].Chrom == chrX {
			xs = append(xs, f.Probes[i].Log2)
		}
	}
	if len(xs) == 0 {
		return false
	}
	return robust.Median(xs) > -0.5
}

// shiftSexChroms returns a copy of f with X and Y coverage rewritten to the
// reference ploidy convention, so that XX and XY samples pool meaningfully:
//
//	male-normal reference, XX sample:  X -= 1, Y = -1
//	male-normal reference, XY sample:  unchanged
//	female-normal reference, XX sample: Y = -1
//	female-normal reference, XY sample: X += 1
//
// Y is forced to -1 for XX samples because they carry no Y; whatever was
// measured there is noise, replaced by one flat copy.  Probes on other
// chromosomes are never touched.
func shiftSexChroms(f *cnv.Profile, isXX, maleNormal bool, chrX, chrY string) *cnv.Profile {
	out := f.Clone()
	for i := range out.Probes {
		p := &out.Probes[i]
		switch p.Chrom {
		case chrX:
			if isXX && maleNormal {
				p.Log2 -= 1.0
			} else if !isXX && !maleNormal {
				p.Log2 += 1.0
			}
		case chrY:
			if isXX {
				p.Log2 = -1.0
			}
		}
	}
	return out
}

// aggregate pools the rows of a coverage matrix (one row per sample, one
// column per probe) into a per-probe robust center and spread.  Columns are
// summarized independently; the result does not depend on row order.
// Requires at least one row; all rows must have equal length, which Combine
// guarantees via grid validation.
func aggregate(rows [][]float64) (centers, spreads []float64) {
	n := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) != n {
			panic("reference: ragged coverage matrix")
		}
	}
	centers = make([]float64, n)
	spreads = make([]float64, n)
	column := make([]float64, len(rows))
	for i := 0; i < n; i++ {
		for j, row := range rows {
			column[j] = row[i]
		}
		centers[i] = robust.BiweightLocation(column)
		spreads[i] = robust.BiweightMidvariance(column)
	}
	return centers, spreads
}

// Combine pools the given sample profiles into one reference profile.  The
// first sample defines the canonical probe grid; a grid mismatch in any
// later sample aborts the build with a *cnv.GridMismatchError naming both
// sources.  Sex-chromosome labels are resolved once from the first sample
// and each sample's coverage is shifted to the reference ploidy convention
// before pooling.
func Combine(samples []*cnv.Profile, opts Opts) (*cnv.Profile, error) {
	if len(samples) == 0 {
		return nil, errors.New("reference: no sample profiles to combine")
	}
	isXX := opts.IsXX
	if isXX == nil {
		isXX = GuessXX
	}
	canon := samples[0]
	chrX := ChrXLabel(canon)
	chrY := ChrYLabel(chrX)

	rows := make([][]float64, 0, len(samples))
	for i, sample := range samples {
		if i > 0 {
			if err := sample.CheckGrid(canon); err != nil {
				return nil, err
			}
		}
		shifted := shiftSexChroms(sample, isXX(sample, chrX), opts.MaleNormal, chrX, chrY)
		rows = append(rows, shifted.Log2s())
	}

	log.Printf("calculating average coverage and spread for %d probes across %d samples",
		canon.Len(), len(samples))
	centers, spreads := aggregate(rows)

	out := &cnv.Profile{
		Sample:   "reference",
		HasGC:    canon.HasGC || opts.HasGenome,
		HasRMask: opts.HasGenome,
		Probes:   make([]cnv.Probe, canon.Len()),
	}
	for i := range canon.Probes {
		p := canon.Probes[i]
		p.Log2 = centers[i]
		p.Spread = spreads[i]
		if !canon.HasGC {
			p.GC = 0
		}
		p.RMask = 0
		out.Probes[i] = p
	}
	return out, nil
}

// LoadFiles loads each coverage file, in order.  The first profile defines
// the canonical grid when the result is passed to Combine.
func LoadFiles(paths []string) ([]*cnv.Profile, error) {
	samples := make([]*cnv.Profile, 0, len(paths))
	for _, path := range paths {
		log.Printf("loading target %s", path)
		f, err := cnv.ReadProfileFile(path)
		if err != nil {
			return nil, err
		}
		samples = append(samples, f)
	}
	return samples, nil
}

// Flat builds a degenerate all-neutral reference from bare intervals, for
// use when no sample data exists: every probe gets coverage 0 and spread 0.
// hasGenome reserves gc and rmask columns for a later annotation pass.
func Flat(regions []cnv.Region, hasGenome bool) *cnv.Profile {
	out := &cnv.Profile{
		Sample:   "reference",
		HasGC:    hasGenome,
		HasRMask: hasGenome,
		Probes:   make([]cnv.Probe, len(regions)),
	}
	for i, region := range regions {
		out.Probes[i] = cnv.Probe{
			Chrom:    region.Chrom,
			Start:    region.Start,
			End:      region.End,
			Gene:     region.Name,
			Category: cnv.CategoryOf(region.Name),
		}
	}
	return out
}

// SplitTargets partitions a reference profile's intervals into target and
// antitarget region lists, preserving order.  Downstream tools re-bin new
// samples against these two lists separately.
func SplitTargets(f *cnv.Profile) (targets, antitargets []cnv.Region) {
	for i := range f.Probes {
		p := &f.Probes[i]
		region := cnv.Region{Chrom: p.Chrom, Start: p.Start, End: p.End, Name: p.Gene}
		if p.Category == cnv.Antitarget {
			antitargets = append(antitargets, region)
		} else {
			targets = append(targets, region)
		}
	}
	return targets, antitargets
}
