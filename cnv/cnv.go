// Package cnv defines the probe-level copy-number data model shared by the
// reference builder and its consumers: genomic probes carrying log2 coverage
// ratios, per-sample coverage profiles on a common probe grid, and the tabular
// formats they are exchanged in.
package cnv

import (
	"fmt"
)

// AntitargetName is the gene-name sentinel used in coverage files to mark
// off-target (background noise estimation) probes.
const AntitargetName = "Background"

// Category classifies a probe as a primary sequencing target or an off-target
// background probe.  It is assigned once, when a probe is constructed from
// its gene name, so downstream code never re-tests the sentinel string.
type Category uint8

const (
	// Target marks a probe covering a primary sequencing target.
	Target Category = iota
	// Antitarget marks an off-target probe used to estimate background noise.
	Antitarget
)

// CategoryOf maps a gene name to its probe category.
func CategoryOf(gene string) Category {
	if gene == AntitargetName {
		return Antitarget
	}
	return Target
}

// Probe is one genomic interval with an associated coverage measurement.
// Coordinates are 0-based, half-open.  Log2 is the log2 coverage ratio
// (0 = neutral).  GC and RMask are only meaningful when the containing
// profile's HasGC/HasRMask column flags are set.
type Probe struct {
	Chrom    string
	Start    int
	End      int
	Gene     string
	Category Category
	Log2     float64
	Spread   float64
	GC       float64
	RMask    float64
}

// Label returns the probe's genomic region label, e.g. "chr1:100-200".
func (p *Probe) Label() string {
	return fmt.Sprintf("%s:%d-%d", p.Chrom, p.Start, p.End)
}

// Region is a bare genomic interval, as read from a BED file or extracted
// from a profile.
type Region struct {
	Chrom string
	Start int
	End   int
	Name  string
}

// Profile is an ordered sequence of probes for one sample (or for a pooled
// reference).  All profiles pooled together must share an identical grid:
// the same probe count and the same chromosome/start/end/gene sequence, in
// order.  HasGC and HasRMask record whether the gc and rmask columns are
// populated; they apply to the whole profile, not per probe.
type Profile struct {
	// Sample names the source the profile was loaded from, used in error
	// messages and diagnostics.
	Sample   string
	HasGC    bool
	HasRMask bool
	Probes   []Probe
}

// Len returns the number of probes.
func (f *Profile) Len() int { return len(f.Probes) }

// Clone returns a deep copy of the profile.
func (f *Profile) Clone() *Profile {
	out := &Profile{
		Sample:   f.Sample,
		HasGC:    f.HasGC,
		HasRMask: f.HasRMask,
		Probes:   make([]Probe, len(f.Probes)),
	}
	copy(out.Probes, f.Probes)
	return out
}

// Log2s returns the log2 coverage column as a fresh slice.
func (f *Profile) Log2s() []float64 {
	out := make([]float64, len(f.Probes))
	for i := range f.Probes {
		out[i] = f.Probes[i].Log2
	}
	return out
}

// GridMismatchError reports that a profile's probe grid (length, chromosome,
// start, end or gene sequence) disagrees with the canonical grid it is being
// pooled against.  Pooling mismatched grids would silently corrupt the
// reference, so this is always fatal to the build.
type GridMismatchError struct {
	// Sample is the offending profile's source name.
	Sample string
	// Canonical is the source name of the profile defining the grid.
	Canonical string
}

func (e *GridMismatchError) Error() string {
	return fmt.Sprintf("%s: probes do not match those in %s", e.Sample, e.Canonical)
}

// CheckGrid verifies that f shares canon's probe grid and returns a
// *GridMismatchError naming both sources if it does not.
func (f *Profile) CheckGrid(canon *Profile) error {
	if len(f.Probes) != len(canon.Probes) {
		return &GridMismatchError{Sample: f.Sample, Canonical: canon.Sample}
	}
	for i := range f.Probes {
		p, q := &f.Probes[i], &canon.Probes[i]
		if p.Chrom != q.Chrom || p.Start != q.Start || p.End != q.End || p.Gene != q.Gene {
			return &GridMismatchError{Sample: f.Sample, Canonical: canon.Sample}
		}
	}
	return nil
}
