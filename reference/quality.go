package reference

import (
	"fmt"
	"io"

	"github.com/grailbio/cnvref/cnv"
)

// Thresholds bound the aggregated statistics a probe may have before it is
// flagged as unreliable.  A probe fails when its coverage falls below
// MinCoverage, its spread exceeds MaxSpread, or (when the profile carries an
// rmask column) its repeat-masked fraction exceeds MaxRepeatFraction.
type Thresholds struct {
	MinCoverage       float64
	MaxSpread         float64
	MaxRepeatFraction float64
}

// DefaultThresholds are the conventional cutoffs for log2 coverage data.
var DefaultThresholds = Thresholds{
	MinCoverage:       -5.0,
	MaxSpread:         1.0,
	MaxRepeatFraction: 0.99,
}

// Bad reports whether a single probe fails the thresholds.  hasRMask tells
// whether the probe's RMask field is populated; the repeat-fraction check is
// skipped otherwise.
func (t Thresholds) Bad(p *cnv.Probe, hasRMask bool) bool {
	if p.Log2 < t.MinCoverage || p.Spread > t.MaxSpread {
		return true
	}
	return hasRMask && p.RMask > t.MaxRepeatFraction
}

// MaskBadProbes flags the probes of f with unreliable aggregated statistics.
// The returned mask parallels f.Probes; true marks a failed probe.  Flags
// are informational: downstream consumers decide whether to exclude them.
func MaskBadProbes(f *cnv.Profile, t Thresholds) []bool {
	mask := make([]bool, len(f.Probes))
	for i := range f.Probes {
		mask[i] = t.Bad(&f.Probes[i], f.HasRMask)
	}
	return mask
}

// percent guards the percentage of flagged probes against an empty category.
func percent(flagged, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(flagged) / float64(total)
}

// WarnBadProbes writes a diagnostic report about the probes of f that fail
// the thresholds.  Flagged target probes are listed one per line, with a `"`
// continuation marker grouping consecutive probes of the same gene; flagged
// antitarget probes are only counted.  The report is informational and does
// not affect the profile.
func WarnBadProbes(w io.Writer, f *cnv.Profile, t Thresholds) {
	mask := MaskBadProbes(f, t)
	var fgTotal, bgTotal int
	var fgBad, bgBad []*cnv.Probe
	for i := range f.Probes {
		p := &f.Probes[i]
		if p.Category == cnv.Antitarget {
			bgTotal++
			if mask[i] {
				bgBad = append(bgBad, p)
			}
		} else {
			fgTotal++
			if mask[i] {
				fgBad = append(fgBad, p)
			}
		}
	}

	if len(fgBad) > 0 {
		fmt.Fprintf(w, "*WARNING* %d targets (%.4f%%) failed filters:\n",
			len(fgBad), percent(len(fgBad), fgTotal))
		geneCols, chromCols := 0, 0
		for _, p := range fgBad {
			if len(p.Gene) > geneCols {
				geneCols = len(p.Gene)
			}
			if l := len(p.Label()); l > chromCols {
				chromCols = l
			}
		}
		lastGene := ""
		for _, p := range fgBad {
			gene := p.Gene
			if gene == lastGene {
				gene = `"`
			} else {
				lastGene = gene
			}
			fmt.Fprintf(w, "  %-*s  %-*s  coverage=%.3f  spread=%.3f",
				geneCols, gene, chromCols, p.Label(), p.Log2, p.Spread)
			if f.HasRMask {
				fmt.Fprintf(w, "  rmask=%.3f", p.RMask)
			}
			fmt.Fprintln(w)
		}
	}

	if len(bgBad) > 0 {
		fmt.Fprintf(w, "Antitargets: %d (%.4f%%) failed filters\n",
			len(bgBad), percent(len(bgBad), bgTotal))
	}
}
