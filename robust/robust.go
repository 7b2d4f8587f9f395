// Package robust provides outlier-resistant location and scale estimators
// over plain float64 sequences.  The estimators are self-contained numeric
// utilities with no genomic types; the reference builder applies them
// column-wise to pooled coverage matrices, but they are equally usable on any
// numeric data.
package robust

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Opts parameterizes the biweight estimators.
type Opts struct {
	// TuningConstant scales the MAD-normalized distances before weighting.
	// Observations farther than TuningConstant MADs from the initial estimate
	// get zero weight.
	TuningConstant float64
	// Epsilon is the minimum denominator used when normalizing distances,
	// so that near-constant data does not divide by zero.
	Epsilon float64
}

// DefaultLocationOpts is the conventional tuning for biweight location.
var DefaultLocationOpts = Opts{TuningConstant: 6.0, Epsilon: 1e-4}

// DefaultScaleOpts is the conventional tuning for biweight midvariance.
var DefaultScaleOpts = Opts{TuningConstant: 9.0, Epsilon: 1e-4}

// Median returns the median of xs, interpolating the two middle values for
// even lengths.  xs is not modified.  Median of an empty sequence is NaN.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MAD returns the median absolute deviation of xs from its median, without
// any consistency scaling.
func MAD(xs []float64) float64 {
	m := Median(xs)
	d := make([]float64, len(xs))
	for i, x := range xs {
		d[i] = math.Abs(x - m)
	}
	return Median(d)
}

// BiweightLocation returns Tukey's biweight location of xs with the
// conventional tuning constant.
func BiweightLocation(xs []float64) float64 {
	return BiweightLocationOpts(xs, DefaultLocationOpts)
}

// BiweightLocationOpts computes the biweight location: a weighted refinement
// of the median where each observation's weight falls off smoothly with its
// MAD-normalized distance from the median and reaches zero at
// opts.TuningConstant MADs.  Constant sequences return the common value.
func BiweightLocationOpts(xs []float64, opts Opts) float64 {
	initial := Median(xs)
	scale := opts.TuningConstant * MAD(xs)
	if scale < opts.Epsilon {
		scale = opts.Epsilon
	}
	d := make([]float64, len(xs))
	w := make([]float64, len(xs))
	for i, x := range xs {
		d[i] = x - initial
		u := d[i] / scale
		if u > -1 && u < 1 {
			t := 1 - u*u
			w[i] = t * t
		}
	}
	sumW := floats.Sum(w)
	if sumW == 0 {
		// All observations were rejected as outliers; the median stands.
		return initial
	}
	return initial + floats.Dot(d, w)/sumW
}

// BiweightMidvariance returns the biweight midvariance of xs (expressed as a
// standard-deviation-like spread, in the same units as xs) with the
// conventional tuning constant.
func BiweightMidvariance(xs []float64) float64 {
	return BiweightMidvarianceOpts(xs, DefaultScaleOpts)
}

// BiweightMidvarianceOpts computes the robust spread matching
// BiweightLocationOpts.  Observations beyond opts.TuningConstant MADs from
// the median are excluded.  Constant sequences, including the single-element
// case, return 0.
func BiweightMidvarianceOpts(xs []float64, opts Opts) float64 {
	initial := Median(xs)
	scale := opts.TuningConstant * MAD(xs)
	if scale < opts.Epsilon {
		scale = opts.Epsilon
	}
	var num, den float64
	n := 0
	for _, x := range xs {
		d := x - initial
		u := d / scale
		if u <= -1 || u >= 1 {
			continue
		}
		t := 1 - u*u
		num += d * d * t * t * t * t
		den += t * (1 - 5*u*u)
		n++
	}
	if den == 0 {
		return 0
	}
	return math.Sqrt(float64(n)*num) / math.Abs(den)
}
