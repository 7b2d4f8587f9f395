package annotate_test

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/grailbio/cnvref/annotate"
	"github.com/grailbio/cnvref/cnv"
	"github.com/grailbio/cnvref/genome"
)

func TestGCContent(t *testing.T) {
	tests := []struct {
		seq   string
		gc    float64
		rmask float64
	}{
		{"", 0, 0},
		{"GCgc", 1, 0.5},
		{"ATat", 0, 0.5},
		{"ACGT", 0.5, 0},
		{"acgt", 0.5, 1},
		{"NNNN", 0, 0},          // no countable bases
		{"ANTNgNcN", 0.5, 0.5},  // N does not count toward the total
	}
	for _, tt := range tests {
		gc, rmask := annotate.GCContent(tt.seq)
		expect.EQ(t, gc, tt.gc, "seq=%q", tt.seq)
		expect.EQ(t, rmask, tt.rmask, "seq=%q", tt.seq)
	}
}

const fastaData = ">chr1\n" +
	"ACGTACGTgg\n" +
	"ccATATAT\n" +
	">chr2\n" +
	"NNNNNN\n"

func TestStats(t *testing.T) {
	g, err := genome.New(strings.NewReader(fastaData))
	assert.NoError(t, err)

	regions := []cnv.Region{
		{Chrom: "chr1", Start: 0, End: 4},   // ACGT
		{Chrom: "chr1", Start: 8, End: 12},  // ggcc, all softmasked
		{Chrom: "chr1", Start: 12, End: 18}, // ATATAT
		{Chrom: "chr2", Start: 0, End: 6},   // all N
		{Chrom: "chr1", Start: 5, End: 5},   // empty interval
	}
	gc, rmask, err := annotate.Stats(g, regions)
	assert.NoError(t, err)
	expect.EQ(t, gc, []float64{0.5, 1, 0, 0, 0})
	expect.EQ(t, rmask, []float64{0, 1, 0, 0, 0})
}

func TestStatsUnknownChromosome(t *testing.T) {
	g, err := genome.New(strings.NewReader(fastaData))
	assert.NoError(t, err)
	_, _, err = annotate.Stats(g, []cnv.Region{{Chrom: "chrZ", Start: 0, End: 1}})
	expect.NotNil(t, err)
}

func TestApply(t *testing.T) {
	g, err := genome.New(strings.NewReader(fastaData))
	assert.NoError(t, err)

	f := &cnv.Profile{
		Sample: "reference",
		Probes: []cnv.Probe{
			{Chrom: "chr1", Start: 0, End: 4, Gene: "GENEA"},
			{Chrom: "chr1", Start: 8, End: 12, Gene: "Background", Category: cnv.Antitarget},
		},
	}
	assert.NoError(t, annotate.Apply(f, g, false))
	expect.True(t, f.HasGC)
	expect.True(t, f.HasRMask)
	expect.EQ(t, f.Probes[0].GC, 0.5)
	expect.EQ(t, f.Probes[0].RMask, 0.0)
	expect.EQ(t, f.Probes[1].GC, 1.0)
	expect.EQ(t, f.Probes[1].RMask, 1.0)
}

func TestApplyKeepsReusedGC(t *testing.T) {
	// A gc column reused from a trusted prior source stays untouched by the
	// annotation pass; only rmask is filled from the genome.
	g, err := genome.New(strings.NewReader(fastaData))
	assert.NoError(t, err)

	f := &cnv.Profile{
		Sample: "reference",
		HasGC:  true,
		Probes: []cnv.Probe{
			{Chrom: "chr1", Start: 0, End: 4, Gene: "GENEA", GC: 0.91},
			{Chrom: "chr1", Start: 8, End: 12, Gene: "GENEA", GC: 0.12},
		},
	}
	assert.NoError(t, annotate.Apply(f, g, true))
	expect.True(t, f.HasGC)
	expect.True(t, f.HasRMask)
	expect.EQ(t, f.Probes[0].GC, 0.91)
	expect.EQ(t, f.Probes[1].GC, 0.12)
	expect.EQ(t, f.Probes[0].RMask, 0.0)
	expect.EQ(t, f.Probes[1].RMask, 1.0)
}
