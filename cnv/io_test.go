package cnv_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/grailbio/cnvref/cnv"
)

const coverageData = "chromosome\tstart\tend\tgene\tcoverage\n" +
	"chr1\t100\t200\tGENEA\t0.25\n" +
	"chr1\t300\t400\tGENEA\t-0.5\n" +
	"chrX\t0\t150\tBackground\t-1\n"

func TestReadProfile(t *testing.T) {
	f, err := cnv.ReadProfile(strings.NewReader(coverageData), "normal1")
	assert.NoError(t, err)
	expect.EQ(t, f.Sample, "normal1")
	expect.EQ(t, f.Len(), 3)
	expect.False(t, f.HasGC)
	expect.False(t, f.HasRMask)
	expect.EQ(t, f.Probes[0], cnv.Probe{
		Chrom: "chr1", Start: 100, End: 200, Gene: "GENEA",
		Category: cnv.Target, Log2: 0.25,
	})
	expect.EQ(t, f.Probes[2].Category, cnv.Antitarget)
	expect.EQ(t, f.Probes[2].Log2, -1.0)
}

func TestReadProfileOptionalColumns(t *testing.T) {
	data := "chromosome\tstart\tend\tgene\tcoverage\tgc\trmask\tspread\n" +
		"chr1\t100\t200\tGENEA\t0.25\t0.41\t0.02\t0.11\n"
	f, err := cnv.ReadProfile(strings.NewReader(data), "picard")
	assert.NoError(t, err)
	expect.True(t, f.HasGC)
	expect.True(t, f.HasRMask)
	p := f.Probes[0]
	expect.EQ(t, p.GC, 0.41)
	expect.EQ(t, p.RMask, 0.02)
	expect.EQ(t, p.Spread, 0.11)
}

func TestReadProfileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"missing column", "chromosome\tstart\tend\tgene\n"},
		{"bad start", "chromosome\tstart\tend\tgene\tcoverage\nchr1\tx\t200\tGENEA\t0\n"},
		{"bad coverage", "chromosome\tstart\tend\tgene\tcoverage\nchr1\t100\t200\tGENEA\tnope\n"},
		{"short line", "chromosome\tstart\tend\tgene\tcoverage\nchr1\t100\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cnv.ReadProfile(strings.NewReader(tt.data), "bad")
			expect.NotNil(t, err)
		})
	}
}

func TestWriteProfileRoundTrip(t *testing.T) {
	orig := &cnv.Profile{
		Sample:   "reference",
		HasGC:    true,
		HasRMask: true,
		Probes: []cnv.Probe{
			{Chrom: "chr1", Start: 100, End: 200, Gene: "GENEA", Category: cnv.Target,
				Log2: 0.123456789, Spread: 0.25, GC: 0.5, RMask: 0.125},
			{Chrom: "chrX", Start: 0, End: 150, Gene: "Background", Category: cnv.Antitarget,
				Log2: -1, Spread: 0},
		},
	}
	var buf bytes.Buffer
	assert.NoError(t, cnv.WriteProfile(&buf, orig))

	got, err := cnv.ReadProfile(&buf, "reference")
	assert.NoError(t, err)
	expect.EQ(t, got, orig)
}

func TestWriteProfileOmitsAbsentColumns(t *testing.T) {
	f := &cnv.Profile{
		Sample: "reference",
		Probes: []cnv.Probe{{Chrom: "chr1", Start: 1, End: 2, Gene: "G", Log2: 0.5}},
	}
	var buf bytes.Buffer
	assert.NoError(t, cnv.WriteProfile(&buf, f))
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	expect.EQ(t, header, "chromosome\tstart\tend\tgene\tcoverage\tspread")
}

func TestReadBED(t *testing.T) {
	data := "track name=tiled\n" +
		"# a comment\n" +
		"chr1\t100\t200\tGENEA\n" +
		"chr1\t300\t400\n" +
		"\n" +
		"chrX\t0\t150\tBackground\n"
	regions, err := cnv.ReadBED(strings.NewReader(data))
	assert.NoError(t, err)
	expect.EQ(t, regions, []cnv.Region{
		{Chrom: "chr1", Start: 100, End: 200, Name: "GENEA"},
		{Chrom: "chr1", Start: 300, End: 400, Name: "-"},
		{Chrom: "chrX", Start: 0, End: 150, Name: "Background"},
	})
}

func TestReadBEDErrors(t *testing.T) {
	_, err := cnv.ReadBED(strings.NewReader("chr1\t100\n"))
	expect.NotNil(t, err)
	_, err = cnv.ReadBED(strings.NewReader("chr1\tlow\thigh\n"))
	expect.NotNil(t, err)
}
