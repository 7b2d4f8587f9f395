package cnv

import (
	"bufio"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Coverage files are tab-separated with a header line.  The first five
// columns are required; spread, gc and rmask are optional and may appear in
// any order after them.
var requiredColumns = []string{"chromosome", "start", "end", "gene", "coverage"}

// SampleName derives a sample name from a file path: the base name with any
// .gz suffix and one file extension stripped.
func SampleName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// ReadProfile parses a coverage table from r.  sample names the source in
// the returned profile and in error messages.
func ReadProfile(r io.Reader, sample string) (*Profile, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrapf(err, "%s: reading header", sample)
		}
		return nil, errors.Errorf("%s: empty coverage file", sample)
	}
	cols := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")
	colIdx := make(map[string]int, len(cols))
	for i, name := range cols {
		colIdx[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, errors.Errorf("%s: missing column %q in coverage file header", sample, name)
		}
	}
	spreadIdx, hasSpread := colIdx["spread"]
	gcIdx, hasGC := colIdx["gc"]
	rmaskIdx, hasRMask := colIdx["rmask"]

	f := &Profile{Sample: sample, HasGC: hasGC, HasRMask: hasRMask}
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if len(line) == 0 {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < len(cols) {
			return nil, errors.Errorf("%s: line %d: expected %d fields, got %d", sample, lineNo, len(cols), len(fields))
		}
		var (
			p   Probe
			err error
		)
		p.Chrom = fields[colIdx["chromosome"]]
		if p.Start, err = strconv.Atoi(fields[colIdx["start"]]); err != nil {
			return nil, errors.Wrapf(err, "%s: line %d: start", sample, lineNo)
		}
		if p.End, err = strconv.Atoi(fields[colIdx["end"]]); err != nil {
			return nil, errors.Wrapf(err, "%s: line %d: end", sample, lineNo)
		}
		p.Gene = fields[colIdx["gene"]]
		p.Category = CategoryOf(p.Gene)
		if p.Log2, err = strconv.ParseFloat(fields[colIdx["coverage"]], 64); err != nil {
			return nil, errors.Wrapf(err, "%s: line %d: coverage", sample, lineNo)
		}
		if hasSpread {
			if p.Spread, err = strconv.ParseFloat(fields[spreadIdx], 64); err != nil {
				return nil, errors.Wrapf(err, "%s: line %d: spread", sample, lineNo)
			}
		}
		if hasGC {
			if p.GC, err = strconv.ParseFloat(fields[gcIdx], 64); err != nil {
				return nil, errors.Wrapf(err, "%s: line %d: gc", sample, lineNo)
			}
		}
		if hasRMask {
			if p.RMask, err = strconv.ParseFloat(fields[rmaskIdx], 64); err != nil {
				return nil, errors.Wrapf(err, "%s: line %d: rmask", sample, lineNo)
			}
		}
		f.Probes = append(f.Probes, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s: reading coverage file", sample)
	}
	return f, nil
}

// ReadProfileFile is a wrapper for ReadProfile that takes a path instead of
// an io.Reader.  Gzipped files are decompressed transparently.
func ReadProfileFile(path string) (f *Profile, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadProfile(reader, SampleName(path))
}

// WriteProfile writes f as a coverage table.  The spread column is always
// written; gc and rmask columns are written only when the profile carries
// them.
func WriteProfile(w io.Writer, f *Profile) error {
	tsvw := tsv.NewWriter(w)
	header := "chromosome\tstart\tend\tgene\tcoverage\tspread"
	if f.HasGC {
		header += "\tgc"
	}
	if f.HasRMask {
		header += "\trmask"
	}
	tsvw.WriteString(header)
	if err := tsvw.EndLine(); err != nil {
		return err
	}
	for i := range f.Probes {
		p := &f.Probes[i]
		tsvw.WriteString(p.Chrom)
		tsvw.WriteInt64(int64(p.Start))
		tsvw.WriteInt64(int64(p.End))
		tsvw.WriteString(p.Gene)
		tsvw.WriteFloat64(p.Log2, 'g', -1)
		tsvw.WriteFloat64(p.Spread, 'g', -1)
		if f.HasGC {
			tsvw.WriteFloat64(p.GC, 'g', -1)
		}
		if f.HasRMask {
			tsvw.WriteFloat64(p.RMask, 'g', -1)
		}
		if err := tsvw.EndLine(); err != nil {
			return err
		}
	}
	return tsvw.Flush()
}

// WriteProfileFile is a wrapper for WriteProfile that writes to a path.
func WriteProfileFile(path string, f *Profile) (err error) {
	ctx := vcontext.Background()
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, out, &err)
	return WriteProfile(out.Writer(ctx), f)
}

// ReadBED parses an ordered interval list in BED format (no header;
// chromosome, start, end and an optional name column).  Intervals without a
// name get "-".  track/browser/comment lines are skipped.
func ReadBED(r io.Reader) ([]Region, error) {
	var regions []Region
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if len(line) == 0 || line[0] == '#' ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, errors.Errorf("line %d: expected at least 3 BED fields, got %d", lineNo, len(fields))
		}
		var (
			region Region
			err    error
		)
		region.Chrom = fields[0]
		if region.Start, err = strconv.Atoi(fields[1]); err != nil {
			return nil, errors.Wrapf(err, "line %d: start", lineNo)
		}
		if region.End, err = strconv.Atoi(fields[2]); err != nil {
			return nil, errors.Wrapf(err, "line %d: end", lineNo)
		}
		region.Name = "-"
		if len(fields) > 3 {
			region.Name = fields[3]
		}
		regions = append(regions, region)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading BED data")
	}
	return regions, nil
}

// ReadBEDFile is a wrapper for ReadBED that takes a path instead of an
// io.Reader.  Gzipped files are decompressed transparently.
func ReadBEDFile(path string) (regions []Region, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadBED(reader)
}
