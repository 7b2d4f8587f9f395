// Package genome provides random access to reference genome sequences in
// FASTA format, either held fully in memory or read on demand through a
// "samtools faidx" index (see http://www.htslib.org/doc/faidx.html).
// Softmask case is preserved: lowercase bases mark repeat-masked sequence.
//
// Coordinates are 0-based, half-open, matching the probe data model.
package genome

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// InMemory holds every sequence of a FASTA file in memory.  Suitable for
// small genomes and tests; use Indexed for whole reference genomes.
type InMemory struct {
	seqs  map[string]string
	names []string
}

// New reads FASTA data from r into memory.  Sequence names are the
// characters between '>' and the first space; text after the space is
// ignored.
func New(r io.Reader) (*InMemory, error) {
	g := &InMemory{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	var name string
	var seq strings.Builder
	flush := func() error {
		if seq.Len() == 0 && name == "" {
			return nil
		}
		if name == "" {
			return errors.New("genome: sequence data before first FASTA header")
		}
		g.seqs[name] = seq.String()
		g.names = append(g.names, name)
		seq.Reset()
		return nil
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return nil, err
			}
			name = strings.Split(line[1:], " ")[0]
			continue
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "genome: reading FASTA data")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return g, nil
}

// Get returns the subsequence [start, end) of the named chromosome.
func (g *InMemory) Get(chrom string, start, end int) (string, error) {
	s, ok := g.seqs[chrom]
	if !ok {
		return "", errors.Errorf("genome: unknown chromosome %s", chrom)
	}
	if start < 0 || end < start || end > len(s) {
		return "", errors.Errorf("genome: invalid range %s:%d-%d (sequence length %d)",
			chrom, start, end, len(s))
	}
	return s[start:end], nil
}

// Names returns the chromosome names in order of appearance.
func (g *InMemory) Names() []string { return g.names }

// faiEntry is one line of a .fai index: sequence length, byte offset of the
// first base, bases per line and bytes per line (bases plus terminator).
type faiEntry struct {
	length    int
	offset    int64
	lineBases int
	lineWidth int
}

// Indexed reads subsequences of an uncompressed FASTA file on demand,
// seeking through the byte offsets recorded in its faidx index.  The index
// is held in memory; sequence data is not.
type Indexed struct {
	r       io.ReadSeeker
	entries map[string]faiEntry
	names   []string
}

// NewIndexed parses a faidx index and returns an Indexed genome reading
// sequence data from r.  Building and maintaining the index itself is the
// caller's (or samtools') responsibility.
func NewIndexed(r io.ReadSeeker, index io.Reader) (*Indexed, error) {
	g := &Indexed{r: r, entries: make(map[string]faiEntry)}
	scanner := bufio.NewScanner(index)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if len(line) == 0 {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			return nil, errors.Errorf("genome: index line %d: expected 5 fields, got %d", lineNo, len(fields))
		}
		var (
			ent faiEntry
			err error
		)
		if ent.length, err = strconv.Atoi(fields[1]); err != nil {
			return nil, errors.Wrapf(err, "genome: index line %d: length", lineNo)
		}
		if ent.offset, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
			return nil, errors.Wrapf(err, "genome: index line %d: offset", lineNo)
		}
		if ent.lineBases, err = strconv.Atoi(fields[3]); err != nil {
			return nil, errors.Wrapf(err, "genome: index line %d: line bases", lineNo)
		}
		if ent.lineWidth, err = strconv.Atoi(fields[4]); err != nil {
			return nil, errors.Wrapf(err, "genome: index line %d: line width", lineNo)
		}
		if ent.lineBases <= 0 || ent.lineWidth < ent.lineBases {
			return nil, errors.Errorf("genome: index line %d: invalid line geometry %d/%d",
				lineNo, ent.lineBases, ent.lineWidth)
		}
		g.entries[fields[0]] = ent
		g.names = append(g.names, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "genome: reading faidx index")
	}
	return g, nil
}

// Get returns the subsequence [start, end) of the named chromosome, with
// line terminators stripped.
func (g *Indexed) Get(chrom string, start, end int) (string, error) {
	ent, ok := g.entries[chrom]
	if !ok {
		return "", errors.Errorf("genome: chromosome %s not in index", chrom)
	}
	if start < 0 || end < start || end > ent.length {
		return "", errors.Errorf("genome: invalid range %s:%d-%d (sequence length %d)",
			chrom, start, end, ent.length)
	}
	if start == end {
		return "", nil
	}
	// Byte offsets of the first and last requested base, accounting for the
	// terminator bytes at the end of every full line.
	terminator := ent.lineWidth - ent.lineBases
	first := ent.offset + int64(start) + int64(start/ent.lineBases)*int64(terminator)
	last := ent.offset + int64(end-1) + int64((end-1)/ent.lineBases)*int64(terminator)
	if _, err := g.r.Seek(first, io.SeekStart); err != nil {
		return "", errors.Wrapf(err, "genome: seeking to %s:%d", chrom, start)
	}
	buf := make([]byte, last-first+1)
	if _, err := io.ReadFull(g.r, buf); err != nil {
		return "", errors.Wrapf(err, "genome: reading %s:%d-%d (truncated file or stale index?)",
			chrom, start, end)
	}
	out := make([]byte, 0, end-start)
	linePos := start % ent.lineBases
	for _, c := range buf {
		if linePos < ent.lineBases {
			out = append(out, c)
		}
		linePos++
		if linePos == ent.lineWidth {
			linePos = 0
		}
	}
	return string(out), nil
}

// Names returns the chromosome names in index order.
func (g *Indexed) Names() []string { return g.names }
