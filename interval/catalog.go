package interval

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// PosType is the coordinate type used for region boundaries.  It is int32
// since that's what BAM positions are limited to.
type PosType int32

// PosTypeMax is the largest value a region boundary may take.
const PosTypeMax = math.MaxInt32

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// isHeaderLine reports whether a BED line carries no interval: comments and
// UCSC track/browser lines.
func isHeaderLine(tok []byte) bool {
	return tok[0] == '#' || bytes.Equal(tok, []byte("track")) || bytes.Equal(tok, []byte("browser"))
}

// Entry represents a single interval, with 0-based half-open coordinates.
type Entry struct {
	ChrName string
	Start0  PosType
	End     PosType
}

// Len returns the number of bases in the interval.
func (e Entry) Len() int { return int(e.End - e.Start0) }

// Chromosome describes one chromosome mentioned by a Catalog.  Length is the
// largest interval end seen on it, which is all the coverage arrays need.
type Chromosome struct {
	Name   string
	Length PosType
}

// CatalogOpts defines behavior of LoadCatalog and NewCatalog.
type CatalogOpts struct {
	// RestrictChrom, if nonempty, causes all intervals on other chromosomes to
	// be dropped.
	RestrictChrom string
}

// Catalog holds the valid regions of a genome, grouped by chromosome.
// Chromosomes are addressed by a small integer index assigned at build time;
// the index is stable for the lifetime of the Catalog and is what
// coverage.Store uses to address its arrays.  A Catalog is immutable once
// built.
type Catalog struct {
	chroms    []Chromosome
	intervals [][]Entry
	nameToIdx map[string]int
}

// NumChromosomes returns the number of chromosomes in the catalog.
func (c *Catalog) NumChromosomes() int { return len(c.chroms) }

// Chromosomes returns the chromosomes in traversal order.  The caller must
// not modify the returned slice.
func (c *Catalog) Chromosomes() []Chromosome { return c.chroms }

// Intervals returns the sorted intervals of the idx'th chromosome.  The
// caller must not modify the returned slice.
func (c *Catalog) Intervals(idx int) []Entry { return c.intervals[idx] }

// Index returns the index of the named chromosome.
func (c *Catalog) Index(chrName string) (int, bool) {
	idx, ok := c.nameToIdx[chrName]
	return idx, ok
}

// MaxEnd returns the maximum end coordinate over chrName's intervals, or 0
// if chrName is not in the catalog.
func (c *Catalog) MaxEnd(chrName string) PosType {
	idx, ok := c.nameToIdx[chrName]
	if !ok {
		return 0
	}
	return c.chroms[idx].Length
}

// NumIntervals returns the total number of intervals.
func (c *Catalog) NumIntervals() int {
	n := 0
	for _, ivs := range c.intervals {
		n += len(ivs)
	}
	return n
}

// TotalBases returns the sum of interval lengths.  Overlapping intervals are
// counted once per interval.
func (c *Catalog) TotalBases() int64 {
	var n int64
	for _, ivs := range c.intervals {
		for _, iv := range ivs {
			n += int64(iv.Len())
		}
	}
	return n
}

// NewCatalogFromEntries builds a Catalog from entries, which need not be
// sorted.  Zero-length entries are dropped.
func NewCatalogFromEntries(entries []Entry, opts CatalogOpts) (*Catalog, error) {
	sorted := make([]Entry, 0, len(entries))
	for i, e := range entries {
		if e.Start0 < 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval.NewCatalogFromEntries: negative start coordinate in entry %d", i))
		}
		if e.End < e.Start0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval.NewCatalogFromEntries: invalid coordinate pair [%d, %d) in entry %d", e.Start0, e.End, i))
		}
		if e.End == e.Start0 {
			continue
		}
		if opts.RestrictChrom != "" && e.ChrName != opts.RestrictChrom {
			continue
		}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ChrName != sorted[j].ChrName {
			return sorted[i].ChrName < sorted[j].ChrName
		}
		return sorted[i].Start0 < sorted[j].Start0
	})

	c := &Catalog{nameToIdx: make(map[string]int)}
	for runStart := 0; runStart < len(sorted); {
		chrName := sorted[runStart].ChrName
		runEnd := runStart + 1
		for runEnd < len(sorted) && sorted[runEnd].ChrName == chrName {
			runEnd++
		}
		ivs := sorted[runStart:runEnd:runEnd]
		var maxEnd PosType
		for _, iv := range ivs {
			if iv.End > maxEnd {
				maxEnd = iv.End
			}
		}
		c.nameToIdx[chrName] = len(c.chroms)
		c.chroms = append(c.chroms, Chromosome{Name: chrName, Length: maxEnd})
		c.intervals = append(c.intervals, ivs)
		runStart = runEnd
	}
	return c, nil
}

func scanEntries(scanner *bufio.Scanner) (entries []Entry, err error) {
	var tokens [3][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || isHeaderLine(tokens[0]) {
			continue
		}
		if nToken != 3 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval.NewCatalog: line %d has fewer tokens than expected", lineIdx))
		}
		var start, end int
		if start, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			return nil, errors.E(errors.Invalid, err, fmt.Sprintf("interval.NewCatalog: bad start coordinate on line %d", lineIdx))
		}
		if end, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			return nil, errors.E(errors.Invalid, err, fmt.Sprintf("interval.NewCatalog: bad end coordinate on line %d", lineIdx))
		}
		if start < 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval.NewCatalog: negative start coordinate %s on line %d", tokens[1], lineIdx))
		}
		if end < start || end >= PosTypeMax {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval.NewCatalog: invalid coordinate pair on line %d", lineIdx))
		}
		// The token bytes are overwritten by the next Scan, so the name must be
		// copied.
		entries = append(entries, Entry{ChrName: string(tokens[0]), Start0: PosType(start), End: PosType(end)})
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// NewCatalog loads the first three columns of a BED stream into a Catalog.
// Input need not be sorted; entries are ordered by (chromosome, start) and
// grouped per chromosome.
func NewCatalog(reader io.Reader, opts CatalogOpts) (*Catalog, error) {
	entries, err := scanEntries(bufio.NewScanner(reader))
	if err != nil {
		return nil, err
	}
	c, err := NewCatalogFromEntries(entries, opts)
	if err != nil {
		return nil, err
	}
	log.Printf("BED loaded, %d chromosome(s), %d interval(s), %d base(s).", c.NumChromosomes(), c.NumIntervals(), c.TotalBases())
	return c, nil
}

// LoadCatalog is a wrapper for NewCatalog that takes a path instead of an
// io.Reader.  Gzipped input is detected from the path.
func LoadCatalog(ctx context.Context, path string, opts CatalogOpts) (c *Catalog, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(err, "interval.LoadCatalog:", path)
	}
	defer file.CloseAndReport(ctx, infile, &err)
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return nil, errors.E(err, "interval.LoadCatalog:", path)
		}
		defer func() {
			if e := gz.Close(); e != nil && err == nil {
				err = e
			}
		}()
		reader = gz
	}
	if c, err = NewCatalog(reader, opts); err != nil {
		return nil, errors.E(err, "interval.LoadCatalog:", path)
	}
	return c, nil
}
