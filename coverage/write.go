// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package coverage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/bamtowig/interval"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
)

// intervalVisitor is called once per catalog interval with the chromosome's
// counters.
type intervalVisitor func(iv interval.Entry, cov []uint32) error

// visitIntervals walks the catalog in chromosome order, then interval order.
// Every chromosome must have counters in store that cover all of its
// intervals.
func visitIntervals(catalog *interval.Catalog, store *Store, visit intervalVisitor) error {
	for idx, chrom := range catalog.Chromosomes() {
		cov, ok := store.Coverage(chrom.Name)
		if !ok {
			return errors.E(errors.NotExist, fmt.Sprintf("coverage: no coverage for chromosome %s", chrom.Name))
		}
		for _, iv := range catalog.Intervals(idx) {
			if int(iv.End) > len(cov) {
				return errors.E(errors.NotExist, fmt.Sprintf("coverage: interval %s:%d-%d extends past coverage end %d", iv.ChrName, iv.Start0, iv.End, len(cov)))
			}
			if err := visit(iv, cov); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFixedStep writes the coverage over every catalog interval as a
// fixedStep wiggle: a "fixedStep chrom=<name> start=<1-based start> step=1"
// line followed by one count per base.
func WriteFixedStep(w io.Writer, catalog *interval.Catalog, store *Store) (err error) {
	tsvw := tsv.NewWriter(w)
	err = visitIntervals(catalog, store, func(iv interval.Entry, cov []uint32) error {
		tsvw.WriteString(fmt.Sprintf("fixedStep chrom=%s start=%d step=1", iv.ChrName, iv.Start0+1))
		if err := tsvw.EndLine(); err != nil {
			return err
		}
		for _, v := range cov[iv.Start0:iv.End] {
			tsvw.WriteUint32(v)
			if err := tsvw.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	return tsvw.Flush()
}

// WriteBedGraph writes the coverage over every catalog interval as bedGraph
// lines "<chrom> <start> <end> <value>", one per maximal run of equal
// counts.  Runs never extend across interval boundaries.
func WriteBedGraph(w io.Writer, catalog *interval.Catalog, store *Store) (err error) {
	tsvw := tsv.NewWriter(w)
	writeRun := func(chrName string, start, end PosType, v uint32) error {
		tsvw.WriteString(chrName)
		tsvw.WriteUint32(uint32(start))
		tsvw.WriteUint32(uint32(end))
		tsvw.WriteUint32(v)
		return tsvw.EndLine()
	}
	err = visitIntervals(catalog, store, func(iv interval.Entry, cov []uint32) error {
		runStart := iv.Start0
		runVal := cov[runStart]
		for pos := iv.Start0 + 1; pos < iv.End; pos++ {
			if cov[pos] != runVal {
				if err := writeRun(iv.ChrName, runStart, pos, runVal); err != nil {
					return err
				}
				runStart = pos
				runVal = cov[pos]
			}
		}
		return writeRun(iv.ChrName, runStart, iv.End, runVal)
	})
	if err != nil {
		return
	}
	return tsvw.Flush()
}

// WriteTrack creates path and writes the track selected by opts.BedGraph to
// it.  Paths ending in ".gz" are bgzipped.
func WriteTrack(ctx context.Context, path string, catalog *interval.Catalog, store *Store, opts *Opts) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return errors.E(err, "coverage.WriteTrack:", path)
	}
	defer file.CloseAndReport(ctx, out, &err)

	w := out.Writer(ctx)
	if strings.HasSuffix(path, ".gz") {
		bgzfw := bgzf.NewWriter(w, 1)
		defer func() {
			if e := bgzfw.Close(); e != nil && err == nil {
				err = e
			}
		}()
		w = bgzfw
	}
	log.Debug.Printf("coverage: writing %s (bedGraph=%v)", path, opts.BedGraph)
	if opts.BedGraph {
		err = WriteBedGraph(w, catalog, store)
	} else {
		err = WriteFixedStep(w, catalog, store)
	}
	if err != nil {
		return errors.E(err, "coverage.WriteTrack:", path)
	}
	return nil
}
