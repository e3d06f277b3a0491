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

	"github.com/grailbio/bamtowig/encoding/bamprovider"
	"github.com/grailbio/bamtowig/interval"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// DiscardFlags are the FLAG bits that exclude a record from coverage.
const DiscardFlags = sam.Secondary | sam.QCFail | sam.Duplicate | sam.Unmapped

// ctxCheckInterval is the number of records between context checks.
const ctxCheckInterval = 1 << 16

// Stats summarizes one accumulation pass.
type Stats struct {
	// Records is the number of records read.
	Records int64
	// Discarded counts records excluded by DiscardFlags (or lacking a
	// reference).
	Discarded int64
	// OffCatalog counts records on chromosomes the store has no counters for.
	OffCatalog int64
	// Counted counts records that reached a coverage array, including those
	// whose interval ended up empty after clipping.
	Counted int64
	// BasesAdded is the total of all increments.
	BasesAdded int64
}

// Projector maps alignment records onto the coverage store.  It caches the
// per-chromosome lookups of the previous record, which makes coordinate
// sorted input cheap; unsorted input is still handled correctly.
type Projector struct {
	catalog   *interval.Catalog
	store     *Store
	expansion PosType

	lastRef  *sam.Reference
	lastIdx  int
	chromMax PosType

	stats Stats
}

// NewProjector creates a Projector adding into store.  Chromosome lookups use
// the catalog the store was built from.  An expansion above PosTypeMax is
// clamped, since no chromosome extends that far.
func NewProjector(store *Store, opts *Opts) *Projector {
	expansion := PosType(interval.PosTypeMax)
	if opts.Expansion < interval.PosTypeMax {
		expansion = PosType(opts.Expansion)
	}
	return &Projector{
		catalog:   store.Catalog(),
		store:     store,
		expansion: expansion,
		lastIdx:   -1,
	}
}

// Span returns the half-open interval a record contributes to, given the
// expansion length and the chromosome's last valid base.  The result may be
// empty or inverted; callers treat such intervals as contributing nothing.
func Span(r *sam.Record, expansion, chromMax PosType) (start, end PosType) {
	start, end = PosType(r.Pos), PosType(r.End())
	if expansion == 0 {
		return
	}
	if r.Flags&sam.Reverse != 0 {
		if end > expansion {
			start = end - expansion
		} else {
			start = 0
		}
		return
	}
	if expansion < chromMax-start {
		end = start + expansion
	} else {
		end = chromMax
	}
	return
}

// Add projects one record onto the store.
func (p *Projector) Add(r *sam.Record) {
	p.stats.Records++
	if r.Flags&DiscardFlags != 0 || r.Ref == nil {
		p.stats.Discarded++
		return
	}
	if r.Ref != p.lastRef {
		p.lastRef = r.Ref
		name := r.Ref.Name()
		var ok bool
		if p.lastIdx, ok = p.catalog.Index(name); !ok {
			p.lastIdx = -1
		}
		p.chromMax = p.catalog.MaxEnd(name)
		vlog.VI(1).Infof("coverage: now reading %s (index %d, max end %d)", name, p.lastIdx, p.chromMax)
	}
	if p.lastIdx < 0 {
		p.stats.OffCatalog++
		return
	}
	start, end := Span(r, p.expansion, p.chromMax)
	p.stats.Counted++
	p.stats.BasesAdded += int64(p.store.AddRange(p.lastIdx, start, end))
}

// Stats returns the running totals.
func (p *Projector) Stats() Stats { return p.stats }

// Accumulate reads every record from iter and adds its span to store.  It
// does not close iter.  A read error from iter is returned as is, together
// with the stats collected up to that point.
func Accumulate(ctx context.Context, catalog *interval.Catalog, store *Store, iter bamprovider.Iterator, opts *Opts) (Stats, error) {
	if opts.Expansion < 0 {
		return Stats{}, errors.E(errors.Invalid, fmt.Sprintf("coverage.Accumulate: negative expansion %d", opts.Expansion))
	}
	if store.Catalog() != catalog {
		return Stats{}, errors.E(errors.Invalid, "coverage.Accumulate: store was not built from the given catalog")
	}
	p := NewProjector(store, opts)
	for iter.Scan() {
		p.Add(iter.Record())
		if p.stats.Records%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return p.stats, err
			}
		}
	}
	return p.stats, iter.Err()
}
