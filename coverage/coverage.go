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

	"github.com/grailbio/bamtowig/encoding/bamprovider"
	"github.com/grailbio/bamtowig/interval"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Run computes the coverage of the alignments in xampath over the valid
// regions in bedPath and writes the track to outPath.  Any error aborts the
// run; outPath is not valid in that case.
func Run(ctx context.Context, bedPath, xampath, outPath string, opts *Opts) (err error) {
	log.Debug.Printf("coverage: reading valid regions from %s", bedPath)
	catalog, err := interval.LoadCatalog(ctx, bedPath, interval.CatalogOpts{RestrictChrom: opts.RestrictChrom})
	if err != nil {
		return err
	}
	if catalog.NumChromosomes() == 0 {
		log.Printf("coverage: warning: no valid regions in %s", bedPath)
	}

	log.Debug.Printf("coverage: allocating counters for %d chromosome(s)", catalog.NumChromosomes())
	store := NewStore(catalog)

	log.Debug.Printf("coverage: reading alignments from %s", xampath)
	var provider bamprovider.Provider
	if opts.Format == "" {
		provider = bamprovider.NewProvider(xampath)
	} else {
		ft := bamprovider.ParseFileType(opts.Format)
		if ft == bamprovider.Unknown {
			return errors.E(errors.Invalid, "coverage.Run: unknown alignment format", opts.Format)
		}
		provider = bamprovider.NewProvider(xampath, bamprovider.ProviderOpts{Type: ft})
	}
	defer func() {
		if e := provider.Close(); e != nil && err == nil {
			err = e
		}
	}()
	iter := provider.NewIterator()
	stats, err := Accumulate(ctx, catalog, store, iter, opts)
	if e := iter.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return errors.E(err, "coverage.Run:", xampath)
	}
	log.Printf("coverage: %d record(s) read, %d discarded, %d off the valid regions, %d counted, %d base(s) added",
		stats.Records, stats.Discarded, stats.OffCatalog, stats.Counted, stats.BasesAdded)

	return WriteTrack(ctx, outPath, catalog, store, opts)
}
