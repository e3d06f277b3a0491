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

/*
Package coverage computes per-base read depth over the valid regions of a
genome and writes it out as a genome track.

Coverage is accumulated in one linear pass over an alignment file:

  catalog, _ := interval.LoadCatalog(ctx, "noGap.bed", interval.CatalogOpts{})
  store := coverage.NewStore(catalog)
  stats, err := coverage.Accumulate(ctx, catalog, store, iter, &opts)
  err = coverage.WriteBedGraph(w, catalog, store)

Each record that is not secondary, QC-failed, a duplicate or unmapped adds 1
to every base it covers.  With a nonzero Opts.Expansion, a read is instead
represented by the Expansion bases starting at its 5' end: forward-strand
reads are extended from their start (stopping at the last valid base of the
chromosome), reverse-strand reads from their end (stopping at position 0).

Reads on chromosomes without valid regions are skipped.
*/
package coverage
