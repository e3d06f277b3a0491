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
	"github.com/grailbio/bamtowig/interval"
)

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// Store holds one dense counter array per catalog chromosome, addressed by
// the catalog's chromosome index.  Array i has length
// catalog.Chromosomes()[i].Length and never changes size.
type Store struct {
	catalog *interval.Catalog
	counts  [][]uint32
}

// NewStore allocates zeroed counters for every chromosome in catalog.
func NewStore(catalog *interval.Catalog) *Store {
	chroms := catalog.Chromosomes()
	s := &Store{
		catalog: catalog,
		counts:  make([][]uint32, len(chroms)),
	}
	for i, chrom := range chroms {
		s.counts[i] = make([]uint32, chrom.Length)
	}
	return s
}

// Catalog returns the catalog the store was built from.
func (s *Store) Catalog() *interval.Catalog { return s.catalog }

// Coverage returns the counters for the named chromosome.  The caller must
// not modify the returned slice.
func (s *Store) Coverage(chrName string) ([]uint32, bool) {
	idx, ok := s.catalog.Index(chrName)
	if !ok {
		return nil, false
	}
	return s.counts[idx], true
}

// CoverageByIndex returns the counters of the idx'th catalog chromosome, or
// nil if there is no such chromosome.
func (s *Store) CoverageByIndex(idx int) []uint32 {
	if idx < 0 || idx >= len(s.counts) {
		return nil
	}
	return s.counts[idx]
}

// Increment adds 1 at pos on the named chromosome.  Unknown chromosomes and
// out-of-range positions are ignored.
func (s *Store) Increment(chrName string, pos PosType) {
	idx, ok := s.catalog.Index(chrName)
	if !ok {
		return
	}
	if cov := s.counts[idx]; pos >= 0 && int(pos) < len(cov) {
		cov[pos]++
	}
}

// AddRange adds 1 to every position of [start, end) on the idx'th
// chromosome, after clipping the interval to the array.  It returns the
// number of positions incremented; an empty or inverted interval adds
// nothing.
func (s *Store) AddRange(idx int, start, end PosType) int {
	cov := s.CoverageByIndex(idx)
	if start < 0 {
		start = 0
	}
	if int(end) > len(cov) {
		end = PosType(len(cov))
	}
	if start >= end {
		return 0
	}
	seg := cov[start:end]
	for i := range seg {
		seg[i]++
	}
	return len(seg)
}

// Sum returns the total of all counters on the named chromosome.
func (s *Store) Sum(chrName string) uint64 {
	cov, _ := s.Coverage(chrName)
	var total uint64
	for _, v := range cov {
		total += uint64(v)
	}
	return total
}
