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

// Opts controls accumulation and output.  It replaces the process-wide
// settings the command-line flags map to.
type Opts struct {
	// Expansion, if positive, replaces each read's aligned span with the
	// Expansion bases downstream of its 5' end.  0 uses the aligned span.
	Expansion int
	// BedGraph selects run-length bedGraph output instead of fixedStep wiggle.
	BedGraph bool
	// RestrictChrom, if nonempty, limits computation and output to one
	// chromosome.
	RestrictChrom string
	// Format is the alignment file format, "bam" or "sam".  Empty means
	// autodetect.
	Format string
}

// DefaultOpts are the option values used when a flag is not given.
var DefaultOpts = Opts{
	Expansion:     0,
	BedGraph:      false,
	RestrictChrom: "",
	Format:        "",
}
