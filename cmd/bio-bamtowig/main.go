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
package main

/*
bio-bamtowig writes the per-base read depth of a BAM/SAM file over a set of
valid regions as a wiggle or bedGraph track.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/bamtowig/coverage"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	expansion = flag.Int("expansion", coverage.DefaultOpts.Expansion, "Number of bases to extend from the start site of each read, instead of using the end of the read; 0 = use the aligned span")
	bedGraph  = flag.Bool("bedGraph", coverage.DefaultOpts.BedGraph, "Write run-length bedGraph records instead of a fixedStep wiggle")
	chrom     = flag.String("chrom", coverage.DefaultOpts.RestrictChrom, "Restrict computation and output to this chromosome")
	format    = flag.String("format", coverage.DefaultOpts.Format, "Alignment file format, 'bam' or 'sam'; autodetected if empty")
)

func bioBamToWigUsage() {
	fmt.Printf("Usage: %s [OPTIONS] noGap.bed in.{b,s}am output.wig\n", os.Args[0])
	fmt.Printf("Output paths ending in .gz are bgzipped.\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioBamToWigUsage
	shutdown := grail.Init()
	defer shutdown()

	positionalArgs := flag.Args()
	if len(positionalArgs) != 3 {
		flag.Usage()
		log.Fatalf("Expected 3 positional arguments (noGap.bed, in.{b,s}am, output.wig), got %d: '%s'", len(positionalArgs), strings.Join(positionalArgs, " "))
	}
	if *expansion < 0 {
		log.Fatalf("-expansion must be non-negative, got %d", *expansion)
	}
	ctx := vcontext.Background()
	opts := coverage.Opts{
		Expansion:     *expansion,
		BedGraph:      *bedGraph,
		RestrictChrom: *chrom,
		Format:        *format,
	}
	if err := coverage.Run(ctx, positionalArgs[0], positionalArgs[1], positionalArgs[2], &opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
