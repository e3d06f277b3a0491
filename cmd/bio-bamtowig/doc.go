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
Given a BAM or SAM file and a BED file of valid (non-gap) regions,
bio-bamtowig reports the read depth at every base of the regions.

Secondary, QC-failed, duplicate and unmapped reads are ignored.  With
-expansion N, each read counts for the N bases starting at its 5' end
instead of its aligned span, which approximates fragment coverage for
single-end data.

The default output is a fixedStep wiggle with one block per region; with
-bedGraph, equal-depth runs inside each region are collapsed into bedGraph
records.

Sample usage:
bio-bamtowig \
    -expansion 200 \
    -bedGraph \
    noGap.bed \
    my.bam \
    my.bedGraph.gz
*/
package main
