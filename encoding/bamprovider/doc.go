// Package bamprovider provides a uniform way to stream the records of a BAM
// or SAM file.
//
// The Provider is an interface for reading an alignment file in one linear
// pass; BAMProvider and SAMProvider implement it for the two formats, and
// NewProvider picks between them.
package bamprovider
