package bamprovider

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// Type forces the input format.  If Type==Unknown, it is guessed from the
	// path and, failing that, the file contents.
	Type FileType
}

// Provider reads the records of a BAM or SAM file in one linear pass.
type Provider interface {
	// GetHeader returns the header for the provided alignment data.  The
	// callee must not modify the returned header object.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over every record in the file, in file
	// order.
	//
	// REQUIRES: Close has not been called.
	NewIterator() Iterator

	// Close must be called exactly once. It returns any error encountered
	// by the provider, or any iterator created by the provider.
	//
	// REQUIRES: All the iterators created by NewIterator have been closed.
	Close() error
}

// Iterator iterates over sam.Records in file order. Thread compatible.
type Iterator interface {
	// Scan returns where there are any records remaining in the iterator,
	// and if so, advances the iterator to the next record. If the iterator
	// reaches the end of the file, Scan() returns false.  If an error
	// occurs, Scan() returns false and the error can be retrieved by
	// calling Err().
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record in the iterator. This must be
	// called only after a call to Scan() returns true.  The record is owned
	// by the iterator and may be overwritten by the next Scan.
	//
	// REQUIRES: Close has not been called.
	Record() *sam.Record

	// Err returns the error encoutered during iteration, or nil if no error
	// occurred.  An io.EOF error will be translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

// FileType represents the type of an alignment file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// BAM file
	BAM
	// SAM file
	SAM
)

// ParseFileType parses the file type string. "bam" returns bamprovider.BAM, for
// example. On error, it returns Unknown.
func ParseFileType(name string) FileType {
	switch strings.ToLower(name) {
	case "bam":
		return BAM
	case "sam":
		return SAM
	default:
		return Unknown
	}
}

// gzipMagic starts every BGZF block, and hence every BAM file.
var gzipMagic = []byte{0x1f, 0x8b}

// GuessFileType returns the file type from the pathname and/or
// contents. Returns Unknown on error.
func GuessFileType(path string) FileType {
	if strings.HasSuffix(path, ".bam") {
		return BAM
	}
	if strings.HasSuffix(path, ".sam") {
		return SAM
	}
	ctx := vcontext.Background()
	ft, err := sniffFileType(ctx, path)
	if err != nil {
		vlog.VI(1).Infof("%v: could not detect file type: %v", path, err)
		return Unknown
	}
	return ft
}

func sniffFileType(ctx context.Context, path string) (FileType, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return Unknown, err
	}
	defer in.Close(ctx) // nolint: errcheck
	var magic [2]byte
	if _, err := io.ReadFull(in.Reader(ctx), magic[:]); err != nil {
		return Unknown, err
	}
	if bytes.Equal(magic[:], gzipMagic) {
		return BAM, nil
	}
	if magic[0] == '@' {
		return SAM, nil
	}
	return Unknown, nil
}

// NewProvider creates a Provider object that can handle the BAM or SAM file
// of "path". Unless opts say otherwise, the file type is autodetected.
// Unknown types are read as BAM, so the BAM reader reports the error.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	ft := Unknown
	for _, o := range optList {
		if o.Type != Unknown {
			ft = o.Type
		}
	}
	if ft == Unknown {
		ft = GuessFileType(path)
	}
	switch ft {
	case BAM, Unknown:
		return &BAMProvider{Path: path}
	case SAM:
		return &SAMProvider{Path: path}
	}
	panic("shouldn't reach here")
}

type errorIterator struct {
	err error
}

func (i *errorIterator) Scan() bool          { return false }
func (i *errorIterator) Record() *sam.Record { panic("shall not be called") }
func (i *errorIterator) Err() error          { return i.err }
func (i *errorIterator) Close() error        { return i.err }

// NewErrorIterator creates an Iterator that yields no record and returns "err"
// in Err and Close.
func NewErrorIterator(err error) Iterator {
	return &errorIterator{err: err}
}
