package bamprovider

import (
	"io"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// recordReader is the part of bam.Reader and sam.Reader that iterators use.
type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

// openReaderFunc creates a recordReader on top of an opened file.  The
// returned close function releases any decoder state; it may be nil.
type openReaderFunc func(in io.Reader) (recordReader, func() error, error)

// fileProvider implements the bookkeeping shared by BAMProvider and
// SAMProvider.  Both the data file and the header are allowed to be S3 URLs,
// in which case the data will be read from S3. Otherwise the data will be
// read from the local filesystem.
type fileProvider struct {
	path   string
	open   openReaderFunc
	err    errors.Once
	mu     sync.Mutex
	active int
	header *sam.Header
}

// fileIterator reads one file from start to end.
type fileIterator struct {
	provider *fileProvider
	in       file.File
	reader   recordReader
	close    func() error

	err  error
	next *sam.Record
}

func (p *fileProvider) getHeader() (*sam.Header, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.header != nil {
		return p.header, nil
	}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, p.path)
	if err != nil {
		p.err.Set(err)
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck
	reader, closeReader, err := p.open(in.Reader(ctx))
	if err != nil {
		err = errors.E(err, "reading header of", p.path)
		p.err.Set(err)
		return nil, err
	}
	if closeReader != nil {
		defer closeReader() // nolint: errcheck
	}
	p.header = reader.Header()
	return p.header, nil
}

func (p *fileProvider) newIterator() Iterator {
	p.mu.Lock()
	p.active++
	p.mu.Unlock()

	iter := &fileIterator{provider: p}
	ctx := vcontext.Background()
	if iter.in, iter.err = file.Open(ctx, p.path); iter.err != nil {
		return iter
	}
	if iter.reader, iter.close, iter.err = p.open(iter.in.Reader(ctx)); iter.err != nil {
		iter.err = errors.E(iter.err, "reading", p.path)
		return iter
	}
	return iter
}

func (p *fileProvider) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active > 0 {
		vlog.Fatalf("%d iterators still active for %s", p.active, p.path)
	}
	return p.err.Err()
}

// Scan implements the Iterator interface.
func (i *fileIterator) Scan() bool {
	if i.err != nil {
		return false
	}
	i.next, i.err = i.reader.Read()
	if i.err != nil && i.err != io.EOF {
		i.err = errors.E(i.err, "reading alignments from", i.provider.path)
	}
	return i.err == nil
}

// Record implements the Iterator interface.
func (i *fileIterator) Record() *sam.Record {
	return i.next
}

// Err implements the Iterator interface.
func (i *fileIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Close implements the Iterator interface.
func (i *fileIterator) Close() error {
	if i.close != nil {
		if err := i.close(); err != nil && i.Err() == nil {
			i.err = err
		}
		i.close = nil
	}
	if i.in != nil {
		if err := i.in.Close(vcontext.Background()); err != nil && i.Err() == nil {
			i.err = err
		}
		i.in = nil
	}
	err := i.Err()
	i.provider.err.Set(err)
	i.provider.mu.Lock()
	i.provider.active--
	if i.provider.active < 0 {
		vlog.Fatalf("Negative active count for %s", i.provider.path)
	}
	i.provider.mu.Unlock()
	return err
}

// BAMProvider implements Provider for BAM files.  The file is decoded
// sequentially; no index is consulted.
type BAMProvider struct {
	// Path of the *.bam file. Must be nonempty.
	Path string

	once sync.Once
	fp   *fileProvider
}

func openBAM(in io.Reader) (recordReader, func() error, error) {
	r, err := bam.NewReader(in, 1)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

func (b *BAMProvider) provider() *fileProvider {
	b.once.Do(func() {
		b.fp = &fileProvider{path: b.Path, open: openBAM}
	})
	return b.fp
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) { return b.provider().getHeader() }

// NewIterator implements the Provider interface.
func (b *BAMProvider) NewIterator() Iterator { return b.provider().newIterator() }

// Close implements the Provider interface.
func (b *BAMProvider) Close() error { return b.provider().close() }
