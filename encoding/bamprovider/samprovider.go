package bamprovider

import (
	"io"
	"sync"

	"github.com/grailbio/hts/sam"
)

// SAMProvider implements Provider for text SAM files.
type SAMProvider struct {
	// Path of the *.sam file. Must be nonempty.
	Path string

	once sync.Once
	fp   *fileProvider
}

func openSAM(in io.Reader) (recordReader, func() error, error) {
	r, err := sam.NewReader(in)
	if err != nil {
		return nil, nil, err
	}
	return r, nil, nil
}

func (s *SAMProvider) provider() *fileProvider {
	s.once.Do(func() {
		s.fp = &fileProvider{path: s.Path, open: openSAM}
	})
	return s.fp
}

// GetHeader implements the Provider interface.
func (s *SAMProvider) GetHeader() (*sam.Header, error) { return s.provider().getHeader() }

// NewIterator implements the Provider interface.
func (s *SAMProvider) NewIterator() Iterator { return s.provider().newIterator() }

// Close implements the Provider interface.
func (s *SAMProvider) Close() error { return s.provider().close() }
