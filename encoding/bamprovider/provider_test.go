package bamprovider_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/bamtowig/encoding/bamprovider"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	status := m.Run()
	shutdown()
	os.Exit(status)
}

func testRecords(t *testing.T) (*sam.Header, []*sam.Record) {
	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 2000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)

	cigar := sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 4)}
	newRecord := func(name string, ref *sam.Reference, pos int, flags sam.Flags) *sam.Record {
		r, err := sam.NewRecord(name, ref, nil, pos, -1, 0, 60, cigar, []byte("ACGT"), []byte{30, 30, 30, 30}, nil)
		require.NoError(t, err)
		r.Flags = flags
		return r
	}
	return header, []*sam.Record{
		newRecord("read1", chr1, 10, 0),
		newRecord("read2", chr1, 20, sam.Reverse),
		newRecord("read3", chr2, 5, 0),
	}
}

func writeBAM(t *testing.T, path string, header *sam.Header, recs []*sam.Record) {
	out, err := os.Create(path)
	require.NoError(t, err)
	w, err := bam.NewWriter(out, header, 1)
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())
}

func writeSAM(t *testing.T, path string, header *sam.Header, recs []*sam.Record) {
	out, err := os.Create(path)
	require.NoError(t, err)
	w, err := sam.NewWriter(out, header, sam.FlagDecimal)
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, out.Close())
}

type readSummary struct {
	name  string
	ref   string
	pos   int
	end   int
	flags sam.Flags
}

func doRead(t *testing.T, p bamprovider.Provider) []readSummary {
	var got []readSummary
	iter := p.NewIterator()
	for iter.Scan() {
		r := iter.Record()
		got = append(got, readSummary{r.Name, r.Ref.Name(), r.Pos, r.End(), r.Flags})
	}
	require.NoError(t, iter.Err())
	require.NoError(t, iter.Close())
	return got
}

func TestReadFormats(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	header, recs := testRecords(t)
	want := []readSummary{
		{"read1", "chr1", 10, 14, 0},
		{"read2", "chr1", 20, 24, sam.Reverse},
		{"read3", "chr2", 5, 9, 0},
	}

	bamPath := filepath.Join(tmpDir, "test.bam")
	writeBAM(t, bamPath, header, recs)
	samPath := filepath.Join(tmpDir, "test.sam")
	writeSAM(t, samPath, header, recs)
	// No suffix, so the type must be sniffed from the contents.
	sniffBAMPath := filepath.Join(tmpDir, "alignments")
	writeBAM(t, sniffBAMPath, header, recs)
	sniffSAMPath := filepath.Join(tmpDir, "alignments-text")
	writeSAM(t, sniffSAMPath, header, recs)

	for _, test := range []struct {
		path string
		typ  bamprovider.FileType
	}{
		{bamPath, bamprovider.BAM},
		{samPath, bamprovider.SAM},
		{sniffBAMPath, bamprovider.BAM},
		{sniffSAMPath, bamprovider.SAM},
	} {
		require.Equal(t, test.typ, bamprovider.GuessFileType(test.path), test.path)
		p := bamprovider.NewProvider(test.path)
		h, err := p.GetHeader()
		require.NoError(t, err)
		require.Equal(t, 2, len(h.Refs()))
		require.Equal(t, want, doRead(t, p), test.path)
		require.NoError(t, p.Close())
	}

	// An explicit type overrides the guess.
	p := bamprovider.NewProvider(sniffSAMPath, bamprovider.ProviderOpts{Type: bamprovider.SAM})
	require.Equal(t, want, doRead(t, p))
	require.NoError(t, p.Close())
}

func TestParseFileType(t *testing.T) {
	require.Equal(t, bamprovider.BAM, bamprovider.ParseFileType("bam"))
	require.Equal(t, bamprovider.SAM, bamprovider.ParseFileType("SAM"))
	require.Equal(t, bamprovider.Unknown, bamprovider.ParseFileType("cram"))
}

func TestError(t *testing.T) {
	for _, path := range []string{"nonexistent.bam", "nonexistent.sam"} {
		p := bamprovider.NewProvider(path)
		_, err := p.GetHeader()
		require.Regexp(t, "no such file", err.Error())

		iter := p.NewIterator()
		require.False(t, iter.Scan())
		require.Regexp(t, "no such file", iter.Close().Error())
		require.Regexp(t, "no such file", p.Close().Error())
	}
}

func TestTruncatedBAM(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	header, recs := testRecords(t)
	bamPath := filepath.Join(tmpDir, "test.bam")
	writeBAM(t, bamPath, header, recs)
	data, err := ioutil.ReadFile(bamPath)
	require.NoError(t, err)
	// Chop the file in the middle of the record block.
	require.NoError(t, ioutil.WriteFile(bamPath, data[:len(data)/2], 0600))

	p := bamprovider.NewProvider(bamPath)
	iter := p.NewIterator()
	for iter.Scan() {
	}
	require.Error(t, iter.Err())
	require.Error(t, iter.Close())
	require.Error(t, p.Close())
}

func TestFakeProvider(t *testing.T) {
	header, recs := testRecords(t)
	p := bamprovider.NewFakeProvider(header, recs)
	got := doRead(t, p)
	require.Equal(t, 3, len(got))
	require.NoError(t, p.Close())

	streamErr := errors.New("stream cut")
	p = bamprovider.NewFakeErrorProvider(header, recs[:1], streamErr)
	iter := p.NewIterator()
	require.True(t, iter.Scan())
	require.NoError(t, iter.Err())
	require.False(t, iter.Scan())
	require.Equal(t, streamErr, iter.Err())
	require.Equal(t, streamErr, iter.Close())
}

func TestErrorIterator(t *testing.T) {
	streamErr := errors.New("boom")
	iter := bamprovider.NewErrorIterator(streamErr)
	require.False(t, iter.Scan())
	require.Equal(t, streamErr, iter.Err())
	require.Equal(t, streamErr, iter.Close())
}
