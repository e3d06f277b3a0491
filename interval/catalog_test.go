package interval

import (
	"context"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	ctx := context.Background()
	for _, path := range []string{"testdata/nogap.bed", "testdata/nogap.bed.gz"} {
		c, err := LoadCatalog(ctx, path, CatalogOpts{})
		require.NoError(t, err, path)
		// chr10's only interval is empty, so chr10 disappears entirely.
		expect.EQ(t, c.Chromosomes(), []Chromosome{
			{Name: "chr1", Length: 60},
			{Name: "chr2", Length: 200},
		})
		expect.EQ(t, c.Intervals(0), []Entry{
			{"chr1", 0, 10},
			{"chr1", 50, 60},
		})
		expect.EQ(t, c.Intervals(1), []Entry{
			{"chr2", 0, 20},
			{"chr2", 100, 200},
		})
		expect.EQ(t, c.NumIntervals(), 4)
		expect.EQ(t, c.TotalBases(), int64(10+10+20+100))
	}
}

func TestLoadCatalogRestrict(t *testing.T) {
	c, err := LoadCatalog(context.Background(), "testdata/nogap.bed", CatalogOpts{RestrictChrom: "chr2"})
	require.NoError(t, err)
	expect.EQ(t, c.NumChromosomes(), 1)
	expect.EQ(t, c.MaxEnd("chr2"), PosType(200))
	expect.EQ(t, c.MaxEnd("chr1"), PosType(0))
	_, ok := c.Index("chr1")
	expect.False(t, ok)
	idx, ok := c.Index("chr2")
	expect.True(t, ok)
	expect.EQ(t, idx, 0)
}

func TestLoadCatalogErrors(t *testing.T) {
	ctx := context.Background()
	_, err := LoadCatalog(ctx, "testdata/nonexistent.bed", CatalogOpts{})
	require.Error(t, err)

	_, err = LoadCatalog(ctx, "testdata/malformed.bed", CatalogOpts{})
	require.Error(t, err)
	expect.True(t, errors.Is(errors.Invalid, err))
	require.Regexp(t, "line 2", err.Error())
}

func TestNewCatalogMalformed(t *testing.T) {
	tests := []struct {
		input string
		errRe string
	}{
		{"chr1\t10\n", "fewer tokens"},
		{"chr1\t-1\t10\n", "negative start"},
		{"chr1\t10\t5\n", "invalid coordinate pair"},
		{"chr1\t0\t3000000000\n", "invalid coordinate pair"},
		{"chr1\t0\tten\n", "bad end"},
	}
	for _, tt := range tests {
		_, err := NewCatalog(strings.NewReader(tt.input), CatalogOpts{})
		require.Error(t, err, tt.input)
		require.Regexp(t, tt.errRe, err.Error())
	}
}

func TestNewCatalogKeepsOverlaps(t *testing.T) {
	c, err := NewCatalog(strings.NewReader("chr1 5 15\nchr1 0 10\n# comment\nbrowser position chr1\nchr1 5 15 extra cols\n"), CatalogOpts{})
	require.NoError(t, err)
	expect.EQ(t, c.Intervals(0), []Entry{
		{"chr1", 0, 10},
		{"chr1", 5, 15},
		{"chr1", 5, 15},
	})
	expect.EQ(t, c.MaxEnd("chr1"), PosType(15))
}

func TestNewCatalogFromEntries(t *testing.T) {
	c, err := NewCatalogFromEntries([]Entry{
		{"chrX", 10, 20},
		{"chr1", 30, 40},
		{"chrX", 0, 5},
	}, CatalogOpts{})
	require.NoError(t, err)
	expect.EQ(t, c.Chromosomes(), []Chromosome{{"chr1", 40}, {"chrX", 20}})
	expect.EQ(t, c.Intervals(1)[0], Entry{"chrX", 0, 5})

	_, err = NewCatalogFromEntries([]Entry{{"chr1", 10, 5}}, CatalogOpts{})
	require.Error(t, err)

	c, err = NewCatalogFromEntries(nil, CatalogOpts{})
	require.NoError(t, err)
	expect.EQ(t, c.NumChromosomes(), 0)
}
