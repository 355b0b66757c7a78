package section

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const championshipTable = `Band Name, Result Two Years Ago, Result Last Year
Black Dyke, 1, 3
Cory, 2, 1
Foden's, 4, 2

Grimethorpe, 3
Brighouse & Rastrick, 5, x
Leyland, 6, 5, ignored column
`

func TestLoadSkipsMalformedRows(t *testing.T) {
	res, err := Load(strings.NewReader(championshipTable), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Black Dyke", "Cory", "Foden's", "Leyland"}, res.Section.Names())
	assert.Equal(t, []float64{4, 3, 6, 11}, res.Section.PriorScores())

	require.Len(t, res.Skipped, 3)
	assert.Equal(t, 1, res.Skipped[0].Line)
	assert.Contains(t, res.Skipped[0].Reason, "not a number")
	assert.Equal(t, 6, res.Skipped[1].Line)
	assert.Contains(t, res.Skipped[1].Reason, "expected 3 fields")
	assert.Equal(t, 7, res.Skipped[2].Line)
	assert.Contains(t, res.Skipped[2].Reason, "last year")
}

func TestLoadKeepsRawResults(t *testing.T) {
	res, err := Load(strings.NewReader("Cory,2.5,1\n"), LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Section.NumBands())
	b := res.Section.Band(0)
	assert.Equal(t, 2.5, b.TwoYearsAgo)
	assert.Equal(t, 1.0, b.LastYear)
	assert.Equal(t, 3.5, b.PriorScore)
}

func TestLoadSkipsNonFiniteResults(t *testing.T) {
	res, err := Load(strings.NewReader("A,NaN,1\nB,1,1\nC,2,+Inf\nD,3,3\nE,-infinity,2\n"),
		LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D"}, res.Section.Names())
	require.Len(t, res.Skipped, 3)
	assert.Equal(t, 1, res.Skipped[0].Line)
	assert.Contains(t, res.Skipped[0].Reason, "two years ago")
	assert.Equal(t, 3, res.Skipped[1].Line)
	assert.Contains(t, res.Skipped[1].Reason, "last year")
	assert.Equal(t, 5, res.Skipped[2].Line)
}

func TestLoadEmptyName(t *testing.T) {
	res, err := Load(strings.NewReader(" ,1,2\nCory,1,2\n"), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Section.NumBands())
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "empty band name", res.Skipped[0].Reason)
}

func TestLoadWindows1252(t *testing.T) {
	raw, err := charmap.Windows1252.NewEncoder().String("Besses o' th' Barn Café,3,4\n")
	require.NoError(t, err)

	res, err := Load(strings.NewReader(raw), LoadOptions{Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "Besses o' th' Barn Café", res.Section.Band(0).Name)
}

func TestLoadUnknownEncoding(t *testing.T) {
	_, err := Load(strings.NewReader(""), LoadOptions{Encoding: "ebcdic"})
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "section.csv")
	require.NoError(t, os.WriteFile(path, []byte(championshipTable), 0o644))

	res, err := LoadFile(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Section.NumBands())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"), LoadOptions{})
	assert.Error(t, err)
}

func TestSectionIndices(t *testing.T) {
	s := New([]Band{NewBand("A", 1, 1), NewBand("B", 2, 2), NewBand("A", 3, 3)})
	assert.Equal(t, []int{0, 2}, s.Indices("A"))
	assert.Nil(t, s.Indices("Z"))

	bands := s.Bands()
	bands[0].Name = "changed"
	assert.Equal(t, "A", s.Band(0).Name)
}
