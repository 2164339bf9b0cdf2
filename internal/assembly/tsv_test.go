package assembly

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var mouse = Record{
	Family:             "Muridae",
	Genus:              "Mus",
	SpeciesName:        "Mus musculus",
	SpeciesTaxid:       "10090",
	ToLPrefix:          "mMusMus",
	AssemblyAccession:  "GCA_000001635.9",
	AssemblyName:       "GRCm39",
	AssemblyStatus:     StatusChromosome,
	ContigN50:          59462871,
	ScaffoldN50:        106145001,
	RefSeqCategory:     "reference genome",
	ReleaseDateGenBank: "2020/06/24 00:00",
}

func TestWriteTSV(t *testing.T) {
	var buff bytes.Buffer
	require.NoError(t, WriteTSV(&buff, []Record{mouse}))

	expected := "Family\tGenus\tSpeciesName\tSpeciesTaxid\tToLPrefix\tAssemblyAccession\tAssemblyName\t" +
		"AssemblyStatus\tContigN50\tScaffoldN50\tRefSeq_category\tAsmReleaseDate_GenBank\n" +
		"Muridae\tMus\tMus musculus\t10090\tmMusMus\tGCA_000001635.9\tGRCm39\t" +
		"Chromosome\t59462871\t106145001\treference genome\t2020/06/24 00:00\n"
	require.Equal(t, expected, buff.String())

	records, err := ReadTSV(&buff)
	require.NoError(t, err)
	if diff := cmp.Diff([]Record{mouse}, records); diff != "" {
		t.Fatal(diff)
	}
}

func TestReadTSVColumnOrderAndExtras(t *testing.T) {
	input := strings.Join([]string{
		"ScaffoldN50\tContigN50\tFamily\tGenus\tSpeciesName\tSpeciesTaxid\tToLPrefix\tAssemblyAccession\t" +
			"AssemblyName\tAssemblyStatus\tRefSeq_category\tAsmReleaseDate_GenBank\tNotes",
		"200\t100\tCricetidae\tMicrotus\tMicrotus arvalis\t47230\tmMicArv\tGCA_1\tasm1\tScaffold\tna\t2021/01/01 00:00\tfoo",
		"",
	}, "\n")

	records, err := ReadTSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(100), records[0].ContigN50)
	require.Equal(t, int64(200), records[0].ScaffoldN50)
	require.Equal(t, StatusScaffold, records[0].AssemblyStatus)
	require.Equal(t, "Microtus", records[0].Genus)
}

func TestReadTSVErrors(t *testing.T) {
	header := strings.Join(Columns, "\t")

	testCases := []struct {
		name  string
		input string
		err   string
	}{
		{name: "empty", input: "", err: "empty assembly table"},
		{name: "missing column", input: "Family\tGenus\n", err: "missing column SpeciesName"},
		{
			name:  "bad integer",
			input: header + "\nA\tB\tC\t1\tp\tacc\tname\tContig\tbig\t1\tna\td\n",
			err:   "line 2, column ContigN50",
		},
		{
			name:  "wrong field count",
			input: header + "\nA\tB\n",
			err:   "wrong number of fields",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadTSV(strings.NewReader(test.input))
			require.ErrorContains(t, err, test.err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("genus")
	require.NoError(t, err)
	require.Equal(t, LevelGenus, level)
	require.Equal(t, "Mus", level.Key(mouse))

	level, err = ParseLevel("Family")
	require.NoError(t, err)
	require.Equal(t, "Muridae", level.Key(mouse))

	_, err = ParseLevel("Order")
	require.Error(t, err)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assemblies.tsv")
	require.NoError(t, WriteFile(path, []Record{mouse, mouse}))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.tsv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
