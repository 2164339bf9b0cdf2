package assembly

import (
	"context"
	"errors"
	"testing"

	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/internal/fetch"
	"rodent-genomes/internal/ncbi"
	"rodent-genomes/internal/tolid"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeSummaries struct {
	ids       []string
	searchErr error
	summaries map[string]fetch.Result[ncbi.DocumentSummary]
}

func (f fakeSummaries) SearchAssemblies(ctx context.Context, term string) ([]string, error) {
	return f.ids, f.searchErr
}

func (f fakeSummaries) FetchSummary(ctx context.Context, id string) fetch.Result[ncbi.DocumentSummary] {
	res, ok := f.summaries[id]
	if !ok {
		return fetch.Err[ncbi.DocumentSummary](fetch.Fail(fetch.ReasonNotFound, id, nil))
	}
	return res
}

type fakeSpecies map[string]fetch.Result[tolid.Species]

func (f fakeSpecies) LookupSpecies(ctx context.Context, taxid string) fetch.Result[tolid.Species] {
	res, ok := f[taxid]
	if !ok {
		return fetch.Err[tolid.Species](fetch.Fail(fetch.ReasonNotFound, "Species not found", nil))
	}
	return res
}

func summary(id, taxid, name string, contig, scaffold int64) fetch.Result[ncbi.DocumentSummary] {
	return fetch.Ok(ncbi.DocumentSummary{
		Uid:                id,
		AssemblyAccession:  "GCA_" + id,
		AssemblyName:       "asm" + id,
		AssemblyStatus:     "Scaffold",
		SpeciesName:        name,
		SpeciesTaxid:       taxid,
		ContigN50:          contig,
		ScaffoldN50:        scaffold,
		RefSeqCategory:     "na",
		ReleaseDateGenBank: "2022/01/01 00:00",
	})
}

func TestFetchSkipsFailedLookups(t *testing.T) {
	summaries := fakeSummaries{
		ids: []string{"1", "2", "3", "4"},
		summaries: map[string]fetch.Result[ncbi.DocumentSummary]{
			"1": summary("1", "10090", "Mus musculus", 10, 20),
			"2": fetch.Err[ncbi.DocumentSummary](fetch.Fail(fetch.ReasonConnection, "", errors.New("refused"))),
			"3": summary("3", "999", "Unknown unknown", 1, 2),
			"4": summary("4", "10116", "Rattus norvegicus", 30, 40),
		},
	}
	species := fakeSpecies{
		"10090": fetch.Ok(tolid.Species{Prefix: "mMusMus", Genus: "Mus", Family: "Muridae"}),
		"10116": fetch.Ok(tolid.Species{Prefix: "mRatNor", Genus: "Rattus", Family: "Muridae"}),
	}

	rec := telemetry.NewRecorder()
	records, report, err := NewFetcher(summaries, species, rec).Fetch(context.Background(), "rodentia")
	require.NoError(t, err)

	expected := []Record{
		{
			Family: "Muridae", Genus: "Mus", SpeciesName: "Mus musculus", SpeciesTaxid: "10090",
			ToLPrefix: "mMusMus", AssemblyAccession: "GCA_1", AssemblyName: "asm1",
			AssemblyStatus: StatusScaffold, ContigN50: 10, ScaffoldN50: 20,
			RefSeqCategory: "na", ReleaseDateGenBank: "2022/01/01 00:00",
		},
		{
			Family: "Muridae", Genus: "Rattus", SpeciesName: "Rattus norvegicus", SpeciesTaxid: "10116",
			ToLPrefix: "mRatNor", AssemblyAccession: "GCA_4", AssemblyName: "asm4",
			AssemblyStatus: StatusScaffold, ContigN50: 30, ScaffoldN50: 40,
			RefSeqCategory: "na", ReleaseDateGenBank: "2022/01/01 00:00",
		},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, 4, report.Found)
	require.Equal(t, 2, report.Kept)
	require.Len(t, report.Skipped, 2)
	require.Equal(t, "2", report.Skipped[0].Id)
	require.Equal(t, StageSummary, report.Skipped[0].Stage)
	require.Equal(t, fetch.ReasonConnection, report.Skipped[0].Failure.Reason)
	require.Equal(t, "3", report.Skipped[1].Id)
	require.Equal(t, StageSpecies, report.Skipped[1].Stage)
	require.Equal(t, fetch.ReasonNotFound, report.Skipped[1].Failure.Reason)

	require.Len(t, rec.Reports("warning"), 2)
	count, ok := rec.Count("assembly: fetcher.records")
	require.True(t, ok)
	require.Equal(t, int64(2), count)
}

func TestFetchSearchFailureAborts(t *testing.T) {
	summaries := fakeSummaries{searchErr: fetch.Fail(fetch.ReasonConnection, "", errors.New("down"))}

	rec := telemetry.NewRecorder()
	_, _, err := NewFetcher(summaries, fakeSpecies{}, rec).Fetch(context.Background(), "rodentia")
	require.ErrorIs(t, err, fetch.ErrConnection)
	require.Len(t, rec.Reports("broken"), 1)
}

func TestFetchCancelled(t *testing.T) {
	summaries := fakeSummaries{
		ids:       []string{"1"},
		summaries: map[string]fetch.Result[ncbi.DocumentSummary]{"1": summary("1", "10090", "Mus musculus", 1, 1)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewFetcher(summaries, fakeSpecies{}, telemetry.NewRecorder()).Fetch(ctx, "rodentia")
	require.ErrorIs(t, err, context.Canceled)
}
