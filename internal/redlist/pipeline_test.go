package redlist

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/internal/fetch"
	"rodent-genomes/internal/iucn"

	"github.com/stretchr/testify/require"
)

func species(name, order string) iucn.Species {
	return iucn.Species{
		"scientific_name": json.RawMessage(`"` + name + `"`),
		"order_name":      json.RawMessage(`"` + order + `"`),
	}
}

type fakeRedList struct {
	pages     []iucn.Page
	pageErr   error
	countries map[string]fetch.Result[json.RawMessage]
	habitats  map[string]fetch.Result[json.RawMessage]
	requested []int
}

func (f *fakeRedList) SpeciesPage(ctx context.Context, page int) (iucn.Page, error) {
	f.requested = append(f.requested, page)
	if f.pageErr != nil {
		return iucn.Page{}, f.pageErr
	}
	if page >= len(f.pages) {
		return iucn.Page{Number: page}, nil
	}
	return f.pages[page], nil
}

func lookup(results map[string]fetch.Result[json.RawMessage], name string) fetch.Result[json.RawMessage] {
	res, ok := results[name]
	if !ok {
		return fetch.Ok(json.RawMessage(`[]`))
	}
	return res
}

func (f *fakeRedList) Countries(ctx context.Context, name string) fetch.Result[json.RawMessage] {
	return lookup(f.countries, name)
}

func (f *fakeRedList) Habitats(ctx context.Context, name string) fetch.Result[json.RawMessage] {
	return lookup(f.habitats, name)
}

func names(t *testing.T, list []iucn.Species) []string {
	out := make([]string, len(list))
	for i, s := range list {
		name, err := s.ScientificName()
		require.NoError(t, err)
		out[i] = name
	}
	return out
}

func TestFetchCladeSpecies(t *testing.T) {
	api := &fakeRedList{pages: []iucn.Page{
		{Number: 0, Count: 3, Species: []iucn.Species{
			species("Mus musculus", "RODENTIA"),
			species("Canis lupus", "CARNIVORA"),
			species("Rattus rattus", "RODENTIA"),
		}},
		{Number: 1, Count: 2, Species: []iucn.Species{
			species("Homo sapiens", "PRIMATES"),
			species("Sciurus vulgaris", "RODENTIA"),
		}},
	}}

	rec := telemetry.NewRecorder()
	result, err := NewPipeline(api, Options{}, rec).FetchCladeSpecies(context.Background(), "order", "RODENTIA")
	require.NoError(t, err)
	require.Equal(t, []string{"Mus musculus", "Rattus rattus", "Sciurus vulgaris"}, names(t, result))
	require.Equal(t, []int{0, 1, 2}, api.requested)
	require.Empty(t, rec.Reports("warning"))
}

func TestFetchCladeSpeciesSuggests(t *testing.T) {
	api := &fakeRedList{pages: []iucn.Page{
		{Number: 0, Count: 2, Species: []iucn.Species{
			species("Mus musculus", "RODENTIA"),
			species("Canis lupus", "CARNIVORA"),
		}},
	}}

	rec := telemetry.NewRecorder()
	result, err := NewPipeline(api, Options{}, rec).FetchCladeSpecies(context.Background(), "order", "Rodentia")
	require.NoError(t, err)
	require.Empty(t, result)

	warnings := rec.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, "redlist: pipeline.suggest", warnings[0].ID)
	require.Equal(t, []string{"RODENTIA", "CARNIVORA"}, warnings[0].Params[2])
}

func TestFetchCladeSpeciesPageFailure(t *testing.T) {
	api := &fakeRedList{pageErr: fetch.Fail(fetch.ReasonMalformed, "species page 0", errors.New("bad"))}
	_, err := NewPipeline(api, Options{}, telemetry.NewRecorder()).FetchCladeSpecies(context.Background(), "order", "RODENTIA")
	require.ErrorIs(t, err, fetch.ErrMalformed)
}

func TestSuggest(t *testing.T) {
	suggestions := Suggest("Rodentia ", []string{"CARNIVORA", "RODENTIA", "LAGOMORPHA", "PRIMATES"})
	require.Len(t, suggestions, maxSuggestions)
	require.Equal(t, "RODENTIA", suggestions[0])
	require.Empty(t, Suggest("rodentia", nil))
}

func TestEnrichAborts(t *testing.T) {
	api := &fakeRedList{countries: map[string]fetch.Result[json.RawMessage]{
		"Rattus rattus": fetch.Err[json.RawMessage](fetch.Fail(fetch.ReasonConnection, "", errors.New("refused"))),
	}}
	input := []iucn.Species{species("Mus musculus", "RODENTIA"), species("Rattus rattus", "RODENTIA")}

	rec := telemetry.NewRecorder()
	out, _, err := NewPipeline(api, Options{}, rec).EnrichCountries(context.Background(), input)
	require.Nil(t, out)
	require.ErrorIs(t, err, fetch.ErrConnection)

	var enrichErr *EnrichError
	require.True(t, errors.As(err, &enrichErr))
	require.Equal(t, KeyCountries, enrichErr.Key)
	require.Equal(t, "Rattus rattus", enrichErr.Species)
	require.Len(t, rec.Reports("broken"), 1)
}

func TestEnrichKeepGoing(t *testing.T) {
	api := &fakeRedList{habitats: map[string]fetch.Result[json.RawMessage]{
		"Mus musculus":  fetch.Ok(json.RawMessage(`[{"habitat":"Forest"}]`)),
		"Rattus rattus": fetch.Err[json.RawMessage](fetch.Fail(fetch.ReasonNotFound, "", nil)),
	}}
	input := []iucn.Species{species("Mus musculus", "RODENTIA"), species("Rattus rattus", "RODENTIA")}

	rec := telemetry.NewRecorder()
	out, skipped, err := NewPipeline(api, Options{KeepGoing: true}, rec).EnrichHabitats(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, []string{"Mus musculus"}, names(t, out))
	require.JSONEq(t, `[{"habitat":"Forest"}]`, string(out[0][KeyHabitats]))
	require.Len(t, skipped, 1)
	require.Equal(t, "Rattus rattus", skipped[0].Species)
	require.Equal(t, fetch.ReasonNotFound, skipped[0].Failure.Reason)
	require.Len(t, rec.Reports("warning"), 1)

	_, enriched := input[0][KeyHabitats]
	require.False(t, enriched, "input records must not be modified")
}

func TestEnrichMissingName(t *testing.T) {
	input := []iucn.Species{{"order_name": json.RawMessage(`"RODENTIA"`)}}
	_, _, err := NewPipeline(&fakeRedList{}, Options{}, telemetry.NewRecorder()).EnrichCountries(context.Background(), input)
	require.ErrorIs(t, err, fetch.ErrMalformed)
}

func TestRun(t *testing.T) {
	api := &fakeRedList{
		pages: []iucn.Page{{Number: 0, Count: 1, Species: []iucn.Species{species("Mus musculus", "RODENTIA")}}},
		countries: map[string]fetch.Result[json.RawMessage]{
			"Mus musculus": fetch.Ok(json.RawMessage(`[{"code":"FR"}]`)),
		},
		habitats: map[string]fetch.Result[json.RawMessage]{
			"Mus musculus": fetch.Ok(json.RawMessage(`[{"code":"1.4"}]`)),
		},
	}

	out := filepath.Join(t.TempDir(), "rodents.json")
	err := NewPipeline(api, Options{}, telemetry.NewRecorder()).Run(context.Background(), "order", "RODENTIA", out)
	require.NoError(t, err)

	raw, err := ReadSnapshot(out)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	require.NotContains(t, raw[0], KeyCountries)

	countries, err := ReadSnapshot(out + SuffixCountries)
	require.NoError(t, err)
	require.JSONEq(t, `[{"code":"FR"}]`, string(countries[0][KeyCountries]))
	require.NotContains(t, countries[0], KeyHabitats)

	habitats, err := ReadSnapshot(out + SuffixHabitats)
	require.NoError(t, err)
	require.JSONEq(t, `[{"code":"FR"}]`, string(habitats[0][KeyCountries]))
	require.JSONEq(t, `[{"code":"1.4"}]`, string(habitats[0][KeyHabitats]))
}

func TestRunAbortKeepsEarlierSnapshots(t *testing.T) {
	api := &fakeRedList{
		pages: []iucn.Page{{Number: 0, Count: 1, Species: []iucn.Species{species("Mus musculus", "RODENTIA")}}},
		countries: map[string]fetch.Result[json.RawMessage]{
			"Mus musculus": fetch.Err[json.RawMessage](fetch.Fail(fetch.ReasonUpstream, "status 500", nil)),
		},
	}

	out := filepath.Join(t.TempDir(), "rodents.json")
	err := NewPipeline(api, Options{}, telemetry.NewRecorder()).Run(context.Background(), "order", "RODENTIA", out)
	require.ErrorIs(t, err, fetch.ErrUpstream)

	require.FileExists(t, out)
	_, err = os.Stat(out + SuffixCountries)
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(out + SuffixHabitats)
	require.ErrorIs(t, err, os.ErrNotExist)
}
