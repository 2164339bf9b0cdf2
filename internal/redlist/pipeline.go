// Package redlist builds the species list of a clade from the IUCN red list
// and enriches it with the countries and habitats of every species.
package redlist

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"rodent-genomes/internal/assert"
	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/internal/fetch"
	"rodent-genomes/internal/iucn"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_pipeline_clade       = "pipeline.clade"
	report_pipeline_suggest     = "pipeline.suggest"
	report_pipeline_enrich      = "pipeline.enrich"
	report_pipeline_enrich_skip = "pipeline.enrich-skip"
)

const (
	KeyCountries = "countries"
	KeyHabitats  = "habitats"
)

// maxSuggestions is the amount of clade names offered when nothing matched.
const maxSuggestions = 3

var meter = otel.Meter("rodent-genomes/redlist")
var enrichedCounter, _ = meter.Int64Counter("species_enriched")

// RedListAPI is the subset of the IUCN API the pipeline uses.
type RedListAPI interface {
	SpeciesPage(ctx context.Context, page int) (iucn.Page, error)
	Habitats(ctx context.Context, scientificName string) fetch.Result[json.RawMessage]
	Countries(ctx context.Context, scientificName string) fetch.Result[json.RawMessage]
}

type Options struct {
	// KeepGoing drops species whose lookup failed instead of aborting the
	// enrichment pass.
	KeepGoing bool
}

// EnrichError is returned when a lookup fails and the enrichment pass is
// aborted.
type EnrichError struct {
	Key     string
	Species string
	Failure *fetch.Failure
}

func (e *EnrichError) Error() string {
	return fmt.Sprintf("enrich %s of %q: %s", e.Key, e.Species, e.Failure.Error())
}

func (e *EnrichError) Unwrap() error {
	return e.Failure
}

// Skip is a species dropped from an enrichment pass.
type Skip struct {
	Species string
	Failure *fetch.Failure
}

type Pipeline struct {
	api  RedListAPI
	tel  telemetry.API
	opts Options
}

func NewPipeline(api RedListAPI, opts Options, tel telemetry.API) Pipeline {
	assert.NotNil(api)
	assert.NotNil(tel)
	return Pipeline{
		api:  api,
		tel:  telemetry.NewScopedAPI("redlist", tel),
		opts: opts,
	}
}

// FetchCladeSpecies pages through the species listing from page 0 until a
// page reports no results, keeping the species whose clade at level is
// exactly clade. A failed page aborts.
func (p Pipeline) FetchCladeSpecies(ctx context.Context, level, clade string) ([]iucn.Species, error) {
	var species []iucn.Species
	seen := map[string]struct{}{}

	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.api.SpeciesPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if res.Count == 0 {
			break
		}

		for _, s := range res.Species {
			name := s.CladeName(level)
			seen[name] = struct{}{}
			if name == clade {
				species = append(species, s)
			}
		}
		p.tel.ReportDebug(report_pipeline_clade, "page", page, "matched", len(species))
	}

	p.tel.ReportCount(report_pipeline_clade, int64(len(species)))
	if len(species) == 0 {
		names := make([]string, 0, len(seen))
		for name := range seen {
			if name != "" {
				names = append(names, name)
			}
		}
		suggestions := Suggest(clade, names)
		if len(suggestions) > 0 {
			p.tel.ReportWarning(report_pipeline_suggest, fmt.Sprintf("no species with %s_name %q", level, clade), "did you mean", suggestions)
		}
	}
	return species, nil
}

// normalizeName lowercases a name and drops its whitespace.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// Suggest ranks names by their similarity to clade and returns the closest
// ones, comparison ignores case and whitespace.
func Suggest(clade string, names []string) []string {
	type scored struct {
		name  string
		score float64
	}

	target := normalizeName(clade)
	var candidates []scored
	for _, name := range names {
		score := matchr.JaroWinkler(target, normalizeName(name), false)
		if score > 0 {
			candidates = append(candidates, scored{name: name, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].name < candidates[j].name
		}
		return candidates[i].score > candidates[j].score
	})

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(candidates) && i < maxSuggestions; i++ {
		out = append(out, candidates[i].name)
	}
	return out
}

type lookupFunc func(ctx context.Context, scientificName string) fetch.Result[json.RawMessage]

// EnrichCountries attaches the countries of every species under "countries".
func (p Pipeline) EnrichCountries(ctx context.Context, species []iucn.Species) ([]iucn.Species, []Skip, error) {
	return p.enrich(ctx, species, KeyCountries, p.api.Countries)
}

// EnrichHabitats attaches the habitats of every species under "habitats".
func (p Pipeline) EnrichHabitats(ctx context.Context, species []iucn.Species) ([]iucn.Species, []Skip, error) {
	return p.enrich(ctx, species, KeyHabitats, p.api.Habitats)
}

// enrich returns enriched copies of species, the input records are never
// modified. A failed lookup aborts the pass with an *EnrichError unless
// KeepGoing is set, in which case the species is left out.
func (p Pipeline) enrich(ctx context.Context, species []iucn.Species, key string, lookup lookupFunc) ([]iucn.Species, []Skip, error) {
	out := make([]iucn.Species, 0, len(species))
	var skipped []Skip

	for _, s := range species {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		name, err := s.ScientificName()
		if err != nil {
			failure := fetch.Fail(fetch.ReasonMalformed, "", err)
			if !p.opts.KeepGoing {
				p.tel.ReportBroken(report_pipeline_enrich, key, failure)
				return nil, nil, &EnrichError{Key: key, Failure: failure}
			}
			p.tel.ReportWarning(report_pipeline_enrich_skip, key, failure)
			skipped = append(skipped, Skip{Failure: failure})
			continue
		}

		res := lookup(ctx, name)
		if failure := res.Failure(); failure != nil {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			if !p.opts.KeepGoing {
				p.tel.ReportBroken(report_pipeline_enrich, key, name, failure)
				return nil, nil, &EnrichError{Key: key, Species: name, Failure: failure}
			}
			p.tel.ReportWarning(report_pipeline_enrich_skip, key, name, failure)
			skipped = append(skipped, Skip{Species: name, Failure: failure})
			continue
		}

		value, _ := res.Unwrap()
		p.tel.ReportDebug(report_pipeline_enrich, key, name)
		enrichedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("key", key)))
		out = append(out, s.With(key, value))
	}

	p.tel.ReportCount(report_pipeline_enrich+"-"+key, int64(len(out)))
	return out, skipped, nil
}

// Run fetches the species of a clade and writes the raw, country enriched
// and habitat enriched snapshots to out, out.country and out.country.hab.
// Countries are fetched first, habitats are added to the country enriched
// list. A snapshot is only written once its pass completed.
func (p Pipeline) Run(ctx context.Context, level, clade, out string) error {
	species, err := p.FetchCladeSpecies(ctx, level, clade)
	if err != nil {
		return fmt.Errorf("fetch %s %s: %w", level, clade, err)
	}
	err = WriteSnapshot(out, species)
	if err != nil {
		return err
	}

	withCountries, _, err := p.EnrichCountries(ctx, species)
	if err != nil {
		return err
	}
	err = WriteSnapshot(out+SuffixCountries, withCountries)
	if err != nil {
		return err
	}

	withHabitats, _, err := p.EnrichHabitats(ctx, withCountries)
	if err != nil {
		return err
	}
	return WriteSnapshot(out+SuffixHabitats, withHabitats)
}
