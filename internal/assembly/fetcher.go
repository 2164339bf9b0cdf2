package assembly

import (
	"context"
	"fmt"

	"rodent-genomes/internal/assert"
	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/internal/fetch"
	"rodent-genomes/internal/ncbi"
	"rodent-genomes/internal/tolid"

	"go.opentelemetry.io/otel"
)

const (
	report_fetcher_search  = "fetcher.search"
	report_fetcher_skip    = "fetcher.skip"
	report_fetcher_records = "fetcher.records"
)

var meter = otel.Meter("rodent-genomes/assembly")
var fetchedCounter, _ = meter.Int64Counter("records_fetched")
var skippedCounter, _ = meter.Int64Counter("records_skipped")

// SummaryAPI searches assemblies and fetches their summaries.
type SummaryAPI interface {
	SearchAssemblies(ctx context.Context, term string) ([]string, error)
	FetchSummary(ctx context.Context, id string) fetch.Result[ncbi.DocumentSummary]
}

// SpeciesAPI resolves the family, genus and prefix of a species.
type SpeciesAPI interface {
	LookupSpecies(ctx context.Context, taxid string) fetch.Result[tolid.Species]
}

// Stage names the lookup a record was skipped at.
type Stage string

const (
	StageSummary Stage = "summary"
	StageSpecies Stage = "species"
)

// Skip is an assembly that was left out of the table.
type Skip struct {
	Id      string
	Stage   Stage
	Failure *fetch.Failure
}

func (s Skip) String() string {
	return fmt.Sprintf("%s: issue with %s request: %s", s.Id, s.Stage, s.Failure.Error())
}

// Report summarizes a Fetch.
type Report struct {
	Found   int
	Kept    int
	Skipped []Skip
}

type Fetcher struct {
	summaries SummaryAPI
	species   SpeciesAPI
	tel       telemetry.API
}

func NewFetcher(summaries SummaryAPI, species SpeciesAPI, tel telemetry.API) Fetcher {
	assert.NotNil(summaries)
	assert.NotNil(species)
	assert.NotNil(tel)
	return Fetcher{
		summaries: summaries,
		species:   species,
		tel:       telemetry.NewScopedAPI("assembly", tel),
	}
}

// Fetch builds one record per assembly matching term. An assembly whose
// summary or species lookup fails is skipped and listed in the report, only
// a failed search (or a cancelled context) aborts.
func (f Fetcher) Fetch(ctx context.Context, term string) ([]Record, Report, error) {
	ids, err := f.summaries.SearchAssemblies(ctx, term)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_search, err, term)
		return nil, Report{}, fmt.Errorf("search assemblies: %w", err)
	}
	f.tel.ReportCount(report_fetcher_search, int64(len(ids)))

	report := Report{Found: len(ids)}
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		rec, skip := f.fetchOne(ctx, id)
		if skip != nil {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
			f.tel.ReportWarning(report_fetcher_skip, skip.String())
			skippedCounter.Add(ctx, 1)
			report.Skipped = append(report.Skipped, *skip)
			continue
		}

		fetchedCounter.Add(ctx, 1)
		records = append(records, rec)
	}

	report.Kept = len(records)
	f.tel.ReportCount(report_fetcher_records, int64(report.Kept))
	return records, report, nil
}

func (f Fetcher) fetchOne(ctx context.Context, id string) (Record, *Skip) {
	summary, err := f.summaries.FetchSummary(ctx, id).Unwrap()
	if err != nil {
		return Record{}, &Skip{Id: id, Stage: StageSummary, Failure: asFailure(err)}
	}

	species, err := f.species.LookupSpecies(ctx, summary.SpeciesTaxid).Unwrap()
	if err != nil {
		return Record{}, &Skip{Id: id, Stage: StageSpecies, Failure: asFailure(err)}
	}

	return Record{
		Family:             species.Family,
		Genus:              species.Genus,
		SpeciesName:        summary.SpeciesName,
		SpeciesTaxid:       summary.SpeciesTaxid,
		ToLPrefix:          species.Prefix,
		AssemblyAccession:  summary.AssemblyAccession,
		AssemblyName:       summary.AssemblyName,
		AssemblyStatus:     Status(summary.AssemblyStatus),
		ContigN50:          summary.ContigN50,
		ScaffoldN50:        summary.ScaffoldN50,
		RefSeqCategory:     summary.RefSeqCategory,
		ReleaseDateGenBank: summary.ReleaseDateGenBank,
	}, nil
}

func asFailure(err error) *fetch.Failure {
	if failure, ok := err.(*fetch.Failure); ok {
		return failure
	}
	return fetch.Fail(fetch.ReasonUpstream, "", err)
}
