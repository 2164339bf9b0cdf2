package db

import (
	"context"
	"database/sql"
	"fmt"

	"rodent-genomes/internal/assembly"
	"rodent-genomes/internal/assert"
	"rodent-genomes/internal/components/telemetry"
)

const (
	report_store_query = "store.query"
)

// Store persists assembly tables, the full fetched table and the
// representatives picked for each grouping level.
type Store struct {
	makeTx MakeTx
	tel    telemetry.API
}

func NewStore(db *sql.DB, tel telemetry.API) Store {
	assert.NotNil(db)
	assert.NotNil(tel)
	return Store{
		makeTx: NewMakeTx(db),
		tel:    telemetry.NewScopedAPI("db", tel),
	}
}

func fromRecord(position int, r assembly.Record) Assembly {
	return Assembly{
		Position:           int64(position),
		Family:             r.Family,
		Genus:              r.Genus,
		SpeciesName:        r.SpeciesName,
		SpeciesTaxid:       r.SpeciesTaxid,
		TolPrefix:          r.ToLPrefix,
		Accession:          r.AssemblyAccession,
		Name:               r.AssemblyName,
		Status:             string(r.AssemblyStatus),
		ContigN50:          r.ContigN50,
		ScaffoldN50:        r.ScaffoldN50,
		RefseqCategory:     r.RefSeqCategory,
		ReleaseDateGenbank: r.ReleaseDateGenBank,
	}
}

func (a Assembly) Record() assembly.Record {
	return assembly.Record{
		Family:             a.Family,
		Genus:              a.Genus,
		SpeciesName:        a.SpeciesName,
		SpeciesTaxid:       a.SpeciesTaxid,
		ToLPrefix:          a.TolPrefix,
		AssemblyAccession:  a.Accession,
		AssemblyName:       a.Name,
		AssemblyStatus:     assembly.Status(a.Status),
		ContigN50:          a.ContigN50,
		ScaffoldN50:        a.ScaffoldN50,
		RefSeqCategory:     a.RefseqCategory,
		ReleaseDateGenBank: a.ReleaseDateGenbank,
	}
}

func toRecords(rows []Assembly) []assembly.Record {
	out := make([]assembly.Record, len(rows))
	for i, row := range rows {
		out[i] = row.Record()
	}
	return out
}

func (s Store) replace(ctx context.Context, query string, reset func(tx *Queries) error, insert func(tx *Queries, row Assembly) error, records []assembly.Record) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_store_query, err, "begin")
		return err
	}
	defer discard()

	err = reset(tx)
	if err != nil {
		s.tel.ReportBroken(report_store_query, err, query)
		return fmt.Errorf("%s: %w", query, err)
	}
	for i, r := range records {
		err = insert(tx, fromRecord(i, r))
		if err != nil {
			s.tel.ReportBroken(report_store_query, err, query, r.AssemblyAccession)
			return fmt.Errorf("%s %s: %w", query, r.AssemblyAccession, err)
		}
	}
	return commit()
}

// ReplaceAssemblies overwrites the stored assembly table with records.
func (s Store) ReplaceAssemblies(ctx context.Context, records []assembly.Record) error {
	return s.replace(
		ctx, "ReplaceAssemblies",
		func(tx *Queries) error { return tx.DeleteAllAssemblies(ctx) },
		func(tx *Queries, row Assembly) error { return tx.CreateAssembly(ctx, row) },
		records,
	)
}

// ListAssemblies returns the stored assembly table in its original order.
func (s Store) ListAssemblies(ctx context.Context) ([]assembly.Record, error) {
	tx, discard, _, err := s.makeTx(ctx)
	if err != nil {
		return nil, err
	}
	defer discard()

	rows, err := tx.GetAssemblies(ctx)
	if err != nil {
		s.tel.ReportBroken(report_store_query, err, "GetAssemblies")
		return nil, err
	}
	return toRecords(rows), nil
}

// ReplaceRepresentatives overwrites the representatives stored for level.
func (s Store) ReplaceRepresentatives(ctx context.Context, level assembly.Level, records []assembly.Record) error {
	return s.replace(
		ctx, "ReplaceRepresentatives",
		func(tx *Queries) error { return tx.DeleteRepresentatives(ctx, string(level)) },
		func(tx *Queries, row Assembly) error { return tx.CreateRepresentative(ctx, string(level), row) },
		records,
	)
}

// ListRepresentatives returns the representatives stored for level.
func (s Store) ListRepresentatives(ctx context.Context, level assembly.Level) ([]assembly.Record, error) {
	tx, discard, _, err := s.makeTx(ctx)
	if err != nil {
		return nil, err
	}
	defer discard()

	rows, err := tx.GetRepresentatives(ctx, string(level))
	if err != nil {
		s.tel.ReportBroken(report_store_query, err, "GetRepresentatives")
		return nil, err
	}
	return toRecords(rows), nil
}
