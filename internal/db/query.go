package db

import (
	"context"
)

// Assembly is a row of both the assembly and the representative_assembly
// tables.
type Assembly struct {
	Position           int64
	Family             string
	Genus              string
	SpeciesName        string
	SpeciesTaxid       string
	TolPrefix          string
	Accession          string
	Name               string
	Status             string
	ContigN50          int64
	ScaffoldN50        int64
	RefseqCategory     string
	ReleaseDateGenbank string
}

const assemblyColumns = `position, family, genus, species_name, species_taxid, tol_prefix,
accession, name, status, contig_n50, scaffold_n50, refseq_category, release_date_genbank`

func (a Assembly) args() []interface{} {
	return []interface{}{
		a.Position,
		a.Family,
		a.Genus,
		a.SpeciesName,
		a.SpeciesTaxid,
		a.TolPrefix,
		a.Accession,
		a.Name,
		a.Status,
		a.ContigN50,
		a.ScaffoldN50,
		a.RefseqCategory,
		a.ReleaseDateGenbank,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAssembly(row scanner) (Assembly, error) {
	var i Assembly
	err := row.Scan(
		&i.Position,
		&i.Family,
		&i.Genus,
		&i.SpeciesName,
		&i.SpeciesTaxid,
		&i.TolPrefix,
		&i.Accession,
		&i.Name,
		&i.Status,
		&i.ContigN50,
		&i.ScaffoldN50,
		&i.RefseqCategory,
		&i.ReleaseDateGenbank,
	)
	return i, err
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]Assembly, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Assembly
	for rows.Next() {
		i, err := scanAssembly(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllAssemblies = `DELETE FROM assembly`

func (q *Queries) DeleteAllAssemblies(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllAssemblies)
	return err
}

const createAssembly = `INSERT INTO assembly (` + assemblyColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateAssembly(ctx context.Context, arg Assembly) error {
	_, err := q.db.ExecContext(ctx, createAssembly, arg.args()...)
	return err
}

const getAssemblies = `SELECT ` + assemblyColumns + ` FROM assembly ORDER BY position`

func (q *Queries) GetAssemblies(ctx context.Context) ([]Assembly, error) {
	return q.list(ctx, getAssemblies)
}

const deleteRepresentatives = `DELETE FROM representative_assembly WHERE level = ?`

func (q *Queries) DeleteRepresentatives(ctx context.Context, level string) error {
	_, err := q.db.ExecContext(ctx, deleteRepresentatives, level)
	return err
}

const createRepresentative = `INSERT INTO representative_assembly (level, ` + assemblyColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRepresentative(ctx context.Context, level string, arg Assembly) error {
	args := append([]interface{}{level}, arg.args()...)
	_, err := q.db.ExecContext(ctx, createRepresentative, args...)
	return err
}

const getRepresentatives = `SELECT ` + assemblyColumns + `
FROM representative_assembly WHERE level = ? ORDER BY position`

func (q *Queries) GetRepresentatives(ctx context.Context, level string) ([]Assembly, error) {
	return q.list(ctx, getRepresentatives, level)
}
