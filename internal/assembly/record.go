// Package assembly holds the genome assembly record, its tab-separated
// table format and the pipeline that builds the table from ncbi and tolid.
package assembly

import (
	"fmt"
	"strings"
)

// Status is the completeness tier of an assembly as reported by ncbi.
type Status string

const (
	StatusCompleteGenome Status = "Complete Genome"
	StatusChromosome     Status = "Chromosome"
	StatusScaffold       Status = "Scaffold"
	StatusContig         Status = "Contig"
)

// Record is one genome assembly.
type Record struct {
	Family             string
	Genus              string
	SpeciesName        string
	SpeciesTaxid       string
	ToLPrefix          string
	AssemblyAccession  string
	AssemblyName       string
	AssemblyStatus     Status
	ContigN50          int64
	ScaffoldN50        int64
	RefSeqCategory     string
	ReleaseDateGenBank string
}

// Level is the taxonomic rank records are grouped by.
type Level string

const (
	LevelFamily Level = "Family"
	LevelGenus  Level = "Genus"
)

// ParseLevel accepts the column name of a grouping level, case insensitively.
func ParseLevel(text string) (Level, error) {
	switch {
	case strings.EqualFold(text, string(LevelFamily)):
		return LevelFamily, nil
	case strings.EqualFold(text, string(LevelGenus)):
		return LevelGenus, nil
	}
	return "", fmt.Errorf("unknown level %q, expected %s or %s", text, LevelFamily, LevelGenus)
}

// Key returns the value records are grouped by at this level.
func (l Level) Key(r Record) string {
	switch l {
	case LevelFamily:
		return r.Family
	case LevelGenus:
		return r.Genus
	}
	panic(fmt.Sprintf("unknown level %q", string(l)))
}
