// Package redundancy collapses an assembly table to the best assemblies per
// taxon and summarizes how many taxa an assembly table covers.
package redundancy

import (
	"rodent-genomes/internal/assembly"
)

// MinContigN50 is the contig N50 (in bp) below which a non-chromosome
// assembly loses to a chromosome-level one with a larger scaffold N50.
const MinContigN50 = 1_000_000

// SelectBest picks the best assemblies out of a group of assemblies for the
// same taxon. All rows tied on the winning metric are returned, in input order.
func SelectBest(group []assembly.Record) []assembly.Record {
	if len(group) <= 1 {
		return group
	}

	byContig := group[0]
	byScaffold := group[0]
	byContigIdx := 0
	byScaffoldIdx := 0
	for i, r := range group {
		if r.ContigN50 > byContig.ContigN50 {
			byContig = r
			byContigIdx = i
		}
		if r.ScaffoldN50 > byScaffold.ScaffoldN50 {
			byScaffold = r
			byScaffoldIdx = i
		}
	}

	switch {
	case byContigIdx == byScaffoldIdx:
		return tiedOn(group, scaffoldN50, byScaffold.ScaffoldN50)
	case byContig.ContigN50 < MinContigN50 &&
		byContig.AssemblyStatus != assembly.StatusChromosome &&
		byScaffold.AssemblyStatus == assembly.StatusChromosome:
		return tiedOn(group, scaffoldN50, byScaffold.ScaffoldN50)
	default:
		return tiedOn(group, contigN50, byContig.ContigN50)
	}
}

func contigN50(r assembly.Record) int64   { return r.ContigN50 }
func scaffoldN50(r assembly.Record) int64 { return r.ScaffoldN50 }

func tiedOn(group []assembly.Record, metric func(assembly.Record) int64, value int64) []assembly.Record {
	var out []assembly.Record
	for _, r := range group {
		if metric(r) == value {
			out = append(out, r)
		}
	}
	return out
}

// Group splits records by their key at level. Groups are in order of first
// appearance and keep the input order of their rows.
func Group(records []assembly.Record, level assembly.Level) [][]assembly.Record {
	index := map[string]int{}
	var groups [][]assembly.Record
	for _, r := range records {
		key := level.Key(r)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

// Reduce keeps the best assemblies of every taxon at level.
func Reduce(records []assembly.Record, level assembly.Level) []assembly.Record {
	out := make([]assembly.Record, 0, len(records))
	for _, group := range Group(records, level) {
		out = append(out, SelectBest(group)...)
	}
	return out
}
