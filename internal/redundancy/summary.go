package redundancy

import (
	"fmt"
	"io"

	"rodent-genomes/internal/assembly"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Tier is a quality threshold assemblies are counted at.
type Tier string

const (
	TierAll        Tier = "all"
	TierChromosome Tier = "chromosome"
	TierContig     Tier = "contig>=1Mb"
	TierBoth       Tier = "contig>=1Mb+chromosome"
)

// Tiers lists every tier in the order they are reported.
var Tiers = []Tier{TierAll, TierChromosome, TierContig, TierBoth}

// Includes reports whether r meets the tier.
func (t Tier) Includes(r assembly.Record) bool {
	chromosome := r.AssemblyStatus == assembly.StatusChromosome
	contig := r.ContigN50 >= MinContigN50
	switch t {
	case TierAll:
		return true
	case TierChromosome:
		return chromosome
	case TierContig:
		return contig
	case TierBoth:
		return chromosome && contig
	}
	panic(fmt.Sprintf("unknown tier %q", string(t)))
}

// Count is the coverage of one tier.
type Count struct {
	Tier       Tier
	Assemblies int
	Families   int
	Genera     int
	Species    int
}

// Summary is the coverage of an assembly table at every tier.
type Summary []Count

// Summarize counts assemblies and unique families, genera and species per tier.
func Summarize(records []assembly.Record) Summary {
	summary := make(Summary, 0, len(Tiers))
	for _, tier := range Tiers {
		families := map[string]struct{}{}
		genera := map[string]struct{}{}
		species := map[string]struct{}{}
		count := Count{Tier: tier}
		for _, r := range records {
			if !tier.Includes(r) {
				continue
			}
			count.Assemblies++
			families[r.Family] = struct{}{}
			genera[r.Genus] = struct{}{}
			species[r.SpeciesName] = struct{}{}
		}
		count.Families = len(families)
		count.Genera = len(genera)
		count.Species = len(species)
		summary = append(summary, count)
	}
	return summary
}

// Get returns the count for tier.
func (s Summary) Get(tier Tier) Count {
	for _, c := range s {
		if c.Tier == tier {
			return c
		}
	}
	return Count{Tier: tier}
}

// Render writes the summary as a table.
func (s Summary) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Tier", "Assemblies", "Families", "Genera", "Species"})
	for _, c := range s {
		t.AppendRow(table.Row{c.Tier, c.Assemblies, c.Families, c.Genera, c.Species})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
