package redlist

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"rodent-genomes/internal/iucn"
)

// Snapshot file suffixes, appended to the base output path.
const (
	SuffixCountries = ".country"
	SuffixHabitats  = ".country.hab"
)

// EncodeSnapshot writes species as a JSON array followed by a newline.
func EncodeSnapshot(w io.Writer, species []iucn.Species) error {
	if species == nil {
		species = []iucn.Species{}
	}
	return json.NewEncoder(w).Encode(species)
}

// WriteSnapshot overwrites path with species as a JSON array.
func WriteSnapshot(path string, species []iucn.Species) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = EncodeSnapshot(f, species)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) ([]iucn.Species, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var species []iucn.Species
	err = json.Unmarshal(data, &species)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return species, nil
}
