package assembly

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Columns is the header of an assembly table, in order.
var Columns = []string{
	"Family",
	"Genus",
	"SpeciesName",
	"SpeciesTaxid",
	"ToLPrefix",
	"AssemblyAccession",
	"AssemblyName",
	"AssemblyStatus",
	"ContigN50",
	"ScaffoldN50",
	"RefSeq_category",
	"AsmReleaseDate_GenBank",
}

func (r Record) row() []string {
	return []string{
		r.Family,
		r.Genus,
		r.SpeciesName,
		r.SpeciesTaxid,
		r.ToLPrefix,
		r.AssemblyAccession,
		r.AssemblyName,
		string(r.AssemblyStatus),
		strconv.FormatInt(r.ContigN50, 10),
		strconv.FormatInt(r.ScaffoldN50, 10),
		r.RefSeqCategory,
		r.ReleaseDateGenBank,
	}
}

// WriteTSV writes records as a tab-separated table with a header row.
func WriteTSV(w io.Writer, records []Record) error {
	out := csv.NewWriter(w)
	out.Comma = '\t'

	err := out.Write(Columns)
	if err != nil {
		return err
	}
	for _, r := range records {
		err = out.Write(r.row())
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

type fieldSetter func(r *Record, value string) error

func setString(field func(r *Record) *string) fieldSetter {
	return func(r *Record, value string) error {
		*field(r) = value
		return nil
	}
}

func setInt(field func(r *Record) *int64) fieldSetter {
	return func(r *Record, value string) error {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		*field(r) = n
		return nil
	}
}

var setters = map[string]fieldSetter{
	"Family":            setString(func(r *Record) *string { return &r.Family }),
	"Genus":             setString(func(r *Record) *string { return &r.Genus }),
	"SpeciesName":       setString(func(r *Record) *string { return &r.SpeciesName }),
	"SpeciesTaxid":      setString(func(r *Record) *string { return &r.SpeciesTaxid }),
	"ToLPrefix":         setString(func(r *Record) *string { return &r.ToLPrefix }),
	"AssemblyAccession": setString(func(r *Record) *string { return &r.AssemblyAccession }),
	"AssemblyName":      setString(func(r *Record) *string { return &r.AssemblyName }),
	"AssemblyStatus": func(r *Record, value string) error {
		r.AssemblyStatus = Status(value)
		return nil
	},
	"ContigN50":              setInt(func(r *Record) *int64 { return &r.ContigN50 }),
	"ScaffoldN50":            setInt(func(r *Record) *int64 { return &r.ScaffoldN50 }),
	"RefSeq_category":        setString(func(r *Record) *string { return &r.RefSeqCategory }),
	"AsmReleaseDate_GenBank": setString(func(r *Record) *string { return &r.ReleaseDateGenBank }),
}

// ReadTSV reads a table written by WriteTSV. Columns are matched by header
// name so their order does not matter, columns not part of a Record are ignored.
func ReadTSV(r io.Reader) ([]Record, error) {
	in := csv.NewReader(r)
	in.Comma = '\t'

	header, err := in.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty assembly table")
	}
	if err != nil {
		return nil, err
	}

	columns := make([]fieldSetter, len(header))
	seen := map[string]bool{}
	for i, name := range header {
		columns[i] = setters[name]
		seen[name] = true
	}
	for _, name := range Columns {
		if !seen[name] {
			return nil, fmt.Errorf("assembly table is missing column %s", name)
		}
	}

	var records []Record
	for {
		row, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		var rec Record
		for i, value := range row {
			if columns[i] == nil {
				continue
			}
			err = columns[i](&rec, value)
			if err != nil {
				line, _ := in.FieldPos(i)
				return nil, fmt.Errorf("line %d, column %s: %w", line, header[i], err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteFile overwrites path with records as a tab-separated table.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = WriteTSV(f, records)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads the tab-separated table at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}
