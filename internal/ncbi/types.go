package ncbi

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// DocumentSummary is the subset of an assembly docsum the tools use.
type DocumentSummary struct {
	Uid                string
	AssemblyAccession  string
	AssemblyName       string
	AssemblyStatus     string
	SpeciesName        string
	SpeciesTaxid       string
	ContigN50          int64
	ScaffoldN50        int64
	RefSeqCategory     string
	ReleaseDateGenBank string
}

type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IdList []string `json:"idlist"`
		Error  string   `json:"ERROR"`
	} `json:"esearchresult"`
	Error string `json:"error"`
}

// pointers tell apart a missing element from an empty one
type xmlDocumentSummary struct {
	Uid                string  `xml:"uid,attr"`
	Error              *string `xml:"error"`
	AssemblyAccession  *string `xml:"AssemblyAccession"`
	AssemblyName       *string `xml:"AssemblyName"`
	AssemblyStatus     *string `xml:"AssemblyStatus"`
	SpeciesName        *string `xml:"SpeciesName"`
	SpeciesTaxid       *string `xml:"SpeciesTaxid"`
	ContigN50          *string `xml:"ContigN50"`
	ScaffoldN50        *string `xml:"ScaffoldN50"`
	RefSeqCategory     *string `xml:"RefSeq_category"`
	ReleaseDateGenBank *string `xml:"AsmReleaseDate_GenBank"`
}

type xmlSummaryResult struct {
	XMLName   xml.Name             `xml:"eSummaryResult"`
	Error     *string              `xml:"ERROR"`
	Summaries []xmlDocumentSummary `xml:"DocumentSummarySet>DocumentSummary"`
}

type missingFieldError struct {
	field string
}

func (e missingFieldError) Error() string {
	return fmt.Sprintf("missing field %s", e.field)
}

func requireField(name string, value *string) (string, error) {
	if value == nil {
		return "", missingFieldError{field: name}
	}
	return strings.TrimSpace(*value), nil
}

func requireInt(name string, value *string) (int64, error) {
	text, err := requireField(name, value)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return n, nil
}

func (x xmlDocumentSummary) toSummary() (DocumentSummary, error) {
	var err error
	out := DocumentSummary{Uid: x.Uid}

	strFields := []struct {
		name  string
		value *string
		out   *string
	}{
		{"AssemblyAccession", x.AssemblyAccession, &out.AssemblyAccession},
		{"AssemblyName", x.AssemblyName, &out.AssemblyName},
		{"AssemblyStatus", x.AssemblyStatus, &out.AssemblyStatus},
		{"SpeciesName", x.SpeciesName, &out.SpeciesName},
		{"SpeciesTaxid", x.SpeciesTaxid, &out.SpeciesTaxid},
		{"RefSeq_category", x.RefSeqCategory, &out.RefSeqCategory},
		{"AsmReleaseDate_GenBank", x.ReleaseDateGenBank, &out.ReleaseDateGenBank},
	}
	for _, f := range strFields {
		*f.out, err = requireField(f.name, f.value)
		if err != nil {
			return DocumentSummary{}, err
		}
	}

	out.ContigN50, err = requireInt("ContigN50", x.ContigN50)
	if err != nil {
		return DocumentSummary{}, err
	}
	out.ScaffoldN50, err = requireInt("ScaffoldN50", x.ScaffoldN50)
	if err != nil {
		return DocumentSummary{}, err
	}
	return out, nil
}
