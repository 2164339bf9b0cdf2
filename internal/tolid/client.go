// Package tolid looks species up in the Tree of Life identifier service,
// which assigns each species a short prefix code and knows its family and genus.
package tolid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"rodent-genomes/internal/assert"
	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/internal/fetch"

	"github.com/go-resty/resty/v2"
)

const report_client_lookup_species = "client.lookup-species"

type Species struct {
	Prefix     string
	Species    string
	TaxonomyId string
	Genus      string
	Family     string
	Order      string
}

type speciesJson struct {
	Prefix     *string     `json:"prefix"`
	Species    string      `json:"species"`
	TaxonomyId json.Number `json:"taxonomyId"`
	Genus      *string     `json:"genus"`
	Family     *string     `json:"family"`
	Order      string      `json:"order"`
}

type detailJson struct {
	Detail any `json:"detail"`
}

type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(http *resty.Client, tel telemetry.API) *Client {
	assert.NotNil(http)
	assert.NotNil(tel)
	return &Client{http: http, tel: telemetry.NewScopedAPI("tolid", tel)}
}

// LookupSpecies returns the species registered under an ncbi taxonomy id.
func (c *Client) LookupSpecies(ctx context.Context, taxid string) fetch.Result[Species] {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("taxid", taxid).
		Get("/api/v2/species/{taxid}")

	failure := fetch.Classify(res, err)
	if failure != nil && failure.Reason != fetch.ReasonConnection {
		// the service explains failures in a "detail" field
		if detail := parseDetail(res.Body()); detail != "" {
			failure.Detail = detail
		}
	}
	if failure != nil {
		c.tel.ReportDebug(report_client_lookup_species, taxid, failure)
		return fetch.Err[Species](failure)
	}

	species, failure := parseSpecies(res.Body())
	if failure != nil {
		c.tel.ReportDebug(report_client_lookup_species, taxid, failure)
		return fetch.Err[Species](failure)
	}
	return fetch.Ok(species)
}

func parseDetail(body []byte) string {
	var parsed detailJson
	if json.Unmarshal(body, &parsed) != nil || parsed.Detail == nil {
		return ""
	}
	if text, ok := parsed.Detail.(string); ok {
		return text
	}
	return fmt.Sprint(parsed.Detail)
}

// parseSpecies accepts either a list of species (the first is used) or a
// single object, which is a failure when it carries a "detail".
func parseSpecies(body []byte) (Species, *fetch.Failure) {
	body = bytes.TrimSpace(body)

	var raw speciesJson
	if len(body) > 0 && body[0] == '[' {
		var list []json.RawMessage
		err := json.Unmarshal(body, &list)
		if err != nil {
			return Species{}, fetch.Fail(fetch.ReasonMalformed, "species list", err)
		}
		if len(list) == 0 {
			return Species{}, fetch.Fail(fetch.ReasonNotFound, "empty species list", nil)
		}
		body = list[0]
	} else if detail := parseDetail(body); detail != "" {
		return Species{}, fetch.Fail(fetch.ReasonNotFound, detail, nil)
	}

	err := json.Unmarshal(body, &raw)
	if err != nil {
		return Species{}, fetch.Fail(fetch.ReasonMalformed, "species", err)
	}
	required := []struct {
		name  string
		value *string
	}{
		{"family", raw.Family},
		{"genus", raw.Genus},
		{"prefix", raw.Prefix},
	}
	for _, field := range required {
		if field.value == nil {
			return Species{}, fetch.Fail(fetch.ReasonMalformed, fmt.Sprintf("species missing %s", field.name), nil)
		}
	}

	return Species{
		Prefix:     *raw.Prefix,
		Species:    raw.Species,
		TaxonomyId: raw.TaxonomyId.String(),
		Genus:      *raw.Genus,
		Family:     *raw.Family,
		Order:      raw.Order,
	}, nil
}
