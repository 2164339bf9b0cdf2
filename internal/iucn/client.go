// Package iucn is a client for the IUCN red list v3 API.
package iucn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"rodent-genomes/internal/assert"
	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/internal/fetch"

	"github.com/go-resty/resty/v2"
)

const (
	report_client_species_page = "client.species-page"
	report_client_lookup       = "client.lookup"
)

// Page is one page of the species listing.
type Page struct {
	Number int
	// Count is the amount of results on the page, a page with a count of 0
	// is past the end of the listing.
	Count   int
	Species []Species
}

// count is sent either as a number or a numeric string.
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	*c = count(n)
	return nil
}

type pageJson struct {
	Count  *count    `json:"count"`
	Result []Species `json:"result"`
}

type lookupJson struct {
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type Client struct {
	http  *resty.Client
	tel   telemetry.API
	token string
}

func NewClient(http *resty.Client, token string, tel telemetry.API) *Client {
	assert.NotNil(http)
	assert.NotNil(tel)
	assert.NotEmptyStr(token)
	return &Client{
		http:  http,
		tel:   telemetry.NewScopedAPI("iucn", tel),
		token: token,
	}
}

func (c *Client) get(ctx context.Context, path string, pathParams map[string]string) (*resty.Response, *fetch.Failure) {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParams(pathParams).
		SetQueryParam("token", c.token).
		Get(path)
	if failure := fetch.Classify(res, err); failure != nil {
		return nil, failure
	}
	return res, nil
}

// SpeciesPage fetches a page of the global species listing, pages start at 0.
func (c *Client) SpeciesPage(ctx context.Context, page int) (Page, error) {
	res, failure := c.get(ctx, "/api/v3/species/page/{page}", map[string]string{
		"page": strconv.Itoa(page),
	})
	if failure != nil {
		c.tel.ReportBroken(report_client_species_page, failure, page)
		return Page{}, fmt.Errorf("species page %d: %w", page, failure)
	}

	var parsed pageJson
	err := json.Unmarshal(res.Body(), &parsed)
	if err == nil && parsed.Count == nil {
		err = fmt.Errorf("missing count")
	}
	if err != nil {
		failure := fetch.Fail(fetch.ReasonMalformed, fmt.Sprintf("species page %d", page), err)
		c.tel.ReportBroken(report_client_species_page, failure, page)
		return Page{}, failure
	}

	c.tel.ReportDebug(report_client_species_page, page, int(*parsed.Count))
	return Page{
		Number:  page,
		Count:   int(*parsed.Count),
		Species: parsed.Result,
	}, nil
}

func (c *Client) lookup(ctx context.Context, path, name string) fetch.Result[json.RawMessage] {
	res, failure := c.get(ctx, path, map[string]string{"name": name})
	if failure != nil {
		c.tel.ReportDebug(report_client_lookup, path, name, failure)
		return fetch.Err[json.RawMessage](failure)
	}

	var parsed lookupJson
	err := json.Unmarshal(res.Body(), &parsed)
	if err == nil && len(parsed.Result) == 0 {
		err = fmt.Errorf("missing result")
		if parsed.Message != "" {
			err = fmt.Errorf("missing result: %s", parsed.Message)
		}
	}
	if err != nil {
		failure := fetch.Fail(fetch.ReasonMalformed, name, err)
		c.tel.ReportDebug(report_client_lookup, path, name, failure)
		return fetch.Err[json.RawMessage](failure)
	}
	return fetch.Ok(parsed.Result)
}

// Habitats returns the raw habitat list of a species. The name is path
// escaped, spaces become %20.
func (c *Client) Habitats(ctx context.Context, scientificName string) fetch.Result[json.RawMessage] {
	return c.lookup(ctx, "/api/v3/habitats/species/name/{name}", scientificName)
}

// Countries returns the raw list of countries a species occurs in.
func (c *Client) Countries(ctx context.Context, scientificName string) fetch.Result[json.RawMessage] {
	return c.lookup(ctx, "/api/v3/species/countries/name/{name}", scientificName)
}
