// Package ncbi is a client for the subset of the Entrez E-utilities used to
// list genome assemblies: esearch on the assembly database and docsum fetches.
package ncbi

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"

	"rodent-genomes/internal/assert"
	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/internal/fetch"

	"github.com/go-resty/resty/v2"
)

const (
	report_client_search_assemblies = "client.search-assemblies"
	report_client_fetch_summary     = "client.fetch-summary"
)

type ClientOptions struct {
	// Email is sent with every request as required by the entrez usage policy.
	Email string
	// Tool names this program to entrez.
	Tool string
	// ApiKey is optional, it raises the allowed request rate.
	ApiKey string
	// MaxResults bounds the amount of ids returned by a search.
	MaxResults int
}

type Client struct {
	http *resty.Client
	tel  telemetry.API
	opts ClientOptions
}

func NewClient(http *resty.Client, opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(http)
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Email)
	if opts.MaxResults <= 0 {
		opts.MaxResults = 500
	}

	return &Client{
		http: http,
		tel:  telemetry.NewScopedAPI("ncbi", tel),
		opts: opts,
	}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("db", "assembly").
		SetQueryParam("email", c.opts.Email)
	if c.opts.Tool != "" {
		req.SetQueryParam("tool", c.opts.Tool)
	}
	if c.opts.ApiKey != "" {
		req.SetQueryParam("api_key", c.opts.ApiKey)
	}
	return req
}

// SearchAssemblies returns the ids of the assemblies matching term, at most
// MaxResults of them.
func (c *Client) SearchAssemblies(ctx context.Context, term string) ([]string, error) {
	res, err := c.request(ctx).
		SetQueryParam("term", term).
		SetQueryParam("retmax", strconv.Itoa(c.opts.MaxResults)).
		SetQueryParam("retmode", "json").
		Get("/esearch.fcgi")
	if failure := fetch.Classify(res, err); failure != nil {
		c.tel.ReportBroken(report_client_search_assemblies, failure, term)
		return nil, fmt.Errorf("esearch %q: %w", term, failure)
	}

	var parsed esearchResponse
	err = json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		failure := fetch.Fail(fetch.ReasonMalformed, "esearch json", err)
		c.tel.ReportBroken(report_client_search_assemblies, failure, term)
		return nil, failure
	}
	if parsed.Error != "" || parsed.Result.Error != "" {
		failure := fetch.Fail(fetch.ReasonUpstream, parsed.Error+parsed.Result.Error, nil)
		c.tel.ReportBroken(report_client_search_assemblies, failure, term)
		return nil, failure
	}

	c.tel.ReportDebug(report_client_search_assemblies, term, parsed.Result.Count, len(parsed.Result.IdList))
	return parsed.Result.IdList, nil
}

// FetchSummary fetches the docsum of a single assembly.
func (c *Client) FetchSummary(ctx context.Context, id string) fetch.Result[DocumentSummary] {
	res, err := c.request(ctx).
		SetQueryParam("id", id).
		SetQueryParam("rettype", "docsum").
		SetQueryParam("retmode", "xml").
		Get("/efetch.fcgi")
	if failure := fetch.Classify(res, err); failure != nil {
		c.tel.ReportDebug(report_client_fetch_summary, id, failure)
		return fetch.Err[DocumentSummary](failure)
	}

	summary, failure := parseSummary(res.Body())
	if failure != nil {
		c.tel.ReportDebug(report_client_fetch_summary, id, failure)
		return fetch.Err[DocumentSummary](failure)
	}
	if summary.Uid == "" {
		summary.Uid = id
	}
	return fetch.Ok(summary)
}

func parseSummary(body []byte) (DocumentSummary, *fetch.Failure) {
	var parsed xmlSummaryResult
	err := xml.Unmarshal(body, &parsed)
	if err != nil {
		return DocumentSummary{}, fetch.Fail(fetch.ReasonMalformed, "docsum xml", err)
	}
	if parsed.Error != nil {
		return DocumentSummary{}, fetch.Fail(fetch.ReasonNotFound, *parsed.Error, nil)
	}
	if len(parsed.Summaries) == 0 {
		return DocumentSummary{}, fetch.Fail(fetch.ReasonMalformed, "no DocumentSummary in response", nil)
	}

	doc := parsed.Summaries[0]
	if doc.Error != nil {
		return DocumentSummary{}, fetch.Fail(fetch.ReasonNotFound, *doc.Error, nil)
	}
	summary, err := doc.toSummary()
	if err != nil {
		return DocumentSummary{}, fetch.Fail(fetch.ReasonMalformed, "docsum", err)
	}
	return summary, nil
}
