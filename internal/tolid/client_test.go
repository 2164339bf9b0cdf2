package tolid

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"rodent-genomes/internal/components/telemetry"
	"rodent-genomes/internal/fetch"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	rec := telemetry.NewRecorder()
	http := fetch.NewClient(fetch.Options{Name: "tolid", BaseUrl: server.URL}, rec)
	t.Cleanup(http.GetClient().CloseIdleConnections)
	return NewClient(http, rec)
}

func TestLookupSpecies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/species/10090", r.URL.Path)
		fmt.Fprint(w, `[{"prefix":"mMusMus","species":"Mus musculus","taxonomyId":10090,
			"commonName":"house mouse","genus":"Mus","family":"Muridae","order":"Rodentia"}]`)
	})

	species, err := client.LookupSpecies(context.Background(), "10090").Unwrap()
	require.NoError(t, err)
	require.Equal(t, Species{
		Prefix:     "mMusMus",
		Species:    "Mus musculus",
		TaxonomyId: "10090",
		Genus:      "Mus",
		Family:     "Muridae",
		Order:      "Rodentia",
	}, species)
}

func TestLookupSpeciesFailures(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		reason fetch.Reason
		detail string
	}{
		{
			name:   "detail with 404",
			status: http.StatusNotFound,
			body:   `{"detail":"Species with taxonomyId 1 not found"}`,
			reason: fetch.ReasonNotFound,
			detail: "Species with taxonomyId 1 not found",
		},
		{
			name:   "detail with 200",
			status: http.StatusOK,
			body:   `{"detail":"Species not found"}`,
			reason: fetch.ReasonNotFound,
			detail: "Species not found",
		},
		{
			name:   "empty list",
			status: http.StatusOK,
			body:   `[]`,
			reason: fetch.ReasonNotFound,
		},
		{
			name:   "missing family",
			status: http.StatusOK,
			body:   `[{"prefix":"mMusMus","genus":"Mus"}]`,
			reason: fetch.ReasonMalformed,
			detail: "species missing family",
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `bad gateway`,
			reason: fetch.ReasonUpstream,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				fmt.Fprint(w, test.body)
			})
			failure := client.LookupSpecies(context.Background(), "1").Failure()
			require.NotNil(t, failure)
			require.Equal(t, test.reason, failure.Reason)
			if test.detail != "" {
				require.Equal(t, test.detail, failure.Detail)
			}
		})
	}
}

func TestLookupSpeciesConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	rec := telemetry.NewRecorder()
	client := NewClient(fetch.NewClient(fetch.Options{Name: "tolid", BaseUrl: url}, rec), rec)

	_, err := client.LookupSpecies(context.Background(), "10090").Unwrap()
	require.ErrorIs(t, err, fetch.ErrConnection)
}
