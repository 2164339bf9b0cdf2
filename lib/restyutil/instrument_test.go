package restyutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestInstrumentClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		fmt.Fprint(w, `{"count":0}`)
	}))
	defer server.Close()

	output := NewMemoryOutput()
	client := resty.New().SetBaseURL(server.URL)
	defer client.GetClient().CloseIdleConnections()
	InstrumentClient(client, "iucn", output)

	_, err := client.R().SetQueryParam("token", "secret").Get("/api/v3/species/page/0")
	require.NoError(t, err)
	_, err = client.R().Get("/api/v3/species/page/1")
	require.NoError(t, err)

	messages := output.Messages()
	require.Len(t, messages, 2)
	first := messages["iucn-1"]
	require.Contains(t, first, "GET "+server.URL+"/api/v3/species/page/0?token=REDACTED")
	require.NotContains(t, first, "secret")
	require.Contains(t, first, "---- RESPONSE ----\n\n200")
	require.Contains(t, first, `{"count":0}`)
	require.Contains(t, messages["iucn-2"], "/api/v3/species/page/1")
}

func TestInstrumentClientError(t *testing.T) {
	output := NewMemoryOutput()
	client := resty.New()
	InstrumentClient(client, "tolid", output)

	_, err := client.R().Get("http://127.0.0.1:1/api/v2/species/1")
	require.Error(t, err)
	require.Contains(t, output.Messages()["tolid-1.err"], "---- ERROR ----")
}

func TestInstrumentClientNilOutput(t *testing.T) {
	client := resty.New()
	InstrumentClient(client, "ncbi", nil)
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	output.Write("ncbi-1", "contents")
	data, err := os.ReadFile(filepath.Join(dir, "ncbi-1.http"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(data))
}
