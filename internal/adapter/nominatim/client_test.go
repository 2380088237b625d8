package nominatim

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Geocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Venlo, NL", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "chargefeed-test", r.Header.Get("User-Agent"))

		fmt.Fprint(w, `[{"lat":"51.3704","lon":"6.1724","display_name":"Venlo, Limburg, Netherlands","importance":0.62}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "chargefeed-test", 5*time.Second, slog.Default())

	result, err := client.Geocode(context.Background(), "Venlo", "NL")
	require.NoError(t, err)
	assert.Equal(t, 51.3704, result.Lat)
	assert.Equal(t, 6.1724, result.Lon)
	assert.Equal(t, "Venlo, Limburg, Netherlands", result.DisplayName)
	assert.Equal(t, 0.62, result.Confidence)
}

func TestClient_Geocode_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "chargefeed-test", 5*time.Second, slog.Default())

	result, err := client.Geocode(context.Background(), "Nowhereville", "XX")
	require.NoError(t, err)
	assert.Zero(t, result.Lat)
	assert.Zero(t, result.Lon)
}

func TestClient_Geocode_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "chargefeed-test", 5*time.Second, slog.Default())

	_, err := client.Geocode(context.Background(), "Venlo", "NL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
