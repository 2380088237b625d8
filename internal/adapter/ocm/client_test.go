package ocm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poiTemplate = `{
	"ID": %d,
	"AddressInfo": {
		"Title": "Rastplatz %d",
		"Town": "Berlin",
		"Latitude": 52.5,
		"Longitude": 13.4,
		"Country": {"ISOCode": "DE"}
	},
	"OperatorInfo": {"Title": "Ionity"},
	"Connections": [
		{"ConnectionType": {"Title": "CCS (Type 2)"}, "PowerKW": 150},
		{"ConnectionType": {"Title": "Type 2"}, "PowerKW": 22}
	]
}`

func poiPage(ids ...int) string {
	out := "["
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(poiTemplate, id, id)
	}
	return out + "]"
}

func TestSource_PagesThroughCountries(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requests = append(requests, q.Get("countrycode")+"/"+q.Get("offset"))

		switch {
		case q.Get("countrycode") == "DE" && q.Get("offset") == "0":
			fmt.Fprint(w, poiPage(1, 2)) // full page: more to fetch
		case q.Get("countrycode") == "DE" && q.Get("offset") == "2":
			fmt.Fprint(w, poiPage(3)) // short page: country done
		case q.Get("countrycode") == "NL":
			fmt.Fprint(w, "[]")
		default:
			t.Errorf("unexpected request %s", r.URL)
		}
	}))
	defer server.Close()

	src := NewSource("ocm", Options{
		BaseURL:   server.URL + "/",
		Countries: []string{"DE", "NL"},
		PageSize:  2,
		Delay:     1, // keep the test fast
	}, slog.Default())

	ctx := context.Background()

	batch, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	batch, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Len(t, batch, 1)

	batch, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, batch)

	_, err = src.Next(ctx)
	require.ErrorIs(t, err, io.EOF)

	assert.Equal(t, []string{"DE/0", "DE/2", "NL/0"}, requests)
}

func TestSource_FlattensPOIFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, poiPage(42))
	}))
	defer server.Close()

	src := NewSource("ocm", Options{
		BaseURL:   server.URL + "/",
		Countries: []string{"DE"},
		PageSize:  10,
		Delay:     1,
	}, slog.Default())

	batch, err := src.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, batch, 1)

	rec := batch[0]
	v, _ := rec.Get("latitude")
	lat, ok := v.Float()
	assert.True(t, ok)
	assert.Equal(t, 52.5, lat)

	v, _ = rec.Get("connector_type")
	assert.Equal(t, "CCS (Type 2); Type 2", v.Text())

	v, _ = rec.Get("power_kw")
	power, _ := v.Float()
	assert.Equal(t, 150.0, power, "highest connection rating wins")

	v, _ = rec.Get("name")
	assert.Equal(t, "Rastplatz 42", v.Text())
	v, _ = rec.Get("operator")
	assert.Equal(t, "Ionity", v.Text())
	v, _ = rec.Get("country")
	assert.Equal(t, "DE", v.Text())
	v, _ = rec.Get("source_url")
	assert.Equal(t, "https://openchargemap.org/site/poi/42", v.Text())
}

func TestSource_PassesKeyAndFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("key"))
		assert.Equal(t, "50", q.Get("minpowerkw"))
		assert.Equal(t, "true", q.Get("compact"))
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	src := NewSource("ocm", Options{
		BaseURL:   server.URL + "/",
		APIKey:    "secret",
		Countries: []string{"DE"},
		Delay:     1,
	}, slog.Default())

	_, err := src.Next(context.Background())
	require.NoError(t, err)
}

func TestSource_ServerErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	src := NewSource("ocm", Options{
		BaseURL:   server.URL + "/",
		Countries: []string{"DE"},
		Delay:     1,
	}, slog.Default())

	_, err := src.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "country DE")
}
