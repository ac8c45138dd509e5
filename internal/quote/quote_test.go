package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuoteServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/quote", request.URL.Path)

			switch request.URL.Query().Get("symbol") {
			case "NFLX":
				fmt.Fprint(writer, `{"name": "Netflix", "symbol": "NFLX", "price": 150.25}`)
			case "BAD":
				fmt.Fprint(writer, `<not json>`)
			default:
				writer.WriteHeader(http.StatusNotFound)
			}
		},
	))

	t.Cleanup(server.Close)

	return server
}

func TestLookup(t *testing.T) {
	client := NewClient(newQuoteServer(t).URL)

	stock, err := client.Lookup(context.Background(), "nflx")

	require.NoError(t, err)
	assert.Equal(t, "Netflix", stock.Name)
	assert.Equal(t, "NFLX", stock.Symbol)
	assert.Equal(t, "150.25", stock.Price.String())
}

func TestLookupUnknownSymbol(t *testing.T) {
	client := NewClient(newQuoteServer(t).URL)

	_, err := client.Lookup(context.Background(), "NOPE")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupBlankSymbol(t *testing.T) {
	client := NewClient(newQuoteServer(t).URL)

	_, err := client.Lookup(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupBadPayload(t *testing.T) {
	client := NewClient(newQuoteServer(t).URL)

	_, err := client.Lookup(context.Background(), "BAD")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
