// Package quote resolves stock quotes from the external price lookup service.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dense-analysis/stockfolio/internal/model"
)

// ErrNotFound is returned when the lookup service does not know a symbol.
var ErrNotFound = errors.New("stock not found")

// Fetcher resolves a ticker symbol to a current quote.
type Fetcher interface {
	Lookup(ctx context.Context, symbol string) (*model.Quote, error)
}

// Client fetches quotes over HTTP from the configured lookup service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup fetches the current quote for a symbol.
//
// Symbols are case-insensitive, and the symbol from the service is the
// canonical one used for all further processing.
func (client *Client) Lookup(ctx context.Context, symbol string) (*model.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if len(symbol) == 0 {
		return nil, ErrNotFound
	}

	requestURL := fmt.Sprintf(
		"%s/quote?symbol=%s",
		client.baseURL,
		url.QueryEscape(symbol),
	)

	request, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)

	if err != nil {
		return nil, err
	}

	response, err := client.httpClient.Do(request)

	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote api returned status %d", response.StatusCode)
	}

	var quote model.Quote

	if err := json.NewDecoder(response.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("quote api returned unexpected payload: %w", err)
	}

	if len(quote.Symbol) == 0 {
		return nil, ErrNotFound
	}

	return &quote, nil
}
