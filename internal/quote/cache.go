package quote

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dense-analysis/stockfolio/internal/model"
)

// CacheTTL is how long a cached quote stays fresh.
const CacheTTL = 5 * time.Minute

// CachedFetcher wraps a Fetcher with a Redis read-through cache.
//
// Cache failures degrade to a direct lookup, so a broken Redis connection
// never breaks quotes.
type CachedFetcher struct {
	fetcher Fetcher
	client  redis.Cmdable
	ttl     time.Duration
}

func NewCachedFetcher(fetcher Fetcher, client redis.Cmdable) *CachedFetcher {
	return &CachedFetcher{fetcher, client, CacheTTL}
}

func cacheKey(symbol string) string {
	return "quote:" + symbol
}

// Lookup returns a cached quote if one is fresh, fetching otherwise.
func (cached *CachedFetcher) Lookup(ctx context.Context, symbol string) (*model.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	value, err := cached.client.Get(ctx, cacheKey(symbol)).Result()

	if err == nil {
		var quote model.Quote

		if err := json.Unmarshal([]byte(value), &quote); err == nil {
			return &quote, nil
		}
	}

	quote, err := cached.fetcher.Lookup(ctx, symbol)

	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(quote); err == nil {
		cached.client.Set(ctx, cacheKey(quote.Symbol), encoded, cached.ttl)
	}

	return quote, nil
}
