// Package quotes fetches current security prices from an external quote
// API and caches them locally so repeated projections within a day do not
// hit the network.
package quotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/planwise/retirecast/pkg/constants"
)

// Quote holds the latest known price for a symbol.
type Quote struct {
	Price float64 `json:"price"`
	AsOf  string  `json:"asOf"`
}

// PriceMap maps investment names to their latest quotes. Symbols absent
// from the map fall back to the price stored in the profile.
type PriceMap map[string]Quote

// Client fetches quotes over HTTP with an optional SQLite-backed daily
// cache in front of the network.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *Cache
	logger  *zap.Logger
}

// NewClient constructs a quote client. cache may be nil to disable
// caching, and a nil logger is replaced with a no-op logger.
func NewClient(baseURL, apiKey string, cache *Cache, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiKey == "" {
		apiKey = os.Getenv(constants.QuoteAPIKeyEnv)
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
		logger:  logger,
	}
}

// quoteResponse is the payload returned by the quote API.
type quoteResponse struct {
	Status string  `json:"status"`
	Close  float64 `json:"close"`
}

// Fetch returns quotes for the given symbols. Symbols the API cannot
// price are logged and omitted from the result rather than failing the
// whole batch; callers fall back to stored prices for missing entries.
func (c *Client) Fetch(ctx context.Context, symbols []string) (PriceMap, error) {
	prices := make(PriceMap, len(symbols))
	day := time.Now().Format(constants.DateLayout)

	for _, symbol := range symbols {
		if c.cache != nil {
			quote, ok, err := c.cache.Get(symbol, day)
			if err != nil {
				c.logger.Warn("quote cache read failed",
					zap.String("op", "quotes.Client.Fetch"),
					zap.String("symbol", symbol),
					zap.Error(err))
			} else if ok {
				prices[symbol] = quote
				continue
			}
		}

		quote, err := c.fetchOne(ctx, symbol, day)
		if err != nil {
			c.logger.Warn("quote fetch failed, falling back to stored price",
				zap.String("op", "quotes.Client.Fetch"),
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		prices[symbol] = quote
		if c.cache != nil {
			if err := c.cache.Put(symbol, day, quote); err != nil {
				c.logger.Warn("quote cache write failed",
					zap.String("op", "quotes.Client.Fetch"),
					zap.String("symbol", symbol),
					zap.Error(err))
			}
		}
	}

	return prices, nil
}

func (c *Client) fetchOne(ctx context.Context, symbol, day string) (Quote, error) {
	addr := fmt.Sprintf("%s/quote/%s", c.baseURL, url.PathEscape(symbol))
	if c.apiKey != "" {
		addr += "?api_token=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return Quote{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("cannot GET %s/%s: %s", req.URL.Host, req.URL.Path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, err
	}

	var payload quoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Quote{}, fmt.Errorf("failed to decode quote for %s: %w", symbol, err)
	}
	if payload.Status != "ok" {
		return Quote{}, fmt.Errorf("quote API returned status %q for %s", payload.Status, symbol)
	}
	if payload.Close <= 0 {
		return Quote{}, fmt.Errorf("quote API returned non-positive close %v for %s", payload.Close, symbol)
	}

	return Quote{Price: payload.Close, AsOf: day}, nil
}
