// Package pricefeed implements ports.PriceSource against a JSON quote
// endpoint. Quotes are best-effort: an absent or empty quote maps to a nil
// price, never zero, so the metrics layer can tell "flat" from "unknown".
package pricefeed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"wheeltracker/internal/ports"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultRetryCount   = 2
	defaultRetryWait    = 500 * time.Millisecond
	defaultRetryMaxWait = 5 * time.Second
)

// Config holds configuration for the quote client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Logger     ports.Logger
}

// Client is a resty-backed quote fetcher.
type Client struct {
	http   *resty.Client
	logger ports.Logger
}

// New creates a quote client.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for price feed client")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: price feed base URL is required", ports.ErrConfigurationError)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.RetryCount
	if retries < 0 {
		retries = defaultRetryCount
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(defaultRetryWait).
		SetRetryMaxWaitTime(defaultRetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{http: httpClient, logger: cfg.Logger}, nil
}

// quoteResponse is the wire shape of the quote endpoint.
type quoteResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// GetCurrentPrice fetches the latest quote for a ticker. A missing quote
// (404 or non-positive price) returns nil, nil.
func (c *Client) GetCurrentPrice(ctx context.Context, ticker string) (*decimal.Decimal, error) {
	var quote quoteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", ticker).
		SetResult(&quote).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("%w: fetching quote for %s: %v", ports.ErrPriceFeedUnavailable, ticker, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		c.logger.Debug(ctx, "No quote for ticker", map[string]interface{}{"ticker": ticker})
		return nil, nil
	case resp.IsError():
		return nil, fmt.Errorf("%w: quote for %s returned status %d", ports.ErrPriceFeedUnavailable, ticker, resp.StatusCode())
	}

	if !quote.Price.IsPositive() {
		c.logger.Warn(ctx, "Quote endpoint returned non-positive price, treating as unavailable",
			map[string]interface{}{"ticker": ticker, "price": quote.Price.String()})
		return nil, nil
	}
	return &quote.Price, nil
}
