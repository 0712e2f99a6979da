// Package alpaca implements the provider interfaces on top of the Alpaca
// market-data and trading APIs.
package alpaca

import (
	"context"
	"fmt"
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"

	"github.com/bloatoo/tuinance/internal/market"
	"github.com/bloatoo/tuinance/internal/provider"
	"github.com/bloatoo/tuinance/internal/util"
)

// Compile-time interface checks.
var (
	_ provider.History  = (*Provider)(nil)
	_ provider.Profiles = (*Provider)(nil)
	_ provider.Streamer = (*Provider)(nil)
)

// Options configures the Alpaca provider.
type Options struct {
	APIKey    string
	APISecret string
	// BaseURL is the trading API endpoint used for asset lookups.
	BaseURL string
	// DataURL overrides the market-data endpoint when non-empty.
	DataURL string
	// Feed selects the data feed ("iex" or "sip"). Defaults to "iex".
	Feed string
	// RateLimitPerMin caps history and profile requests. Defaults to 200.
	RateLimitPerMin int
}

// rateLimitBurst covers the startup fan-out, where every watchlist symbol
// fires a history and a profile request at once.
const rateLimitBurst = 16

// Provider serves history, profiles and live quotes from Alpaca.
type Provider struct {
	md        *marketdata.Client
	trading   *alpacaapi.Client
	apiKey    string
	apiSecret string
	feed      string
	limiter   *util.RateLimiter
	retry     util.Retrier
}

// New creates a Provider with the given credentials and endpoints.
func New(opts Options) *Provider {
	mdOpts := marketdata.ClientOpts{
		APIKey:    opts.APIKey,
		APISecret: opts.APISecret,
	}
	if opts.DataURL != "" {
		mdOpts.BaseURL = opts.DataURL
	}

	tradingOpts := alpacaapi.ClientOpts{
		APIKey:    opts.APIKey,
		APISecret: opts.APISecret,
	}
	if opts.BaseURL != "" {
		tradingOpts.BaseURL = opts.BaseURL
	}

	feed := opts.Feed
	if feed == "" {
		feed = "iex"
	}
	perMin := opts.RateLimitPerMin
	if perMin <= 0 {
		perMin = 200
	}

	return &Provider{
		md:        marketdata.NewClient(mdOpts),
		trading:   alpacaapi.NewClient(tradingOpts),
		apiKey:    opts.APIKey,
		apiSecret: opts.APISecret,
		feed:      feed,
		limiter:   util.NewRateLimiter(perMin, rateLimitBurst),
	}
}

// barsRequest maps an interval to the Alpaca bar query for it. Intraday
// windows get finer timeframes so the chart keeps enough points to draw.
func (p *Provider) barsRequest(iv market.Interval, now time.Time) marketdata.GetBarsRequest {
	req := marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		End:       now,
		Feed:      marketdata.Feed(p.feed),
	}

	switch iv {
	case market.Interval1D:
		req.TimeFrame = marketdata.NewTimeFrame(5, marketdata.Min)
		req.Start = now.AddDate(0, 0, -1)
	case market.Interval5D:
		req.TimeFrame = marketdata.OneHour
		// Seven calendar days cover five trading days across a weekend.
		req.Start = now.AddDate(0, 0, -7)
	case market.IntervalYTD:
		req.Start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case market.IntervalMax:
		req.Start = now.AddDate(-20, 0, 0)
	default:
		req.Start = now.AddDate(0, 0, -iv.Days())
	}

	return req
}

// Bars fetches the historical series for one symbol and window.
func (p *Provider) Bars(ctx context.Context, symbol string, iv market.Interval) ([]provider.Bar, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := p.barsRequest(iv, time.Now())
	var alpacaBars []marketdata.Bar
	err := p.retry.Do(ctx, "GetBars "+symbol, func() error {
		var err error
		alpacaBars, err = p.md.GetBars(symbol, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s %s: %w", symbol, iv, err)
	}

	bars := make([]provider.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, provider.Bar{
			Timestamp: ab.Timestamp,
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    int64(ab.Volume),
		})
	}
	return bars, nil
}

// CompanyName resolves a symbol to its listed asset name.
func (p *Provider) CompanyName(ctx context.Context, symbol string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	asset, err := p.trading.GetAsset(symbol)
	if err != nil {
		return "", fmt.Errorf("GetAsset %s: %w", symbol, err)
	}
	return asset.Name, nil
}

// Stream subscribes to live trades for the given symbols and invokes fn for
// each one. It blocks until ctx is done (returning nil) or the connection
// terminates (returning the terminal error for the caller to retry).
func (p *Provider) Stream(ctx context.Context, symbols []string, fn func(provider.Quote)) error {
	c := stream.NewStocksClient(marketdata.Feed(p.feed),
		stream.WithCredentials(p.apiKey, p.apiSecret),
		stream.WithTrades(func(t stream.Trade) {
			fn(provider.Quote{
				Symbol: t.Symbol,
				Price:  t.Price,
				Time:   t.Timestamp,
			})
		}, symbols...),
	)

	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("connecting stream: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-c.Terminated():
		if err != nil {
			return fmt.Errorf("stream terminated: %w", err)
		}
		return nil
	}
}
