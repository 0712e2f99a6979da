// Package replay implements the provider interfaces with a deterministic
// random walk, so the dashboard runs without credentials or a network. Each
// symbol gets its own seeded walk, making runs reproducible.
package replay

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/bloatoo/tuinance/internal/market"
	"github.com/bloatoo/tuinance/internal/provider"
)

// Compile-time interface checks.
var (
	_ provider.History  = (*Provider)(nil)
	_ provider.Profiles = (*Provider)(nil)
	_ provider.Streamer = (*Provider)(nil)
)

// Provider generates synthetic market data.
type Provider struct {
	// TickEvery is the spacing between streamed quotes. Defaults to one
	// second.
	TickEvery time.Duration

	mu   sync.Mutex
	last map[string]float64 // latest walked price per symbol
}

// New creates a replay provider.
func New() *Provider {
	return &Provider{
		TickEvery: time.Second,
		last:      make(map[string]float64),
	}
}

// seed derives a stable per-symbol seed so the same symbol always replays
// the same walk.
func seed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

// points returns how many samples a window is rendered with.
func points(iv market.Interval) int {
	switch iv {
	case market.Interval1D:
		return 78 // 5-minute bars over a trading day
	case market.Interval5D:
		return 35 // hourly bars over five trading days
	case market.IntervalYTD:
		return 170
	case market.IntervalMax:
		return 500
	default:
		return iv.Days()
	}
}

// Bars produces a seeded random walk ending today.
func (p *Provider) Bars(_ context.Context, symbol string, iv market.Interval) ([]provider.Bar, error) {
	rng := rand.New(rand.NewSource(seed(symbol)))
	n := points(iv)

	price := 20 + rng.Float64()*480
	start := time.Now().AddDate(0, 0, -n)

	bars := make([]provider.Bar, 0, n)
	for i := 0; i < n; i++ {
		open := price
		price *= 1 + (rng.Float64()-0.5)*0.04
		high := open
		if price > high {
			high = price
		}
		low := open
		if price < low {
			low = price
		}
		bars = append(bars, provider.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      high * 1.005,
			Low:       low * 0.995,
			Close:     price,
			Volume:    int64(1_000_000 + rng.Intn(9_000_000)),
		})
	}

	p.mu.Lock()
	p.last[symbol] = price
	p.mu.Unlock()

	return bars, nil
}

// CompanyName labels every symbol as simulated.
func (p *Provider) CompanyName(_ context.Context, symbol string) (string, error) {
	return symbol + " (simulated)", nil
}

// Stream emits one quote per symbol every TickEvery, continuing each
// symbol's walk from its last fetched price. It returns nil when ctx ends.
func (p *Provider) Stream(ctx context.Context, symbols []string, fn func(provider.Quote)) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	every := p.TickEvery
	if every <= 0 {
		every = time.Second
	}
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tick.C:
			for _, sym := range symbols {
				p.mu.Lock()
				price, ok := p.last[sym]
				if !ok {
					price = 20 + rng.Float64()*480
				}
				price *= 1 + (rng.Float64()-0.5)*0.002
				p.last[sym] = price
				p.mu.Unlock()

				fn(provider.Quote{Symbol: sym, Price: price, Time: now})
			}
		}
	}
}
