// Package provider defines the boundary to upstream market-data sources.
// Implementations fetch historical bars, resolve company profiles, and
// stream live quotes; the engine treats them as opaque asynchronous sources
// whose results re-enter the system as messages.
package provider

import (
	"context"
	"time"

	"github.com/bloatoo/tuinance/internal/market"
)

// Bar is a single historical sample.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Quote is one live price observation from the stream.
type Quote struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// History fetches historical bars for one symbol and window.
type History interface {
	Bars(ctx context.Context, symbol string, iv market.Interval) ([]Bar, error)
}

// Profiles resolves a symbol to its display name.
type Profiles interface {
	CompanyName(ctx context.Context, symbol string) (string, error)
}

// Streamer delivers live quotes for a set of symbols. Stream blocks until
// the subscription ends, invoking fn once per inbound quote; it returns nil
// on clean shutdown (ctx done) and an error when the stream drops, leaving
// reconnection to the caller.
type Streamer interface {
	Stream(ctx context.Context, symbols []string, fn func(Quote)) error
}

// DateLabel formats a bar timestamp the way the chart axis displays it.
func DateLabel(ts time.Time) string {
	return ts.Format("Jan _2 2006")
}
