// Package engine owns the ticker store and the message path that feeds it.
// Fetch tasks, the price stream and the input layer are all producers on a
// single bus; one worker loop consumes it and is the only writer of the
// store. That single-writer funnel is what keeps the per-ticker series
// consistent without any per-field locking.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bloatoo/tuinance/internal/market"
	"github.com/bloatoo/tuinance/internal/provider"
)

const (
	busBuffer = 64

	streamBackoffBase = time.Second
	streamBackoffMax  = 30 * time.Second
	// streamStableAfter resets the backoff once a connection has held this
	// long.
	streamStableAfter = time.Minute
)

// Engine wires the store, the providers and the bus together.
type Engine struct {
	store    *market.Store
	history  provider.History
	profiles provider.Profiles
	streamer provider.Streamer
	log      *slog.Logger

	msgs chan Message
	quit chan struct{}

	closeOnce  sync.Once
	streamOnce sync.Once
}

// New creates an engine over the given store and providers.
func New(store *market.Store, history provider.History, profiles provider.Profiles, streamer provider.Streamer, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:    store,
		history:  history,
		profiles: profiles,
		streamer: streamer,
		log:      log.With("component", "engine"),
		msgs:     make(chan Message, busBuffer),
		quit:     make(chan struct{}),
	}
}

// Store exposes the underlying store for snapshot reads.
func (e *Engine) Store() *market.Store {
	return e.store
}

// Send enqueues a message for the worker. After Close it becomes a no-op
// and reports false, so late fetch results from abandoned tasks are
// silently dropped instead of blocking or panicking.
func (e *Engine) Send(msg Message) bool {
	select {
	case <-e.quit:
		return false
	case e.msgs <- msg:
		return true
	}
}

// Close shuts the bus down. In-flight fetch tasks finish on their own and
// their sends become no-ops.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.quit)
	})
}

// Run is the worker loop: it blocks on the bus and applies each message to
// the store in arrival order. It returns nil when Close is called, or the
// context error when ctx ends first.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quit:
			return nil
		case msg := <-e.msgs:
			e.apply(ctx, msg)
		}
	}
}

// apply dispatches one message to the matching store operation. Store
// lookup failures mean a message referenced a symbol outside the fixed
// configuration; that is a wiring bug, logged loudly, never fatal to the
// process.
func (e *Engine) apply(ctx context.Context, msg Message) {
	switch m := msg.(type) {
	case Start:
		for _, sym := range e.store.Symbols() {
			e.requestHistory(ctx, sym)
			e.requestProfile(ctx, sym)
		}
		e.streamOnce.Do(func() {
			go e.superviseStream(ctx)
		})

	case SetInterval:
		if err := e.store.SetInterval(m.Symbol, m.Interval); err != nil {
			e.log.Error("set interval", "symbol", m.Symbol, "error", err)
			return
		}
		e.requestHistory(ctx, m.Symbol)

	case HistoryLoaded:
		err := e.store.ReplaceSeries(m.Symbol, m.Epoch, m.Prices, m.Dates, m.Volumes)
		switch {
		case errors.Is(err, market.ErrStaleEpoch):
			e.log.Debug("discarding superseded history", "symbol", m.Symbol, "epoch", m.Epoch)
		case err != nil:
			e.log.Error("replace series", "symbol", m.Symbol, "error", err)
		}

	case HistoryFailed:
		if latest, err := e.store.Epoch(m.Symbol); err == nil && latest != m.Epoch {
			// A newer fetch is already in flight; its outcome wins.
			return
		}
		e.log.Warn("history fetch failed", "symbol", m.Symbol, "error", m.Err)
		if err := e.store.MarkFetchFailed(m.Symbol, m.Err.Error()); err != nil {
			e.log.Error("mark fetch failed", "symbol", m.Symbol, "error", err)
		}

	case ProfileLoaded:
		if err := e.store.SetProfile(m.Symbol, m.Name); err != nil {
			e.log.Error("set profile", "symbol", m.Symbol, "error", err)
		}

	case ProfileFailed:
		// The list renders fine with an empty name; nothing to roll back.
		e.log.Warn("profile fetch failed", "symbol", m.Symbol, "error", m.Err)

	case PriceTick:
		if err := e.store.SetLivePrice(m.Symbol, m.Price); err != nil {
			e.log.Error("set live price", "symbol", m.Symbol, "error", err)
		}
	}
}

// requestHistory issues a new epoch for the symbol and spawns the fetch
// task. Running on the worker path keeps epoch allocation strictly ordered
// with the interval changes that caused it.
func (e *Engine) requestHistory(ctx context.Context, symbol string) {
	epoch, err := e.store.BumpEpoch(symbol)
	if err != nil {
		e.log.Error("bump epoch", "symbol", symbol, "error", err)
		return
	}
	iv, err := e.store.Interval(symbol)
	if err != nil {
		e.log.Error("read interval", "symbol", symbol, "error", err)
		return
	}

	go func() {
		bars, err := e.history.Bars(ctx, symbol, iv)
		if err != nil {
			e.Send(HistoryFailed{Symbol: symbol, Epoch: epoch, Err: err})
			return
		}

		prices := make([]float64, 0, len(bars))
		dates := make([]string, 0, len(bars))
		volumes := make([]int64, 0, len(bars))
		for _, b := range bars {
			prices = append(prices, b.Close)
			dates = append(dates, provider.DateLabel(b.Timestamp))
			volumes = append(volumes, b.Volume)
		}
		e.Send(HistoryLoaded{
			Symbol:  symbol,
			Epoch:   epoch,
			Prices:  prices,
			Dates:   dates,
			Volumes: volumes,
		})
	}()
}

// requestProfile spawns the one-shot display-name fetch.
func (e *Engine) requestProfile(ctx context.Context, symbol string) {
	go func() {
		name, err := e.profiles.CompanyName(ctx, symbol)
		if err != nil {
			e.Send(ProfileFailed{Symbol: symbol, Err: err})
			return
		}
		e.Send(ProfileLoaded{Symbol: symbol, Name: name})
	}()
}

// superviseStream keeps the quote subscription alive for the process
// lifetime, reconnecting with exponential backoff when it drops.
func (e *Engine) superviseStream(ctx context.Context) {
	symbols := e.store.Symbols()
	backoff := streamBackoffBase

	for {
		started := time.Now()
		err := e.streamer.Stream(ctx, symbols, func(q provider.Quote) {
			e.Send(PriceTick{Symbol: q.Symbol, Price: q.Price})
		})

		if ctx.Err() != nil {
			return
		}
		select {
		case <-e.quit:
			return
		default:
		}

		if time.Since(started) >= streamStableAfter {
			backoff = streamBackoffBase
		}
		e.log.Warn("price stream dropped, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return
		case <-e.quit:
			return
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > streamBackoffMax {
			backoff = streamBackoffMax
		}
	}
}
