package market

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownSymbol is returned when a mutation references a symbol the
	// store was never populated with. The symbol list is fixed at startup,
	// so hitting this indicates a wiring bug rather than a runtime
	// condition.
	ErrUnknownSymbol = errors.New("market: unknown symbol")

	// ErrSeriesLength is returned when the three parallel series passed to
	// ReplaceSeries do not have equal lengths.
	ErrSeriesLength = errors.New("market: series length mismatch")

	// ErrStaleEpoch is returned when a history result carries an epoch
	// older than the latest requested for the symbol. The result belongs
	// to a superseded interval selection and must be discarded.
	ErrStaleEpoch = errors.New("market: stale fetch epoch")
)

// Store maps symbols to their Ticker records, preserving insertion order for
// list display. All mutation goes through the engine worker; readers take
// deep-copied snapshots. The generation counter lets the render path skip
// snapshotting when nothing changed since the last frame.
type Store struct {
	mu      sync.RWMutex
	order   []string
	tickers map[string]*Ticker
	gen     uint64
}

// NewStore creates a store populated with one default record per symbol, in
// the given order. Symbols are assumed distinct; configuration guarantees
// uniqueness.
func NewStore(symbols []string) *Store {
	s := &Store{
		tickers: make(map[string]*Ticker, len(symbols)),
	}
	for _, sym := range symbols {
		s.order = append(s.order, sym)
		s.tickers[sym] = newTicker(sym)
	}
	return s
}

// Len returns the number of tracked symbols.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Symbols returns the tracked symbols in insertion order.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Generation returns the mutation counter. It increases on every applied
// change, so an unchanged value means a previous snapshot is still current.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Snapshot is a deep, point-in-time copy of the store handed to the render
// path.
type Snapshot struct {
	Tickers    []Ticker
	Generation uint64
}

// Ticker returns the snapshot record for symbol, or nil if absent.
func (sn Snapshot) Ticker(symbol string) *Ticker {
	for i := range sn.Tickers {
		if sn.Tickers[i].Symbol == symbol {
			return &sn.Tickers[i]
		}
	}
	return nil
}

// Snapshot deep-copies every record under the read lock. The copy shares no
// memory with the store, so callers may hold it across suspension points.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn := Snapshot{
		Tickers:    make([]Ticker, 0, len(s.order)),
		Generation: s.gen,
	}
	for _, sym := range s.order {
		sn.Tickers = append(sn.Tickers, s.tickers[sym].clone())
	}
	return sn
}

// ReplaceSeries swaps all three series of a ticker in one step. The epoch
// must match the latest one issued by BumpEpoch for the symbol; stale
// results are rejected with ErrStaleEpoch. On the first load (live price
// still at its zero sentinel) the live price is seeded from the last close;
// once the stream owns it, it is left alone. A successful replace clears a
// failed status.
func (s *Store) ReplaceSeries(symbol string, epoch uint64, prices []float64, dates []string, volumes []int64) error {
	if len(prices) != len(dates) || len(prices) != len(volumes) {
		return fmt.Errorf("%w: %d prices, %d dates, %d volumes",
			ErrSeriesLength, len(prices), len(dates), len(volumes))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickers[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if epoch != t.epoch {
		return fmt.Errorf("%w: %s epoch %d, latest %d", ErrStaleEpoch, symbol, epoch, t.epoch)
	}
	t.Prices = prices
	t.Dates = dates
	t.Volumes = volumes
	if t.LivePrice == 0 && len(prices) > 0 {
		t.LivePrice = prices[len(prices)-1]
	}
	t.Status = StatusOK
	t.LastError = ""
	s.gen++
	return nil
}

// SetLivePrice unconditionally overwrites the streamed price.
func (s *Store) SetLivePrice(symbol string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickers[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	t.LivePrice = price
	s.gen++
	return nil
}

// SetInterval overwrites the selected window. Triggering the matching fetch
// is the caller's job.
func (s *Store) SetInterval(symbol string, iv Interval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickers[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	t.Interval = iv
	s.gen++
	return nil
}

// SetProfile overwrites the display name.
func (s *Store) SetProfile(symbol, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickers[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	t.Name = name
	s.gen++
	return nil
}

// MarkFetchFailed records a fetch failure for inline display. The previous
// series and interval are retained.
func (s *Store) MarkFetchFailed(symbol, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickers[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	t.Status = StatusFailed
	t.LastError = msg
	s.gen++
	return nil
}

// BumpEpoch issues a new history request epoch for the symbol and marks the
// record as loading. Every spawned history fetch carries the epoch it was
// issued, and ReplaceSeries discards results from superseded requests.
func (s *Store) BumpEpoch(symbol string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickers[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	t.epoch++
	t.Status = StatusLoading
	s.gen++
	return t.epoch, nil
}

// Epoch returns the latest issued epoch for the symbol.
func (s *Store) Epoch(symbol string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickers[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return t.epoch, nil
}

// Interval returns the currently selected window for the symbol.
func (s *Store) Interval(symbol string) (Interval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickers[symbol]
	if !ok {
		return DefaultInterval, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return t.Interval, nil
}
