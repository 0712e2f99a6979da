package market

// Status reflects the outcome of the most recent fetch touching a ticker.
type Status int

const (
	// StatusLoading marks a ticker whose history fetch is in flight.
	StatusLoading Status = iota
	// StatusOK marks a ticker with a successfully loaded series.
	StatusOK
	// StatusFailed marks a ticker whose last fetch failed; the previous
	// series is retained.
	StatusFailed
)

// Ticker is one tracked market symbol. Instances inside the Store are
// mutated only by the engine worker; everyone else sees copies handed out by
// Store.Snapshot.
type Ticker struct {
	// Symbol is the immutable identifier and unique store key.
	Symbol string

	// Name is the display name, set asynchronously by the profile fetch.
	// Empty until the fetch completes; renders must tolerate that.
	Name string

	// Interval is the currently selected historical window.
	Interval Interval

	// Prices, Dates and Volumes are parallel series of equal length,
	// replaced wholesale when a history fetch completes.
	Prices  []float64
	Dates   []string
	Volumes []int64

	// LivePrice is the most recent streamed quote. Zero means "no tick
	// yet"; RealtimePrice falls back to the last historical close.
	LivePrice float64

	// Status and LastError describe the most recent fetch outcome for
	// inline display.
	Status    Status
	LastError string

	// epoch is the latest history request epoch issued for this symbol.
	// Results tagged with an older epoch are stale and get discarded.
	epoch uint64
}

func newTicker(symbol string) *Ticker {
	return &Ticker{
		Symbol:   symbol,
		Interval: DefaultInterval,
	}
}

// RealtimePrice returns the streamed live price, falling back to the last
// historical close before the first tick arrives. Zero when no data exists
// at all.
func (t *Ticker) RealtimePrice() float64 {
	if t.LivePrice != 0 {
		return t.LivePrice
	}
	if n := len(t.Prices); n > 0 {
		return t.Prices[n-1]
	}
	return 0
}

// ChangePct returns the percent move of the realtime price against the first
// sample of the loaded series, or 0 when the series is empty.
func (t *Ticker) ChangePct() float64 {
	if len(t.Prices) == 0 || t.Prices[0] == 0 {
		return 0
	}
	return (t.RealtimePrice() - t.Prices[0]) / t.Prices[0] * 100
}

// clone returns a deep copy safe to hand outside the store lock.
func (t *Ticker) clone() Ticker {
	c := *t
	c.Prices = append([]float64(nil), t.Prices...)
	c.Dates = append([]string(nil), t.Dates...)
	c.Volumes = append([]int64(nil), t.Volumes...)
	return c
}
