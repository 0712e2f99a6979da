package market

import (
	"errors"
	"testing"
)

func TestNewStorePreservesOrder(t *testing.T) {
	s := NewStore([]string{"MSFT", "AAPL"})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	sn := s.Snapshot()
	if len(sn.Tickers) != 2 {
		t.Fatalf("snapshot has %d tickers, want 2", len(sn.Tickers))
	}
	if sn.Tickers[0].Symbol != "MSFT" || sn.Tickers[1].Symbol != "AAPL" {
		t.Errorf("snapshot order = [%s %s], want [MSFT AAPL]",
			sn.Tickers[0].Symbol, sn.Tickers[1].Symbol)
	}
	for _, tk := range sn.Tickers {
		if tk.Interval != DefaultInterval {
			t.Errorf("%s interval = %v, want default %v", tk.Symbol, tk.Interval, DefaultInterval)
		}
		if len(tk.Prices) != 0 || len(tk.Dates) != 0 || len(tk.Volumes) != 0 {
			t.Errorf("%s has non-empty series before any load", tk.Symbol)
		}
		if tk.Name != "" {
			t.Errorf("%s has name %q before profile load", tk.Symbol, tk.Name)
		}
	}
}

func TestReplaceSeriesLengthMismatch(t *testing.T) {
	s := NewStore([]string{"MSFT"})
	epoch, _ := s.BumpEpoch("MSFT")

	err := s.ReplaceSeries("MSFT", epoch, []float64{1, 2}, []string{"Jan 1"}, []int64{10, 20})
	if !errors.Is(err, ErrSeriesLength) {
		t.Fatalf("err = %v, want ErrSeriesLength", err)
	}

	// The failed call must not have touched any of the three series.
	sn := s.Snapshot()
	tk := sn.Ticker("MSFT")
	if len(tk.Prices) != 0 || len(tk.Dates) != 0 || len(tk.Volumes) != 0 {
		t.Errorf("series partially written after rejected replace")
	}
}

func TestReplaceSeriesSeedsLivePriceOnce(t *testing.T) {
	s := NewStore([]string{"MSFT"})
	epoch, _ := s.BumpEpoch("MSFT")

	if err := s.ReplaceSeries("MSFT", epoch, []float64{10, 20, 30}, []string{"a", "b", "c"}, []int64{1, 2, 3}); err != nil {
		t.Fatalf("ReplaceSeries: %v", err)
	}
	tk := s.Snapshot().Ticker("MSFT")
	if tk.LivePrice != 30 {
		t.Errorf("first load seeded live price %v, want 30 (last close)", tk.LivePrice)
	}

	// Once the stream owns the live price, a reload must not clobber it.
	if err := s.SetLivePrice("MSFT", 123.45); err != nil {
		t.Fatalf("SetLivePrice: %v", err)
	}
	epoch, _ = s.BumpEpoch("MSFT")
	if err := s.ReplaceSeries("MSFT", epoch, []float64{40, 50}, []string{"d", "e"}, []int64{4, 5}); err != nil {
		t.Fatalf("ReplaceSeries: %v", err)
	}
	tk = s.Snapshot().Ticker("MSFT")
	if tk.LivePrice != 123.45 {
		t.Errorf("reload overwrote live price: got %v, want 123.45", tk.LivePrice)
	}
}

func TestReplaceSeriesRejectsStaleEpoch(t *testing.T) {
	s := NewStore([]string{"MSFT"})

	older, _ := s.BumpEpoch("MSFT") // fetch for the superseded interval
	newer, _ := s.BumpEpoch("MSFT") // fetch for the current interval

	// The newer result lands first.
	if err := s.ReplaceSeries("MSFT", newer, []float64{2}, []string{"b"}, []int64{2}); err != nil {
		t.Fatalf("ReplaceSeries(newer): %v", err)
	}

	// The stale result arrives late and must be discarded.
	err := s.ReplaceSeries("MSFT", older, []float64{1}, []string{"a"}, []int64{1})
	if !errors.Is(err, ErrStaleEpoch) {
		t.Fatalf("err = %v, want ErrStaleEpoch", err)
	}
	tk := s.Snapshot().Ticker("MSFT")
	if len(tk.Prices) != 1 || tk.Prices[0] != 2 {
		t.Errorf("stale result overwrote the newer series: %v", tk.Prices)
	}
}

func TestSnapshotTickerLookup(t *testing.T) {
	s := NewStore([]string{"MSFT", "AAPL"})

	// Lookup must work on a snapshot chained straight off the store.
	if tk := s.Snapshot().Ticker("AAPL"); tk == nil || tk.Symbol != "AAPL" {
		t.Fatalf("chained lookup returned %+v, want AAPL record", tk)
	}
	if tk := s.Snapshot().Ticker("TSLA"); tk != nil {
		t.Errorf("lookup of untracked symbol returned %+v, want nil", tk)
	}
}

func TestSetLivePriceOverwrites(t *testing.T) {
	s := NewStore([]string{"MSFT"})
	if err := s.SetLivePrice("MSFT", 100); err != nil {
		t.Fatalf("SetLivePrice: %v", err)
	}
	if err := s.SetLivePrice("MSFT", 123.45); err != nil {
		t.Fatalf("SetLivePrice: %v", err)
	}
	if got := s.Snapshot().Ticker("MSFT").LivePrice; got != 123.45 {
		t.Errorf("LivePrice = %v, want 123.45", got)
	}
}

func TestRealtimePriceFallsBackToLastClose(t *testing.T) {
	tk := Ticker{Prices: []float64{10, 20, 30}}
	if got := tk.RealtimePrice(); got != 30 {
		t.Errorf("RealtimePrice with sentinel live price = %v, want 30", got)
	}
	tk.LivePrice = 123.45
	if got := tk.RealtimePrice(); got != 123.45 {
		t.Errorf("RealtimePrice after tick = %v, want 123.45", got)
	}

	var empty Ticker
	if got := empty.RealtimePrice(); got != 0 {
		t.Errorf("RealtimePrice with no data = %v, want 0", got)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := NewStore([]string{"MSFT"})
	epoch, _ := s.BumpEpoch("MSFT")
	if err := s.ReplaceSeries("MSFT", epoch, []float64{1, 2}, []string{"a", "b"}, []int64{1, 2}); err != nil {
		t.Fatalf("ReplaceSeries: %v", err)
	}

	sn := s.Snapshot()
	sn.Tickers[0].Prices[0] = 999
	sn.Tickers[0].Name = "mutated"

	after := s.Snapshot()
	if after.Tickers[0].Prices[0] != 1 {
		t.Errorf("snapshot mutation leaked into store: price = %v", after.Tickers[0].Prices[0])
	}
	if after.Tickers[0].Name != "" {
		t.Errorf("snapshot mutation leaked into store: name = %q", after.Tickers[0].Name)
	}
}

func TestGenerationAdvancesOnMutation(t *testing.T) {
	s := NewStore([]string{"MSFT"})
	g0 := s.Generation()

	if err := s.SetLivePrice("MSFT", 1); err != nil {
		t.Fatalf("SetLivePrice: %v", err)
	}
	g1 := s.Generation()
	if g1 <= g0 {
		t.Errorf("generation did not advance: %d -> %d", g0, g1)
	}
	if s.Generation() != g1 {
		t.Errorf("generation advanced without a mutation")
	}
}

func TestMarkFetchFailedRetainsSeries(t *testing.T) {
	s := NewStore([]string{"MSFT"})
	epoch, _ := s.BumpEpoch("MSFT")
	if err := s.ReplaceSeries("MSFT", epoch, []float64{1}, []string{"a"}, []int64{1}); err != nil {
		t.Fatalf("ReplaceSeries: %v", err)
	}

	if err := s.MarkFetchFailed("MSFT", "provider unreachable"); err != nil {
		t.Fatalf("MarkFetchFailed: %v", err)
	}
	tk := s.Snapshot().Ticker("MSFT")
	if tk.Status != StatusFailed || tk.LastError != "provider unreachable" {
		t.Errorf("status = %v %q, want failed with message", tk.Status, tk.LastError)
	}
	if len(tk.Prices) != 1 {
		t.Errorf("failure dropped the previous series")
	}

	// A later successful replace clears the failure.
	epoch, _ = s.BumpEpoch("MSFT")
	if err := s.ReplaceSeries("MSFT", epoch, []float64{2}, []string{"b"}, []int64{2}); err != nil {
		t.Fatalf("ReplaceSeries: %v", err)
	}
	tk = s.Snapshot().Ticker("MSFT")
	if tk.Status != StatusOK || tk.LastError != "" {
		t.Errorf("successful replace left status %v %q", tk.Status, tk.LastError)
	}
}

func TestUnknownSymbolErrors(t *testing.T) {
	s := NewStore([]string{"MSFT"})

	if err := s.SetLivePrice("TSLA", 1); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("SetLivePrice unknown: err = %v, want ErrUnknownSymbol", err)
	}
	if err := s.SetInterval("TSLA", Interval1Y); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("SetInterval unknown: err = %v, want ErrUnknownSymbol", err)
	}
	if err := s.SetProfile("TSLA", "Tesla"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("SetProfile unknown: err = %v, want ErrUnknownSymbol", err)
	}
	if _, err := s.BumpEpoch("TSLA"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("BumpEpoch unknown: err = %v, want ErrUnknownSymbol", err)
	}
	if err := s.ReplaceSeries("TSLA", 1, nil, nil, nil); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("ReplaceSeries unknown: err = %v, want ErrUnknownSymbol", err)
	}
}
