package engine

import "github.com/bloatoo/tuinance/internal/market"

// Message is a command on the engine bus. Producers (fetch tasks, the price
// stream, the input layer) never touch the store; they enqueue one of these
// and the worker applies it.
type Message interface {
	message()
}

// Start triggers the initial history and profile fetch for every tracked
// symbol and brings up the price stream.
type Start struct{}

// SetInterval applies a new window to one ticker. The worker spawns the
// matching history fetch when it processes the message, so the displayed
// label always changes before any fetched data can land.
type SetInterval struct {
	Symbol   string
	Interval market.Interval
}

// HistoryLoaded carries a completed history fetch. Epoch identifies which
// request produced it; results from superseded requests are discarded.
type HistoryLoaded struct {
	Symbol  string
	Epoch   uint64
	Prices  []float64
	Dates   []string
	Volumes []int64
}

// HistoryFailed reports a failed history fetch. The record keeps its
// previous series and surfaces the failure inline.
type HistoryFailed struct {
	Symbol string
	Epoch  uint64
	Err    error
}

// ProfileLoaded carries a resolved display name.
type ProfileLoaded struct {
	Symbol string
	Name   string
}

// ProfileFailed reports a failed profile fetch. The name stays empty.
type ProfileFailed struct {
	Symbol string
	Err    error
}

// PriceTick carries one live quote from the stream.
type PriceTick struct {
	Symbol string
	Price  float64
}

func (Start) message()         {}
func (SetInterval) message()   {}
func (HistoryLoaded) message() {}
func (HistoryFailed) message() {}
func (ProfileLoaded) message() {}
func (ProfileFailed) message() {}
func (PriceTick) message()     {}
