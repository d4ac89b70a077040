// Package marketdata defines the wire-level tick record and the lock-free
// top-of-book order book that consumes it.
package marketdata

import "fmt"

// Side is the bid/ask side of a tick or a recommendation.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

func (s Side) String() string {
	if s == SideAsk {
		return "ask"
	}
	return "bid"
}

// Instrument ids. 1=spot/power, 2=futures/gas, 3=CO2 (spark-spread only).
// Unknown ids are dropped by the engine.
const (
	InstrumentSpot    uint8 = 1
	InstrumentFutures uint8 = 2
	InstrumentCO2     uint8 = 3
)

// PriceScale is the implicit fixed-point scale carried by Tick.PriceFP and
// by every order-book price slot: one unit = 1/PriceScale of a currency unit.
const PriceScale = 10000

// Tick is the 32-byte wire record read directly off the feed stream.
// Layout (little-endian): ts_ns(u64) price_fp(i64) qty(u32) side(u8)
// instrument_id(u8) pad(6 bytes). The struct below has the same field
// order and the same implicit end-padding (Go rounds struct size up to
// the alignment of its widest field, 8 bytes here), so sizeof(Tick) is
// exactly 32 bytes — the wire contract a feed adapter reads against.
//
// A feed adapter reads exactly 32 bytes per tick with a 100ms deadline;
// a short read or a deadline expiry are both "no tick available", never
// an error.
type Tick struct {
	TimestampNs  uint64
	PriceFP      int64
	Quantity     uint32
	Side         Side
	InstrumentID uint8
	_            [6]byte
}

// NewTick constructs a tick from unscaled price and validates the
// construction-time invariant price >= 0, panicking on a negative price.
func NewTick(timestampNs uint64, price float64, quantity uint32, side Side, instrumentID uint8) Tick {
	if price < 0 {
		panic("marketdata: tick price must be >= 0")
	}
	return Tick{
		TimestampNs:  timestampNs,
		PriceFP:      int64(price * PriceScale),
		Quantity:     quantity,
		Side:         side,
		InstrumentID: instrumentID,
	}
}

// PriceF64 returns the unscaled price.
func (t Tick) PriceF64() float64 {
	return float64(t.PriceFP) / PriceScale
}

func (t Tick) IsBid() bool { return t.Side == SideBid }

func (t Tick) String() string {
	return fmt.Sprintf("Tick{ts=%d %s price=%.4f qty=%d instrument=%d}",
		t.TimestampNs, t.Side, t.PriceF64(), t.Quantity, t.InstrumentID)
}
