package marketdata

import "sync/atomic"

const bookDepth = 10

// cache-line padding (64 bytes) so that independently-updated slots never
// share a cache line between a writer thread and a reader thread, and so
// adjacent bid/ask slots do not false-share with each other.
type paddedInt64 struct {
	v int64
	_ [56]byte
}

type paddedUint64 struct {
	v uint64
	_ [56]byte
}

// Level is one populated price/size pair returned by GetBids/GetAsks.
type Level struct {
	Price float64
	Size  uint64
}

// OrderBook is a fixed 10-level top-of-book ladder for one instrument.
// Each side's price and size arrays are independent atomics; readers may
// observe a torn pair (new price, old size) for a given slot — this is an
// accepted trade-off for the top-of-book use case, not a bug. The book
// does not provide a seqlock-style atomic full-ladder snapshot.
type OrderBook struct {
	instrumentID uint8
	bidPrices    [bookDepth]paddedInt64
	bidSizes     [bookDepth]paddedUint64
	askPrices    [bookDepth]paddedInt64
	askSizes     [bookDepth]paddedUint64
	lastUpdateNs paddedUint64
	sequence     paddedUint64
}

// NewOrderBook constructs an empty order book for the given instrument id.
func NewOrderBook(instrumentID uint8) *OrderBook {
	return &OrderBook{instrumentID: instrumentID}
}

func (b *OrderBook) InstrumentID() uint8 { return b.instrumentID }

// UpdateBid publishes price/size/timestamp for a bid level and increments
// the sequence counter. Out-of-range levels are silently dropped (public
// contract). Cost budget: ~50-60ns.
func (b *OrderBook) UpdateBid(level int, priceFP int64, size uint64, tsNs uint64) {
	if level < 0 || level >= bookDepth {
		return
	}
	atomic.StoreInt64(&b.bidPrices[level].v, priceFP)
	atomic.StoreUint64(&b.bidSizes[level].v, size)
	atomic.StoreUint64(&b.lastUpdateNs.v, tsNs)
	atomic.AddUint64(&b.sequence.v, 1)
}

// UpdateAsk publishes price/size/timestamp for an ask level. See UpdateBid.
func (b *OrderBook) UpdateAsk(level int, priceFP int64, size uint64, tsNs uint64) {
	if level < 0 || level >= bookDepth {
		return
	}
	atomic.StoreInt64(&b.askPrices[level].v, priceFP)
	atomic.StoreUint64(&b.askSizes[level].v, size)
	atomic.StoreUint64(&b.lastUpdateNs.v, tsNs)
	atomic.AddUint64(&b.sequence.v, 1)
}

// BestBid returns the unscaled top-of-book bid price and size. ~8-10ns.
func (b *OrderBook) BestBid() (float64, uint64) {
	p := atomic.LoadInt64(&b.bidPrices[0].v)
	s := atomic.LoadUint64(&b.bidSizes[0].v)
	return float64(p) / PriceScale, s
}

// BestAsk returns the unscaled top-of-book ask price and size.
func (b *OrderBook) BestAsk() (float64, uint64) {
	p := atomic.LoadInt64(&b.askPrices[0].v)
	s := atomic.LoadUint64(&b.askSizes[0].v)
	return float64(p) / PriceScale, s
}

// MidPrice is (bid+ask)/2. If one side is unpopulated (price 0), the
// result is implementation-defined: half of the populated side. Callers
// that cannot tolerate this (e.g. strategy samplers feeding a statistics
// window) must check both sides are populated before calling, or accept
// that early, one-sided observations will skew their statistics.
func (b *OrderBook) MidPrice() float64 {
	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	switch {
	case bid == 0 && ask == 0:
		return 0
	case bid == 0:
		return ask / 2
	case ask == 0:
		return bid / 2
	default:
		return (bid + ask) / 2
	}
}

// BothSidesPopulated reports whether best bid and best ask are both
// nonzero — the guard a caller should use before sampling MidPrice for a
// statistical window, per the design note above.
func (b *OrderBook) BothSidesPopulated() bool {
	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	return bid != 0 && ask != 0
}

// SpreadBps returns (ask-bid)/mid in basis points, or 0 if mid <= 0.
func (b *OrderBook) SpreadBps() float64 {
	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	mid := b.MidPrice()
	if mid <= 0 {
		return 0
	}
	return (ask - bid) / mid * PriceScale
}

// Sequence returns the monotonically non-decreasing write counter. Its
// observed value is a lower bound on the number of successful writes.
func (b *OrderBook) Sequence() uint64 {
	return atomic.LoadUint64(&b.sequence.v)
}

// LastUpdateNs returns the timestamp carried by the most recent write.
func (b *OrderBook) LastUpdateNs() uint64 {
	return atomic.LoadUint64(&b.lastUpdateNs.v)
}

func snapshot(prices *[bookDepth]paddedInt64, sizes *[bookDepth]paddedUint64, n int) []Level {
	if n > bookDepth {
		n = bookDepth
	}
	levels := make([]Level, 0, n)
	for i := 0; i < n; i++ {
		p := atomic.LoadInt64(&prices[i].v)
		if p == 0 {
			continue
		}
		s := atomic.LoadUint64(&sizes[i].v)
		levels = append(levels, Level{Price: float64(p) / PriceScale, Size: s})
	}
	return levels
}

// GetBids returns up to min(n,10) populated bid levels, omitting
// unpopulated (price==0) slots.
func (b *OrderBook) GetBids(n int) []Level {
	return snapshot(&b.bidPrices, &b.bidSizes, n)
}

// GetAsks returns up to min(n,10) populated ask levels, omitting
// unpopulated (price==0) slots.
func (b *OrderBook) GetAsks(n int) []Level {
	return snapshot(&b.askPrices, &b.askSizes, n)
}
