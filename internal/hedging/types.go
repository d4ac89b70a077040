// Package hedging implements the strategy overlays composed by the engine
// in package engine: the delta hedger, minimum-variance hedge ratio,
// mean-reversion, and spark-spread strategies.
package hedging

import (
	"time"

	"github.com/google/uuid"
	"github.com/quantcore/hedge-engine/internal/marketdata"
)

// Urgency classifies how quickly a recommendation should be acted on.
// Emergency is a third tier above Normal/High, raised when a recommendation
// crosses a materially larger threshold than an ordinary rehedge.
type Urgency uint8

const (
	UrgencyNormal Urgency = iota
	UrgencyHigh
	UrgencyEmergency
)

func (u Urgency) String() string {
	switch u {
	case UrgencyHigh:
		return "high"
	case UrgencyEmergency:
		return "emergency"
	default:
		return "normal"
	}
}

// HedgeRecommendation is a single proposed hedge action. Reason is a
// human-readable annotation trail built up as strategies compose their
// adjustments (see engine.GetHedgeRecommendation).
type HedgeRecommendation struct {
	ID        uuid.UUID
	Side      marketdata.Side
	Price     float64
	Quantity  float64
	Urgency   Urgency
	Reason    string
	CreatedAt time.Time
}

func newRecommendation(side marketdata.Side, price, quantity float64, urgency Urgency, reason string) HedgeRecommendation {
	return HedgeRecommendation{
		ID:        uuid.New(),
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Urgency:   urgency,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
}
