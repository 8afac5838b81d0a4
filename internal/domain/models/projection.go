package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Direction of a projected move relative to the current price.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Projection is a 48h linear-momentum point estimate.
type Projection struct {
	Price     decimal.Decimal `json:"price"`
	Direction Direction       `json:"direction"`
}

// UnknownReason explains why a time-to-target could not be estimated.
type UnknownReason string

const (
	ReasonZeroVelocity          UnknownReason = "zero_velocity"
	ReasonIncompatibleDirection UnknownReason = "incompatible_direction"
	ReasonReversalRequired      UnknownReason = "reversal_required"
	ReasonInsufficientData      UnknownReason = "insufficient_data"
)

// TimeEstimate is either a number of hours or an unknown with a reason.
type TimeEstimate struct {
	Hours  float64       `json:"hours,omitempty"`
	Reason UnknownReason `json:"reason,omitempty"`
}

// KnownEstimate wraps a computed number of hours.
func KnownEstimate(hours float64) TimeEstimate { return TimeEstimate{Hours: hours} }

// UnknownEstimate wraps an unknown result.
func UnknownEstimate(reason UnknownReason) TimeEstimate { return TimeEstimate{Reason: reason} }

// Known reports whether the estimate carries a number of hours.
func (e TimeEstimate) Known() bool { return e.Reason == "" }

// String renders the estimate on a human scale: months from 720h, days from 24h,
// hours with one decimal above 1h, minutes (at least 1) otherwise.
func (e TimeEstimate) String() string {
	if !e.Known() {
		switch e.Reason {
		case ReasonZeroVelocity:
			return "unknown (no movement)"
		case ReasonIncompatibleDirection:
			return "unknown (moving away)"
		case ReasonReversalRequired:
			return "unknown (needs reversal)"
		default:
			return "unknown (insufficient data)"
		}
	}

	h := e.Hours
	switch {
	case h >= 720:
		return plural(int(math.Round(h/720)), "month")
	case h >= 24:
		return plural(int(math.Round(h/24)), "day")
	case h > 1:
		return fmt.Sprintf("%.1f hours", h)
	default:
		m := int(math.Round(h * 60))
		if m < 1 {
			m = 1
		}
		return fmt.Sprintf("%d min", m)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
