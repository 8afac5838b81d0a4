package signals

import (
	"CryptoPulse/internal/domain/models"
	"CryptoPulse/internal/domain/service"
)

// Rule is one row of an ordered decision table.
type Rule struct {
	Kind   models.SignalKind
	Label  string
	Action models.SignalAction
	Match  func(c24, c7 float64) bool
}

// DefaultRules is the canonical signal table in priority order.
// Ranges overlap on purpose; the first match wins.
var DefaultRules = []Rule{
	{models.SignalTakeProfit, "SELL! (FOMO)", models.ActionSell, func(c24, c7 float64) bool {
		return c24 > 10.0 && c7 > 15.0
	}},
	{models.SignalBullTrap, "Bull trap", models.ActionWarn, func(c24, c7 float64) bool {
		return c24 > 6.0 && c7 < 0.0
	}},
	{models.SignalCapitulation, "Capitulation / panic", models.ActionWarn, func(c24, c7 float64) bool {
		return c24 < -8.0 && c7 < -15.0
	}},
	{models.SignalReversal, "V reversal (buy)", models.ActionBuy, func(c24, c7 float64) bool {
		return c24 > 4.0 && c7 < -5.0
	}},
	{models.SignalBreakout, "Bullish breakout (buy)", models.ActionBuy, func(c24, c7 float64) bool {
		return c24 > 5.0 && c7 > 3.0 && c7 < 10.0
	}},
	{models.SignalDipBuy, "BUY! (DIP)", models.ActionBuy, func(c24, c7 float64) bool {
		return c24 < -4.0 && c7 > 0.0
	}},
	{models.SignalAccumulation, "Long-term accumulation", models.ActionBuy, func(c24, c7 float64) bool {
		return c24 > -4.0 && c24 < -1.0 && c7 < -10.0
	}},
	{models.SignalHealthyMomentum, "Healthy momentum", models.ActionHold, func(c24, c7 float64) bool {
		return c24 > 2.0 && c7 > 8.0
	}},
	{models.SignalCorrection, "Short-term correction", models.ActionWarn, func(c24, c7 float64) bool {
		return c24 >= -4.0 && c24 < -2.0 && c7 > 10.0
	}},
	{models.SignalRange, "Range / consolidation", models.ActionHold, func(c24, c7 float64) bool {
		return c24 >= -1.5 && c24 <= 1.5 && c7 >= -3.0 && c7 <= 3.0
	}},
	{models.SignalStable, "Stable", models.ActionHold, func(c24, _ float64) bool {
		return c24 >= -1.0 && c24 <= 1.0
	}},
}

// Classifier evaluates an ordered rule table against a quote's change percentages.
type Classifier struct {
	rules []Rule
}

var _ service.SignalClassifier = (*Classifier)(nil)

// NewClassifier builds a classifier over rules, or DefaultRules when none are given.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the signal of the first matching rule, or nil when an input is
// absent or no rule matches.
func (c *Classifier) Classify(change24h, change7d *float64) *models.Signal {
	if change24h == nil || change7d == nil {
		return nil
	}
	for i, r := range c.rules {
		if r.Match(*change24h, *change7d) {
			return &models.Signal{
				Kind:   r.Kind,
				Label:  r.Label,
				Rank:   i + 1,
				Action: r.Action,
			}
		}
	}
	return nil
}
