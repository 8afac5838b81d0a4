package models

// SignalKind identifies one row of the classification decision table.
type SignalKind string

const (
	SignalTakeProfit      SignalKind = "take_profit"
	SignalBullTrap        SignalKind = "bull_trap"
	SignalCapitulation    SignalKind = "capitulation"
	SignalReversal        SignalKind = "reversal"
	SignalBreakout        SignalKind = "breakout"
	SignalDipBuy          SignalKind = "dip_buy"
	SignalAccumulation    SignalKind = "accumulation"
	SignalHealthyMomentum SignalKind = "healthy_momentum"
	SignalCorrection      SignalKind = "correction"
	SignalRange           SignalKind = "range"
	SignalStable          SignalKind = "stable"
)

// SignalAction is the coarse intent of a signal, used for colouring and metric labels.
type SignalAction string

const (
	ActionSell SignalAction = "sell"
	ActionBuy  SignalAction = "buy"
	ActionWarn SignalAction = "warn"
	ActionHold SignalAction = "hold"
)

// Signal is the result of classifying a quote's change percentages.
// Rank is the 1-based position of the matching rule; lower wins.
type Signal struct {
	Kind   SignalKind   `json:"kind"`
	Label  string       `json:"label"`
	Rank   int          `json:"rank"`
	Action SignalAction `json:"action"`
}

// IsDipBuy reports whether the signal is the one that produces suggestions.
func (s Signal) IsDipBuy() bool { return s.Kind == SignalDipBuy }

// SentimentKind identifies a technical-sentiment bucket.
type SentimentKind string

const (
	SentimentStrongBuy         SentimentKind = "strong_buy"
	SentimentBuy               SentimentKind = "buy"
	SentimentStrongSell        SentimentKind = "strong_sell"
	SentimentSell              SentimentKind = "sell"
	SentimentNeutral           SentimentKind = "neutral"
	SentimentNeutralOverbought SentimentKind = "neutral_overbought"
)

// Sentiment is an informational momentum summary. It never gates suggestions.
type Sentiment struct {
	Kind  SentimentKind `json:"kind"`
	Label string        `json:"label"`
}
