package models

import "time"

// AssetReport holds every value derived for one quote during a tick.
// Delta is the percentage change against the previous tick's price.
type AssetReport struct {
	Quote      Quote       `json:"quote"`
	Signal     *Signal     `json:"signal,omitempty"`
	Sentiment  *Sentiment  `json:"sentiment,omitempty"`
	Projection *Projection `json:"projection,omitempty"`
	Delta      *float64    `json:"delta,omitempty"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
}

// TickReport is the outcome of one polling tick.
type TickReport struct {
	Tick        uint64        `json:"tick"`
	At          time.Time     `json:"at"`
	Currency    string        `json:"currency"`
	Watchlist   []string      `json:"watchlist"`
	Rows        []AssetReport `json:"rows"`
	Suggestions []Suggestion  `json:"suggestions"`
	Executions  []Execution   `json:"executions,omitempty"`
	Err         string        `json:"error,omitempty"`
}

// Failed reports whether the tick was skipped because the fetch failed.
func (r *TickReport) Failed() bool { return r.Err != "" }

// Row returns the report row for an asset id.
func (r *TickReport) Row(id string) (AssetReport, bool) {
	for _, row := range r.Rows {
		if row.Quote.ID == id {
			return row, true
		}
	}
	return AssetReport{}, false
}

// Snapshot is one archived quote row.
type Snapshot struct {
	At        time.Time `json:"at"`
	Tick      uint64    `json:"tick"`
	AssetID   string    `json:"asset_id"`
	Symbol    string    `json:"symbol"`
	Currency  string    `json:"currency"`
	Price     *float64  `json:"price"`
	Change24h *float64  `json:"change_24h"`
	Change7d  *float64  `json:"change_7d"`
	MarketCap *float64  `json:"market_cap"`
	Signal    string    `json:"signal"`
	Sentiment string    `json:"sentiment"`
}
