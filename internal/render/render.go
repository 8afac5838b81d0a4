// Package render draws a tick report as a terminal table.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"CryptoPulse/internal/domain/models"
	"CryptoPulse/pkg/util"

	"github.com/shopspring/decimal"
)

// Renderer writes one tick report to w.
type Renderer interface {
	Render(w io.Writer, report *models.TickReport) error
}

type tone int

const (
	toneNone tone = iota
	toneUp
	toneDown
	toneFlat
	toneSell
	toneBuy
	toneWarn
)

type cell struct {
	text string
	tone tone
}

const limitColumn = "Suggested limit"

var columns = []string{"Coin", "Price", "Δ(prev)", "24h", "7d", "Projection 48h", "Technical", "Signal", limitColumn, "Market cap"}

// tableView holds the formatted cells plus the headers that survive column hiding.
type tableView struct {
	headers []string
	rows    [][]cell
}

func buildTable(report *models.TickReport) tableView {
	showLimit := len(report.Suggestions) > 0
	for _, row := range report.Rows {
		if row.Suggestion != nil {
			showLimit = true
			break
		}
	}

	t := tableView{}
	for _, h := range columns {
		if h == limitColumn && !showLimit {
			continue
		}
		t.headers = append(t.headers, h)
	}

	for _, row := range report.Rows {
		cells := []cell{
			{text: row.Quote.Symbol},
			{text: util.FormatPrice(row.Quote.Price)},
			deltaCell(row.Delta),
			percentCell(row.Quote.Change24h),
			percentCell(row.Quote.Change7d),
			projectionCell(row.Projection),
			sentimentCell(row.Sentiment),
			signalCell(row.Signal),
		}
		if showLimit {
			c := cell{}
			if row.Suggestion != nil {
				c = cell{text: util.FormatLimitPrice(row.Suggestion.LimitPrice), tone: toneBuy}
			}
			cells = append(cells, c)
		}
		cells = append(cells, cell{text: util.FormatMarketCap(row.Quote.MarketCap)})
		t.rows = append(t.rows, cells)
	}
	return t
}

func deltaCell(v *float64) cell {
	if v == nil {
		return cell{}
	}
	return cell{text: util.FormatPercent(v), tone: signTone(*v, true)}
}

func percentCell(v *float64) cell {
	if v == nil {
		return cell{text: util.NotAvailable}
	}
	return cell{text: util.FormatPercent(v), tone: signTone(*v, false)}
}

// signTone colours positive green and negative red; zeroUp puts zero on the green side.
func signTone(v float64, zeroUp bool) tone {
	switch {
	case v > 0 || (v == 0 && zeroUp):
		return toneUp
	case v < 0:
		return toneDown
	default:
		return toneFlat
	}
}

func projectionCell(p *models.Projection) cell {
	if p == nil {
		return cell{text: util.NotAvailable}
	}
	c := cell{text: util.FormatPrice(decimal.NullDecimal{Decimal: p.Price, Valid: true})}
	switch p.Direction {
	case models.DirectionUp:
		c.tone = toneUp
	case models.DirectionDown:
		c.tone = toneDown
	default:
		c.tone = toneFlat
	}
	return c
}

func sentimentCell(s *models.Sentiment) cell {
	if s == nil {
		return cell{text: util.NotAvailable}
	}
	c := cell{text: s.Label}
	switch s.Kind {
	case models.SentimentStrongBuy, models.SentimentBuy:
		c.tone = toneUp
	case models.SentimentStrongSell, models.SentimentSell:
		c.tone = toneDown
	}
	return c
}

func signalCell(s *models.Signal) cell {
	if s == nil {
		return cell{text: "-"}
	}
	c := cell{text: s.Label}
	switch s.Action {
	case models.ActionSell:
		c.tone = toneSell
	case models.ActionBuy:
		c.tone = toneBuy
	case models.ActionWarn:
		c.tone = toneWarn
	}
	return c
}

func headerLines(report *models.TickReport) []string {
	return []string{
		"CryptoPulse: crypto price analyzer",
		fmt.Sprintf("Last update: %s UTC | Cryptos: %s | Fiat: %s",
			report.At.UTC().Format(time.DateTime),
			strings.Join(report.Watchlist, ","),
			strings.ToUpper(report.Currency)),
	}
}

func suggestionLines(report *models.TickReport) []string {
	out := make([]string, 0, len(report.Suggestions))
	for _, s := range report.Suggestions {
		out = append(out, fmt.Sprintf("Dip buy %s: limit %s, target in %s",
			s.Symbol, util.FormatLimitPrice(s.LimitPrice), s.TimeToTarget))
	}
	return out
}

func footerLine(interval time.Duration) string {
	return fmt.Sprintf("Refreshing in %s (Ctrl+C to stop)", interval)
}

func noDataLine(report *models.TickReport) string {
	return fmt.Sprintf("No data from the quote provider, retrying (%s)", report.Err)
}
