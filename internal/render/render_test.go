package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"CryptoPulse/internal/domain/models"
	applogger "CryptoPulse/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func baseReport() *models.TickReport {
	return &models.TickReport{
		Tick:      1,
		At:        at,
		Currency:  "usd",
		Watchlist: []string{"bitcoin", "pepe"},
		Rows: []models.AssetReport{
			{
				Quote: models.Quote{
					ID: "bitcoin", Symbol: "BTC",
					Price:     models.Price(60000),
					Change24h: models.Float(0.5),
					Change7d:  models.Float(1),
					MarketCap: models.Price(1200000000000),
				},
				Signal:     &models.Signal{Kind: models.SignalRange, Label: "Range / consolidation", Action: models.ActionHold},
				Sentiment:  &models.Sentiment{Kind: models.SentimentNeutral, Label: "Neutral"},
				Projection: &models.Projection{Price: decimal.NewFromInt(60300), Direction: models.DirectionUp},
				Delta:      models.Float(0),
			},
			{
				Quote: models.Quote{ID: "pepe", Symbol: "PEPE"},
			},
		},
		Suggestions: []models.Suggestion{},
	}
}

func withSuggestion() *models.TickReport {
	r := baseReport()
	s := models.Suggestion{
		AssetID:      "bitcoin",
		Symbol:       "BTC",
		LimitPrice:   decimal.NewFromInt(58800),
		TimeToTarget: models.KnownEstimate(48),
	}
	r.Rows[0].Suggestion = &s
	r.Suggestions = []models.Suggestion{s}
	return r
}

func TestBuildTableHidesEmptyLimitColumn(t *testing.T) {
	tbl := buildTable(baseReport())
	assert.NotContains(t, tbl.headers, limitColumn)
	require.Len(t, tbl.rows, 2)
	assert.Len(t, tbl.rows[0], len(tbl.headers))

	btc := tbl.rows[0]
	assert.Equal(t, "BTC", btc[0].text)
	assert.Equal(t, "$60,000.00", btc[1].text)
	assert.Equal(t, "+0.00%", btc[2].text)
	assert.Equal(t, toneUp, btc[2].tone)
	assert.Equal(t, "$60,300.00", btc[5].text)
	assert.Equal(t, "Range / consolidation", btc[7].text)
	assert.Equal(t, "$1,200,000,000,000", btc[8].text)

	pepe := tbl.rows[1]
	assert.Equal(t, "N/A", pepe[1].text)
	assert.Equal(t, "", pepe[2].text)
	assert.Equal(t, "N/A", pepe[3].text)
	assert.Equal(t, "-", pepe[7].text)
	assert.Equal(t, "N/A", pepe[8].text)
}

func TestBuildTableShowsLimitColumn(t *testing.T) {
	tbl := buildTable(withSuggestion())
	assert.Contains(t, tbl.headers, limitColumn)
	assert.Equal(t, "$58,800.0000", tbl.rows[0][8].text)
	assert.Equal(t, "", tbl.rows[1][8].text)
	assert.Len(t, tbl.rows[1], len(tbl.headers))
}

func TestPlainRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainRenderer(10*time.Second).Render(&buf, withSuggestion()))
	out := buf.String()

	assert.Contains(t, out, "Last update: 2024-05-01 12:00:00 UTC | Cryptos: bitcoin,pepe | Fiat: USD")
	assert.Contains(t, out, "Suggested limit")
	assert.Contains(t, out, "Dip buy BTC: limit $58,800.0000, target in 2 days")
	assert.Contains(t, out, "Refreshing in 10s (Ctrl+C to stop)")

	lines := strings.Split(out, "\n")
	var header string
	for _, l := range lines {
		if strings.HasPrefix(l, "Coin") {
			header = l
		}
	}
	require.NotEmpty(t, header)
	assert.Contains(t, header, "Price")
	assert.NotContains(t, header, "\t")
}

func TestPlainRendererFailedTick(t *testing.T) {
	var buf bytes.Buffer
	r := &models.TickReport{Tick: 2, At: at, Currency: "usd", Err: "fetch quotes: rate limited (429)"}
	require.NoError(t, NewPlainRenderer(time.Second).Render(&buf, r))
	assert.Contains(t, buf.String(), "No data from the quote provider, retrying (fetch quotes: rate limited (429))")
	assert.NotContains(t, buf.String(), "Coin")
}

func TestStyledRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStyledRenderer(10*time.Second).Render(&buf, withSuggestion()))
	out := buf.String()
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "Suggested limit")
	assert.Contains(t, out, "$58,800.0000")
	assert.Contains(t, out, "Refreshing in 10s")
}

func TestNewSelectsRenderer(t *testing.T) {
	r, err := New("plain", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &PlainRenderer{}, r)

	r, err = New("decorated", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &StyledRenderer{}, r)

	_, err = New("neon", time.Second)
	assert.Error(t, err)
}

type failingRenderer struct{}

func (failingRenderer) Render(io.Writer, *models.TickReport) error { return errors.New("boom") }

func TestDisplayClearsAndSwallowsErrors(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(NewPlainRenderer(time.Second), &buf, true, applogger.NewNop())
	require.NoError(t, d.Consume(context.Background(), baseReport()))
	assert.True(t, strings.HasPrefix(buf.String(), clearScreen))
	assert.Equal(t, "display", d.Name())

	buf.Reset()
	d = NewDisplay(failingRenderer{}, &buf, false, applogger.NewNop())
	assert.NoError(t, d.Consume(context.Background(), baseReport()))
	assert.Empty(t, buf.String())
}
