package coingecko

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"CryptoPulse/internal/domain/models"
	applogger "CryptoPulse/pkg/logger"

	"github.com/shopspring/decimal"
)

// Response field names of /coins/markets.
const (
	fieldID        = "id"
	fieldSymbol    = "symbol"
	fieldName      = "name"
	fieldPrice     = "current_price"
	fieldChange24h = "price_change_percentage_24h_in_currency"
	fieldChange7d  = "price_change_percentage_7d_in_currency"
	fieldMarketCap = "market_cap"
)

type record map[string]json.RawMessage

// decodeMarkets decodes the response array record by record. Only a body that
// is not a JSON array fails; a bad field degrades to absent and a record
// without an id is skipped.
func decodeMarkets(body []byte, log *applogger.Logger) ([]models.Quote, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}

	quotes := make([]models.Quote, 0, len(raw))
	for i, item := range raw {
		var rec record
		if err := json.Unmarshal(item, &rec); err != nil {
			log.Debug("skipping malformed record", applogger.Int("index", i), applogger.Error(err))
			continue
		}
		id, err := rec.str(fieldID)
		if err != nil || id == "" {
			log.Debug("skipping record without id", applogger.Int("index", i))
			continue
		}

		q := models.Quote{ID: id}
		if sym, err := rec.str(fieldSymbol); err == nil && sym != "" {
			q.Symbol = strings.ToUpper(sym)
		} else {
			q.Symbol = strings.ToUpper(id)
		}
		q.Name, _ = rec.str(fieldName)

		q.Price = rec.decimalField(fieldPrice, id, log)
		q.MarketCap = rec.decimalField(fieldMarketCap, id, log)
		q.Change24h = rec.floatField(fieldChange24h, id, log)
		q.Change7d = rec.floatField(fieldChange7d, id, log)

		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (r record) value(key string) (json.RawMessage, error) {
	v, ok := r[key]
	if !ok || len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil, fmt.Errorf("%s: %w", key, models.ErrMissingField)
	}
	return v, nil
}

func (r record) str(key string) (string, error) {
	v, err := r.value(key)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("%s: %w", key, models.ErrMissingField)
	}
	return s, nil
}

// number returns the textual form of a JSON number, or of a quoted number.
func (r record) number(key string) (string, error) {
	v, err := r.value(key)
	if err != nil {
		return "", err
	}
	text := string(bytes.TrimSpace(v))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(v, &text); err != nil {
			return "", fmt.Errorf("%s: %w", key, models.ErrMissingField)
		}
		text = strings.TrimSpace(text)
	}
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return "", fmt.Errorf("%s: %q: %w", key, text, models.ErrMissingField)
	}
	return text, nil
}

func (r record) decimalField(key, id string, log *applogger.Logger) decimal.NullDecimal {
	text, err := r.number(key)
	if err == nil {
		d, derr := decimal.NewFromString(text)
		if derr == nil {
			return decimal.NullDecimal{Decimal: d, Valid: true}
		}
		err = fmt.Errorf("%s: %w", key, models.ErrMissingField)
	}
	r.logAbsent(key, id, err, log)
	return decimal.NullDecimal{}
}

func (r record) floatField(key, id string, log *applogger.Logger) *float64 {
	text, err := r.number(key)
	if err == nil {
		f, _ := strconv.ParseFloat(text, 64)
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			return &f
		}
		err = fmt.Errorf("%s: not finite: %w", key, models.ErrMissingField)
	}
	r.logAbsent(key, id, err, log)
	return nil
}

// logAbsent stays quiet for a plain null; providers null new listings routinely.
func (r record) logAbsent(key, id string, err error, log *applogger.Logger) {
	if v, ok := r[key]; ok && bytes.Equal(v, []byte("null")) {
		return
	}
	log.Debug("field degraded to absent",
		applogger.String("asset", id),
		applogger.String("field", key),
		applogger.Error(err),
	)
}
