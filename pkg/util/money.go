package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const NotAvailable = "N/A"

var smallPrice = decimal.RequireFromString("0.1")

// FormatMoney renders d with a dollar sign, thousands separators and fixed places.
func FormatMoney(d decimal.Decimal, places int32) string {
	fixed := d.Abs().StringFixed(places)
	whole, frac, _ := strings.Cut(fixed, ".")

	sign := ""
	if d.IsNegative() && !d.Round(places).IsZero() {
		sign = "-"
	}

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + "$" + fixed
	}
	out := sign + "$" + humanize.Comma(n)
	if frac != "" {
		out += "." + frac
	}
	return out
}

// FormatPrice uses 8 decimals below 0.1 and 2 otherwise.
func FormatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return NotAvailable
	}
	if p.Decimal.LessThan(smallPrice) {
		return FormatMoney(p.Decimal, 8)
	}
	return FormatMoney(p.Decimal, 2)
}

// FormatLimitPrice uses 8 decimals below 0.1 and 4 otherwise.
func FormatLimitPrice(p decimal.Decimal) string {
	if p.LessThan(smallPrice) {
		return FormatMoney(p, 8)
	}
	return FormatMoney(p, 4)
}

// FormatPercent renders a signed percentage with two decimals.
func FormatPercent(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

// FormatMarketCap renders a whole-dollar market cap; zero counts as unknown.
func FormatMarketCap(v decimal.NullDecimal) string {
	if !v.Valid || v.Decimal.IsZero() {
		return NotAvailable
	}
	return FormatMoney(v.Decimal, 0)
}
