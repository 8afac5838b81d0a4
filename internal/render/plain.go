package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"CryptoPulse/internal/domain/models"
)

// PlainRenderer prints an uncoloured, column-aligned table.
type PlainRenderer struct {
	interval time.Duration
}

func NewPlainRenderer(interval time.Duration) *PlainRenderer {
	return &PlainRenderer{interval: interval}
}

func (r *PlainRenderer) Render(w io.Writer, report *models.TickReport) error {
	rule := strings.Repeat("=", 100)
	var b strings.Builder
	for _, l := range headerLines(report) {
		b.WriteString(l + "\n")
	}
	b.WriteString(rule + "\n")

	if report.Failed() {
		b.WriteString(noDataLine(report) + "\n")
	} else {
		t := buildTable(report)
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.headers, "\t"))
		for _, row := range t.rows {
			texts := make([]string, len(row))
			for i, c := range row {
				texts[i] = c.text
			}
			fmt.Fprintln(tw, strings.Join(texts, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if lines := suggestionLines(report); len(lines) > 0 {
			b.WriteString("\n")
			for _, l := range lines {
				b.WriteString(l + "\n")
			}
		}
	}

	b.WriteString(rule + "\n")
	b.WriteString(footerLine(r.interval) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}
