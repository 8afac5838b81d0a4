package render

import (
	"io"
	"strings"
	"time"

	"CryptoPulse/internal/domain/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	buyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var toneColors = map[tone]lipgloss.Color{
	toneUp:   lipgloss.Color("2"),
	toneDown: lipgloss.Color("1"),
	toneFlat: lipgloss.Color("6"),
	toneSell: lipgloss.Color("9"),
	toneBuy:  lipgloss.Color("10"),
	toneWarn: lipgloss.Color("11"),
}

// StyledRenderer draws a bordered, coloured table with lipgloss. Colours
// degrade automatically when stdout is not a terminal.
type StyledRenderer struct {
	interval time.Duration
}

func NewStyledRenderer(interval time.Duration) *StyledRenderer {
	return &StyledRenderer{interval: interval}
}

func (r *StyledRenderer) Render(w io.Writer, report *models.TickReport) error {
	var b strings.Builder
	lines := headerLines(report)
	b.WriteString(titleStyle.Render(lines[0]) + "\n")
	b.WriteString(subtitleStyle.Render(lines[1]) + "\n")

	if report.Failed() {
		b.WriteString(errorStyle.Render(noDataLine(report)) + "\n")
	} else {
		t := buildTable(report)
		texts := make([][]string, len(t.rows))
		for i, row := range t.rows {
			texts[i] = make([]string, len(row))
			for j, c := range row {
				texts[i][j] = c.text
			}
		}

		tbl := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			Headers(t.headers...).
			Rows(texts...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				s := cellStyle
				if row < 0 || row >= len(t.rows) || col >= len(t.rows[row]) {
					return s
				}
				if c, ok := toneColors[t.rows[row][col].tone]; ok {
					s = s.Foreground(c)
				}
				return s
			})
		b.WriteString(tbl.String() + "\n")

		for _, l := range suggestionLines(report) {
			b.WriteString(buyStyle.Render(l) + "\n")
		}
	}

	b.WriteString(footerStyle.Render(footerLine(r.interval)) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}
