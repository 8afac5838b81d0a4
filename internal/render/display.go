package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"CryptoPulse/internal/domain/models"
	applogger "CryptoPulse/pkg/logger"
)

const clearScreen = "\033[H\033[2J"

// Display is the terminal view of the tick loop. It runs on the tick path
// and never fails the tick: render errors are logged and swallowed.
type Display struct {
	r     Renderer
	out   io.Writer
	clear bool
	log   *applogger.Logger
}

// New picks the renderer for style ("plain" or "decorated").
func New(style string, interval time.Duration) (Renderer, error) {
	switch style {
	case "plain":
		return NewPlainRenderer(interval), nil
	case "decorated", "":
		return NewStyledRenderer(interval), nil
	default:
		return nil, fmt.Errorf("unknown display style %q", style)
	}
}

func NewDisplay(r Renderer, out io.Writer, clear bool, log *applogger.Logger) *Display {
	return &Display{r: r, out: out, clear: clear, log: log}
}

func (d *Display) Name() string { return "display" }

func (d *Display) Consume(_ context.Context, report *models.TickReport) error {
	if d.clear {
		if _, err := io.WriteString(d.out, clearScreen); err != nil {
			d.log.Warn("clear screen failed", applogger.Error(err))
		}
	}
	if err := d.r.Render(d.out, report); err != nil {
		d.log.Error("render failed", applogger.Uint64("tick", report.Tick), applogger.Error(err))
	}
	return nil
}
