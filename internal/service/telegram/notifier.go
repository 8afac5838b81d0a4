package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CryptoPulse/internal/domain/models"
	drepo "CryptoPulse/internal/domain/repository"
	xhttp "CryptoPulse/pkg/http"
	applogger "CryptoPulse/pkg/logger"
)

// Config holds the bot credentials. Either one empty disables delivery.
type Config struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// Enabled reports whether both credentials are set.
func (c Config) Enabled() bool {
	return c.BotToken != "" && c.ChatID != ""
}

var _ drepo.Notifier = (*Notifier)(nil)

// Notifier sends one MarkdownV2 message per tick listing every dip-buy suggestion.
type Notifier struct {
	cfg  Config
	http *xhttp.Client
	log  *applogger.Logger
}

// New creates a Telegram notifier. An unconfigured notifier logs once and then
// drops every call.
func New(cfg Config, log *applogger.Logger) *Notifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = applogger.NewNop()
	}
	n := &Notifier{
		cfg:  cfg,
		http: xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		log:  log.With(applogger.String("component", "telegram")),
	}
	if !cfg.Enabled() {
		n.log.Warn("telegram disabled: TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not configured")
	}
	return n
}

// Notify posts the report's suggestions. Reports without suggestions and an
// unconfigured notifier are no-ops.
func (n *Notifier) Notify(ctx context.Context, report *models.TickReport) error {
	if report == nil || len(report.Suggestions) == 0 {
		return nil
	}
	if !n.cfg.Enabled() {
		n.log.Debug("skipping notification, telegram not configured")
		return nil
	}

	text := FormatMessage(report.Suggestions)
	resp, err := n.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    n.endpoint(),
		FormData: map[string]string{
			"chat_id":    n.cfg.ChatID,
			"text":       text,
			"parse_mode": "MarkdownV2",
		},
	})
	if err != nil {
		return &models.NotifyError{Err: redact(err, n.cfg.BotToken)}
	}
	if !resp.IsSuccess() {
		return &models.NotifyError{Err: fmt.Errorf("sendMessage status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))}
	}

	n.log.Info("buy notification sent", applogger.Int("suggestions", len(report.Suggestions)))
	return nil
}

func (n *Notifier) endpoint() string {
	return fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(n.cfg.BaseURL, "/"), n.cfg.BotToken)
}

// redact keeps the bot token out of logged transport errors, which quote the URL.
func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<redacted>"))
}
