package trade

import (
	"context"
	"errors"
	"time"

	"CryptoPulse/internal/domain/models"
	drepo "CryptoPulse/internal/domain/repository"
	xhttp "CryptoPulse/pkg/http"
	applogger "CryptoPulse/pkg/logger"

	"github.com/google/uuid"
)

var _ drepo.TradeExecutor = (*WebhookExecutor)(nil)

type webhookOrder struct {
	ClientOrderID string       `json:"client_order_id"`
	Side          string       `json:"side"`
	Type          string       `json:"type"`
	Order         models.Order `json:"order"`
}

// WebhookExecutor forwards orders as JSON to an external execution service.
// The receiver may answer with an Execution body; otherwise the order counts as accepted.
type WebhookExecutor struct {
	url  string
	http *xhttp.Client
	log  *applogger.Logger
	now  func() time.Time
}

// NewWebhookExecutor creates a webhook executor posting to url.
func NewWebhookExecutor(url string, timeout time.Duration, log *applogger.Logger) *WebhookExecutor {
	if log == nil {
		log = applogger.NewNop()
	}
	return &WebhookExecutor{
		url:  url,
		http: xhttp.NewClient(xhttp.WithTimeout(timeout)),
		log:  log.With(applogger.String("component", "webhook_trade")),
		now:  time.Now,
	}
}

// Execute posts the order. Transport failures are SinkUnavailable and
// non-2xx answers are SinkRejected.
func (w *WebhookExecutor) Execute(ctx context.Context, order models.Order) (models.Execution, error) {
	clientID := uuid.NewString()
	var remote models.Execution
	err := w.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    w.url,
		Headers: map[string]string{
			"Idempotency-Key": clientID,
		},
		Body: webhookOrder{
			ClientOrderID: clientID,
			Side:          "buy",
			Type:          "market",
			Order:         order,
		},
	}, &remote)

	var statusErr *xhttp.StatusError
	switch {
	case errors.As(err, &statusErr):
		return models.Execution{}, &models.ExecutionError{Kind: models.SinkRejected, Symbol: order.Symbol, Err: err}
	case errors.Is(err, xhttp.ErrDecode):
		w.log.Debug("ignoring unparseable webhook body", applogger.Error(err))
		remote = models.Execution{}
	case err != nil:
		return models.Execution{}, &models.ExecutionError{Kind: models.SinkUnavailable, Symbol: order.Symbol, Err: err}
	}

	exec := models.Execution{
		OrderID:  clientID,
		Symbol:   order.Symbol,
		Status:   StatusAccepted,
		Notional: order.Notional,
		At:       w.now().UTC(),
	}
	mergeExecution(&exec, remote)

	w.log.Info("order forwarded",
		applogger.String("order_id", exec.OrderID),
		applogger.String("symbol", order.Symbol),
		applogger.String("status", exec.Status),
		applogger.Decimal("notional", order.Notional),
	)
	return exec, nil
}

func mergeExecution(dst *models.Execution, src models.Execution) {
	if src.OrderID != "" {
		dst.OrderID = src.OrderID
	}
	if src.Status != "" {
		dst.Status = src.Status
	}
	if !src.Quantity.IsZero() {
		dst.Quantity = src.Quantity
	}
	if !src.At.IsZero() {
		dst.At = src.At
	}
}
