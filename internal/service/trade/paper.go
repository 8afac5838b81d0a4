package trade

import (
	"context"
	"fmt"
	"time"

	"CryptoPulse/internal/domain/models"
	drepo "CryptoPulse/internal/domain/repository"
	applogger "CryptoPulse/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusFilled   = "filled"
	StatusAccepted = "accepted"
)

var _ drepo.TradeExecutor = (*PaperExecutor)(nil)

// PaperExecutor simulates a market buy at the quoted limit price. Nothing leaves the process.
type PaperExecutor struct {
	maxNotional decimal.Decimal
	log         *applogger.Logger
	now         func() time.Time
}

// NewPaperExecutor creates a paper executor. A zero maxNotional disables the risk limit.
func NewPaperExecutor(maxNotional decimal.Decimal, log *applogger.Logger) *PaperExecutor {
	if log == nil {
		log = applogger.NewNop()
	}
	return &PaperExecutor{
		maxNotional: maxNotional,
		log:         log.With(applogger.String("component", "paper_trade")),
		now:         time.Now,
	}
}

// Execute fills the order immediately. Orders above the risk limit or without a
// usable price are rejected.
func (p *PaperExecutor) Execute(_ context.Context, order models.Order) (models.Execution, error) {
	if !order.Notional.IsPositive() {
		return models.Execution{}, &models.ExecutionError{Kind: models.SinkRejected, Symbol: order.Symbol, Err: fmt.Errorf("notional must be positive")}
	}
	if p.maxNotional.IsPositive() && order.Notional.GreaterThan(p.maxNotional) {
		return models.Execution{}, &models.ExecutionError{
			Kind:   models.SinkRejected,
			Symbol: order.Symbol,
			Err:    fmt.Errorf("notional %s exceeds limit %s", order.Notional, p.maxNotional),
		}
	}
	if !order.LimitPrice.IsPositive() {
		return models.Execution{}, &models.ExecutionError{Kind: models.SinkRejected, Symbol: order.Symbol, Err: fmt.Errorf("no price")}
	}

	exec := models.Execution{
		OrderID:  uuid.NewString(),
		Symbol:   order.Symbol,
		Status:   StatusFilled,
		Notional: order.Notional,
		Quantity: order.Notional.DivRound(order.LimitPrice, 8),
		At:       p.now().UTC(),
	}
	p.log.Info("paper order filled",
		applogger.String("order_id", exec.OrderID),
		applogger.String("symbol", order.Symbol),
		applogger.Decimal("notional", order.Notional),
		applogger.Decimal("price", order.LimitPrice),
		applogger.Decimal("quantity", exec.Quantity),
	)
	return exec, nil
}
