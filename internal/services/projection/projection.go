package projection

import (
	"math"

	"CryptoPulse/internal/domain/models"
	"CryptoPulse/internal/domain/service"

	"github.com/shopspring/decimal"
)

// MinVelocity is the smallest hourly velocity (in percent) treated as movement.
const MinVelocity = 0.001

var hundred = decimal.NewFromInt(100)

// Estimator implements service.Projector.
type Estimator struct{}

var _ service.Projector = Estimator{}

// NewEstimator returns the linear-momentum estimator.
func NewEstimator() Estimator { return Estimator{} }

// Project delegates to the package function.
func (Estimator) Project(price decimal.NullDecimal, change24h *float64) *models.Projection {
	return Project(price, change24h)
}

// Project extrapolates the last 24h change over the next 48h window:
// projected = price * (1 + change24h/100). Absent inputs yield nil.
func Project(price decimal.NullDecimal, change24h *float64) *models.Projection {
	if !price.Valid || change24h == nil {
		return nil
	}
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(*change24h).Div(hundred))
	projected := price.Decimal.Mul(factor)

	dir := models.DirectionFlat
	switch projected.Cmp(price.Decimal) {
	case 1:
		dir = models.DirectionUp
	case -1:
		dir = models.DirectionDown
	}
	return &models.Projection{Price: projected, Direction: dir}
}

// TimeToTarget estimates how long the current 24h velocity needs to reach target,
// treating change24h/24 as a constant hourly rate.
func TimeToTarget(price decimal.NullDecimal, change24h *float64, target decimal.Decimal) models.TimeEstimate {
	if !price.Valid || change24h == nil || price.Decimal.IsZero() || target.IsZero() {
		return models.UnknownEstimate(models.ReasonInsufficientData)
	}

	velocity := *change24h / 24
	if math.Abs(velocity) < MinVelocity {
		return models.UnknownEstimate(models.ReasonZeroVelocity)
	}

	deltaPct := target.Sub(price.Decimal).Div(price.Decimal).Mul(hundred).InexactFloat64()
	if (deltaPct > 0 && velocity < 0) || (deltaPct < 0 && velocity > 0) {
		return models.UnknownEstimate(models.ReasonIncompatibleDirection)
	}

	hours := deltaPct / velocity
	if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return models.UnknownEstimate(models.ReasonReversalRequired)
	}
	return models.KnownEstimate(hours)
}
