package worker

import (
	"fmt"

	"buybox_console/internal/config"
	"buybox_console/internal/domain"
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/domain/service/pricing"
	"buybox_console/pkg/errcodes"
)

// Guard is the client-side margin safety gate. It blocks a match-buy-box
// submission whose projected margin falls below the configured minimum
// unless the operator has explicitly confirmed it. The upstream API applies
// the same check; this one exists so the common case never leaves the
// process.
type Guard struct {
	calc pricing.Calculator
	cfg  config.Thresholds
}

func NewGuard(calc pricing.Calculator, cfg config.Thresholds) Guard {
	return Guard{calc: calc, cfg: cfg}
}

// Check validates a target price against the listing's cost base. A margin
// exactly at the minimum passes; only strictly below blocks.
func (g Guard) Check(l entity.Listing, targetPrice float64, confirmed bool) error {
	sim := g.calc.Simulate(l, targetPrice)
	if sim == nil {
		return domain.NewError(errcodes.InvalidTargetPrice,
			"target price cannot be evaluated: price must be positive and cost data complete")
	}

	if sim.MarginPercent < g.cfg.MinMarginPercent && !confirmed {
		return domain.NewError(errcodes.MarginTooLow, fmt.Sprintf(
			"projected margin %.1f%% is below the %.1f%% minimum; confirm to proceed",
			sim.MarginPercent, g.cfg.MinMarginPercent,
		))
	}

	return nil
}
