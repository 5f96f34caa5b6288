// Package pricing holds the pure profitability math: fee tiers, margins,
// break-even and the what-if simulator. No I/O, no mutation of inputs.
package pricing

import (
	"buybox_console/internal/config"
	"buybox_console/internal/domain/entity"
)

type Calculator struct {
	cfg config.Thresholds
}

func NewCalculator(cfg config.Thresholds) Calculator {
	return Calculator{cfg: cfg}
}

// FeeRate is the referral fee step function: the low rate strictly below the
// tier boundary, the standard rate at or above it.
func (c Calculator) FeeRate(price float64) float64 {
	if price < c.cfg.FeeTierBoundary {
		return c.cfg.LowFeeRate
	}
	return c.cfg.StandardFeeRate
}

// Profit at a given price: price − operating cost − referral fee.
func (c Calculator) Profit(price, operatingCost float64) float64 {
	return price - operatingCost - price*c.FeeRate(price)
}

// MarginPercent is profit as a share of revenue.
func (c Calculator) MarginPercent(price, operatingCost float64) float64 {
	if price <= 0 {
		return 0
	}
	return c.Profit(price, operatingCost) / price * 100
}

// ROIMarginPercent is profit as a share of total cash invested (costs plus
// fees). It diverges from MarginPercent and the two are reported side by
// side, never interchanged.
func (c Calculator) ROIMarginPercent(price, operatingCost float64) float64 {
	invested := operatingCost + price*c.FeeRate(price)
	if invested <= 0 {
		return 0
	}
	return c.Profit(price, operatingCost) / invested * 100
}

// BreakEvenPrice solves profit(p) == 0 with the fee rate frozen at the
// current price. Near the tier boundary the result can land in the other
// tier and be self-inconsistent; that is the observed behavior of the
// pricing model and is kept as is.
func (c Calculator) BreakEvenPrice(operatingCost, currentPrice float64) float64 {
	rate := c.FeeRate(currentPrice)
	return operatingCost / (1 - rate)
}

// Enrich returns a copy of the listing with derived metrics attached.
// Records without complete cost data get nil metrics and are excluded from
// financial views upstream.
func (c Calculator) Enrich(l entity.Listing) entity.Listing {
	if !l.HasCompleteCosts() {
		l.Metrics = nil
		return l
	}

	cost := l.TotalOperatingCost()

	m := &entity.ListingMetrics{
		TotalOperatingCost:   cost,
		CurrentProfit:        c.Profit(l.YourCurrentPrice, cost),
		CurrentMarginPercent: c.MarginPercent(l.YourCurrentPrice, cost),
		BreakEvenPrice:       c.BreakEvenPrice(cost, l.YourCurrentPrice),
	}

	if bb := l.EffectiveBuyBoxPrice(); bb != nil {
		profit := c.Profit(*bb, cost)
		roi := c.ROIMarginPercent(*bb, cost)

		m.BuyBoxProfit = &profit
		m.BuyBoxROIPercent = &roi

		if upside := profit - m.CurrentProfit; upside > 0 {
			m.ProfitOpportunity = upside
		}
	}

	l.Metrics = m

	return l
}

// Simulation is the result of a what-if price.
type Simulation struct {
	Price            float64
	FeeRate          float64
	Profit           float64
	MarginPercent    float64
	ROIMarginPercent float64
}

// Simulate recomputes the figures for a hypothetical price without touching
// the source record. Returns nil when cost data is incomplete or the price
// is not positive.
func (c Calculator) Simulate(l entity.Listing, price float64) *Simulation {
	if !l.HasCompleteCosts() || price <= 0 {
		return nil
	}

	cost := l.TotalOperatingCost()

	return &Simulation{
		Price:            price,
		FeeRate:          c.FeeRate(price),
		Profit:           c.Profit(price, cost),
		MarginPercent:    c.MarginPercent(price, cost),
		ROIMarginPercent: c.ROIMarginPercent(price, cost),
	}
}
