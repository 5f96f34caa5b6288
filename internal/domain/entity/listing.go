package entity

import "time"

// Action is the recommendation supplied by the pricing API. It is displayed
// and used for bucketing, never recomputed client-side.
type Action string

const (
	ActionMatchBuyBox   Action = "match_buy_box"
	ActionHoldPrice     Action = "hold_price"
	ActionInvestigate   Action = "investigate"
	ActionNotProfitable Action = "not_profitable"
)

// Listing is one marketplace SKU/ASIN snapshot. Records are never mutated in
// place: every change is a whole-record substitution so readers cannot
// observe a half-updated row.
type Listing struct {
	ID    string
	SKU   string
	ASIN  string
	Title string

	YourCurrentPrice float64
	// BuyBoxPrice is nil when no competing offer was detected.
	BuyBoxPrice *float64
	// CompetitorPrice is the legacy fallback for BuyBoxPrice.
	CompetitorPrice *float64
	IsWinner        bool

	BaseCost      float64
	ShippingCost  float64
	MaterialCost  float64
	BoxCost       float64
	VATAmount     float64
	FragileCharge float64

	ShippingGroup     string
	RecommendedAction Action
	CapturedAt        time.Time

	// Metrics is nil when cost data is incomplete; such records are kept
	// out of every financial view.
	Metrics *ListingMetrics
}

// ListingMetrics are the derived figures cached on the record by the
// calculator.
type ListingMetrics struct {
	TotalOperatingCost   float64
	CurrentProfit        float64
	CurrentMarginPercent float64

	// Buy-box simulation figures; nil without a usable buy-box price.
	// BuyBoxROIPercent divides by cash invested, not revenue, so it is not
	// comparable to CurrentMarginPercent.
	BuyBoxProfit     *float64
	BuyBoxROIPercent *float64

	BreakEvenPrice    float64
	ProfitOpportunity float64
}

// HasCompleteCosts reports whether the record can participate in financial
// views. A missing or non-positive base cost corrupts margin math.
func (l Listing) HasCompleteCosts() bool {
	return l.BaseCost > 0
}

// TotalOperatingCost is the sum of all fixed costs.
func (l Listing) TotalOperatingCost() float64 {
	return l.BaseCost + l.ShippingCost + l.MaterialCost + l.BoxCost + l.VATAmount + l.FragileCharge
}

// EffectiveBuyBoxPrice returns the buy-box price, falling back to the legacy
// competitor price; nil when neither is usable.
func (l Listing) EffectiveBuyBoxPrice() *float64 {
	if l.BuyBoxPrice != nil && *l.BuyBoxPrice > 0 {
		return l.BuyBoxPrice
	}
	if l.CompetitorPrice != nil && *l.CompetitorPrice > 0 {
		return l.CompetitorPrice
	}
	return nil
}

// HasOwnPrice reports whether the seller's own price is usable.
func (l Listing) HasOwnPrice() bool {
	return l.YourCurrentPrice > 0
}

// PriceGap is own price minus buy-box price: positive when losing the box on
// price. Only meaningful when both prices exist and the listing is not
// winning; callers pre-filter accordingly.
func (l Listing) PriceGap() float64 {
	bb := l.EffectiveBuyBoxPrice()
	if bb == nil {
		return 0
	}
	return l.YourCurrentPrice - *bb
}
