// Package rest defines the JSON models served to the dashboard frontend.
package rest

import "time"

type Listing struct {
	ID                string   `json:"id"`
	SKU               string   `json:"sku"`
	ASIN              string   `json:"asin"`
	Title             string   `json:"title"`
	YourCurrentPrice  float64  `json:"yourCurrentPrice"`
	BuyBoxPrice       *float64 `json:"buyBoxPrice,omitempty"`
	IsWinner          bool     `json:"isWinner"`
	ShippingGroup     string   `json:"shippingGroup"`
	RecommendedAction string   `json:"recommendedAction"`
	CapturedAt        time.Time `json:"capturedAt"`

	Metrics *ListingMetrics `json:"metrics,omitempty"`

	UpdateState *UpdateState `json:"updateState,omitempty"`
	JustChanged bool         `json:"justChanged"`
	Bypassed    bool         `json:"bypassed"`
	Selected    bool         `json:"selected"`
	CustomPrice *float64     `json:"customPrice,omitempty"`

	// SnapshotCount is how many raw snapshots exist for this SKU in the
	// session dataset (latest-only views collapse them to one).
	SnapshotCount int `json:"snapshotCount"`
}

type ListingMetrics struct {
	TotalOperatingCost   float64  `json:"totalOperatingCost"`
	CurrentProfit        float64  `json:"currentActualProfit"`
	CurrentMarginPercent float64  `json:"currentMarginPercent"`
	BuyBoxProfit         *float64 `json:"buyBoxActualProfit,omitempty"`
	BuyBoxROIPercent     *float64 `json:"buyBoxMarginPercent,omitempty"`
	BreakEvenPrice       float64  `json:"breakEvenPrice"`
	ProfitOpportunity    float64  `json:"profitOpportunity"`
}

type ListingsPage struct {
	Items    []Listing `json:"items"`
	Total    int       `json:"total"`
	RawTotal int       `json:"rawTotal"`
	Page     int       `json:"page"`
	PerPage  int       `json:"perPage"`
}

type Simulation struct {
	Price            float64 `json:"price"`
	FeeRate          float64 `json:"feeRate"`
	Profit           float64 `json:"profit"`
	MarginPercent    float64 `json:"marginPercent"`
	ROIMarginPercent float64 `json:"roiMarginPercent"`
}

type UpdateState struct {
	Phase         string     `json:"phase"`
	Verified      bool       `json:"verified"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
}

type UpdateResult struct {
	State   UpdateState `json:"state"`
	Listing *Listing    `json:"listing,omitempty"`
}

type MatchBuyBoxRequest struct {
	NewPrice         float64 `json:"newPrice" validate:"required,gt=0"`
	ConfirmLowMargin bool    `json:"confirmLowMargin"`
}

type MatchBuyBoxResult struct {
	FeedID string      `json:"feedId"`
	State  UpdateState `json:"state"`
}

type FeedStatus struct {
	FeedID        string    `json:"feedId"`
	SKU           string    `json:"sku,omitempty"`
	ASIN          string    `json:"asin,omitempty"`
	State         string    `json:"state"`
	LastCheckedAt time.Time `json:"lastCheckedAt"`
}

type QueueInfo struct {
	Depth           int64 `json:"depth"`
	EstimatedWaitMs int64 `json:"estimatedWaitMs"`
}

type ReloadResult struct {
	Loaded   int `json:"loaded"`
	Distinct int `json:"distinct"`
}

// Error is the error envelope.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
