package pricingapi

import (
	"time"

	"buybox_console/internal/domain/entity"
)

// recordSchema mirrors one pricing record on the wire.
type recordSchema struct {
	ID    string `json:"id"`
	SKU   string `json:"sku"`
	ASIN  string `json:"asin"`
	Title string `json:"title"`

	YourCurrentPrice float64  `json:"yourCurrentPrice"`
	BuyBoxPrice      *float64 `json:"buyBoxPrice"`
	CompetitorPrice  *float64 `json:"competitorPrice"`
	IsWinner         bool     `json:"isWinner"`

	BaseCost      float64 `json:"baseCost"`
	ShippingCost  float64 `json:"shippingCost"`
	MaterialCost  float64 `json:"materialCost"`
	BoxCost       float64 `json:"boxCost"`
	VATAmount     float64 `json:"vatAmount"`
	FragileCharge float64 `json:"fragileCharge"`

	ShippingGroup     string    `json:"shippingGroup"`
	RecommendedAction string    `json:"recommendedAction"`
	CapturedAt        time.Time `json:"capturedAt"`
}

func (s recordSchema) toDomain() entity.Listing {
	return entity.Listing{
		ID:               s.ID,
		SKU:              s.SKU,
		ASIN:             s.ASIN,
		Title:            s.Title,
		YourCurrentPrice: s.YourCurrentPrice,
		BuyBoxPrice:      s.BuyBoxPrice,
		CompetitorPrice:  s.CompetitorPrice,
		IsWinner:         s.IsWinner,

		BaseCost:      s.BaseCost,
		ShippingCost:  s.ShippingCost,
		MaterialCost:  s.MaterialCost,
		BoxCost:       s.BoxCost,
		VATAmount:     s.VATAmount,
		FragileCharge: s.FragileCharge,

		ShippingGroup:     s.ShippingGroup,
		RecommendedAction: entity.Action(s.RecommendedAction),
		CapturedAt:        s.CapturedAt,
	}
}

type resultsResponse struct {
	Results []recordSchema `json:"results"`
}

type liveUpdateRequest struct {
	SKU      string `json:"sku"`
	RecordID string `json:"recordId"`
	UserID   string `json:"userId"`
}

// liveUpdateResponse may carry a partial updated record the coordinator can
// fall back to when verification exhausts its retries.
type liveUpdateResponse struct {
	Record *recordSchema `json:"record"`
}

type matchBuyBoxRequest struct {
	ASIN             string  `json:"asin"`
	SKU              string  `json:"sku"`
	NewPrice         float64 `json:"newPrice"`
	RecordID         string  `json:"recordId"`
	ConfirmLowMargin bool    `json:"confirmLowMargin,omitempty"`
}

type matchBuyBoxResponse struct {
	FeedID string `json:"feedId"`
}

type checkFeedStatusRequest struct {
	FeedID   string `json:"feedId"`
	RecordID string `json:"recordId,omitempty"`
	SKU      string `json:"sku,omitempty"`
	ASIN     string `json:"asin,omitempty"`
}

type checkFeedStatusResponse struct {
	IsComplete     bool `json:"isComplete"`
	NeedsAttention bool `json:"needsAttention"`
}

// errorEnvelope is the upstream error body. Code drives classification;
// SuggestedLimit rides along on size-exceeded rejections.
type errorEnvelope struct {
	Error struct {
		Code           string `json:"code"`
		Message        string `json:"message"`
		SuggestedLimit int    `json:"suggestedLimit"`
	} `json:"error"`
}
