package server

import (
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/domain/service/pricing"
	"buybox_console/pkg/rest"
)

func (s ListingServer) newRESTListing(l entity.Listing, counts map[string]int) rest.Listing {
	out := rest.Listing{
		ID:                l.ID,
		SKU:               l.SKU,
		ASIN:              l.ASIN,
		Title:             l.Title,
		YourCurrentPrice:  l.YourCurrentPrice,
		BuyBoxPrice:       l.EffectiveBuyBoxPrice(),
		IsWinner:          l.IsWinner,
		ShippingGroup:     l.ShippingGroup,
		RecommendedAction: string(l.RecommendedAction),
		CapturedAt:        l.CapturedAt,
		JustChanged:       s.coordinator.Highlighted(l.ID),
		Bypassed:          s.store.InBypass(l.ID),
		SnapshotCount:     counts[l.SKU],
	}

	if l.Metrics != nil {
		out.Metrics = newRESTMetrics(*l.Metrics)
	}

	if state := s.store.UpdateStateFor(l.ID); state.Phase != entity.UpdateIdle {
		restState := newRESTUpdateState(state)
		out.UpdateState = &restState
	}

	if price, ok := s.store.CustomPrice(l.ID); ok {
		out.CustomPrice = &price
	}

	for _, id := range s.store.Selected() {
		if id == l.ID {
			out.Selected = true
			break
		}
	}

	return out
}

func newRESTMetrics(m entity.ListingMetrics) *rest.ListingMetrics {
	return &rest.ListingMetrics{
		TotalOperatingCost:   m.TotalOperatingCost,
		CurrentProfit:        m.CurrentProfit,
		CurrentMarginPercent: m.CurrentMarginPercent,
		BuyBoxProfit:         m.BuyBoxProfit,
		BuyBoxROIPercent:     m.BuyBoxROIPercent,
		BreakEvenPrice:       m.BreakEvenPrice,
		ProfitOpportunity:    m.ProfitOpportunity,
	}
}

func newRESTUpdateState(state entity.UpdateState) rest.UpdateState {
	out := rest.UpdateState{
		Phase:     string(state.Phase),
		Verified:  state.Verified,
		LastError: state.LastError,
	}

	if !state.LastUpdatedAt.IsZero() {
		t := state.LastUpdatedAt
		out.LastUpdatedAt = &t
	}

	return out
}

func newRESTSimulation(sim pricing.Simulation) rest.Simulation {
	return rest.Simulation{
		Price:            sim.Price,
		FeeRate:          sim.FeeRate,
		Profit:           sim.Profit,
		MarginPercent:    sim.MarginPercent,
		ROIMarginPercent: sim.ROIMarginPercent,
	}
}

func newRESTFeedStatus(f entity.FeedStatus) rest.FeedStatus {
	return rest.FeedStatus{
		FeedID:        f.FeedID,
		SKU:           f.SKU,
		ASIN:          f.ASIN,
		State:         string(f.State),
		LastCheckedAt: f.LastCheckedAt,
	}
}
