package catalog

import (
	"sort"

	"buybox_console/internal/domain/entity"
)

// sortListings orders items in place. Callers have already applied the
// difference pre-filter for the gap modes, so Metrics and both prices are
// guaranteed where the comparator needs them.
func sortListings(items []entity.Listing, mode SortMode) {
	less := comparator(mode)
	if less == nil {
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

func comparator(mode SortMode) func(a, b entity.Listing) bool {
	switch mode {
	case "", SortCapturedDesc:
		return func(a, b entity.Listing) bool { return a.CapturedAt.After(b.CapturedAt) }
	case SortPriceAsc:
		return func(a, b entity.Listing) bool { return a.YourCurrentPrice < b.YourCurrentPrice }
	case SortPriceDesc:
		return func(a, b entity.Listing) bool { return a.YourCurrentPrice > b.YourCurrentPrice }
	case SortProfitAsc:
		return func(a, b entity.Listing) bool { return a.Metrics.CurrentProfit < b.Metrics.CurrentProfit }
	case SortProfitDesc:
		return func(a, b entity.Listing) bool { return a.Metrics.CurrentProfit > b.Metrics.CurrentProfit }
	case SortMarginAsc:
		return func(a, b entity.Listing) bool {
			return a.Metrics.CurrentMarginPercent < b.Metrics.CurrentMarginPercent
		}
	case SortMarginDesc:
		return func(a, b entity.Listing) bool {
			return a.Metrics.CurrentMarginPercent > b.Metrics.CurrentMarginPercent
		}
	case SortOpportunityDesc:
		return func(a, b entity.Listing) bool {
			return a.Metrics.ProfitOpportunity > b.Metrics.ProfitOpportunity
		}
	case SortGapAsc:
		return func(a, b entity.Listing) bool { return a.PriceGap() < b.PriceGap() }
	case SortGapDesc:
		return func(a, b entity.Listing) bool { return a.PriceGap() > b.PriceGap() }
	case SortGapPercentAsc:
		return func(a, b entity.Listing) bool { return gapPercent(a) < gapPercent(b) }
	case SortGapPercentDesc:
		return func(a, b entity.Listing) bool { return gapPercent(a) > gapPercent(b) }
	default:
		return nil
	}
}

func gapPercent(l entity.Listing) float64 {
	if l.YourCurrentPrice <= 0 {
		return 0
	}
	return l.PriceGap() / l.YourCurrentPrice * 100
}
