package catalog

import (
	"strings"

	"github.com/samber/lo"

	"buybox_console/internal/config"
	"buybox_console/internal/domain/entity"
)

// Pipeline applies criteria to a dataset. It is stateless; thresholds for
// the category bands come from configuration.
type Pipeline struct {
	cfg config.Thresholds
}

func NewPipeline(cfg config.Thresholds) Pipeline {
	return Pipeline{cfg: cfg}
}

// Result is an ordered subset plus the total used for pagination.
type Result struct {
	Ordered []entity.Listing
	Total   int
}

// Apply runs the full pipeline: mandatory cost-completeness, search,
// category, shipping group, numeric thresholds, the (possibly
// filter-dependent) sort, and finally bypass reinsertion. Bypassed records
// are prepended unfiltered so a just-updated row cannot vanish mid-filter.
func (p Pipeline) Apply(dataset []entity.Listing, c Criteria, bypass map[string]struct{}) Result {
	// Not user-togglable: incomplete cost data corrupts every financial
	// figure downstream.
	filtered := lo.Filter(dataset, func(l entity.Listing, _ int) bool {
		return l.HasCompleteCosts() && l.Metrics != nil
	})

	if search := strings.ToLower(strings.TrimSpace(c.Search)); search != "" {
		filtered = lo.Filter(filtered, func(l entity.Listing, _ int) bool {
			return strings.Contains(strings.ToLower(l.SKU), search) ||
				strings.Contains(strings.ToLower(l.ASIN), search) ||
				strings.Contains(strings.ToLower(l.Title), search)
		})
	}

	filtered = lo.Filter(filtered, func(l entity.Listing, _ int) bool {
		return p.matchesCategory(l, c)
	})

	if c.ShippingGroup != "" {
		filtered = lo.Filter(filtered, func(l entity.Listing, _ int) bool {
			return l.ShippingGroup == c.ShippingGroup
		})
	}

	if c.MinProfit > 0 {
		filtered = lo.Filter(filtered, func(l entity.Listing, _ int) bool {
			return l.Metrics.CurrentProfit >= c.MinProfit
		})
	}

	if c.MinMargin > 0 {
		filtered = lo.Filter(filtered, func(l entity.Listing, _ int) bool {
			return l.Metrics.CurrentMarginPercent >= c.MinMargin
		})
	}

	if c.Sort.IsDifference() {
		// A price gap is undefined for winners and for records missing
		// either price; sorting without this pre-filter would rank
		// nonsense gaps.
		filtered = lo.Filter(filtered, func(l entity.Listing, _ int) bool {
			return !l.IsWinner && l.EffectiveBuyBoxPrice() != nil && l.HasOwnPrice()
		})
	}

	sortListings(filtered, c.Sort)

	filtered = p.reinsertBypassed(dataset, filtered, bypass)

	return Result{
		Ordered: filtered,
		Total:   len(filtered),
	}
}

func (p Pipeline) matchesCategory(l entity.Listing, c Criteria) bool {
	if action, ok := c.actionFilter(); ok {
		return l.RecommendedAction == action
	}

	switch c.Category {
	case "", CategoryAll:
		return true
	case CategoryWinners:
		return l.IsWinner
	case CategoryLosers:
		return p.isLoser(l)
	case CategorySmallGapLoser:
		if !p.isLoser(l) {
			return false
		}
		gap := l.PriceGap()
		return gap > 0 && gap <= l.YourCurrentPrice*p.cfg.SmallGapPercent/100
	case CategoryStrongOpp:
		roi, ok := p.buyBoxROI(l)
		return ok && roi >= p.cfg.StrongOpportunityMargin
	case CategoryModerateOpp:
		roi, ok := p.buyBoxROI(l)
		return ok && roi >= p.cfg.ModerateOpportunityMargin && roi < p.cfg.StrongOpportunityMargin
	case CategoryNotProfitable:
		return l.Metrics.CurrentProfit < 0
	default:
		return true
	}
}

func (p Pipeline) isLoser(l entity.Listing) bool {
	return !l.IsWinner && l.EffectiveBuyBoxPrice() != nil
}

// buyBoxROI is the margin band input: only losing listings with a priced box
// qualify for the opportunity buckets.
func (p Pipeline) buyBoxROI(l entity.Listing) (float64, bool) {
	if l.IsWinner || l.Metrics.BuyBoxROIPercent == nil {
		return 0, false
	}
	return *l.Metrics.BuyBoxROIPercent, true
}

// reinsertBypassed prepends bypassed records that filtering dropped, in
// dataset order, ahead of the sorted result.
func (p Pipeline) reinsertBypassed(
	dataset, filtered []entity.Listing,
	bypass map[string]struct{},
) []entity.Listing {
	if len(bypass) == 0 {
		return filtered
	}

	present := lo.SliceToMap(filtered, func(l entity.Listing) (string, struct{}) {
		return l.ID, struct{}{}
	})

	var missing []entity.Listing

	for _, l := range dataset {
		if _, ok := bypass[l.ID]; !ok {
			continue
		}
		if _, ok := present[l.ID]; ok {
			continue
		}
		missing = append(missing, l)
	}

	if len(missing) == 0 {
		return filtered
	}

	return append(missing, filtered...)
}
