package catalog

import "buybox_console/internal/domain/entity"

// Category is the fixed bucket enumeration the operator filters by.
type Category string

const (
	CategoryAll           Category = "all"
	CategoryWinners       Category = "winners"
	CategoryLosers        Category = "losers"
	CategorySmallGapLoser Category = "small_gap_losers"
	CategoryStrongOpp     Category = "strong_opportunities"
	CategoryModerateOpp   Category = "moderate_opportunities"
	CategoryNotProfitable Category = "not_profitable"

	CategoryActionMatch         Category = "action_match_buy_box"
	CategoryActionHold          Category = "action_hold_price"
	CategoryActionInvestigate   Category = "action_investigate"
	CategoryActionNotProfitable Category = "action_not_profitable"
)

// SortMode selects the comparator. The four gap modes are filter-dependent
// sorts: they first discard records for which a price gap is undefined.
type SortMode string

const (
	SortCapturedDesc    SortMode = "captured_desc"
	SortPriceAsc        SortMode = "price_asc"
	SortPriceDesc       SortMode = "price_desc"
	SortProfitAsc       SortMode = "profit_asc"
	SortProfitDesc      SortMode = "profit_desc"
	SortMarginAsc       SortMode = "margin_asc"
	SortMarginDesc      SortMode = "margin_desc"
	SortOpportunityDesc SortMode = "opportunity_desc"

	SortGapAsc         SortMode = "gap_asc"
	SortGapDesc        SortMode = "gap_desc"
	SortGapPercentAsc  SortMode = "gap_percent_asc"
	SortGapPercentDesc SortMode = "gap_percent_desc"
)

// IsDifference reports whether the mode sorts by price gap and therefore
// pre-filters records for which the gap is undefined.
func (s SortMode) IsDifference() bool {
	switch s {
	case SortGapAsc, SortGapDesc, SortGapPercentAsc, SortGapPercentDesc:
		return true
	default:
		return false
	}
}

// Criteria is an immutable snapshot of every active predicate and the sort
// mode; the pipeline is a pure function of (dataset, criteria, bypass).
type Criteria struct {
	Search        string
	Category      Category
	ShippingGroup string

	// Zero disables either threshold.
	MinProfit float64
	MinMargin float64

	Sort SortMode
}

func (c Criteria) actionFilter() (entity.Action, bool) {
	switch c.Category {
	case CategoryActionMatch:
		return entity.ActionMatchBuyBox, true
	case CategoryActionHold:
		return entity.ActionHoldPrice, true
	case CategoryActionInvestigate:
		return entity.ActionInvestigate, true
	case CategoryActionNotProfitable:
		return entity.ActionNotProfitable, true
	default:
		return "", false
	}
}
