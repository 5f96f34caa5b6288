package catalog_test

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"buybox_console/internal/config"
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/domain/service/catalog"
	"buybox_console/internal/domain/service/pricing"
)

func testThresholds() config.Thresholds {
	return config.Thresholds{
		LowFeeRate:                0.08,
		StandardFeeRate:           0.15,
		FeeTierBoundary:           10.0,
		MinMarginPercent:          10,
		SmallGapPercent:           5,
		StrongOpportunityMargin:   20,
		ModerateOpportunityMargin: 10,
		PerPage:                   50,
	}
}

type listingSpec struct {
	id       string
	sku      string
	asin     string
	title    string
	price    float64
	buyBox   float64 // 0 means absent
	winner   bool
	baseCost float64
	shipping string
	action   entity.Action
}

func buildDataset(specs ...listingSpec) []entity.Listing {
	calc := pricing.NewCalculator(testThresholds())
	capturedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	listings := make([]entity.Listing, 0, len(specs))

	for i, s := range specs {
		l := entity.Listing{
			ID:                s.id,
			SKU:               s.sku,
			ASIN:              s.asin,
			Title:             s.title,
			YourCurrentPrice:  s.price,
			IsWinner:          s.winner,
			BaseCost:          s.baseCost,
			ShippingGroup:     s.shipping,
			RecommendedAction: s.action,
			CapturedAt:        capturedAt.Add(time.Duration(i) * time.Minute),
		}
		if s.buyBox > 0 {
			l.BuyBoxPrice = lo.ToPtr(s.buyBox)
		}
		listings = append(listings, calc.Enrich(l))
	}

	return listings
}

func ids(result catalog.Result) []string {
	out := make([]string, 0, len(result.Ordered))
	for _, l := range result.Ordered {
		out = append(out, l.ID)
	}
	return out
}

func TestApplyCostCompleteness(t *testing.T) {
	rq := require.New(t)
	pipeline := catalog.NewPipeline(testThresholds())

	dataset := buildDataset(
		listingSpec{id: "ok", sku: "BOX-1", price: 12, baseCost: 8},
		listingSpec{id: "no-cost", sku: "BOX-2", price: 12, baseCost: 0},
	)

	// The cost predicate is mandatory: no criteria combination lets an
	// incomplete record through.
	result := pipeline.Apply(dataset, catalog.Criteria{}, nil)
	rq.Equal([]string{"ok"}, ids(result))

	result = pipeline.Apply(dataset, catalog.Criteria{Search: "box-2"}, nil)
	rq.Empty(result.Ordered)
	rq.Zero(result.Total)
}

func TestApplySearch(t *testing.T) {
	rq := require.New(t)
	pipeline := catalog.NewPipeline(testThresholds())

	dataset := buildDataset(
		listingSpec{id: "1", sku: "BOX-RED", asin: "B00A", title: "Red gift box", price: 12, baseCost: 8},
		listingSpec{id: "2", sku: "BAG-BLUE", asin: "B00B", title: "Blue bag", price: 12, baseCost: 8},
		listingSpec{id: "3", sku: "TAPE-01", asin: "B00RED1", title: "Packing tape", price: 12, baseCost: 8},
	)

	result := pipeline.Apply(dataset, catalog.Criteria{Search: "red"}, nil)

	// Case-insensitive, OR across SKU, ASIN and title.
	rq.ElementsMatch([]string{"1", "3"}, ids(result))
	rq.Equal(2, result.Total)
}

func TestApplyCategories(t *testing.T) {
	rq := require.New(t)
	pipeline := catalog.NewPipeline(testThresholds())

	dataset := buildDataset(
		listingSpec{id: "winner", sku: "W", price: 12, buyBox: 12, winner: true, baseCost: 8},
		// Losing by 0.40 on 12.00 (3.3%), inside the small-gap band.
		listingSpec{id: "small-gap", sku: "SG", price: 12, buyBox: 11.60, baseCost: 8},
		// Losing by 3.00 on 15.00 (20%), outside the band.
		listingSpec{id: "big-gap", sku: "BG", price: 15, buyBox: 12, baseCost: 8},
		// Selling below cost.
		listingSpec{id: "under-water", sku: "UW", price: 9, baseCost: 10},
		listingSpec{id: "hold", sku: "H", price: 12, baseCost: 8, action: entity.ActionHoldPrice},
	)

	testCases := []struct {
		category catalog.Category
		expect   []string
	}{
		{catalog.CategoryAll, []string{"winner", "small-gap", "big-gap", "under-water", "hold"}},
		{catalog.CategoryWinners, []string{"winner"}},
		{catalog.CategoryLosers, []string{"small-gap", "big-gap"}},
		{catalog.CategorySmallGapLoser, []string{"small-gap"}},
		{catalog.CategoryNotProfitable, []string{"under-water"}},
		{catalog.CategoryActionHold, []string{"hold"}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.category), func(*testing.T) {
			result := pipeline.Apply(dataset, catalog.Criteria{Category: tc.category}, nil)
			rq.ElementsMatch(tc.expect, ids(result))
		})
	}
}

func TestApplyOpportunityBands(t *testing.T) {
	rq := require.New(t)
	pipeline := catalog.NewPipeline(testThresholds())

	dataset := buildDataset(
		// Buy box at 16.00 on 8.00 costs: profit 5.60, invested 10.40,
		// ROI ~53.8% — strong.
		listingSpec{id: "strong", sku: "S", price: 12, buyBox: 16, baseCost: 8},
		// Buy box at 10.60 on 8.00 costs: profit 1.01, invested 9.59,
		// ROI ~10.5% — moderate.
		listingSpec{id: "moderate", sku: "M", price: 12, buyBox: 10.60, baseCost: 8},
		// Winner never lands in an opportunity band.
		listingSpec{id: "winner", sku: "W", price: 12, buyBox: 16, winner: true, baseCost: 8},
	)

	strong := pipeline.Apply(dataset, catalog.Criteria{Category: catalog.CategoryStrongOpp}, nil)
	rq.Equal([]string{"strong"}, ids(strong))

	moderate := pipeline.Apply(dataset, catalog.Criteria{Category: catalog.CategoryModerateOpp}, nil)
	rq.Equal([]string{"moderate"}, ids(moderate))
}

func TestApplyShippingAndThresholds(t *testing.T) {
	rq := require.New(t)
	pipeline := catalog.NewPipeline(testThresholds())

	dataset := buildDataset(
		listingSpec{id: "large", sku: "L", price: 30, baseCost: 10, shipping: "large-letter"},
		listingSpec{id: "parcel", sku: "P", price: 12, baseCost: 8, shipping: "parcel"},
		listingSpec{id: "thin", sku: "T", price: 10.50, baseCost: 8.50, shipping: "parcel"},
	)

	result := pipeline.Apply(dataset, catalog.Criteria{ShippingGroup: "parcel"}, nil)
	rq.ElementsMatch([]string{"parcel", "thin"}, ids(result))

	// profit(30, 10) = 15.50; profit(12, 8) = 2.20; profit(10.50, 8.50) = 0.425.
	result = pipeline.Apply(dataset, catalog.Criteria{MinProfit: 1}, nil)
	rq.ElementsMatch([]string{"large", "parcel"}, ids(result))

	result = pipeline.Apply(dataset, catalog.Criteria{MinMargin: 18}, nil)
	rq.ElementsMatch([]string{"large", "parcel"}, ids(result))

	// Zero disables both thresholds.
	result = pipeline.Apply(dataset, catalog.Criteria{}, nil)
	rq.Len(result.Ordered, 3)
}

func TestDifferenceSortPreFilters(t *testing.T) {
	rq := require.New(t)
	pipeline := catalog.NewPipeline(testThresholds())

	dataset := buildDataset(
		listingSpec{id: "winner", sku: "W", price: 12, buyBox: 11, winner: true, baseCost: 8},
		listingSpec{id: "no-box", sku: "N", price: 12, baseCost: 8},
		listingSpec{id: "gap-3", sku: "G3", price: 15, buyBox: 12, baseCost: 8},
		listingSpec{id: "gap-1", sku: "G1", price: 13, buyBox: 12, baseCost: 8},
	)

	for _, mode := range []catalog.SortMode{
		catalog.SortGapAsc,
		catalog.SortGapDesc,
		catalog.SortGapPercentAsc,
		catalog.SortGapPercentDesc,
	} {
		result := pipeline.Apply(dataset, catalog.Criteria{Sort: mode}, nil)

		rq.NotContains(ids(result), "winner", "mode %s", mode)
		rq.NotContains(ids(result), "no-box", "mode %s", mode)
		rq.Len(result.Ordered, 2, "mode %s", mode)
	}

	asc := pipeline.Apply(dataset, catalog.Criteria{Sort: catalog.SortGapAsc}, nil)
	rq.Equal([]string{"gap-1", "gap-3"}, ids(asc))

	desc := pipeline.Apply(dataset, catalog.Criteria{Sort: catalog.SortGapDesc}, nil)
	rq.Equal([]string{"gap-3", "gap-1"}, ids(desc))
}

func TestPlainSortModes(t *testing.T) {
	rq := require.New(t)
	pipeline := catalog.NewPipeline(testThresholds())

	dataset := buildDataset(
		listingSpec{id: "cheap", sku: "C", price: 9, baseCost: 5},
		listingSpec{id: "mid", sku: "M", price: 12, baseCost: 8},
		listingSpec{id: "dear", sku: "D", price: 30, baseCost: 10},
	)

	result := pipeline.Apply(dataset, catalog.Criteria{Sort: catalog.SortPriceAsc}, nil)
	rq.Equal([]string{"cheap", "mid", "dear"}, ids(result))

	// "cheap" sits in the 8% fee tier, so 9.00 − 5.00 − 0.72 = 3.28 profit
	// beats "mid" at 12.00 − 8.00 − 1.80 = 2.20 despite the lower price.
	result = pipeline.Apply(dataset, catalog.Criteria{Sort: catalog.SortProfitDesc}, nil)
	rq.Equal([]string{"dear", "cheap", "mid"}, ids(result))

	// Default mode keeps newest snapshots first.
	result = pipeline.Apply(dataset, catalog.Criteria{}, nil)
	rq.Equal([]string{"dear", "mid", "cheap"}, ids(result))
}

func TestBypassReinsertion(t *testing.T) {
	rq := require.New(t)
	pipeline := catalog.NewPipeline(testThresholds())

	dataset := buildDataset(
		listingSpec{id: "red", sku: "BOX-RED", title: "Red box", price: 12, baseCost: 8},
		listingSpec{id: "blue", sku: "BOX-BLUE", title: "Blue box", price: 12, baseCost: 8},
	)

	criteria := catalog.Criteria{Search: "red"}

	// "blue" fails the search but was just updated, so it is pinned to the
	// front of the view.
	bypass := map[string]struct{}{"blue": {}}

	result := pipeline.Apply(dataset, criteria, bypass)
	rq.Equal([]string{"blue", "red"}, ids(result))
	rq.Equal(2, result.Total)

	// A bypassed record that already matches is not duplicated.
	result = pipeline.Apply(dataset, catalog.Criteria{}, bypass)
	rq.Len(result.Ordered, 2)
	rq.ElementsMatch([]string{"red", "blue"}, ids(result))
}
