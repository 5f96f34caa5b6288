package server_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"buybox_console/internal/config"
	"buybox_console/internal/domain"
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/domain/service/pricing"
	"buybox_console/internal/server"
	"buybox_console/internal/store"
	"buybox_console/pkg/errcodes"
	"buybox_console/pkg/rest"
	"buybox_console/pkg/schedule"
	"buybox_console/pkg/tests"
)

type coordinatorStub struct {
	refreshState entity.UpdateState
	refreshErr   error
	feedID       string
	matchErr     error
	highlighted  map[string]bool
}

func (c *coordinatorStub) RefreshPrice(context.Context, string) (entity.UpdateState, error) {
	return c.refreshState, c.refreshErr
}

func (c *coordinatorStub) MatchBuyBox(context.Context, string, float64, bool) (string, error) {
	return c.feedID, c.matchErr
}

func (c *coordinatorStub) Highlighted(id string) bool {
	return c.highlighted[id]
}

type loaderStub struct {
	listings []entity.Listing
	err      error
	gotLimit int
}

func (l *loaderStub) FetchResultsWithLimit(_ context.Context, limit int) ([]entity.Listing, error) {
	l.gotLimit = limit
	return l.listings, l.err
}

type pollerStub struct {
	statuses []entity.FeedStatus
}

func (p *pollerStub) Statuses() []entity.FeedStatus { return p.statuses }

type queueStub struct {
	depth int
}

func (q *queueStub) QueueDepth() int              { return q.depth }
func (q *queueStub) EstimatedWait() time.Duration { return time.Duration(q.depth) * 2 * time.Second }

type fixture struct {
	api         tests.APIClient
	store       *store.Store
	coordinator *coordinatorStub
	loader      *loaderStub
	poller      *pollerStub
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	cfg := config.Thresholds{
		LowFeeRate:      0.08,
		StandardFeeRate: 0.15,
		FeeTierBoundary: 10.0,
		BypassWindow:    30 * time.Second,
		PerPage:         50,
	}

	calc := pricing.NewCalculator(cfg)
	st := store.New(cfg, calc, schedule.NewManualScheduler())

	st.ReplaceAll([]entity.Listing{
		{
			ID:               "r-1",
			SKU:              "BOX-RED",
			ASIN:             "B001",
			Title:            "Red box",
			YourCurrentPrice: 12,
			BaseCost:         8,
			CapturedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:               "r-2",
			SKU:              "BOX-BLUE",
			ASIN:             "B002",
			Title:            "Blue box",
			YourCurrentPrice: 14,
			BaseCost:         9,
			CapturedAt:       time.Date(2026, 8, 1, 12, 1, 0, 0, time.UTC),
		},
	})

	coordinator := &coordinatorStub{highlighted: map[string]bool{}}
	loader := &loaderStub{}
	poller := &pollerStub{}

	srv := server.NewServer(
		server.NewListingServer(st, coordinator, loader, calc, cfg),
		server.NewFeedServer(poller, &queueStub{depth: 3}),
	)

	router := chi.NewRouter()
	srv.RegisterRoutes(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return fixture{
		api:         tests.NewAPIClient(ts.URL, nil),
		store:       st,
		coordinator: coordinator,
		loader:      loader,
		poller:      poller,
	}
}

func TestGetListings(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	var page rest.ListingsPage
	_, err := f.api.Get(context.Background(), "/v1/listings?search=red", nil, &page, nil)
	rq.NoError(err)

	rq.Equal(1, page.Total)
	rq.Equal(2, page.RawTotal)
	rq.Len(page.Items, 1)
	rq.Equal("r-1", page.Items[0].ID)
	rq.Equal(1, page.Items[0].SnapshotCount)
	rq.NotNil(page.Items[0].Metrics)
	rq.InDelta(2.20, page.Items[0].Metrics.CurrentProfit, 1e-9)
}

func TestSimulate(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	var sim rest.Simulation
	resp, err := f.api.Get(context.Background(), "/v1/listings/r-1/simulate?price=9.99", nil, &sim, nil)
	rq.NoError(err)
	rq.Equal(200, resp.StatusCode)

	rq.Equal(0.08, sim.FeeRate)
	rq.InDelta(9.99-8-9.99*0.08, sim.Profit, 1e-9)

	var restErr rest.Error
	resp, err = f.api.Get(context.Background(), "/v1/listings/r-1/simulate?price=0", nil, nil, &restErr)
	rq.NoError(err)
	rq.Equal(400, resp.StatusCode)
	rq.Equal(errcodes.InvalidTargetPrice.String(), restErr.Code)
}

func TestRefresh(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	f.coordinator.refreshState = entity.UpdateState{
		Phase:         entity.UpdateSucceeded,
		Verified:      true,
		LastUpdatedAt: time.Now(),
	}

	var result rest.UpdateResult
	_, err := f.api.Post(context.Background(), "/v1/listings/r-1/refresh", nil, nil, &result, nil)
	rq.NoError(err)

	rq.Equal(string(entity.UpdateSucceeded), result.State.Phase)
	rq.True(result.State.Verified)
	rq.NotNil(result.Listing)
	rq.Equal("r-1", result.Listing.ID)
}

func TestMatchBuyBoxMarginGate(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	f.coordinator.matchErr = domain.NewError(errcodes.MarginTooLow,
		"projected margin 4.2% is below the 10.0% minimum; confirm to proceed")

	var restErr rest.Error
	resp, err := f.api.Post(context.Background(), "/v1/listings/r-1/match-buy-box", nil,
		rest.MatchBuyBoxRequest{NewPrice: 8.40}, nil, &restErr)
	rq.NoError(err)

	rq.Equal(422, resp.StatusCode)
	rq.Equal(errcodes.MarginTooLow.String(), restErr.Code)
	rq.Contains(restErr.Message, "confirm to proceed")
}

func TestMatchBuyBoxSuccess(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	f.coordinator.feedID = "feed-9"

	var result rest.MatchBuyBoxResult
	_, err := f.api.Post(context.Background(), "/v1/listings/r-1/match-buy-box", nil,
		rest.MatchBuyBoxRequest{NewPrice: 11.50, ConfirmLowMargin: true}, &result, nil)
	rq.NoError(err)
	rq.Equal("feed-9", result.FeedID)
}

func TestMatchBuyBoxValidation(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	var restErr rest.Error
	resp, err := f.api.Post(context.Background(), "/v1/listings/r-1/match-buy-box", nil,
		rest.MatchBuyBoxRequest{NewPrice: 0}, nil, &restErr)
	rq.NoError(err)
	rq.Equal(400, resp.StatusCode)
}

func TestReload(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	f.loader.listings = []entity.Listing{
		{ID: "n-1", SKU: "NEW-1", YourCurrentPrice: 10, BaseCost: 5, CapturedAt: time.Now()},
		{ID: "n-2", SKU: "NEW-1", YourCurrentPrice: 11, BaseCost: 5, CapturedAt: time.Now().Add(time.Minute)},
	}

	var result rest.ReloadResult
	_, err := f.api.Post(context.Background(), "/v1/listings/reload?limit=100", nil, nil, &result, nil)
	rq.NoError(err)

	rq.Equal(100, f.loader.gotLimit)
	rq.Equal(2, result.Loaded)
	rq.Equal(1, result.Distinct)
	rq.Equal(2, f.store.RawTotal())
}

func TestSelection(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	_, err := f.api.Post(context.Background(), "/v1/listings/r-2/select", nil, nil, nil, nil)
	rq.NoError(err)
	rq.Equal([]string{"r-2"}, f.store.Selected())

	var restErr rest.Error
	resp, err := f.api.Post(context.Background(), "/v1/listings/ghost/select", nil, nil, nil, &restErr)
	rq.NoError(err)
	rq.Equal(404, resp.StatusCode)

	_, err = f.api.Delete(context.Background(), "/v1/listings/r-2/select", nil, nil, nil)
	rq.NoError(err)
	rq.Empty(f.store.Selected())
}

func TestOpportunities(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	// Give r-2 a buy box worth winning; r-1 has no buy box and therefore no
	// opportunity.
	bb := 16.0
	f.store.ReplaceOne(entity.Listing{
		ID:               "r-2",
		SKU:              "BOX-BLUE",
		ASIN:             "B002",
		Title:            "Blue box",
		YourCurrentPrice: 14,
		BuyBoxPrice:      &bb,
		BaseCost:         9,
		CapturedAt:       time.Date(2026, 8, 1, 12, 1, 0, 0, time.UTC),
	})

	var opportunities []rest.Listing
	_, err := f.api.Get(context.Background(), "/v1/opportunities", nil, &opportunities, nil)
	rq.NoError(err)

	rq.Len(opportunities, 1)
	rq.Equal("r-2", opportunities[0].ID)
	rq.Positive(opportunities[0].Metrics.ProfitOpportunity)
}

func TestFeedsAndQueue(t *testing.T) {
	rq := require.New(t)
	f := newFixture(t)

	f.poller.statuses = []entity.FeedStatus{
		{FeedID: "feed-2", SKU: "BOX-BLUE", State: entity.FeedProcessing},
		{FeedID: "feed-1", SKU: "BOX-RED", State: entity.FeedCompleted},
	}

	var feeds []rest.FeedStatus
	_, err := f.api.Get(context.Background(), "/v1/feeds", nil, &feeds, nil)
	rq.NoError(err)
	rq.Len(feeds, 2)
	rq.Equal("feed-1", feeds[0].FeedID, "stable ordering")

	var queue rest.QueueInfo
	_, err = f.api.Get(context.Background(), "/v1/queue", nil, &queue, nil)
	rq.NoError(err)
	rq.Equal(int64(3), queue.Depth)
	rq.Equal(int64(6000), queue.EstimatedWaitMs)
}
