package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/samber/lo"

	"buybox_console/internal/config"
	"buybox_console/internal/domain"
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/domain/service/catalog"
	"buybox_console/internal/domain/service/pricing"
	"buybox_console/internal/store"
	"buybox_console/pkg/errcodes"
	"buybox_console/pkg/httpx/reply"
	"buybox_console/pkg/httpx/req"
	"buybox_console/pkg/rest"
)

type updateCoordinator interface {
	RefreshPrice(ctx context.Context, id string) (entity.UpdateState, error)
	MatchBuyBox(ctx context.Context, id string, newPrice float64, confirmLowMargin bool) (string, error)
	Highlighted(id string) bool
}

type datasetLoader interface {
	FetchResultsWithLimit(ctx context.Context, limit int) ([]entity.Listing, error)
}

type ListingServer struct {
	store       *store.Store
	coordinator updateCoordinator
	loader      datasetLoader
	calc        pricing.Calculator
	cfg         config.Thresholds
}

func NewListingServer(
	st *store.Store,
	coordinator updateCoordinator,
	loader datasetLoader,
	calc pricing.Calculator,
	cfg config.Thresholds,
) ListingServer {
	return ListingServer{
		store:       st,
		coordinator: coordinator,
		loader:      loader,
		calc:        calc,
		cfg:         cfg,
	}
}

// getV1Listings applies the criteria carried in the query and returns the
// current page. The dashboard always sends its full filter state, so the
// absence of a parameter means "off", not "unchanged".
func (s ListingServer) getV1Listings(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	criteria, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		return err
	}

	if v := r.URL.Query().Get("latestOnly"); v != "" {
		latestOnly, err := strconv.ParseBool(v)
		if err != nil {
			return domain.NewError(errcodes.ValidationError, "latestOnly must be a boolean")
		}
		s.store.SetLatestOnly(latestOnly)
	}

	s.store.SetCriteria(criteria)

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return domain.NewError(errcodes.ValidationError, "page must be an integer")
		}
		s.store.SetPage(page)
	}

	s.store.BeginPagination()
	defer s.store.EndPagination()

	counts := s.store.Counts()

	page := rest.ListingsPage{
		Items: lo.Map(s.store.Visible(), func(l entity.Listing, _ int) rest.Listing {
			return s.newRESTListing(l, counts)
		}),
		Total:    s.store.Total(),
		RawTotal: s.store.RawTotal(),
		Page:     s.store.Page(),
		PerPage:  s.cfg.PerPage,
	}

	reply.JSON(ctx, w, http.StatusOK, page)

	return nil
}

func (s ListingServer) getV1Listing(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	l, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		return domain.NewError(errcodes.ListingNotFound, "unknown listing id")
	}

	reply.JSON(ctx, w, http.StatusOK, s.newRESTListing(l, s.store.Counts()))

	return nil
}

func (s ListingServer) getV1ListingSimulate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	l, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		return domain.NewError(errcodes.ListingNotFound, "unknown listing id")
	}

	price, err := strconv.ParseFloat(r.URL.Query().Get("price"), 64)
	if err != nil {
		return domain.NewError(errcodes.InvalidTargetPrice, "price must be a number")
	}

	sim := s.calc.Simulate(l, price)
	if sim == nil {
		return domain.NewError(errcodes.InvalidTargetPrice,
			"price cannot be evaluated: must be positive with complete cost data")
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSimulation(*sim))

	return nil
}

func (s ListingServer) postV1ListingRefresh(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	id := r.PathValue("id")

	state, err := s.coordinator.RefreshPrice(ctx, id)
	if err != nil {
		return fmt.Errorf("coordinator.RefreshPrice: %w", err)
	}

	result := rest.UpdateResult{State: newRESTUpdateState(state)}

	if l, ok := s.store.Get(id); ok {
		listing := s.newRESTListing(l, s.store.Counts())
		result.Listing = &listing
	}

	reply.JSON(ctx, w, http.StatusOK, result)

	return nil
}

func (s ListingServer) postV1ListingMatchBuyBox(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	id := r.PathValue("id")

	var request rest.MatchBuyBoxRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	feedID, err := s.coordinator.MatchBuyBox(ctx, id, request.NewPrice, request.ConfirmLowMargin)
	if err != nil {
		return fmt.Errorf("coordinator.MatchBuyBox: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.MatchBuyBoxResult{
		FeedID: feedID,
		State:  newRESTUpdateState(s.store.UpdateStateFor(id)),
	})

	return nil
}

func (s ListingServer) postV1ListingsReload(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return domain.NewError(errcodes.ValidationError, "limit must be a non-negative integer")
		}
		limit = n
	}

	listings, err := s.loader.FetchResultsWithLimit(ctx, limit)
	if err != nil {
		return fmt.Errorf("loader.FetchResultsWithLimit: %w", err)
	}

	s.store.ReplaceAll(listings)

	reply.JSON(ctx, w, http.StatusOK, rest.ReloadResult{
		Loaded:   s.store.RawTotal(),
		Distinct: len(s.store.Counts()),
	})

	return nil
}

func (s ListingServer) postV1ListingSelect(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")

	if _, ok := s.store.Get(id); !ok {
		return domain.NewError(errcodes.ListingNotFound, "unknown listing id")
	}

	s.store.Select(id)
	reply.OK(w)

	return nil
}

func (s ListingServer) deleteV1ListingSelect(w http.ResponseWriter, r *http.Request) error {
	s.store.Deselect(r.PathValue("id"))
	reply.OK(w)

	return nil
}

// getV1Opportunities returns the top listings by untapped buy-box profit,
// independent of the active view criteria.
func (s ListingServer) getV1Opportunities(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return domain.NewError(errcodes.ValidationError, "limit must be a positive integer")
		}
		limit = n
	}

	pipeline := catalog.NewPipeline(s.cfg)
	result := pipeline.Apply(s.store.All(), catalog.Criteria{Sort: catalog.SortOpportunityDesc}, nil)

	counts := s.store.Counts()

	opportunities := lo.Filter(result.Ordered, func(l entity.Listing, _ int) bool {
		return l.Metrics.ProfitOpportunity > 0
	})
	if len(opportunities) > limit {
		opportunities = opportunities[:limit]
	}

	reply.JSON(ctx, w, http.StatusOK, lo.Map(opportunities, func(l entity.Listing, _ int) rest.Listing {
		return s.newRESTListing(l, counts)
	}))

	return nil
}

func criteriaFromQuery(q url.Values) (catalog.Criteria, error) {
	c := catalog.Criteria{
		Search:        q.Get("search"),
		Category:      catalog.Category(q.Get("category")),
		ShippingGroup: q.Get("shipping"),
		Sort:          catalog.SortMode(q.Get("sort")),
	}

	if v := q.Get("minProfit"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return catalog.Criteria{}, domain.NewError(errcodes.ValidationError, "minProfit must be a number")
		}
		c.MinProfit = f
	}

	if v := q.Get("minMargin"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return catalog.Criteria{}, domain.NewError(errcodes.ValidationError, "minMargin must be a number")
		}
		c.MinMargin = f
	}

	return c, nil
}
