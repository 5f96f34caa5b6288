package worker

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"buybox_console/internal/config"
	"buybox_console/internal/domain"
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/infrastructure/pricingapi"
	"buybox_console/internal/store"
	"buybox_console/pkg/errcodes"
	"buybox_console/pkg/logx"
)

type PricingClient interface {
	SubmitLiveUpdate(ctx context.Context, sku, recordID string) (*entity.Listing, error)
	FetchRecord(ctx context.Context, id string) (entity.Listing, error)
	MatchBuyBox(ctx context.Context, p pricingapi.MatchBuyBoxParams) (string, error)
}

type feedTracker interface {
	Track(feedID, recordID, sku, asin string)
}

// Coordinator runs the submit / verify / resolve flow for price changes.
// Per-listing operations are coalesced: a second caller for an id already in
// flight waits for the first result instead of submitting again.
type Coordinator struct {
	client  PricingClient
	store   *store.Store
	guard   Guard
	tracker feedTracker
	cfg     config.Thresholds

	// highlights marks rows as "just changed" for a short visual window.
	highlights *cache.Cache

	mu       sync.Mutex
	inflight map[string]*operation
}

type operation struct {
	done  chan struct{}
	state entity.UpdateState
	err   error
}

func NewCoordinator(
	client PricingClient,
	st *store.Store,
	guard Guard,
	tracker feedTracker,
	cfg config.Thresholds,
) *Coordinator {
	return &Coordinator{
		client:     client,
		store:      st,
		guard:      guard,
		tracker:    tracker,
		cfg:        cfg,
		highlights: cache.New(cfg.HighlightWindow, time.Minute),
		inflight:   make(map[string]*operation),
	}
}

// RefreshPrice triggers a live re-price of one listing and resolves the
// store record from the freshest data obtainable. Blocks until the flow
// finishes or ctx is cancelled while waiting on a coalesced operation.
func (c *Coordinator) RefreshPrice(ctx context.Context, id string) (entity.UpdateState, error) {
	l, ok := c.store.Get(id)
	if !ok {
		return entity.UpdateState{}, domain.NewError(errcodes.ListingNotFound, "unknown listing id")
	}

	c.mu.Lock()
	if op, running := c.inflight[id]; running {
		c.mu.Unlock()

		select {
		case <-op.done:
			return op.state, op.err
		case <-ctx.Done():
			return entity.UpdateState{}, ctx.Err()
		}
	}

	op := &operation{done: make(chan struct{})}
	c.inflight[id] = op
	c.mu.Unlock()

	op.state, op.err = c.run(ctx, l)
	close(op.done)

	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()

	return op.state, op.err
}

func (c *Coordinator) run(ctx context.Context, l entity.Listing) (entity.UpdateState, error) {
	if c.store.UpdateStateFor(l.ID).InFlight() {
		return entity.UpdateState{}, domain.NewError(errcodes.UpdateInFlight, "an update for this listing is already in progress")
	}

	c.store.BeginUpdate()
	defer c.store.EndUpdate()

	c.setState(l.ID, entity.UpdateState{Phase: entity.UpdateSubmitting})

	partial, err := c.client.SubmitLiveUpdate(ctx, l.SKU, l.ID)
	if err != nil {
		updatesFailed.Inc()

		state := entity.UpdateState{Phase: entity.UpdateFailed, LastError: err.Error()}
		c.setState(l.ID, state)

		logger(ctx).Error("live-pricing submit failed",
			logx.FieldListingID, l.ID,
			logx.FieldSKU, l.SKU,
			logx.FieldError, err,
		)

		return state, err
	}

	updatesSubmitted.Inc()
	c.setState(l.ID, entity.UpdateState{Phase: entity.UpdateVerifying})

	// The verify sequence deliberately survives the caller hanging up: once
	// a change is submitted it runs to completion.
	vctx := context.WithoutCancel(ctx)

	state := entity.UpdateState{Phase: entity.UpdateSucceeded, LastUpdatedAt: time.Now()}

	if fresh, verified := c.verify(vctx, l.ID); verified {
		updatesVerified.Inc()
		state.Verified = true
		c.store.ReplaceOne(fresh)
	} else {
		updatesFallback.Inc()

		if partial != nil {
			c.store.ReplaceOne(mergePartial(l, *partial))
		}

		logger(ctx).Warn("verification exhausted, resolved from partial data",
			logx.FieldListingID, l.ID,
			"havePartial", partial != nil,
		)
	}

	c.setState(l.ID, state)
	c.markChanged(l.ID)

	return state, nil
}

// verify fetches the record until it falls inside the freshness window,
// backing off a little longer after each miss.
func (c *Coordinator) verify(ctx context.Context, id string) (entity.Listing, bool) {
	if err := wait(ctx, c.cfg.VerifyDelay); err != nil {
		return entity.Listing{}, false
	}

	for attempt := 1; attempt <= c.cfg.VerifyRetries; attempt++ {
		fresh, err := c.client.FetchRecord(ctx, id)
		if err == nil && time.Since(fresh.CapturedAt) <= c.cfg.FreshnessWindow {
			return fresh, true
		}

		logger(ctx).Debug("verify attempt missed",
			logx.FieldListingID, id,
			logx.FieldAttempt, attempt,
			logx.FieldError, err,
		)

		if attempt < c.cfg.VerifyRetries {
			if err := wait(ctx, time.Duration(attempt)*c.cfg.VerifyBackoff); err != nil {
				break
			}
		}
	}

	return entity.Listing{}, false
}

// MatchBuyBox submits a price change after the margin gate passes and hands
// the returned feed id to the status poller.
func (c *Coordinator) MatchBuyBox(
	ctx context.Context,
	id string,
	newPrice float64,
	confirmLowMargin bool,
) (string, error) {
	l, ok := c.store.Get(id)
	if !ok {
		return "", domain.NewError(errcodes.ListingNotFound, "unknown listing id")
	}

	if c.store.UpdateStateFor(id).InFlight() {
		return "", domain.NewError(errcodes.UpdateInFlight, "an update for this listing is already in progress")
	}

	if err := c.guard.Check(l, newPrice, confirmLowMargin); err != nil {
		return "", err
	}

	c.store.BeginUpdate()
	defer c.store.EndUpdate()

	c.setState(id, entity.UpdateState{Phase: entity.UpdateSubmitting})

	feedID, err := c.client.MatchBuyBox(ctx, pricingapi.MatchBuyBoxParams{
		ASIN:             l.ASIN,
		SKU:              l.SKU,
		NewPrice:         newPrice,
		RecordID:         l.ID,
		ConfirmLowMargin: confirmLowMargin,
	})
	if err != nil {
		updatesFailed.Inc()
		c.setState(id, entity.UpdateState{Phase: entity.UpdateFailed, LastError: err.Error()})

		return "", err
	}

	updatesSubmitted.Inc()

	// The feed poller owns confirmation from here; the state is recorded
	// unverified until the feed completes.
	c.setState(id, entity.UpdateState{Phase: entity.UpdateSucceeded, LastUpdatedAt: time.Now()})
	c.store.SetCustomPrice(id, newPrice)

	if c.tracker != nil {
		c.tracker.Track(feedID, l.ID, l.SKU, l.ASIN)
	}

	c.markChanged(id)

	logger(ctx).Info("match buy box submitted",
		logx.FieldListingID, id,
		logx.FieldSKU, l.SKU,
		logx.FieldNewPrice, newPrice,
		logx.FieldFeedID, feedID,
	)

	return feedID, nil
}

// Highlighted reports whether the listing changed within the visual
// highlight window.
func (c *Coordinator) Highlighted(id string) bool {
	_, ok := c.highlights.Get(id)
	return ok
}

func (c *Coordinator) setState(id string, state entity.UpdateState) {
	c.store.SetUpdateState(id, state)
}

func (c *Coordinator) markChanged(id string) {
	c.store.MarkUpdated(id)
	c.highlights.SetDefault(id, struct{}{})
}

// mergePartial folds the non-empty fields of a partial record into the
// current one. Best effort only: callers record the result as unverified.
func mergePartial(current, partial entity.Listing) entity.Listing {
	merged := current

	if partial.YourCurrentPrice > 0 {
		merged.YourCurrentPrice = partial.YourCurrentPrice
	}
	if partial.BuyBoxPrice != nil {
		merged.BuyBoxPrice = partial.BuyBoxPrice
		merged.IsWinner = partial.IsWinner
	}
	if partial.CompetitorPrice != nil {
		merged.CompetitorPrice = partial.CompetitorPrice
	}
	if partial.RecommendedAction != "" {
		merged.RecommendedAction = partial.RecommendedAction
	}
	if !partial.CapturedAt.IsZero() {
		merged.CapturedAt = partial.CapturedAt
	}

	return merged
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
