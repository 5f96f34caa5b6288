package worker

import (
	"context"
	"sync"
	"time"

	"buybox_console/internal/config"
	"buybox_console/internal/domain/entity"
	"buybox_console/internal/infrastructure/pricingapi"
	"buybox_console/pkg/logx"
)

type feedChecker interface {
	CheckFeedStatus(ctx context.Context, p pricingapi.FeedCheckParams) (pricingapi.FeedCheck, error)
}

// FeedPoller tracks submitted price-change feeds and sweeps their status on
// a fixed interval until each reaches a terminal state. A failed check is
// not terminal; it is retried on the next cycle.
type FeedPoller struct {
	client   feedChecker
	interval time.Duration

	feedsMu  sync.Mutex
	feeds    map[string]entity.FeedStatus
	checking map[string]struct{}

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewFeedPoller(client feedChecker, cfg config.Thresholds) *FeedPoller {
	return &FeedPoller{
		client:   client,
		interval: cfg.FeedPollInterval,
		feeds:    make(map[string]entity.FeedStatus),
		checking: make(map[string]struct{}),
	}
}

// Track registers a freshly submitted feed for polling. Re-tracking a known
// feed id resets it to Submitted.
func (w *FeedPoller) Track(feedID, recordID, sku, asin string) {
	w.feedsMu.Lock()
	defer w.feedsMu.Unlock()

	w.feeds[feedID] = entity.FeedStatus{
		FeedID:   feedID,
		RecordID: recordID,
		SKU:      sku,
		ASIN:     asin,
		State:    entity.FeedSubmitted,
	}
}

// Statuses returns a snapshot of every tracked feed, terminal ones included.
func (w *FeedPoller) Statuses() []entity.FeedStatus {
	w.feedsMu.Lock()
	defer w.feedsMu.Unlock()

	statuses := make([]entity.FeedStatus, 0, len(w.feeds))
	for _, f := range w.feeds {
		statuses = append(statuses, f)
	}

	return statuses
}

func (w *FeedPoller) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Starting an already running poller is a no-op.
	if w.isRunning {
		return nil
	}

	pollCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		w.run(pollCtx)
	}()

	return nil
}

func (w *FeedPoller) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *FeedPoller) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

func (w *FeedPoller) run(ctx context.Context) {
	logger(ctx).Info("feed poller started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("feed poller stopped")
			return
		case <-ticker.C:
			w.CheckNow(ctx)
		}
	}
}

// CheckNow runs one sweep over every non-terminal feed. Feeds whose check is
// still outstanding from a previous sweep are skipped.
func (w *FeedPoller) CheckNow(ctx context.Context) {
	for _, feed := range w.pollable() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.checkOne(ctx, feed)
	}
}

func (w *FeedPoller) pollable() []entity.FeedStatus {
	w.feedsMu.Lock()
	defer w.feedsMu.Unlock()

	due := make([]entity.FeedStatus, 0, len(w.feeds))

	for id, f := range w.feeds {
		if f.State.Terminal() {
			continue
		}
		if _, busy := w.checking[id]; busy {
			continue
		}

		w.checking[id] = struct{}{}
		due = append(due, f)
	}

	return due
}

func (w *FeedPoller) checkOne(ctx context.Context, feed entity.FeedStatus) {
	defer func() {
		w.feedsMu.Lock()
		delete(w.checking, feed.FeedID)
		w.feedsMu.Unlock()
	}()

	check, err := w.client.CheckFeedStatus(ctx, pricingapi.FeedCheckParams{
		FeedID:   feed.FeedID,
		RecordID: feed.RecordID,
		SKU:      feed.SKU,
		ASIN:     feed.ASIN,
	})

	state := classifyFeed(check, err)

	if err != nil {
		logger(ctx).Warn("feed status check failed",
			logx.FieldFeedID, feed.FeedID,
			logx.FieldError, err,
		)
	}

	feedChecks.WithLabelValues(string(state)).Inc()

	w.feedsMu.Lock()
	feed.State = state
	feed.LastCheckedAt = time.Now()
	w.feeds[feed.FeedID] = feed
	w.feedsMu.Unlock()

	if state.Terminal() {
		logger(ctx).Info("feed reached terminal state",
			logx.FieldFeedID, feed.FeedID,
			logx.FieldSKU, feed.SKU,
			"state", state,
		)
	}
}

func classifyFeed(check pricingapi.FeedCheck, err error) entity.FeedState {
	switch {
	case err != nil:
		return entity.FeedCheckFailed
	case check.IsComplete && check.NeedsAttention:
		return entity.FeedCompletedWithIssues
	case check.IsComplete:
		return entity.FeedCompleted
	default:
		return entity.FeedProcessing
	}
}
