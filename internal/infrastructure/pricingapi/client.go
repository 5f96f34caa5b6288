// Package pricingapi is the HTTP client for the external pricing service:
// bulk dataset fetches, live-pricing updates, buy-box matching and feed
// status checks. Upstream failures are classified into domain error codes
// here so nothing above this package inspects HTTP statuses.
package pricingapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"buybox_console/internal/config"
	"buybox_console/internal/domain"
	"buybox_console/internal/domain/entity"
	"buybox_console/pkg/contextx"
	"buybox_console/pkg/errcodes"
	"buybox_console/pkg/httpx"
	"buybox_console/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip
	logger = contextx.LoggerFromContextOrDefault          //nolint:gochecknoglobals

	inFlightGauge = promauto.NewGauge(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "buybox_pricing_api_in_flight",
		Help: "Requests currently outstanding against the pricing API.",
	})
)

// perCallEstimate is the coarse heuristic behind EstimatedWait. The API
// serializes heavy calls behind a rate limiter, so depth translates roughly
// linearly into wait time.
const perCallEstimate = 2 * time.Second

type Client struct {
	baseURL    string
	sellerID   string
	fetchLimit int
	timeout    time.Duration

	httpClient *http.Client
	inFlight   atomic.Int64
}

func NewClient(cfg config.PricingAPI) *Client {
	transport := httpx.NewLoggingRoundTripper(
		httpx.NewAPIKeyRoundTripper(http.DefaultTransport, cfg.APIKey),
		httpx.WithLogFieldMaxLen(cfg.LogFieldMaxLen),
		httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
	)

	return &Client{
		baseURL:    cfg.BaseURL,
		sellerID:   cfg.SellerID,
		fetchLimit: cfg.FetchLimit,
		timeout:    cfg.RequestTimeout,
		httpClient: &http.Client{Transport: transport},
	}
}

// FetchResults pulls the full dataset with the configured limit.
func (c *Client) FetchResults(ctx context.Context) ([]entity.Listing, error) {
	return c.FetchResultsWithLimit(ctx, 0)
}

// FetchResultsWithLimit pulls the dataset with an explicit limit (0 uses the
// configured one). A size-exceeded rejection carrying a suggested smaller
// limit is retried exactly once with that limit; a second rejection surfaces
// to the operator.
func (c *Client) FetchResultsWithLimit(ctx context.Context, limit int) ([]entity.Listing, error) {
	if limit <= 0 {
		limit = c.fetchLimit
	}

	records, err := c.fetchResults(ctx, limit)
	if err == nil {
		return records, nil
	}

	var sizeErr *sizeExceededError
	if !errors.As(err, &sizeErr) || sizeErr.SuggestedLimit <= 0 {
		return nil, err
	}

	logger(ctx).Info("dataset too large, retrying with suggested limit",
		"limit", limit,
		"suggestedLimit", sizeErr.SuggestedLimit,
	)

	return c.fetchResults(ctx, sizeErr.SuggestedLimit)
}

func (c *Client) fetchResults(ctx context.Context, limit int) ([]entity.Listing, error) {
	var resp resultsResponse

	url := fmt.Sprintf("%s/results?limit=%d", c.baseURL, limit)
	if err := c.call(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	listings := make([]entity.Listing, 0, len(resp.Results))
	for _, r := range resp.Results {
		listings = append(listings, r.toDomain())
	}

	return listings, nil
}

// FetchRecord is the verify-step fetch of a single fresh record.
func (c *Client) FetchRecord(ctx context.Context, id string) (entity.Listing, error) {
	var resp recordSchema

	url := fmt.Sprintf("%s/record/%s", c.baseURL, id)
	if err := c.call(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return entity.Listing{}, err
	}

	return resp.toDomain(), nil
}

// SubmitLiveUpdate triggers a live re-price of one listing. The response may
// include a partial record; nil means the server sent none.
func (c *Client) SubmitLiveUpdate(ctx context.Context, sku, recordID string) (*entity.Listing, error) {
	req := liveUpdateRequest{
		SKU:      sku,
		RecordID: recordID,
		UserID:   c.userID(ctx),
	}

	var resp liveUpdateResponse
	if err := c.call(ctx, http.MethodPost, c.baseURL+"/live-pricing/update", req, &resp); err != nil {
		return nil, err
	}

	if resp.Record == nil {
		return nil, nil
	}

	partial := resp.Record.toDomain()

	return &partial, nil
}

type MatchBuyBoxParams struct {
	ASIN             string
	SKU              string
	NewPrice         float64
	RecordID         string
	ConfirmLowMargin bool
}

// MatchBuyBox submits a price change and returns the feed id tracking it.
func (c *Client) MatchBuyBox(ctx context.Context, p MatchBuyBoxParams) (string, error) {
	req := matchBuyBoxRequest{
		ASIN:             p.ASIN,
		SKU:              p.SKU,
		NewPrice:         p.NewPrice,
		RecordID:         p.RecordID,
		ConfirmLowMargin: p.ConfirmLowMargin,
	}

	var resp matchBuyBoxResponse
	if err := c.call(ctx, http.MethodPost, c.baseURL+"/match-buy-box", req, &resp); err != nil {
		return "", err
	}

	return resp.FeedID, nil
}

type FeedCheckParams struct {
	FeedID   string
	RecordID string
	SKU      string
	ASIN     string
}

type FeedCheck struct {
	IsComplete     bool
	NeedsAttention bool
}

func (c *Client) CheckFeedStatus(ctx context.Context, p FeedCheckParams) (FeedCheck, error) {
	req := checkFeedStatusRequest{
		FeedID:   p.FeedID,
		RecordID: p.RecordID,
		SKU:      p.SKU,
		ASIN:     p.ASIN,
	}

	var resp checkFeedStatusResponse
	if err := c.call(ctx, http.MethodPost, c.baseURL+"/check-feed-status", req, &resp); err != nil {
		return FeedCheck{}, domain.WrapError(err, errcodes.FeedCheckFailed, "feed status check failed")
	}

	return FeedCheck{
		IsComplete:     resp.IsComplete,
		NeedsAttention: resp.NeedsAttention,
	}, nil
}

// QueueDepth reports requests currently outstanding. Informational only; it
// is surfaced alongside rate-limit errors, never used for admission control.
func (c *Client) QueueDepth() int {
	return int(c.inFlight.Load())
}

func (c *Client) EstimatedWait() time.Duration {
	return time.Duration(c.QueueDepth()) * perCallEstimate
}

// userID resolves the seller identity an update is attributed to: a seller id
// on the context wins, the configured account is the fallback.
func (c *Client) userID(ctx context.Context) string {
	if sellerID, err := contextx.SellerIDFromContext(ctx); err == nil {
		return sellerID.String()
	}

	return c.sellerID
}

// call runs one bounded request/response exchange. Every call gets its own
// deadline; a submit or verify fetch that outlives it is treated as failed.
func (c *Client) call(ctx context.Context, method, url string, body, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.inFlight.Add(1)
	inFlightGauge.Inc()
	resp, err := c.httpClient.Do(req)
	c.inFlight.Add(-1)
	inFlightGauge.Dec()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.WrapError(err, errcodes.RequestTimeout, "pricing API request timed out")
		}
		return domain.WrapError(err, errcodes.InternalServerError, "pricing API request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("io.ReadAll: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return classify(resp.StatusCode, raw)
	}

	if dest == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return nil
}

// sizeExceededError carries the server-suggested limit out of classify so
// FetchResults can retry with it.
type sizeExceededError struct {
	SuggestedLimit int
}

func (e *sizeExceededError) Error() string {
	return fmt.Sprintf("dataset too large, suggested limit %d", e.SuggestedLimit)
}

// classify maps an upstream rejection to a domain error code. The body's
// error code takes precedence; the HTTP status is the fallback for bodies we
// cannot parse.
func classify(status int, raw []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(raw, &envelope)

	code := envelope.Error.Code
	message := envelope.Error.Message

	switch code {
	case "DATASET_TOO_LARGE":
		return domain.WrapError(
			&sizeExceededError{SuggestedLimit: envelope.Error.SuggestedLimit},
			errcodes.DatasetTooLarge,
			"dataset exceeds the fetch limit; narrow the request",
		)
	case "RECENTLY_UPDATED":
		// Shown verbatim: the upstream message says when the listing was
		// last changed and when a retry becomes possible.
		return domain.NewError(errcodes.RecentlyUpdated, message)
	case "RATE_LIMITED":
		return domain.NewError(errcodes.RateLimited, "pricing API is rate limiting requests; try again shortly")
	case "MARGIN_TOO_LOW":
		return domain.NewError(errcodes.MarginTooLow, message)
	case "ACCESS_DENIED":
		return domain.NewError(errcodes.AccessDenied, "pricing API rejected the account credentials")
	}

	switch status {
	case http.StatusRequestEntityTooLarge:
		return domain.WrapError(
			&sizeExceededError{SuggestedLimit: envelope.Error.SuggestedLimit},
			errcodes.DatasetTooLarge,
			"dataset exceeds the fetch limit; narrow the request",
		)
	case http.StatusConflict:
		return domain.NewError(errcodes.RecentlyUpdated, message)
	case http.StatusTooManyRequests:
		return domain.NewError(errcodes.RateLimited, "pricing API is rate limiting requests; try again shortly")
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.NewError(errcodes.AccessDenied, "pricing API rejected the account credentials")
	case http.StatusNotFound:
		return domain.NewError(errcodes.ListingNotFound, "record not found upstream")
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return domain.NewError(errcodes.RequestTimeout, "pricing API request timed out")
	default:
		if message == "" {
			message = fmt.Sprintf("pricing API returned status %d", status)
		}
		return domain.NewError(errcodes.InternalServerError, message)
	}
}
