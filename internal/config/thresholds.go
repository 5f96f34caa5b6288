package config

import "time"

// Thresholds collects every pricing constant in one injectable place, so the
// calculator, the safety gate and the workers all agree on the numbers.
type Thresholds struct {
	// Referral fee step function: LowFeeRate below the boundary price,
	// StandardFeeRate at or above it. No interpolation.
	LowFeeRate       float64 `env:"FEE_RATE_LOW" envDefault:"0.08"`
	StandardFeeRate  float64 `env:"FEE_RATE_STANDARD" envDefault:"0.15"`
	FeeTierBoundary  float64 `env:"FEE_TIER_BOUNDARY" envDefault:"10.0"`

	// MinMarginPercent guards match-buy-box submissions: a projected margin
	// below it needs explicit operator confirmation.
	MinMarginPercent float64 `env:"MIN_MARGIN_PERCENT" envDefault:"10"`

	// SmallGapPercent bounds the "small gap loser" bucket: losing the box
	// by no more than this share of own price.
	SmallGapPercent float64 `env:"SMALL_GAP_PERCENT" envDefault:"5"`

	// Opportunity margin bands (buy-box ROI margin).
	StrongOpportunityMargin   float64 `env:"STRONG_OPPORTUNITY_MARGIN" envDefault:"20"`
	ModerateOpportunityMargin float64 `env:"MODERATE_OPPORTUNITY_MARGIN" envDefault:"10"`

	// BypassWindow keeps a just-updated listing visible regardless of
	// filters; HighlightWindow is the purely visual "just changed" marker.
	BypassWindow    time.Duration `env:"BYPASS_WINDOW" envDefault:"30s"`
	HighlightWindow time.Duration `env:"HIGHLIGHT_WINDOW" envDefault:"3s"`

	// Verify loop: initial settle delay, bounded retries with growing
	// backoff, and the freshness window a fetched record must fall inside.
	VerifyDelay     time.Duration `env:"VERIFY_DELAY" envDefault:"2s"`
	VerifyRetries   int           `env:"VERIFY_RETRIES" envDefault:"3"`
	VerifyBackoff   time.Duration `env:"VERIFY_BACKOFF" envDefault:"3s"`
	FreshnessWindow time.Duration `env:"FRESHNESS_WINDOW" envDefault:"5m"`

	FeedPollInterval time.Duration `env:"FEED_POLL_INTERVAL" envDefault:"30s"`

	PerPage int `env:"PER_PAGE" envDefault:"50"`
}
