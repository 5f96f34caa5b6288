package config

import "time"

type PricingAPI struct {
	BaseURL string `env:"PRICING_API_URL,notEmpty" json:"-"`
	APIKey  string `env:"PRICING_API_KEY" json:"-"`

	// SellerID is sent as userId on live-pricing updates.
	SellerID string `env:"PRICING_SELLER_ID,notEmpty"`

	// RequestTimeout bounds every single call; a submit or verify fetch
	// that outlives it is treated as failed.
	RequestTimeout time.Duration `env:"PRICING_REQUEST_TIMEOUT" envDefault:"30s"`

	// FetchLimit is the initial limit for bulk dataset fetches. The server
	// may reject it with a suggested smaller one, which is retried once.
	FetchLimit int `env:"PRICING_FETCH_LIMIT" envDefault:"2000"`

	LogFieldMaxLen int `env:"PRICING_LOG_FIELD_MAX_LEN" envDefault:"2048"`
}
