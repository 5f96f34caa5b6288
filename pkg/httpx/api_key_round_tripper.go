package httpx

import (
	"fmt"
	"net/http"
)

const headerNameAPIKey = "X-Api-Key"

// APIKeyRoundTripper stamps every outgoing request with the pricing API
// account key. The key is static for the session; a 401 means the account
// configuration is wrong, not that the key expired, so there is no refresh
// path here.
type APIKeyRoundTripper struct {
	next   http.RoundTripper
	apiKey string
}

func NewAPIKeyRoundTripper(
	next http.RoundTripper,
	apiKey string,
) APIKeyRoundTripper {
	return APIKeyRoundTripper{
		next:   next,
		apiKey: apiKey,
	}
}

func (rt APIKeyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.apiKey != "" {
		req.Header.Set(headerNameAPIKey, rt.apiKey)
	}

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	return resp, nil
}
