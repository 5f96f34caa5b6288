package contextx

import (
	"context"
	"fmt"
)

// SellerID identifies the marketplace seller account on whose behalf price
// changes are submitted.
type SellerID string

type contextKeySellerID struct{}

func (s SellerID) String() string {
	return string(s)
}

func WithSellerID(ctx context.Context, sellerID SellerID) context.Context {
	return context.WithValue(ctx, contextKeySellerID{}, sellerID)
}

func SellerIDFromContext(ctx context.Context) (SellerID, error) {
	sellerID, ok := ctx.Value(contextKeySellerID{}).(SellerID)
	if !ok {
		return "", fmt.Errorf("seller id: %w", ErrNoValue)
	}

	return sellerID, nil
}
