// Package server exposes the dashboard's HTTP API: the filtered listings
// view, what-if simulation, the price-change operations and feed/queue
// status.
package server

// Server bundles the entity-specific HTTP servers behind one route
// registration.
type Server struct {
	ListingServer
	FeedServer
}

func NewServer(
	listingServer ListingServer,
	feedServer FeedServer,
) Server {
	return Server{
		ListingServer: listingServer,
		FeedServer:    feedServer,
	}
}
