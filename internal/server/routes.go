package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"buybox_console/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/listings", func(r chi.Router) {
			r.Get("/", handler(s.getV1Listings))
			r.Post("/reload", handler(s.postV1ListingsReload))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler(s.getV1Listing))
				r.Get("/simulate", handler(s.getV1ListingSimulate))
				r.Post("/refresh", handler(s.postV1ListingRefresh))
				r.Post("/match-buy-box", handler(s.postV1ListingMatchBuyBox))
				r.Post("/select", handler(s.postV1ListingSelect))
				r.Delete("/select", handler(s.deleteV1ListingSelect))
			})
		})

		r.Get("/opportunities", handler(s.getV1Opportunities))
		r.Get("/feeds", handler(s.getV1Feeds))
		r.Get("/queue", handler(s.getV1Queue))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
