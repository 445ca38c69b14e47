package router

import (
	"net/http"

	"parkspot/internal/handlers/auth"
	"parkspot/internal/handlers/booking"
	"parkspot/internal/handlers/health"
	"parkspot/internal/handlers/spot"
	"parkspot/internal/handlers/user"
	"parkspot/internal/handlers/verification"
	"parkspot/internal/handlers/webhook"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Health       health.Handler
	Auth         auth.Handler
	User         user.Handler
	Spot         spot.Handler
	Booking      booking.Handler
	Verification verification.Handler
	Webhook      webhook.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

// SetupRoutes mounts every domain. Webhooks are only reachable with the internal API key.
func (r *Router) SetupRoutes(router chi.Router, requireAPIKey func(http.Handler) http.Handler) {
	r.DomainHandlers.Health.Router(router)

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Spot.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Verification.Router(routerGroup)

		routerGroup.Group(func(internal chi.Router) {
			internal.Use(requireAPIKey)
			r.DomainHandlers.Webhook.Router(internal)
		})
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
