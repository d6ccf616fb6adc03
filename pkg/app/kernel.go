package app

import (
	"net/http"

	"github.com/yuimaru-ship/storefront/pkg/metrics"
	"github.com/yuimaru-ship/storefront/pkg/middleware"
	"github.com/yuimaru-ship/storefront/pkg/reqid"
	"github.com/yuimaru-ship/storefront/pkg/router"
	"github.com/yuimaru-ship/storefront/pkg/session"
)

// buildHandler applies the global middleware, outermost first:
//
//  1. metrics   total latency including every other layer
//  2. recovery  turns panics into 500s
//  3. reqid     assigns X-Request-ID before anything logs
//  4. logger    request-scoped logger and access log
//  5. session   loads the session named by the cookie
func buildHandler(a *Application) http.Handler {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.NewManager(a.store, a.sessionOpts).Middleware())

	registerRoutes(a, r)
	return r.Handler()
}

func registerRoutes(a *Application, r *router.Router) {
	r.Handle("/metrics", "metrics", metrics.Handler())
	for _, fn := range a.routesFns {
		fn(r)
	}
}
