// Package app assembles the HTTP application: global middleware, the
// session store, the metrics endpoint and the route callbacks.
//
//	application := app.New().Routes(routes.Register(routes.NewServices(nil)))
//	root.AddCommand(application.ServeCommand(), application.RouteListCommand())
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yuimaru-ship/storefront/config"
	"github.com/yuimaru-ship/storefront/pkg/cache"
	"github.com/yuimaru-ship/storefront/pkg/logger"
	"github.com/yuimaru-ship/storefront/pkg/router"
	"github.com/yuimaru-ship/storefront/pkg/session"
)

// Application is built with New, configured with the builder methods and
// then served or inspected.
type Application struct {
	routesFns   []func(*router.Router)
	store       cache.Store
	sessionOpts session.Options
}

func New() *Application {
	opts := session.DefaultOptions()
	opts.TTL = config.SessionTTL()
	opts.Secure = config.SessionSecure()
	return &Application{sessionOpts: opts}
}

// Routes adds a route-registration callback. Callbacks run in order.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// SessionStore overrides the store selected by SESSION_DRIVER.
func (a *Application) SessionStore(store cache.Store) *Application {
	a.store = store
	return a
}

// SessionOptions overrides the cookie settings.
func (a *Application) SessionOptions(opts session.Options) *Application {
	a.sessionOpts = opts
	return a
}

// Handler builds the full handler. Sessions are kept in memory unless a
// store was set by SessionStore or Serve.
func (a *Application) Handler() http.Handler {
	if a.store == nil {
		a.store = cache.NewMemoryStore()
	}
	return buildHandler(a)
}

// RouteList returns the application's routes without starting anything.
func (a *Application) RouteList() []router.RouteInfo {
	r := router.New()
	registerRoutes(a, r)
	return r.Routes()
}

// openStore connects the configured session backend unless one was set.
// The returned func releases it.
func (a *Application) openStore(ctx context.Context) (func(), error) {
	if a.store != nil {
		return func() {}, nil
	}

	switch config.SessionDriver() {
	case "memory":
		logger.Warn("sessions are kept in memory; they are lost on restart")
		a.store = cache.NewMemoryStore()
		return func() {}, nil
	default:
		rs, err := cache.NewRedisStore(ctx, config.RedisAddr(), config.RedisPassword(), "storefront:")
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		a.store = rs
		return func() {
			if err := rs.Close(); err != nil {
				logger.Warn("redis close failed", "error", err)
			}
		}, nil
	}
}
