// Package routes wires the dashboard's controllers onto the router.
package routes

import (
	"net/http"
	"time"

	"github.com/yuimaru-ship/storefront/app/controllers"
	"github.com/yuimaru-ship/storefront/app/services"
	"github.com/yuimaru-ship/storefront/config"
	"github.com/yuimaru-ship/storefront/pkg/middleware"
	"github.com/yuimaru-ship/storefront/pkg/router"
)

// Services are the upstream clients shared by every controller.
type Services struct {
	Auth   *services.AuthService
	Orders *services.OrderClient
}

// NewServices builds the upstream clients from config. hc may be nil.
func NewServices(hc *http.Client) Services {
	timeout := config.UpstreamTimeout()
	idp := services.NewIdentityProvider(services.IdentityConfig{
		Domain:      config.OAuthDomain(),
		ClientID:    config.OAuthClientID(),
		RedirectURI: config.OAuthRedirectURI(),
		Scopes:      config.OAuthScopes(),
		Timeout:     timeout,
	}, hc)

	return Services{
		Auth: services.NewAuthService(idp, services.NewStoreLinker(config.LinkStoreURL(), hc, timeout)),
		Orders: services.NewOrderClient(services.OrderClientConfig{
			OrdersURL:      config.OrdersURL(),
			UpdateURL:      config.UpdateOrderURL(),
			LabelSourceURL: config.LabelSourceURL(),
			Timeout:        timeout,
		}, hc),
	}
}

// Register returns the route callback for the application kernel.
func Register(s Services) func(*router.Router) {
	return func(r *router.Router) {
		links := controllers.NewLinks(r)
		auth := controllers.NewAuthController(s.Auth, links)
		dashboard := controllers.NewDashboardController(s.Auth, s.Orders, links)
		orders := controllers.NewOrdersController(s.Auth, s.Orders, links)

		r.Get("/", "dashboard", dashboard.Index)
		r.Get("/login", "auth.login", auth.Login)
		r.Post("/logout", "auth.logout", auth.Logout)

		loginPath, _ := r.Path("auth.login")
		linkLimiter := middleware.NewRateLimiter(10, time.Minute)
		linkLimiter.TrustForwarded = config.TrustProxy()
		link := r.Group("/link-store", middleware.RequireSessionKey(services.KeySubject, loginPath))
		link.Get("/", "store.link.form", auth.LinkStoreForm)
		link.Post("/", "store.link", auth.LinkStore, linkLimiter.Middleware)

		r.Get("/api/orders", "api.orders", dashboard.Orders)

		ord := r.Group("/orders/{orderID}")
		ord.Post("/", "orders.update", orders.Update)
		ord.Get("/label", "orders.label", orders.Label)
	}
}
