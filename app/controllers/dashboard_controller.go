package controllers

import (
	"net/http"

	"github.com/yuimaru-ship/storefront/app/models"
	"github.com/yuimaru-ship/storefront/app/services"
	"github.com/yuimaru-ship/storefront/pkg/logger"
	"github.com/yuimaru-ship/storefront/pkg/response"
	"github.com/yuimaru-ship/storefront/pkg/session"
)

type DashboardController struct {
	auth   *services.AuthService
	orders *services.OrderClient
	links  *Links
}

func NewDashboardController(auth *services.AuthService, orders *services.OrderClient, links *Links) *DashboardController {
	return &DashboardController{auth: auth, orders: orders, links: links}
}

// Index renders the dashboard. It is also the OAuth redirect target: a
// ?code= callback is completed here and then redirected away so the code
// never stays in the address bar.
func (c *DashboardController) Index(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	log := logger.WithCtx(r.Context())
	q := r.URL.Query()

	code := q.Get("code")
	if code != "" && !c.auth.VerifyState(sess, q.Get("state")) {
		log.Warn("oauth callback with unknown state")
		sess.Flash(flashError, "Sign-in could not be verified. Please sign in again.")
		code = ""
	}

	st := c.auth.CheckSession(r.Context(), sess, code)

	if q.Has("code") {
		clean := *r.URL
		cq := clean.Query()
		cq.Del("code")
		cq.Del("state")
		clean.RawQuery = cq.Encode()
		save(w, r, sess)
		http.Redirect(w, r, clean.RequestURI(), http.StatusSeeOther)
		return
	}

	if c.auth.NeedsStorePrompt(sess) {
		save(w, r, sess)
		http.Redirect(w, r, c.links.To("store.link.form", nil), http.StatusSeeOther)
		return
	}

	storeID, demo := services.ResolveStoreID(q, st)
	orders, err := c.load(r, sess, st, storeID)
	if err != nil {
		log.Error("failed to load orders", "store_id", storeID, "error", err)
	}

	page := services.BuildDashboard(st, storeID, demo, orders, err)
	page.Flash = sess.GetFlash(flashNotice)
	page.FlashErr = sess.GetFlash(flashError)
	if edit, ok := takeOrderEdit(sess); ok {
		page.RestoreEdit(edit.Buffer, edit.Errors)
	}

	save(w, r, sess)
	render(w, r, "dashboard", page)
}

// Orders is the JSON variant of the dashboard for scripts.
func (c *DashboardController) Orders(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	st := c.auth.State(sess)

	storeID, demo := services.ResolveStoreID(r.URL.Query(), st)
	if storeID == "" {
		response.Error(w, http.StatusBadRequest, "store_id could not be determined; add ?store_id=YOUR_STORE_ID to the URL")
		return
	}

	orders, err := c.load(r, sess, st, storeID)
	if err != nil {
		logger.WithCtx(r.Context()).Error("failed to load orders", "store_id", storeID, "error", err)
		response.Error(w, http.StatusBadGateway, "Failed to load orders. Check the API connection for store_id: "+storeID+".")
		return
	}

	visible := services.VisibleOrders(orders)
	response.Success(w, map[string]interface{}{
		"store_id": storeID,
		"demo":     demo,
		"stats":    services.ComputeStats(visible),
		"orders":   visible,
	})
}

func (c *DashboardController) load(r *http.Request, sess *session.Session, st models.SessionState, storeID string) ([]models.Order, error) {
	if storeID == "" {
		return nil, nil
	}
	token := ""
	if st.State.Authenticated() {
		token = sess.GetString(services.KeyAccessToken)
	}
	return c.orders.FetchOrders(r.Context(), storeID, token)
}
