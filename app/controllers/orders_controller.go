package controllers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/yuimaru-ship/storefront/app/models"
	"github.com/yuimaru-ship/storefront/app/services"
	"github.com/yuimaru-ship/storefront/pkg/bind"
	"github.com/yuimaru-ship/storefront/pkg/logger"
	"github.com/yuimaru-ship/storefront/pkg/response"
	"github.com/yuimaru-ship/storefront/pkg/session"
)

type OrdersController struct {
	auth   *services.AuthService
	orders *services.OrderClient
	links  *Links
}

func NewOrdersController(auth *services.AuthService, orders *services.OrderClient, links *Links) *OrdersController {
	return &OrdersController{auth: auth, orders: orders, links: links}
}

type updateRequest struct {
	FinalWeightGrams string `json:"final_weight_grams"`
	TotalPrice       string `json:"total_price"`
	BoxSize          string `json:"box_size"`
}

// Update saves the weight, price and box of one order. A rejected form post
// returns to the dashboard with the typed values kept on the order's card.
func (c *OrdersController) Update(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	log := logger.WithCtx(r.Context())
	orderID := chi.URLParam(r, "orderID")
	asJSON := wantsJSON(r)
	buf := services.EditBuffer{OrderID: orderID}

	fail := func(status int, message string, fields map[string]string) {
		if asJSON {
			if fields != nil {
				response.ValidationError(w, fields)
				return
			}
			response.Error(w, status, message)
			return
		}
		sess.Flash(flashError, message)
		flashOrderEditBuffer(sess, orderEdit{Buffer: buf, Errors: fields})
		save(w, r, sess)
		http.Redirect(w, r, c.orderAnchor(orderID), http.StatusSeeOther)
	}

	var req updateRequest
	if err := bind.Request(r, &req); err != nil {
		fail(http.StatusBadRequest, "Malformed request body.", nil)
		return
	}
	buf.WeightGrams = req.FinalWeightGrams
	buf.Price = req.TotalPrice
	buf.BoxCode = req.BoxSize

	st := c.auth.State(sess)
	storeID, demo := services.ResolveStoreID(r.URL.Query(), st)
	fields, err := buf.Validate(demo || !st.State.Authenticated())
	switch {
	case errors.Is(err, services.ErrDemoMode):
		fail(http.StatusForbidden, "Editing is disabled in demo mode. Sign in to make changes.", nil)
		return
	case err != nil:
		fail(http.StatusUnprocessableEntity, err.Error(), services.FieldErrors(err))
		return
	}

	if storeID == "" {
		fail(http.StatusBadRequest, "Store ID could not be determined. Link a store to your account first.", nil)
		return
	}

	result, err := c.orders.UpdateOrder(r.Context(), storeID, orderID, fields, sess.GetString(services.KeyAccessToken))
	if err != nil {
		log.Error("order data update failed", "order_id", orderID, "error", err)
		fail(http.StatusBadGateway, "Failed to update the order. Please try again.", nil)
		return
	}

	message := services.UpdateMessage(orderID, fields)
	if asJSON {
		data := map[string]interface{}{
			"order_id": orderID,
			"changes":  fields,
			"upstream": result.JSON,
		}
		if order, ok := c.currentOrder(r, storeID, orderID, sess.GetString(services.KeyAccessToken)); ok {
			data["order"] = services.ApplyUpdate(order, fields)
		}
		response.SuccessMessage(w, message, data)
		return
	}
	sess.Flash(flashNotice, message)
	save(w, r, sess)
	http.Redirect(w, r, c.orderAnchor(orderID), http.StatusSeeOther)
}

// currentOrder re-reads one order so the JSON reply can carry the patched
// record. A failed read only drops "order" from the reply.
func (c *OrdersController) currentOrder(r *http.Request, storeID, orderID, token string) (models.Order, bool) {
	orders, err := c.orders.FetchOrders(r.Context(), storeID, token)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("could not re-read updated order", "order_id", orderID, "error", err)
		return models.Order{}, false
	}
	for _, o := range orders {
		if o.OrderID == orderID {
			return o, true
		}
	}
	return models.Order{}, false
}

func (c *OrdersController) orderAnchor(orderID string) string {
	return c.links.To("dashboard", nil) + "#order-" + url.PathEscape(orderID)
}

// Label returns the shipping-label summary of one order as JSON.
func (c *OrdersController) Label(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	orderID := chi.URLParam(r, "orderID")

	st := c.auth.State(sess)
	storeID, demo := services.ResolveStoreID(r.URL.Query(), st)
	if demo || !st.State.Authenticated() {
		response.Forbidden(w, "Shipping labels are not available in demo mode.")
		return
	}
	if storeID == "" {
		response.Error(w, http.StatusBadRequest, "Store ID could not be determined.")
		return
	}

	label, err := c.orders.FetchLabel(r.Context(), storeID, orderID)
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		response.NotFound(w, "No matching order data was found.")
		return
	case err != nil:
		logger.WithCtx(r.Context()).Error("error fetching shipping label data", "order_id", orderID, "error", err)
		response.Error(w, http.StatusBadGateway, "Failed to fetch shipping label data. Please try again.")
		return
	}
	response.Success(w, label)
}
