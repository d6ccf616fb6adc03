// Package controllers holds the HTTP handlers of the dashboard.
package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yuimaru-ship/storefront/app/services"
	"github.com/yuimaru-ship/storefront/app/views"
	"github.com/yuimaru-ship/storefront/pkg/logger"
	"github.com/yuimaru-ship/storefront/pkg/router"
	"github.com/yuimaru-ship/storefront/pkg/session"
)

// Flash keys rendered by the page header.
const (
	flashNotice = "notice"
	flashError  = "error"

	flashStoreInput = "store_id_input"
	flashOrderEdit  = "order_edit"
)

// Links builds redirect targets from the router's named routes.
type Links struct {
	router *router.Router
}

func NewLinks(r *router.Router) *Links {
	return &Links{router: r}
}

// To returns the path of the named route. An unknown name or a missing
// parameter is logged and falls back to the dashboard.
func (l *Links) To(name string, params map[string]string) string {
	u, err := l.router.URL(name, params)
	if err != nil {
		logger.Error("route link failed", "route", name, "error", err)
		return "/"
	}
	return u
}

// orderEdit carries a rejected order edit across the redirect back to the
// dashboard.
type orderEdit struct {
	Buffer services.EditBuffer `json:"buffer"`
	Errors map[string]string   `json:"errors,omitempty"`
}

func flashOrderEditBuffer(sess *session.Session, e orderEdit) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	sess.Flash(flashOrderEdit, string(b))
}

func takeOrderEdit(sess *session.Session) (orderEdit, bool) {
	raw := sess.GetFlash(flashOrderEdit)
	if raw == "" {
		return orderEdit{}, false
	}
	var e orderEdit
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return orderEdit{}, false
	}
	return e, true
}

// wantsJSON reports whether the caller is a script rather than a form post.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// save persists the session before the response is written. A failure is
// logged and the request carries on without the session update.
func save(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := sess.Save(r.Context(), w); err != nil {
		logger.WithCtx(r.Context()).Error("session save failed", "error", err)
	}
}

func render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	if err := views.Render(w, http.StatusOK, name, data); err != nil {
		logger.WithCtx(r.Context()).Error("render failed", "view", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
