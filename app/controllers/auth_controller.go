package controllers

import (
	"errors"
	"net/http"

	"github.com/yuimaru-ship/storefront/app/models"
	"github.com/yuimaru-ship/storefront/app/services"
	"github.com/yuimaru-ship/storefront/pkg/logger"
	"github.com/yuimaru-ship/storefront/pkg/session"
)

type AuthController struct {
	auth  *services.AuthService
	links *Links
}

func NewAuthController(auth *services.AuthService, links *Links) *AuthController {
	return &AuthController{auth: auth, links: links}
}

// Login redirects to the identity provider's hosted sign-in page.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	target := c.auth.LoginURL(sess)
	save(w, r, sess)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Logout clears the session and hands over to the provider's logout page.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	target := c.auth.Logout(sess)
	save(w, r, sess)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type linkStorePage struct {
	StoreID  string
	User     *models.User
	Flash    string
	FlashErr string
	Value    string
}

// LinkStoreForm shows the store-ID prompt.
func (c *AuthController) LinkStoreForm(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	st := c.auth.State(sess)
	if st.State == models.AuthLinked {
		http.Redirect(w, r, c.links.To("dashboard", nil), http.StatusSeeOther)
		return
	}

	page := linkStorePage{
		User:     st.User,
		Flash:    sess.GetFlash(flashNotice),
		FlashErr: sess.GetFlash(flashError),
		Value:    sess.GetFlash(flashStoreInput),
	}
	save(w, r, sess)
	render(w, r, "link_store", page)
}

// LinkStore handles the prompt's submit and cancel buttons.
func (c *AuthController) LinkStore(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	log := logger.WithCtx(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if r.PostForm.Get("action") == "cancel" {
		c.auth.CancelStorePrompt(sess)
		save(w, r, sess)
		http.Redirect(w, r, c.links.To("dashboard", nil), http.StatusSeeOther)
		return
	}

	input := r.PostForm.Get("store_id")
	err := c.auth.SubmitStoreID(r.Context(), sess, input)

	var rejected *services.LinkRejectedError
	switch {
	case err == nil:
		sess.Flash(flashNotice, "Your store ID has been linked.")
		save(w, r, sess)
		http.Redirect(w, r, c.links.To("dashboard", nil), http.StatusSeeOther)
		return
	case errors.Is(err, services.ErrNotSignedIn):
		save(w, r, sess)
		http.Redirect(w, r, c.links.To("auth.login", nil), http.StatusSeeOther)
		return
	case errors.Is(err, services.ErrStoreIDRequired):
		sess.Flash(flashError, err.Error())
	case errors.As(err, &rejected):
		sess.Flash(flashError, "An error occurred: "+rejected.Message)
	default:
		log.Error("error submitting store id", "error", err)
		sess.Flash(flashError, "A network error occurred. Please try again.")
	}

	sess.Flash(flashStoreInput, input)
	save(w, r, sess)
	http.Redirect(w, r, c.links.To("store.link.form", nil), http.StatusSeeOther)
}
