package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuimaru-ship/storefront/pkg/cache"
	"github.com/yuimaru-ship/storefront/pkg/reqid"
	"github.com/yuimaru-ship/storefront/pkg/router"
	"github.com/yuimaru-ship/storefront/pkg/session"
)

func testApp() *Application {
	return New().
		SessionStore(cache.NewMemoryStore()).
		Routes(func(r *router.Router) {
			r.Get("/ping", "ping", func(w http.ResponseWriter, r *http.Request) {
				sess := session.FromCtx(r)
				sess.Set("seen", true)
				_ = sess.Save(r.Context(), w)
				w.Write([]byte("pong")) //nolint:errcheck
			})
			r.Get("/panic", "panic", func(http.ResponseWriter, *http.Request) {
				panic("boom")
			})
		})
}

func TestHandlerMiddlewareStack(t *testing.T) {
	h := testApp().Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(reqid.Header))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "yuimaru_session", cookies[0].Name)
}

func TestHandlerRecoversPanics(t *testing.T) {
	rec := httptest.NewRecorder()
	testApp().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouteListCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := testApp().RouteListCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "/metrics")
	assert.Contains(t, out.String(), "/ping")
	assert.Contains(t, out.String(), "ping")
}

func TestOpenStoreKeepsInjectedStore(t *testing.T) {
	store := cache.NewMemoryStore()
	a := New().SessionStore(store)

	release, err := a.openStore(context.Background())
	require.NoError(t, err)
	release()
	assert.Same(t, store, a.store)
}
