package bind_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuimaru-ship/storefront/pkg/bind"
)

type payload struct {
	Weight string `json:"final_weight_grams"`
	Box    string `json:"box_size,omitempty"`
	Count  int    `json:"count"`
}

func TestRequestJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"final_weight_grams":"1500","count":2}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	var p payload
	require.NoError(t, bind.Request(req, &p))
	assert.Equal(t, payload{Weight: "1500", Count: 2}, p)
}

func TestRequestForm(t *testing.T) {
	form := url.Values{"final_weight_grams": {"900"}, "box_size": {"60"}, "count": {"7"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var p payload
	require.NoError(t, bind.Request(req, &p))
	assert.Equal(t, payload{Weight: "900", Box: "60"}, p, "only string fields are bound from forms")
}

func TestRequestMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")

	var p payload
	assert.Error(t, bind.Request(req, &p))
}

func TestFormRejectsNonStruct(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	var s string
	assert.Error(t, bind.Form(req, &s))
}
