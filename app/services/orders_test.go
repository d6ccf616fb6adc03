package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuimaru-ship/storefront/app/services"
	apphttp "github.com/yuimaru-ship/storefront/pkg/http"
	"github.com/yuimaru-ship/storefront/pkg/testkit"
)

const (
	ordersURL = "https://orders.test/shipments"
	updateURL = "https://orders.test/update"
	labelURL  = "https://labels.test/"
)

func newOrderClient(mt *testkit.MockTransport) *services.OrderClient {
	return services.NewOrderClient(services.OrderClientConfig{
		OrdersURL:      ordersURL,
		UpdateURL:      updateURL,
		LabelSourceURL: labelURL,
	}, mt.Client())
}

func TestFetchOrdersNormalizesBothShapes(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodGet, ordersURL, 200, `[
		{"shipment_id":"S-1","parcel":{"weight":1500,"weight_unit":"g"}},
		{"order_id":"F-1","final_weight":"2","parcels[0].length":"20"},
		{"order_id":""}
	]`)

	orders, err := newOrderClient(mt).FetchOrders(context.Background(), "store_1", "tok")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "S-1", orders[0].OrderID)
	assert.Equal(t, "1.5", orders[0].TotalWeight.String())
	assert.Equal(t, "F-1", orders[1].OrderID)
	assert.True(t, orders[2].IsPlaceholder())

	call := mt.LastCall(t)
	assert.Equal(t, ordersURL+"?store_id=store_1", call.URL)
	assert.Equal(t, "Bearer tok", call.Header.Get("Authorization"))
	mt.AssertAllCalled(t)
}

func TestFetchOrdersWithoutTokenSendsNoAuthorization(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodGet, ordersURL, 200, `[]`)

	_, err := newOrderClient(mt).FetchOrders(context.Background(), "store_1", "")
	require.NoError(t, err)
	assert.Empty(t, mt.LastCall(t).Header.Get("Authorization"))
}

func TestFetchOrdersNonArrayBodyIsEmpty(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodGet, ordersURL, 200, `{"message":"no data"}`)

	orders, err := newOrderClient(mt).FetchOrders(context.Background(), "store_1", "tok")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestFetchOrdersNonJSONBodyFails(t *testing.T) {
	for _, body := range []string{`<html>gateway error</html>`, ``} {
		mt := testkit.NewMockTransport().On(http.MethodGet, ordersURL, 200, body)

		orders, err := newOrderClient(mt).FetchOrders(context.Background(), "store_1", "tok")
		require.ErrorIs(t, err, services.ErrInvalidBody, "body %q", body)
		assert.Nil(t, orders)
	}
}

func TestFetchOrdersNon2xx(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodGet, ordersURL, 502, `bad gateway`)

	_, err := newOrderClient(mt).FetchOrders(context.Background(), "store_1", "tok")
	require.Error(t, err)

	var httpErr *apphttp.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 502, httpErr.Status)
}

func TestUpdateOrderSendsOnlyProvidedFields(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodPost, updateURL, 200, `{"ok":true}`)
	price := decimal.NewFromInt(1200)

	res, err := newOrderClient(mt).UpdateOrder(context.Background(), "store_1", "A-1",
		services.UpdateFields{TotalPrice: &price}, "tok")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"ok": true}, res.JSON)

	var body map[string]string
	require.NoError(t, json.Unmarshal(mt.LastCall(t).Body, &body))
	assert.Equal(t, map[string]string{
		"store_id":    "store_1",
		"order_id":    "A-1",
		"action":      "updateOrderData",
		"total_price": "1200",
	}, body)
}

func TestUpdateOrderWithAllFields(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodPost, updateURL, 200, `updated`)
	kg := decimal.RequireFromString("1.5")
	price := decimal.NewFromInt(3000)

	res, err := newOrderClient(mt).UpdateOrder(context.Background(), "store_1", "A-1", services.UpdateFields{
		FinalWeight: &kg,
		TotalPrice:  &price,
		Box:         &services.BoxDimensions{Length: 40, Width: 30, Height: 30},
	}, "tok")
	require.NoError(t, err)
	assert.Nil(t, res.JSON)
	assert.Equal(t, "updated", res.Text)

	var body map[string]string
	require.NoError(t, json.Unmarshal(mt.LastCall(t).Body, &body))
	assert.Equal(t, "1.5", body["final_weight"])
	assert.Equal(t, "40", body["parcels[0].length"])
	assert.Equal(t, "30", body["parcels[0].width"])
	assert.Equal(t, "30", body["parcels[0].height"])
}

func TestUpdateOrderFailureCarriesStatus(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodPost, updateURL, 500, `boom`)
	price := decimal.NewFromInt(1)

	_, err := newOrderClient(mt).UpdateOrder(context.Background(), "store_1", "A-1",
		services.UpdateFields{TotalPrice: &price}, "tok")

	var httpErr *apphttp.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 500, httpErr.Status)
	assert.Equal(t, "boom", httpErr.Body)
}

func TestFetchLabel(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodGet, labelURL, 200, `[
		{"order_id":"X"},
		{"order_id":"A-1","to_address.full_name":"Hanako","to_address.country":"JP",
		 "products[0].name":"Tea","products[0].quantity":2,
		 "total_price":"2000","shipping_cost":"1500","final_weight":"1.2"}
	]`)

	label, err := newOrderClient(mt).FetchLabel(context.Background(), "store_1", "A-1")
	require.NoError(t, err)
	assert.Equal(t, "Hanako", label.Recipient)
	assert.Equal(t, "Tea", label.ProductName)
	assert.Equal(t, "2", label.Quantity)
	assert.Equal(t, "3500", label.GrandTotal.String())
	assert.Equal(t, "1200", label.FinalWeightGrams)
	assert.Equal(t, "EMS", label.Carrier)
}

func TestFetchLabelNotFound(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodGet, labelURL, 200, `[{"order_id":"X"}]`)

	_, err := newOrderClient(mt).FetchLabel(context.Background(), "store_1", "A-1")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestFetchLabelNonJSONBodyFails(t *testing.T) {
	mt := testkit.NewMockTransport().On(http.MethodGet, labelURL, 200, `<html>oops</html>`)

	_, err := newOrderClient(mt).FetchLabel(context.Background(), "store_1", "A-1")
	assert.ErrorIs(t, err, services.ErrInvalidBody)
}
