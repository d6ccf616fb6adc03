package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gohttp "net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yuimaru-ship/storefront/app/models"
	"github.com/yuimaru-ship/storefront/pkg/http"
	"github.com/yuimaru-ship/storefront/pkg/logger"
	"github.com/yuimaru-ship/storefront/pkg/metrics"
)

// ErrOrderNotFound is returned when the label source has no record for the
// requested order.
var ErrOrderNotFound = errors.New("order not found")

// ErrInvalidBody is returned when a 2xx response does not carry JSON.
var ErrInvalidBody = errors.New("response body is not valid JSON")

// OrderClientConfig points the client at the order API.
type OrderClientConfig struct {
	OrdersURL      string
	UpdateURL      string
	LabelSourceURL string
	Timeout        time.Duration
}

// OrderClient reads orders from and pushes edits to the remote order API.
type OrderClient struct {
	cfg    OrderClientConfig
	client *gohttp.Client
}

// NewOrderClient returns a client sending through hc, or the shared
// pkg/http client when hc is nil.
func NewOrderClient(cfg OrderClientConfig, hc *gohttp.Client) *OrderClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &OrderClient{cfg: cfg, client: hc}
}

// FetchOrders lists the orders of storeID. A JSON body that is not an array
// yields an empty list; a body that is not JSON at all yields ErrInvalidBody
// and a non-2xx status yields *http.HTTPError.
func (c *OrderClient) FetchOrders(ctx context.Context, storeID, accessToken string) ([]models.Order, error) {
	log := logger.WithCtx(ctx)

	resp, err := http.Get(c.cfg.OrdersURL).
		Query("store_id", storeID).
		Bearer(accessToken).
		Client(c.client).
		Service("orders").
		Timeout(c.cfg.Timeout).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, fmt.Errorf("fetch orders for %s: %w", storeID, err)
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("fetch orders for %s: %w", storeID, err)
	}

	records, ok, err := decodeRecordArray(resp.Raw)
	if err != nil {
		return nil, fmt.Errorf("fetch orders for %s: %w", storeID, err)
	}
	if !ok {
		log.Warn("orders response is not an array", "store_id", storeID)
		return []models.Order{}, nil
	}

	orders := make([]models.Order, 0, len(records))
	for i, raw := range records {
		order, err := Normalize(wireRecord{Shape: DetectShape(raw), Raw: raw})
		if err != nil {
			log.Warn("skipping undecodable order record", "index", i, "error", err)
			continue
		}
		orders = append(orders, order)
	}

	log.Debug("orders fetched", "store_id", storeID, "count", len(orders))
	return orders, nil
}

// decodeRecordArray reports false when body is valid JSON but not an array,
// and ErrInvalidBody when it is not JSON. Array elements that are not
// objects decode as empty records.
func decodeRecordArray(body []byte) ([]rawRecord, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, false, ErrInvalidBody
	}
	if trimmed[0] != '[' {
		return nil, false, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false, err
	}
	out := make([]rawRecord, 0, len(elems))
	for _, e := range elems {
		var rec rawRecord
		if err := json.Unmarshal(e, &rec); err != nil || rec == nil {
			rec = rawRecord{}
		}
		out = append(out, rec)
	}
	return out, true, nil
}

// BoxDimensions are centimetres.
type BoxDimensions struct {
	Length int `json:"length"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func BoxDimensionsOf(b models.BoxSize) *BoxDimensions {
	return &BoxDimensions{Length: b.Length, Width: b.Width, Height: b.Height}
}

// UpdateFields is a partial update. Nil fields are left out of the request.
type UpdateFields struct {
	FinalWeight *decimal.Decimal `json:"final_weight,omitempty"` // kilograms
	TotalPrice  *decimal.Decimal `json:"total_price,omitempty"`
	Box         *BoxDimensions   `json:"box,omitempty"`
}

func (f UpdateFields) Empty() bool {
	return f.FinalWeight == nil && f.TotalPrice == nil && f.Box == nil
}

// UpdateResult holds the upstream reply: JSON when it parsed, Text always.
type UpdateResult struct {
	JSON interface{}
	Text string
}

func updateBody(storeID, orderID string, f UpdateFields) map[string]string {
	body := map[string]string{
		"store_id": storeID,
		"order_id": orderID,
		"action":   "updateOrderData",
	}
	if f.FinalWeight != nil {
		body["final_weight"] = f.FinalWeight.String()
	}
	if f.TotalPrice != nil {
		body["total_price"] = f.TotalPrice.String()
	}
	if f.Box != nil {
		body["parcels[0].length"] = strconv.Itoa(f.Box.Length)
		body["parcels[0].width"] = strconv.Itoa(f.Box.Width)
		body["parcels[0].height"] = strconv.Itoa(f.Box.Height)
	}
	return body
}

// UpdateOrder pushes the provided fields for one order. Non-2xx yields
// *http.HTTPError carrying the status and body.
func (c *OrderClient) UpdateOrder(ctx context.Context, storeID, orderID string, f UpdateFields, accessToken string) (*UpdateResult, error) {
	resp, err := http.Post(c.cfg.UpdateURL).
		Body(updateBody(storeID, orderID, f)).
		Bearer(accessToken).
		Client(c.client).
		Service("orders.update").
		Timeout(c.cfg.Timeout).
		WithContext(ctx).
		Send()
	if err != nil {
		metrics.OrderUpdates.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("update order %s: %w", orderID, err)
	}
	if err := resp.Throw(); err != nil {
		metrics.OrderUpdates.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("update order %s: %w", orderID, err)
	}
	metrics.OrderUpdates.WithLabelValues("ok").Inc()

	result := &UpdateResult{Text: resp.Text()}
	var parsed interface{}
	if err := json.Unmarshal(resp.Raw, &parsed); err == nil {
		result.JSON = parsed
	}
	return result, nil
}

// LabelSummary is the data shown in the shipping-label popup.
type LabelSummary struct {
	OrderID          string          `json:"order_id"`
	Recipient        string          `json:"recipient"`
	Country          string          `json:"country"`
	Province         string          `json:"province"`
	City             string          `json:"city"`
	Address1         string          `json:"address1"`
	Address2         string          `json:"address2"`
	ProductName      string          `json:"product_name"`
	Quantity         string          `json:"quantity"`
	ItemPrice        decimal.Decimal `json:"item_price"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	FinalWeightGrams string          `json:"final_weight_grams,omitempty"`
	Carrier          string          `json:"carrier"`
	LabelURL         string          `json:"label_url,omitempty"`
}

const defaultLabelCarrier = "EMS"

// FetchLabel loads the raw records of storeID from the label source and
// summarises the one whose order_id matches.
func (c *OrderClient) FetchLabel(ctx context.Context, storeID, orderID string) (*LabelSummary, error) {
	resp, err := http.Get(c.cfg.LabelSourceURL).
		Query("store_id", storeID).
		Client(c.client).
		Service("labels").
		Timeout(c.cfg.Timeout).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, fmt.Errorf("fetch label for %s: %w", orderID, err)
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("fetch label for %s: %w", orderID, err)
	}

	records, _, err := decodeRecordArray(resp.Raw)
	if err != nil {
		return nil, fmt.Errorf("fetch label source: %w", err)
	}
	for _, raw := range records {
		if field(raw, "order_id") == orderID {
			return summarizeLabel(raw), nil
		}
	}
	return nil, ErrOrderNotFound
}

func summarizeLabel(raw rawRecord) *LabelSummary {
	item := decimalOrZero(field(raw, "total_price"))
	shipping := decimalOrZero(field(raw, "shipping_cost"))

	s := &LabelSummary{
		OrderID:      field(raw, "order_id"),
		Recipient:    field(raw, "to_address.full_name"),
		Country:      field(raw, "to_address.country"),
		Province:     field(raw, "to_address.province"),
		City:         field(raw, "to_address.city"),
		Address1:     field(raw, "to_address.address1"),
		Address2:     field(raw, "to_address.address2"),
		ProductName:  field(raw, "products[0].name"),
		Quantity:     field(raw, "products[0].quantity"),
		ItemPrice:    item,
		ShippingCost: shipping,
		GrandTotal:   item.Add(shipping),
		Carrier:      defaultLabelCarrier,
		LabelURL:     field(raw, "label_url"),
	}
	if kg, err := decimal.NewFromString(field(raw, "final_weight")); err == nil {
		s.FinalWeightGrams = KilogramsToGrams(kg).String()
	}
	return s
}

func field(raw rawRecord, key string) string {
	var s flexString
	if v, ok := raw[key]; ok {
		_ = s.UnmarshalJSON(v)
	}
	return s.String()
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
