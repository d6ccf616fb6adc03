package services

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yuimaru-ship/storefront/app/models"
)

// Shape identifies which of the two order-record layouts the API returned.
type Shape int

const (
	// ShapeFlattened records carry dotted and indexed keys such as
	// "to_address.city" and "products[0].name".
	ShapeFlattened Shape = iota
	// ShapeStructured records carry nested objects and a singular parcel
	// whose weight unit is given by parcel.weight_unit.
	ShapeStructured
)

func (s Shape) String() string {
	if s == ShapeStructured {
		return "structured"
	}
	return "flattened"
}

// rawRecord is one undecoded element of the orders array.
type rawRecord map[string]json.RawMessage

// wireRecord is the tagged union produced at the ingestion boundary.
type wireRecord struct {
	Shape Shape
	Raw   rawRecord
}

// DetectShape picks the structured transform when the record has a
// non-empty shipment_id or parcel, and the flattened one otherwise.
func DetectShape(raw rawRecord) Shape {
	if present(raw["shipment_id"]) || present(raw["parcel"]) {
		return ShapeStructured
	}
	return ShapeFlattened
}

// present mirrors a truthiness check: null, "", false and 0 count as absent.
func present(v json.RawMessage) bool {
	switch s := string(bytes.TrimSpace(v)); s {
	case "", "null", `""`, "false", "0":
		return false
	}
	return true
}

// Normalize converts one record of either shape into the canonical order.
func Normalize(rec wireRecord) (models.Order, error) {
	if rec.Shape == ShapeStructured {
		return normalizeStructured(rec.Raw)
	}
	return normalizeFlattened(rec.Raw)
}

// ── Wire types ───────────────────────────────────────────────────────────────

// flexString accepts JSON strings, numbers and booleans.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(b)
	}
	return nil
}

func (f flexString) String() string { return string(f) }

// flexInt accepts numbers and numeric strings; anything else decodes as 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = flexInt(leadingInt(string(s)))
	return nil
}

var (
	leadingIntRE   = regexp.MustCompile(`^\s*[-+]?\d+`)
	leadingFloatRE = regexp.MustCompile(`^\s*[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)
)

func leadingInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(leadingIntRE.FindString(s)))
	return n
}

// leadingDecimal parses the numeric prefix of s, so "1.5kg" reads as 1.5.
// It fails when s does not start with a number.
func leadingDecimal(s string) (decimal.Decimal, bool) {
	m := strings.TrimSpace(leadingFloatRE.FindString(s))
	if m == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

type wireAddress struct {
	FullName flexString `json:"full_name"`
	Company  flexString `json:"company"`
	Email    flexString `json:"email"`
	Phone    flexString `json:"phone"`
	Country  flexString `json:"country"`
	Zip      flexString `json:"zip"`
	Province flexString `json:"province"`
	City     flexString `json:"city"`
	Address1 flexString `json:"address1"`
	Address2 flexString `json:"address2"`
}

func (a *wireAddress) canonical() models.Address {
	if a == nil {
		return models.Address{}
	}
	return models.Address{
		FullName: a.FullName.String(),
		Company:  a.Company.String(),
		Email:    a.Email.String(),
		Phone:    a.Phone.String(),
		Country:  a.Country.String(),
		Zip:      a.Zip.String(),
		Province: a.Province.String(),
		City:     a.City.String(),
		Address1: a.Address1.String(),
		Address2: a.Address2.String(),
	}
}

type wireSetup struct {
	CarrierID    flexString `json:"carrier_id"`
	Service      flexString `json:"service"`
	RefNumber    flexString `json:"ref_number"`
	PackAmount   flexString `json:"pack_amount"`
	ShipmentDate flexString `json:"shipment_date"`
	CoolOptions  flexString `json:"cool_options"`
	Test         flexString `json:"test"`
}

func (s *wireSetup) canonical() models.Setup {
	if s == nil {
		return models.Setup{}
	}
	return models.Setup{
		CarrierID:    s.CarrierID.String(),
		Service:      s.Service.String(),
		RefNumber:    s.RefNumber.String(),
		PackAmount:   s.PackAmount.String(),
		ShipmentDate: s.ShipmentDate.String(),
		CoolOptions:  s.CoolOptions.String(),
		Test:         s.Test.String(),
	}
}

type wireProduct struct {
	Name          flexString `json:"name"`
	Quantity      flexInt    `json:"quantity"`
	Price         flexString `json:"price"`
	HSCode        flexString `json:"hs_code"`
	OriginCountry flexString `json:"origin_country"`
}

type wireParcel struct {
	Weight     flexString `json:"weight"`
	WeightUnit flexString `json:"weight_unit"`
	Length     flexString `json:"length"`
	Width      flexString `json:"width"`
	Height     flexString `json:"height"`
}

func (p wireParcel) canonical() models.Parcel {
	return models.Parcel{
		Weight: p.Weight.String(),
		Length: p.Length.String(),
		Width:  p.Width.String(),
		Height: p.Height.String(),
	}
}

type wireCustoms struct {
	TotalValue flexString `json:"total_value"`
}

// wireOrder covers the fields of both shapes; the flattened transform folds
// its dotted keys into this same layout before decoding.
type wireOrder struct {
	StoreID     flexString    `json:"store_id"`
	OrderID     flexString    `json:"order_id"`
	ShipmentID  flexString    `json:"shipment_id"`
	Setup       *wireSetup    `json:"setup"`
	FromAddress *wireAddress  `json:"from_address"`
	ToAddress   *wireAddress  `json:"to_address"`
	Products    []wireProduct `json:"products"`
	Parcel      *wireParcel   `json:"parcel"`
	Parcels     []wireParcel  `json:"parcels"`
	Customs     *wireCustoms  `json:"customs"`
	TotalPrice  flexString    `json:"total_price"`
	FinalWeight flexString    `json:"final_weight"`
	Status      flexString    `json:"status"`
	OrderStatus flexString    `json:"order_status"`
}

func (w *wireOrder) products() []models.Product {
	out := make([]models.Product, 0, len(w.Products))
	for _, p := range w.Products {
		out = append(out, models.Product{
			Name:          p.Name.String(),
			Quantity:      int(p.Quantity),
			Price:         p.Price.String(),
			HSCode:        p.HSCode.String(),
			OriginCountry: p.OriginCountry.String(),
		})
	}
	return out
}

func decodeWire(raw rawRecord) (*wireOrder, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var w wireOrder
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ── Structured ───────────────────────────────────────────────────────────────

func normalizeStructured(raw rawRecord) (models.Order, error) {
	w, err := decodeWire(raw)
	if err != nil {
		return models.Order{}, err
	}

	orderID := w.ShipmentID.String()
	if orderID == "" {
		orderID = w.OrderID.String()
	}

	order := models.Order{
		StoreID:     w.StoreID.String(),
		OrderID:     orderID,
		ShipmentID:  w.ShipmentID.String(),
		Setup:       w.Setup.canonical(),
		FromAddress: w.FromAddress.canonical(),
		ToAddress:   w.ToAddress.canonical(),
		Products:    w.products(),
		Parcels:     []models.Parcel{},
		TotalPrice:  w.TotalPrice.String(),
		Status:      w.OrderStatus.String(),
	}
	if order.Status == "" {
		order.Status = w.Status.String()
	}
	if w.Customs != nil && w.Customs.TotalValue != "" {
		order.TotalPrice = w.Customs.TotalValue.String()
	}

	if w.Parcel != nil {
		order.Parcels = append(order.Parcels, w.Parcel.canonical())
		if kg, ok := parcelKilograms(raw["parcel"], *w.Parcel); ok {
			order.TotalWeight = &kg
			order.FinalWeight = kg.String()
		}
	}

	return order, nil
}

var thousand = decimal.NewFromInt(1000)

// parcelKilograms converts parcel.weight to kilograms. Only "g" is
// converted; any other unit is taken as kilograms already. A bare 0 counts
// as unset while the string "0" is a real zero weight.
func parcelKilograms(rawParcel json.RawMessage, p wireParcel) (decimal.Decimal, bool) {
	var head struct {
		Weight json.RawMessage `json:"weight"`
	}
	if err := json.Unmarshal(rawParcel, &head); err != nil || !present(head.Weight) {
		return decimal.Decimal{}, false
	}
	w, err := decimal.NewFromString(strings.TrimSpace(p.Weight.String()))
	if err != nil {
		return decimal.Decimal{}, false
	}
	if p.WeightUnit == "g" {
		return w.Div(thousand), true
	}
	return w, true
}

// ── Flattened ────────────────────────────────────────────────────────────────

var indexedKeyRE = regexp.MustCompile(`^(products|parcels)\[(\d+)\]\.(.+)$`)

func normalizeFlattened(raw rawRecord) (models.Order, error) {
	nested := rawRecord{}
	groups := map[string]map[string]json.RawMessage{
		"setup":        {},
		"from_address": {},
		"to_address":   {},
	}
	lists := map[string]map[int]map[string]json.RawMessage{
		"products": {},
		"parcels":  {},
	}

	for key, value := range raw {
		if m := indexedKeyRE.FindStringSubmatch(key); m != nil {
			idx, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			list := lists[m[1]]
			if list[idx] == nil {
				list[idx] = map[string]json.RawMessage{}
			}
			list[idx][m[3]] = value
			continue
		}

		if prefix, field, ok := strings.Cut(key, "."); ok {
			if g, known := groups[prefix]; known {
				g[field] = value
			}
			continue
		}

		switch key {
		case "store_id", "order_id", "total_price", "final_weight", "status":
			nested[key] = value
		}
	}

	for name, g := range groups {
		b, err := json.Marshal(g)
		if err != nil {
			return models.Order{}, err
		}
		nested[name] = b
	}
	for name, list := range lists {
		b, err := json.Marshal(compact(list))
		if err != nil {
			return models.Order{}, err
		}
		nested[name] = b
	}

	w, err := decodeWire(nested)
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		StoreID:     w.StoreID.String(),
		OrderID:     w.OrderID.String(),
		Setup:       w.Setup.canonical(),
		FromAddress: w.FromAddress.canonical(),
		ToAddress:   w.ToAddress.canonical(),
		Products:    w.products(),
		Parcels:     make([]models.Parcel, 0, len(w.Parcels)),
		TotalPrice:  w.TotalPrice.String(),
		FinalWeight: w.FinalWeight.String(),
		Status:      w.Status.String(),
	}
	for _, p := range w.Parcels {
		order.Parcels = append(order.Parcels, p.canonical())
	}
	if kg, ok := leadingDecimal(order.FinalWeight); ok {
		order.TotalWeight = &kg
	}

	return order, nil
}

// compact orders indexed entries by index and drops gaps and empty entries.
func compact(list map[int]map[string]json.RawMessage) []map[string]json.RawMessage {
	idx := make([]int, 0, len(list))
	for i, entry := range list {
		if len(entry) > 0 {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)

	out := make([]map[string]json.RawMessage, 0, len(idx))
	for _, i := range idx {
		out = append(out, list[i])
	}
	return out
}
