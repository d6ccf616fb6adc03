package models

import "github.com/shopspring/decimal"

type Address struct {
	FullName string `json:"full_name,omitempty"`
	Company  string `json:"company,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Country  string `json:"country,omitempty"`
	Zip      string `json:"zip,omitempty"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
}

type Product struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	Price         string `json:"price,omitempty"`
	HSCode        string `json:"hs_code,omitempty"`
	OriginCountry string `json:"origin_country,omitempty"`
}

// Parcel dimensions are centimetres; Weight is whatever the upstream sent.
type Parcel struct {
	Weight string `json:"weight,omitempty"`
	Length string `json:"length,omitempty"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}

type Setup struct {
	CarrierID    string `json:"carrier_id,omitempty"`
	Service      string `json:"service,omitempty"`
	RefNumber    string `json:"ref_number,omitempty"`
	PackAmount   string `json:"pack_amount,omitempty"`
	ShipmentDate string `json:"shipment_date,omitempty"`
	CoolOptions  string `json:"cool_options,omitempty"`
	Test         string `json:"test,omitempty"`
}

// Order is the canonical record every upstream wire shape is normalized
// into. Products and Parcels are never nil.
type Order struct {
	StoreID     string    `json:"store_id"`
	OrderID     string    `json:"order_id"`
	ShipmentID  string    `json:"shipment_id,omitempty"`
	Setup       Setup     `json:"setup"`
	FromAddress Address   `json:"from_address"`
	ToAddress   Address   `json:"to_address"`
	Products    []Product `json:"products"`
	Parcels     []Parcel  `json:"parcels"`
	TotalPrice  string    `json:"total_price,omitempty"`
	FinalWeight string    `json:"final_weight,omitempty"`
	Status      string    `json:"status,omitempty"`

	// TotalWeight is the final weight in kilograms, nil when unknown.
	TotalWeight *decimal.Decimal `json:"totalWeight,omitempty"`
}

// IsPlaceholder reports an order row without an identifier. Placeholders
// are never rendered nor counted.
func (o Order) IsPlaceholder() bool {
	return o.OrderID == ""
}

// FirstParcel returns parcels[0] or the zero Parcel.
func (o Order) FirstParcel() Parcel {
	if len(o.Parcels) == 0 {
		return Parcel{}
	}
	return o.Parcels[0]
}

// IsComplete reports whether weight, price and box are all filled in.
func (o Order) IsComplete() bool {
	return o.FinalWeight != "" && o.TotalPrice != "" && o.FirstParcel().Length != ""
}
