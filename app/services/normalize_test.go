package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, s string) rawRecord {
	t.Helper()
	var raw rawRecord
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestDetectShape(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Shape
	}{
		{"shipment id", `{"shipment_id":"S1"}`, ShapeStructured},
		{"parcel object", `{"order_id":"A1","parcel":{"weight":1}}`, ShapeStructured},
		{"flattened keys", `{"order_id":"A1","to_address.city":"Tokyo"}`, ShapeFlattened},
		{"empty shipment id", `{"shipment_id":"","order_id":"A1"}`, ShapeFlattened},
		{"null parcel", `{"parcel":null}`, ShapeFlattened},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectShape(record(t, tt.json)))
		})
	}
}

func TestNormalizeStructured(t *testing.T) {
	raw := record(t, `{
		"shipment_id": "SHP-1",
		"order_id": "ORD-1",
		"order_status": "paid",
		"status": "ignored",
		"total_price": "100",
		"customs": {"total_value": 2500},
		"to_address": {"full_name": "Hanako", "city": "Osaka", "zip": 5300001},
		"products": [{"name": "Tea", "quantity": "3", "price": 800}],
		"parcel": {"weight": 1500, "weight_unit": "g", "length": 40, "width": 30, "height": 30}
	}`)

	order, err := Normalize(wireRecord{Shape: DetectShape(raw), Raw: raw})
	require.NoError(t, err)

	assert.Equal(t, "SHP-1", order.OrderID)
	assert.Equal(t, "paid", order.Status)
	assert.Equal(t, "2500", order.TotalPrice)
	assert.Equal(t, "Osaka", order.ToAddress.City)
	assert.Equal(t, "5300001", order.ToAddress.Zip)
	require.Len(t, order.Products, 1)
	assert.Equal(t, 3, order.Products[0].Quantity)
	assert.Equal(t, "800", order.Products[0].Price)

	require.Len(t, order.Parcels, 1)
	assert.Equal(t, "1500", order.Parcels[0].Weight)
	assert.Equal(t, "40", order.Parcels[0].Length)
	require.NotNil(t, order.TotalWeight)
	assert.Equal(t, "1.5", order.TotalWeight.String())
	assert.Equal(t, "1.5", order.FinalWeight)
}

func TestNormalizeStructuredFallbacks(t *testing.T) {
	raw := record(t, `{"order_id": "ORD-2", "status": "new", "total_price": 900, "parcel": {"weight": 2}}`)

	order, err := Normalize(wireRecord{Shape: ShapeStructured, Raw: raw})
	require.NoError(t, err)

	assert.Equal(t, "ORD-2", order.OrderID)
	assert.Equal(t, "new", order.Status)
	assert.Equal(t, "900", order.TotalPrice)
	require.NotNil(t, order.TotalWeight)
	assert.Equal(t, "2", order.TotalWeight.String())
	assert.NotNil(t, order.Products)
}

func TestNormalizeFlattened(t *testing.T) {
	raw := record(t, `{
		"store_id": "store_1",
		"order_id": "A-100",
		"final_weight": "0.75",
		"total_price": "3200",
		"setup.carrier_id": "ems",
		"to_address.full_name": "Taro",
		"to_address.country": "JP",
		"from_address.city": "Kyoto",
		"products[1].name": "Cup",
		"products[1].quantity": "2",
		"products[0].name": "Bowl",
		"products[0].quantity": 1,
		"parcels[2].length": "40",
		"parcels[2].width": "30",
		"parcels[2].height": "30",
		"unknown": "dropped"
	}`)

	order, err := Normalize(wireRecord{Shape: DetectShape(raw), Raw: raw})
	require.NoError(t, err)

	assert.Equal(t, "store_1", order.StoreID)
	assert.Equal(t, "A-100", order.OrderID)
	assert.Equal(t, "ems", order.Setup.CarrierID)
	assert.Equal(t, "Taro", order.ToAddress.FullName)
	assert.Equal(t, "JP", order.ToAddress.Country)
	assert.Equal(t, "Kyoto", order.FromAddress.City)

	require.Len(t, order.Products, 2)
	assert.Equal(t, "Bowl", order.Products[0].Name)
	assert.Equal(t, 1, order.Products[0].Quantity)
	assert.Equal(t, "Cup", order.Products[1].Name)
	assert.Equal(t, 2, order.Products[1].Quantity)

	require.Len(t, order.Parcels, 1, "index gaps are removed")
	assert.Equal(t, "40", order.Parcels[0].Length)

	require.NotNil(t, order.TotalWeight)
	assert.Equal(t, "0.75", order.TotalWeight.String())
}

func TestNormalizeFlattenedWithoutListsOrWeight(t *testing.T) {
	order, err := Normalize(wireRecord{Shape: ShapeFlattened, Raw: record(t, `{"order_id":"A-1","final_weight":"n/a"}`)})
	require.NoError(t, err)

	assert.NotNil(t, order.Products)
	assert.NotNil(t, order.Parcels)
	assert.Empty(t, order.Parcels)
	assert.Nil(t, order.TotalWeight)
}

func TestLeadingInt(t *testing.T) {
	assert.Equal(t, 12, leadingInt("12pcs"))
	assert.Equal(t, 0, leadingInt("abc"))
	assert.Equal(t, -3, leadingInt(" -3"))
}

func TestNormalizeFlattenedWeightWithUnitSuffix(t *testing.T) {
	order, err := Normalize(wireRecord{Shape: ShapeFlattened, Raw: record(t, `{"order_id":"A-2","final_weight":"1.5kg"}`)})
	require.NoError(t, err)

	require.NotNil(t, order.TotalWeight)
	assert.Equal(t, "1.5", order.TotalWeight.String())
	assert.Equal(t, "1.5kg", order.FinalWeight)
}

func TestNormalizeStructuredZeroWeight(t *testing.T) {
	quoted, err := Normalize(wireRecord{Shape: ShapeStructured, Raw: record(t, `{"shipment_id":"S-1","parcel":{"weight":"0"}}`)})
	require.NoError(t, err)
	require.NotNil(t, quoted.TotalWeight, "a quoted zero is a real weight")
	assert.True(t, quoted.TotalWeight.IsZero())
	assert.Equal(t, "0", quoted.FinalWeight)

	bare, err := Normalize(wireRecord{Shape: ShapeStructured, Raw: record(t, `{"shipment_id":"S-2","parcel":{"weight":0}}`)})
	require.NoError(t, err)
	assert.Nil(t, bare.TotalWeight)
	assert.Empty(t, bare.FinalWeight)
}

func TestLeadingDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0.75", "0.75", true},
		{" 1.5kg", "1.5", true},
		{".5", "0.5", true},
		{"2e1", "20", true},
		{"kg1.5", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := leadingDecimal(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}
