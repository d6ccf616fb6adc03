package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuimaru-ship/storefront/app/models"
	"github.com/yuimaru-ship/storefront/app/services"
)

func TestWeightRoundTrip(t *testing.T) {
	kg := decimal.RequireFromString("1.5")
	grams := services.KilogramsToGrams(kg)
	assert.Equal(t, "1500", grams.String())
	assert.True(t, services.GramsToKilograms(grams).Equal(kg))
}

func TestNewEditBuffer(t *testing.T) {
	order := models.Order{
		OrderID:     "A-1",
		FinalWeight: "1.25",
		TotalPrice:  "3000",
		Parcels:     []models.Parcel{{Length: "40", Width: "30", Height: "30"}},
	}

	b := services.NewEditBuffer(order)
	assert.Equal(t, "A-1", b.OrderID)
	assert.Equal(t, "1250", b.WeightGrams)
	assert.Equal(t, "3000", b.Price)
	assert.Equal(t, "100", b.BoxCode)
}

func TestNewEditBufferEmptyOrder(t *testing.T) {
	b := services.NewEditBuffer(models.Order{OrderID: "A-2", Parcels: []models.Parcel{{Length: "33"}}})
	assert.Empty(t, b.WeightGrams)
	assert.Empty(t, b.Price)
	assert.Empty(t, b.BoxCode)
}

func TestValidate(t *testing.T) {
	valid := services.EditBuffer{OrderID: "A-1", WeightGrams: "1500", Price: "2000", BoxCode: "60"}

	fields, err := valid.Validate(false)
	require.NoError(t, err)
	assert.Equal(t, "1.5", fields.FinalWeight.String())
	assert.Equal(t, "2000", fields.TotalPrice.String())
	assert.Equal(t, &services.BoxDimensions{Length: 20, Width: 20, Height: 20}, fields.Box)

	tests := []struct {
		name     string
		edit     func(b *services.EditBuffer)
		disabled bool
		want     error
	}{
		{"demo mode", func(b *services.EditBuffer) {}, true, services.ErrDemoMode},
		{"missing weight", func(b *services.EditBuffer) { b.WeightGrams = "" }, false, services.ErrInvalidWeight},
		{"zero weight", func(b *services.EditBuffer) { b.WeightGrams = "0" }, false, services.ErrInvalidWeight},
		{"negative price", func(b *services.EditBuffer) { b.Price = "-5" }, false, services.ErrInvalidPrice},
		{"text price", func(b *services.EditBuffer) { b.Price = "abc" }, false, services.ErrInvalidPrice},
		{"no box", func(b *services.EditBuffer) { b.BoxCode = "" }, false, services.ErrBoxRequired},
		{"unknown box", func(b *services.EditBuffer) { b.BoxCode = "999" }, false, services.ErrUnknownBox},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.edit(&b)
			_, err := b.Validate(tt.disabled)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	assert.Contains(t, services.FieldErrors(services.ErrInvalidWeight), "final_weight_grams")
	assert.Contains(t, services.FieldErrors(services.ErrUnknownBox), "box_size")
	assert.Nil(t, services.FieldErrors(services.ErrDemoMode))
}
