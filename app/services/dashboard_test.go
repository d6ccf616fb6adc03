package services_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuimaru-ship/storefront/app/models"
	"github.com/yuimaru-ship/storefront/app/services"
)

func TestResolveStoreID(t *testing.T) {
	q := url.Values{"store_id": {"demo_1"}}

	id, demo := services.ResolveStoreID(q, models.SessionState{State: models.AuthUnauthenticated})
	assert.Equal(t, "demo_1", id)
	assert.True(t, demo)

	id, demo = services.ResolveStoreID(q, models.SessionState{State: models.AuthLinked, StoreID: "store_9"})
	assert.Equal(t, "store_9", id)
	assert.False(t, demo)

	id, demo = services.ResolveStoreID(q, models.SessionState{State: models.AuthUnlinked})
	assert.Empty(t, id, "an authenticated user without a store never falls back to the URL")
	assert.False(t, demo)

	id, demo = services.ResolveStoreID(url.Values{}, models.SessionState{State: models.AuthUnauthenticated})
	assert.Empty(t, id)
	assert.False(t, demo)
}

func sampleOrders() []models.Order {
	return []models.Order{
		{OrderID: "A", FinalWeight: "1", TotalPrice: "100", Parcels: []models.Parcel{{Length: "20"}}},
		{OrderID: "B", FinalWeight: "1", Parcels: []models.Parcel{}},
		{OrderID: "C"},
		{OrderID: ""},
	}
}

func TestComputeStatsExcludesPlaceholders(t *testing.T) {
	st := services.ComputeStats(sampleOrders())
	assert.Equal(t, services.Stats{Total: 3, Pending: 2, Complete: 1, Shipped: 0}, st)
	assert.Len(t, services.VisibleOrders(sampleOrders()), 3)
}

func TestApplyUpdate(t *testing.T) {
	kg := decimal.RequireFromString("2.5")
	original := models.Order{
		OrderID:    "A",
		TotalPrice: "100",
		Parcels:    []models.Parcel{{Weight: "900", Length: "1"}},
	}

	updated := services.ApplyUpdate(original, services.UpdateFields{
		FinalWeight: &kg,
		Box:         &services.BoxDimensions{Length: 30, Width: 25, Height: 25},
	})

	assert.Equal(t, "2.5", updated.FinalWeight)
	require.NotNil(t, updated.TotalWeight)
	assert.True(t, updated.TotalWeight.Equal(kg))
	assert.Equal(t, "100", updated.TotalPrice)
	assert.Equal(t, models.Parcel{Weight: "900", Length: "30", Width: "25", Height: "25"}, updated.Parcels[0])
	assert.Equal(t, "1", original.Parcels[0].Length, "the original order is not modified")
}

func TestBuildDashboard(t *testing.T) {
	st := models.SessionState{State: models.AuthLinked, StoreID: "store_1", User: &models.User{Email: "a@b.c"}}

	d := services.BuildDashboard(st, "store_1", false, sampleOrders(), nil)
	assert.True(t, d.HasOrders())
	assert.False(t, d.Empty())
	assert.Len(t, d.Orders, 3)
	assert.Equal(t, 3, d.Stats.Total)
	assert.True(t, d.CanEdit())
	assert.Len(t, d.Boxes, 8)

	d = services.BuildDashboard(st, "store_1", false, nil, nil)
	assert.True(t, d.Empty())

	d = services.BuildDashboard(st, "store_1", false, sampleOrders(), errors.New("down"))
	assert.NotEmpty(t, d.Error)
	assert.False(t, d.HasOrders())
	assert.False(t, d.Empty())
	assert.Empty(t, d.Orders)

	d = services.BuildDashboard(models.SessionState{State: models.AuthUnauthenticated}, "demo", true, nil, nil)
	assert.False(t, d.CanEdit())
}

func TestRestoreEdit(t *testing.T) {
	st := models.SessionState{State: models.AuthLinked, StoreID: "store_1"}
	d := services.BuildDashboard(st, "store_1", false, sampleOrders(), nil)

	buf := services.EditBuffer{OrderID: "B", WeightGrams: "0", Price: "2500", BoxCode: "80"}
	errs := map[string]string{"final_weight_grams": "enter a valid weight"}
	require.True(t, d.RestoreEdit(buf, errs))

	assert.Equal(t, buf, d.Orders[1].Edit)
	assert.Equal(t, errs, d.Orders[1].Errors)
	assert.Nil(t, d.Orders[0].Errors)
	assert.Equal(t, "100", d.Orders[0].Edit.Price, "other cards keep their own values")

	assert.False(t, d.RestoreEdit(services.EditBuffer{OrderID: "missing"}, nil))
}

func TestUpdateMessage(t *testing.T) {
	price := decimal.NewFromInt(1200)
	msg := services.UpdateMessage("A-1", services.UpdateFields{TotalPrice: &price})
	assert.Contains(t, msg, "A-1")
	assert.Contains(t, msg, "¥1200")
	assert.NotContains(t, msg, "weight")
}
