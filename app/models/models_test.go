package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxLookupAndMatch(t *testing.T) {
	b, ok := LookupBox("100")
	assert.True(t, ok)
	assert.Equal(t, BoxSize{Code: "100", Length: 40, Width: 30, Height: 30}, b)

	m, ok := MatchBox(70, 45, 45)
	assert.True(t, ok)
	assert.Equal(t, "160", m.Code)

	_, ok = MatchBox(1, 2, 3)
	assert.False(t, ok)
	_, ok = LookupBox("999")
	assert.False(t, ok)
}

func TestBoxPresetsIsACopy(t *testing.T) {
	p := BoxPresets()
	p[0].Length = 999
	b, _ := LookupBox("60")
	assert.Equal(t, 20, b.Length)
	assert.Len(t, BoxPresets(), 8)
}

func TestOrderCompleteness(t *testing.T) {
	o := Order{OrderID: "A1", FinalWeight: "1.5", TotalPrice: "3000", Parcels: []Parcel{{Length: "40"}}}
	assert.True(t, o.IsComplete())
	assert.False(t, o.IsPlaceholder())

	o.Parcels = nil
	assert.False(t, o.IsComplete())
	assert.True(t, Order{}.IsPlaceholder())
}
