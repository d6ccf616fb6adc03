package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yuimaru-ship/storefront/app/models"
)

var (
	ErrDemoMode      = errors.New("demo mode: specify a store to make changes")
	ErrInvalidWeight = errors.New("enter a valid weight")
	ErrInvalidPrice  = errors.New("enter a valid price")
	ErrBoxRequired   = errors.New("select a shipping box size")
	ErrUnknownBox    = errors.New("the selected box size is not valid")
)

// KilogramsToGrams and GramsToKilograms are exact inverses.
func KilogramsToGrams(kg decimal.Decimal) decimal.Decimal {
	return kg.Mul(thousand)
}

func GramsToKilograms(g decimal.Decimal) decimal.Decimal {
	return g.Div(thousand)
}

// EditBuffer is the per-order edit form: weight is shown in grams while the
// canonical order keeps kilograms.
type EditBuffer struct {
	OrderID     string
	WeightGrams string
	Price       string
	BoxCode     string
}

// NewEditBuffer seeds the form from the order's current values.
func NewEditBuffer(o models.Order) EditBuffer {
	b := EditBuffer{OrderID: o.OrderID, Price: o.TotalPrice}

	if kg, err := decimal.NewFromString(strings.TrimSpace(o.FinalWeight)); err == nil {
		b.WeightGrams = KilogramsToGrams(kg).String()
	}

	p := o.FirstParcel()
	if box, ok := models.MatchBox(atoi(p.Length), atoi(p.Width), atoi(p.Height)); ok {
		b.BoxCode = box.Code
	}
	return b
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// Validate checks that all three fields are filled in and positive and
// returns the update to send. disabled is true in demo mode.
func (b EditBuffer) Validate(disabled bool) (UpdateFields, error) {
	if disabled {
		return UpdateFields{}, ErrDemoMode
	}

	grams, err := decimal.NewFromString(strings.TrimSpace(b.WeightGrams))
	if err != nil || !grams.IsPositive() {
		return UpdateFields{}, ErrInvalidWeight
	}

	price, err := decimal.NewFromString(strings.TrimSpace(b.Price))
	if err != nil || !price.IsPositive() {
		return UpdateFields{}, ErrInvalidPrice
	}

	if b.BoxCode == "" {
		return UpdateFields{}, ErrBoxRequired
	}
	box, ok := models.LookupBox(b.BoxCode)
	if !ok {
		return UpdateFields{}, ErrUnknownBox
	}

	kg := GramsToKilograms(grams)
	return UpdateFields{
		FinalWeight: &kg,
		TotalPrice:  &price,
		Box:         BoxDimensionsOf(box),
	}, nil
}

// FieldErrors maps a validation error onto the form field it concerns.
func FieldErrors(err error) map[string]string {
	switch {
	case errors.Is(err, ErrInvalidWeight):
		return map[string]string{"final_weight_grams": err.Error()}
	case errors.Is(err, ErrInvalidPrice):
		return map[string]string{"total_price": err.Error()}
	case errors.Is(err, ErrBoxRequired), errors.Is(err, ErrUnknownBox):
		return map[string]string{"box_size": err.Error()}
	}
	return nil
}
