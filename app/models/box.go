package models

import "fmt"

// BoxSize is a shipping-box preset. Code is the carrier size class
// (sum of sides); dimensions are centimetres.
type BoxSize struct {
	Code   string
	Length int
	Width  int
	Height int
}

func (b BoxSize) Label() string {
	return fmt.Sprintf("%s size (%d×%d×%d cm)", b.Code, b.Length, b.Width, b.Height)
}

var boxSizes = [...]BoxSize{
	{Code: "60", Length: 20, Width: 20, Height: 20},
	{Code: "80", Length: 30, Width: 25, Height: 25},
	{Code: "100", Length: 40, Width: 30, Height: 30},
	{Code: "120", Length: 50, Width: 35, Height: 35},
	{Code: "140", Length: 60, Width: 40, Height: 40},
	{Code: "160", Length: 70, Width: 45, Height: 45},
	{Code: "180", Length: 80, Width: 50, Height: 50},
	{Code: "200", Length: 90, Width: 55, Height: 55},
}

// BoxPresets returns a copy of the preset table in ascending size.
func BoxPresets() []BoxSize {
	out := make([]BoxSize, len(boxSizes))
	copy(out, boxSizes[:])
	return out
}

func LookupBox(code string) (BoxSize, bool) {
	for _, b := range boxSizes {
		if b.Code == code {
			return b, true
		}
	}
	return BoxSize{}, false
}

// MatchBox finds the preset with exactly these dimensions.
func MatchBox(length, width, height int) (BoxSize, bool) {
	for _, b := range boxSizes {
		if b.Length == length && b.Width == width && b.Height == height {
			return b, true
		}
	}
	return BoxSize{}, false
}
