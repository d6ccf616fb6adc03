package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yuimaru-ship/storefront/app/models"
)

// ResolveStoreID picks the store the dashboard shows. Signed-in users always
// see their linked store, even when it is still empty; anonymous visitors
// may name one with ?store_id= and get a read-only demo.
func ResolveStoreID(query url.Values, st models.SessionState) (storeID string, demo bool) {
	if st.State.Authenticated() {
		return st.StoreID, false
	}
	id := strings.TrimSpace(query.Get("store_id"))
	return id, id != ""
}

// Stats are the four counters above the order list.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Complete int `json:"complete"`
	Shipped  int `json:"shipped"`
}

// VisibleOrders drops placeholder rows.
func VisibleOrders(orders []models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if !o.IsPlaceholder() {
			out = append(out, o)
		}
	}
	return out
}

// ComputeStats counts visible orders. The order API has no shipment status,
// so Shipped is always zero.
func ComputeStats(orders []models.Order) Stats {
	var st Stats
	for _, o := range VisibleOrders(orders) {
		st.Total++
		if o.IsComplete() {
			st.Complete++
		} else {
			st.Pending++
		}
	}
	return st
}

// ApplyUpdate patches a local copy of o after the remote update succeeded.
func ApplyUpdate(o models.Order, f UpdateFields) models.Order {
	if f.FinalWeight != nil {
		kg := *f.FinalWeight
		o.FinalWeight = kg.String()
		o.TotalWeight = &kg
	}
	if f.TotalPrice != nil {
		o.TotalPrice = f.TotalPrice.String()
	}
	if f.Box != nil {
		p := o.FirstParcel()
		p.Length = fmt.Sprint(f.Box.Length)
		p.Width = fmt.Sprint(f.Box.Width)
		p.Height = fmt.Sprint(f.Box.Height)
		parcels := make([]models.Parcel, len(o.Parcels))
		copy(parcels, o.Parcels)
		if len(parcels) == 0 {
			parcels = append(parcels, p)
		} else {
			parcels[0] = p
		}
		o.Parcels = parcels
	}
	return o
}

// UpdateMessage is the confirmation shown after a successful update.
func UpdateMessage(orderID string, f UpdateFields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s was updated.", orderID)
	if f.FinalWeight != nil {
		fmt.Fprintf(&b, "\nTotal weight: %skg", f.FinalWeight.String())
	}
	if f.TotalPrice != nil {
		fmt.Fprintf(&b, "\nTotal price: ¥%s", f.TotalPrice.String())
	}
	if f.Box != nil {
		fmt.Fprintf(&b, "\nBox size: %d×%d×%dcm", f.Box.Length, f.Box.Width, f.Box.Height)
	}
	return b.String()
}

// OrderCard is one editable row of the dashboard. Errors holds per-field
// messages of a rejected edit, keyed like the form inputs.
type OrderCard struct {
	Order    models.Order
	Edit     EditBuffer
	Errors   map[string]string
	Complete bool
	Box      string
}

// Dashboard is the page view model. Exactly one of Error and the content
// branch (Orders, possibly empty) is meaningful.
type Dashboard struct {
	State    models.AuthState
	User     *models.User
	StoreID  string
	Demo     bool
	Error    string
	Orders   []OrderCard
	Stats    Stats
	Boxes    []models.BoxSize
	Flash    string
	FlashErr string
}

// RestoreEdit puts a rejected edit back on the card of buf.OrderID so the
// typed values survive the redirect. It reports false when no card matches.
func (d *Dashboard) RestoreEdit(buf EditBuffer, errs map[string]string) bool {
	for i := range d.Orders {
		if d.Orders[i].Order.OrderID == buf.OrderID {
			d.Orders[i].Edit = buf
			d.Orders[i].Errors = errs
			return true
		}
	}
	return false
}

func (d Dashboard) HasOrders() bool { return d.Error == "" && len(d.Orders) > 0 }
func (d Dashboard) Empty() bool     { return d.Error == "" && len(d.Orders) == 0 }

// CanEdit reports whether the editor accepts changes for this view.
func (d Dashboard) CanEdit() bool { return !d.Demo && d.StoreID != "" }

// BuildDashboard assembles the page from the fetch result. A fetch error
// suppresses the list and stats.
func BuildDashboard(st models.SessionState, storeID string, demo bool, orders []models.Order, fetchErr error) Dashboard {
	d := Dashboard{
		State:   st.State,
		User:    st.User,
		StoreID: storeID,
		Demo:    demo,
		Boxes:   models.BoxPresets(),
		Orders:  []OrderCard{},
	}
	if fetchErr != nil {
		d.Error = fmt.Sprintf("Failed to load orders. Check the API connection for store_id: %s.", storeID)
		return d
	}

	visible := VisibleOrders(orders)
	for _, o := range visible {
		card := OrderCard{Order: o, Edit: NewEditBuffer(o), Complete: o.IsComplete()}
		if box, ok := models.LookupBox(card.Edit.BoxCode); ok {
			card.Box = box.Label()
		}
		d.Orders = append(d.Orders, card)
	}
	d.Stats = ComputeStats(visible)
	return d
}
