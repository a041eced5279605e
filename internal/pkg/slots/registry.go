package slots

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DashboardPath is where unknown slots fall back to.
const DashboardPath = "/dashboard"

// DefaultFreeSlotID is the slot that can be claimed without payment.
const DefaultFreeSlotID = 4

// Slot is a numbered placement on the site that can be sold as advertising.
type Slot struct {
	ID          int
	Name        string
	Description string
	CreatePath  string
	Type        string
	Table       string
	Icon        string
}

// Registry is an immutable lookup table of slots.
type Registry struct {
	slots      map[int]Slot
	freeSlotID int
}

// NewRegistry builds a registry from the given slots. Later duplicates win.
func NewRegistry(slots []Slot, freeSlotID int) *Registry {
	m := make(map[int]Slot, len(slots))
	for _, s := range slots {
		m[s.ID] = s
	}
	return &Registry{slots: m, freeSlotID: freeSlotID}
}

// NewDefaultRegistry returns the registry of the slots the site ships with.
func NewDefaultRegistry(freeSlotID int) *Registry {
	return NewRegistry(DefaultSlots(), freeSlotID)
}

func DefaultSlots() []Slot {
	return []Slot{
		{
			ID:          1,
			Name:        "Top Banner",
			Description: "Banner above the server list on every page.",
			CreatePath:  "/dashboard/banners/new",
			Type:        "banner",
			Table:       "banners",
			Icon:        "image",
		},
		{
			ID:          2,
			Name:        "Featured Server",
			Description: "Highlighted card in the featured carousel.",
			CreatePath:  "/dashboard/servers/new",
			Type:        "featured",
			Table:       "servers",
			Icon:        "star",
		},
		{
			ID:          3,
			Name:        "Top-50",
			Description: "Guaranteed placement in the Top-50 ranking.",
			CreatePath:  "/dashboard/servers/new",
			Type:        "top50",
			Table:       "servers",
			Icon:        "trophy",
		},
		{
			ID:          4,
			Name:        "Free Listing",
			Description: "Regular listing, ranked by votes.",
			CreatePath:  "/dashboard/servers/new",
			Type:        "free",
			Table:       "servers",
			Icon:        "gift",
		},
	}
}

// Lookup returns the slot with the given id.
func (r *Registry) Lookup(slotID int) (Slot, bool) {
	s, ok := r.slots[slotID]
	return s, ok
}

// IsFree reports whether slotID is the configured free slot.
func (r *Registry) IsFree(slotID int) bool {
	return slotID == r.freeSlotID
}

// FreeSlotID returns the configured free slot id.
func (r *Registry) FreeSlotID() int {
	return r.freeSlotID
}

// All returns every slot ordered by id.
func (r *Registry) All() []Slot {
	out := make([]Slot, 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RedirectPath returns the creation form of the slot with type, slot and
// package appended in that order. Unknown slots go to the dashboard.
func (r *Registry) RedirectPath(slotID int, packageID string) string {
	s, ok := r.slots[slotID]
	if !ok {
		return DashboardPath
	}

	var b strings.Builder
	b.WriteString(s.CreatePath)
	b.WriteString("?type=")
	b.WriteString(url.QueryEscape(s.Type))
	b.WriteString("&slot=")
	b.WriteString(strconv.Itoa(s.ID))
	b.WriteString("&package=")
	b.WriteString(url.QueryEscape(packageID))
	return b.String()
}
