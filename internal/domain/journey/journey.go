// Package journey reconstructs the lifecycle timeline of one IMEI by
// replaying its ledger. It is a pure projection: the same inputs always
// produce the same sequence, and nothing here touches storage.
package journey

import (
	"fmt"
	"sort"
	"time"

	"telstock/internal/core/id"
	"telstock/internal/domain/allocation"
	"telstock/internal/domain/hierarchy"
	"telstock/internal/domain/inventory"
)

// Step is one event in a unit's lifecycle.
type Step struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Event       string    `json:"event"` // registered | allocated | recalled | sold
	Timestamp   time.Time `json:"timestamp"`
}

// Journey is the reconstructed timeline of one unit.
type Journey struct {
	Imei   string `json:"imei"`
	Status string `json:"status"`
	Steps  []Step `json:"steps"`
}

// statusLabels maps raw statuses to display labels. Anything else renders
// "Unknown" rather than failing.
var statusLabels = map[inventory.Status]string{
	inventory.StatusInStock:   "In Stock",
	inventory.StatusAllocated: "Allocated",
	inventory.StatusSold:      "Sold",
	inventory.StatusLocked:    "Locked",
	inventory.StatusLost:      "Lost",
}

// StatusLabel returns the display label for a status, "Unknown" for
// anything unrecognized.
func StatusLabel(s inventory.Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// Build replays the ledger of one unit into an ordered timeline:
// a synthetic "Registered" step, one step per ledger entry ascending by
// creation time, and a terminal "Sold to Customer" step when sold.
func Build(unit *inventory.IMEI, entries []*allocation.LedgerEntry, users []*hierarchy.User) *Journey {
	byID := make(map[id.ID]*hierarchy.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	steps := make([]Step, 0, len(entries)+2)
	steps = append(steps, Step{
		Title:       "Registered",
		Description: fmt.Sprintf("Registered into inventory from %s", sourceName(unit.Source)),
		Event:       "registered",
		Timestamp:   unit.RegisteredAt,
	})

	sorted := make([]*allocation.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.Imei == unit.Number {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	for _, e := range sorted {
		if e.IsRecall() {
			steps = append(steps, Step{
				Title: "Recalled",
				Description: fmt.Sprintf("Recalled from %s by %s",
					userName(byID, e.FromUserID), userName(byID, &e.ToUserID)),
				Event:     "recalled",
				Timestamp: e.CreatedAt,
			})
			continue
		}
		steps = append(steps, Step{
			Title: fmt.Sprintf("Allocated to %s", roleName(e.Level)),
			Description: fmt.Sprintf("Allocated to %s (%s)",
				userName(byID, &e.ToUserID), roleName(e.Level)),
			Event:     "allocated",
			Timestamp: e.CreatedAt,
		})
	}

	if unit.Status == inventory.StatusSold && unit.SoldAt != nil {
		steps = append(steps, Step{
			Title:       "Sold to Customer",
			Description: fmt.Sprintf("Sold by %s", userName(byID, unit.SoldBy)),
			Event:       "sold",
			Timestamp:   *unit.SoldAt,
		})
	}

	return &Journey{
		Imei:   unit.Number,
		Status: StatusLabel(unit.Status),
		Steps:  steps,
	}
}

func userName(byID map[id.ID]*hierarchy.User, userID *id.ID) string {
	if userID == nil {
		return "Head Office"
	}
	if u, ok := byID[*userID]; ok {
		return u.Name
	}
	return "Unknown User"
}

func roleName(r hierarchy.Role) string {
	switch r {
	case hierarchy.RoleAdmin:
		return "Admin"
	case hierarchy.RoleRegionalManager:
		return "Regional Manager"
	case hierarchy.RoleTeamLeader:
		return "Team Leader"
	case hierarchy.RoleFieldOfficer:
		return "Field Officer"
	}
	return string(r)
}

func sourceName(s inventory.SourceCompany) string {
	switch s {
	case inventory.SourceDirect:
		return "direct import"
	case inventory.SourceDistributor:
		return "local distributor"
	case inventory.SourceCarrier:
		return "carrier channel"
	case inventory.SourceRefurbished:
		return "refurbished stock"
	}
	return string(s)
}
