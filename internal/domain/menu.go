package domain

import (
	"sort"
	"strings"
)

type MenuItem struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	Description      string  `json:"description,omitempty"`
	Price            float64 `json:"price"`
	BasePrice        float64 `json:"basePrice,omitempty"`
	MaxPrice         float64 `json:"maxPrice,omitempty"`
	Section          string  `json:"section,omitempty"`
	SectionSortOrder int     `json:"sectionSortOrder,omitempty"`
	Vegan            bool    `json:"vegan,omitempty"`
	Vegetarian       bool    `json:"vegetarian,omitempty"`
	GlutenFree       bool    `json:"glutenFree,omitempty"`
	LactoseFree      bool    `json:"lactoseFree,omitempty"`
	Spicy            bool    `json:"spicy,omitempty"`
	Popular          bool    `json:"popular,omitempty"`
	New              bool    `json:"new,omitempty"`
}

func NormalizeItemID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Equal is the structural equality used for menu diffs. Ids compare normalized.
func (m MenuItem) Equal(other MenuItem) bool {
	a, b := m, other
	a.ID, b.ID = NormalizeItemID(a.ID), NormalizeItemID(b.ID)
	return a == b
}

// CleanMenuItems normalizes ids, drops items without one and keeps the last item
// for a repeated id at the position of its first occurrence.
func CleanMenuItems(items []MenuItem) []MenuItem {
	index := make(map[string]int, len(items))
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		item.ID = NormalizeItemID(item.ID)
		if item.ID == "" {
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i] = item
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// CompareMenus reports whether the two collections differ, ignoring order.
func CompareMenus(oldItems, newItems []MenuItem) bool {
	if len(oldItems) != len(newItems) {
		return true
	}
	a := sortedByID(oldItems)
	b := sortedByID(newItems)
	for i := range a {
		if !a[i].Equal(b[i]) {
			return true
		}
	}
	return false
}

// MergeMenu keeps the position of existing items that are still offered, refreshing
// their fields, drops the ones that disappeared and appends new ones in incoming order.
func MergeMenu(existing, incoming []MenuItem) []MenuItem {
	incoming = CleanMenuItems(incoming)
	byID := make(map[string]MenuItem, len(incoming))
	for _, item := range incoming {
		byID[item.ID] = item
	}

	merged := make([]MenuItem, 0, len(incoming))
	kept := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		id := NormalizeItemID(item.ID)
		fresh, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := kept[id]; dup {
			continue
		}
		kept[id] = struct{}{}
		merged = append(merged, fresh)
	}
	for _, item := range incoming {
		if _, ok := kept[item.ID]; ok {
			continue
		}
		merged = append(merged, item)
	}
	return merged
}

func sortedByID(items []MenuItem) []MenuItem {
	out := make([]MenuItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return NormalizeItemID(out[i].ID) < NormalizeItemID(out[j].ID)
	})
	return out
}
