package engine

import (
	"context"

	"olilab/models"
	"olilab/store"
)

// ListOverdue returns open loans whose due date has passed. Overdue state is
// computed from the clock on every read; nothing is cached or escalated.
func (e *Engine) ListOverdue(ctx context.Context) ([]models.LogEntry, error) {
	now := e.clock()
	var overdue []models.LogEntry
	err := e.store.View(ctx, func(v store.View) error {
		for _, l := range v.Logs() {
			if l.Overdue(now) {
				overdue = append(overdue, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return overdue, nil
}

// CategoryTotal aggregates item quantities within one category.
type CategoryTotal struct {
	Category  string `json:"category"`
	Items     int    `json:"items"`
	Total     int    `json:"totalQuantity"`
	Available int    `json:"availableQuantity"`
}

// CategoryTotals recomputes per-category quantities from the item collection.
func (e *Engine) CategoryTotals(ctx context.Context) ([]CategoryTotal, error) {
	byCategory := make(map[string]*CategoryTotal)
	var order []string
	err := e.store.View(ctx, func(v store.View) error {
		for _, it := range v.Items() {
			t, ok := byCategory[it.Category]
			if !ok {
				t = &CategoryTotal{Category: it.Category}
				byCategory[it.Category] = t
				order = append(order, it.Category)
			}
			t.Items++
			t.Total += it.TotalQuantity
			t.Available += it.AvailableQuantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, c := range order {
		out = append(out, *byCategory[c])
	}
	return out, nil
}
