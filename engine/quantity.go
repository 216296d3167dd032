package engine

import "olilab/models"

// applyDelta validates a signed change to an item's available quantity and
// returns the new value. The result must stay within [0, totalQuantity].
func applyDelta(it models.Item, delta int) (int, error) {
	next := it.AvailableQuantity + delta
	if next < 0 {
		return 0, &Error{
			Kind: KindOutOfStock, Entity: "item", ID: it.ID,
			Message: "available quantity would go negative",
			Have:    it.AvailableQuantity, Want: -delta,
		}
	}
	if next > it.TotalQuantity {
		return 0, &Error{
			Kind: KindOverCapacity, Entity: "item", ID: it.ID,
			Message: "available quantity would exceed total",
			Have:    it.TotalQuantity, Want: next,
		}
	}
	return next, nil
}

// retotal validates a change to an item's total quantity against the count
// currently out on loan, and returns the recomputed available quantity. The
// borrowed count is preserved exactly.
func retotal(it models.Item, newTotal int) (int, error) {
	borrowed := it.TotalQuantity - it.AvailableQuantity
	if newTotal < borrowed {
		return 0, &Error{
			Kind: KindBelowBorrowedCount, Entity: "item", ID: it.ID,
			Message: "total quantity cannot be less than the count currently borrowed",
			Have:    borrowed, Want: newTotal,
		}
	}
	return newTotal - borrowed, nil
}
