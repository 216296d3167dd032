package engine

import (
	"context"

	"olilab/models"
	"olilab/store"
)

// ItemInput carries the admin-editable fields of an item.
type ItemInput struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	TotalQuantity int    `json:"totalQuantity"`
}

func (in ItemInput) validate() error {
	if in.Name == "" {
		return &Error{Kind: KindValidation, Entity: "item", Message: "name is required"}
	}
	if in.TotalQuantity < 0 {
		return &Error{Kind: KindValidation, Entity: "item", Message: "total quantity cannot be negative", Want: in.TotalQuantity}
	}
	return nil
}

// AddItem creates an item with every unit available.
func (e *Engine) AddItem(ctx context.Context, in ItemInput) (models.Item, error) {
	var created models.Item
	err := e.run(ctx, "add_item", func(tx store.Tx, _ emitFn) error {
		if err := in.validate(); err != nil {
			return err
		}
		created = models.Item{
			ID:                e.newID(),
			Name:              in.Name,
			Category:          in.Category,
			TotalQuantity:     in.TotalQuantity,
			AvailableQuantity: in.TotalQuantity,
		}
		tx.PutItem(created)
		return nil
	})
	return created, err
}

// ImportItems creates a batch of items in one transaction, each fully
// available. Parsing of upload formats happens upstream.
func (e *Engine) ImportItems(ctx context.Context, inputs []ItemInput) ([]models.Item, error) {
	var created []models.Item
	err := e.run(ctx, "import_items", func(tx store.Tx, _ emitFn) error {
		created = created[:0]
		for _, in := range inputs {
			if err := in.validate(); err != nil {
				return err
			}
			it := models.Item{
				ID:                e.newID(),
				Name:              in.Name,
				Category:          in.Category,
				TotalQuantity:     in.TotalQuantity,
				AvailableQuantity: in.TotalQuantity,
			}
			tx.PutItem(it)
			created = append(created, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EditItem updates an item's fields. A new total quantity must cover the
// count currently on loan; available is recomputed to preserve that count.
func (e *Engine) EditItem(ctx context.Context, id string, in ItemInput) (models.Item, error) {
	var updated models.Item
	err := e.run(ctx, "edit_item", func(tx store.Tx, _ emitFn) error {
		if err := in.validate(); err != nil {
			return err
		}
		it, ok := tx.Item(id)
		if !ok {
			return notFound("item", id)
		}
		available, err := retotal(it, in.TotalQuantity)
		if err != nil {
			return err
		}
		it.Name = in.Name
		it.Category = in.Category
		it.TotalQuantity = in.TotalQuantity
		it.AvailableQuantity = available
		tx.PutItem(it)
		updated = it
		return nil
	})
	return updated, err
}

// DeleteItem removes an item unless any borrow record for it is still in a
// non-terminal state.
func (e *Engine) DeleteItem(ctx context.Context, id string) error {
	return e.run(ctx, "delete_item", func(tx store.Tx, _ emitFn) error {
		if _, ok := tx.Item(id); !ok {
			return notFound("item", id)
		}
		for _, l := range tx.Logs() {
			if l.ItemID == id && l.Outstanding() {
				return &Error{
					Kind: KindOutstandingLoans, Entity: "item", ID: id,
					Message: "item has borrow records that are not yet returned or denied",
				}
			}
		}
		tx.DeleteItem(id)
		return nil
	})
}
