package engine

import (
	"context"

	"olilab/store"
)

// MarkNotificationsRead flips read to true on each given record. Records are
// never deleted; a missing id fails the whole batch.
func (e *Engine) MarkNotificationsRead(ctx context.Context, ids []string) error {
	return e.run(ctx, "mark_notifications_read", func(tx store.Tx, _ emitFn) error {
		for _, id := range ids {
			n, ok := tx.Notification(id)
			if !ok {
				return notFound("notification", id)
			}
			if n.Read {
				continue
			}
			n.Read = true
			tx.PutNotification(n)
		}
		return nil
	})
}
