package engine

import (
	"context"
	"fmt"

	"olilab/models"
	"olilab/store"
)

// RequestBorrow files a PENDING borrow request and notifies admins. Stock is
// only validated here, not reserved; reservation happens on approval so
// unapproved requests cannot starve availability.
func (e *Engine) RequestBorrow(ctx context.Context, userID, itemID string, quantity int) (models.LogEntry, error) {
	var entry models.LogEntry
	err := e.run(ctx, "request_borrow", func(tx store.Tx, emit emitFn) error {
		if quantity <= 0 {
			return &Error{Kind: KindValidation, Entity: "log", Message: "quantity must be positive", Want: quantity}
		}
		user, ok := tx.User(userID)
		if !ok {
			return notFound("user", userID)
		}
		it, ok := tx.Item(itemID)
		if !ok {
			return notFound("item", itemID)
		}
		if quantity > it.AvailableQuantity {
			return &Error{
				Kind: KindInsufficientStock, Entity: "item", ID: itemID,
				Message: "not enough items in stock",
				Have:    it.AvailableQuantity, Want: quantity,
			}
		}
		entry = models.LogEntry{
			ID:        e.newID(),
			UserID:    userID,
			ItemID:    itemID,
			Quantity:  quantity,
			Timestamp: e.clock(),
			Action:    models.ActionBorrow,
			Status:    models.BorrowPending,
		}
		tx.PutLog(entry)
		emit(models.Notification{
			Type:         models.NotifyBorrowRequest,
			Message:      fmt.Sprintf("%s requested to borrow %dx %s.", user.FullName, quantity, it.Name),
			RelatedLogID: entry.ID,
		})
		return nil
	})
	return entry, err
}

// ApproveBorrow moves a PENDING request to ON_LOAN, decrementing stock.
// Stock is re-validated at approval time; if it has drained since the
// request was filed the entry stays PENDING and StaleRequest is returned.
func (e *Engine) ApproveBorrow(ctx context.Context, logID string) (models.LogEntry, error) {
	var entry models.LogEntry
	err := e.run(ctx, "approve_borrow", func(tx store.Tx, _ emitFn) error {
		l, ok := tx.Log(logID)
		if !ok {
			return notFound("log", logID)
		}
		if l.Action != models.ActionBorrow || l.Status != models.BorrowPending {
			return invalidTransition("log", logID, "only pending borrow requests can be approved")
		}
		it, ok := tx.Item(l.ItemID)
		if !ok {
			return notFound("item", l.ItemID)
		}
		if it.AvailableQuantity < l.Quantity {
			return &Error{
				Kind: KindStaleRequest, Entity: "item", ID: it.ID,
				Message: "stock is no longer sufficient for this request",
				Have:    it.AvailableQuantity, Want: l.Quantity,
			}
		}
		available, err := applyDelta(it, -l.Quantity)
		if err != nil {
			return err
		}
		it.AvailableQuantity = available
		tx.PutItem(it)

		now := e.clock()
		due := now.Add(e.loanPeriod)
		l.Status = models.BorrowOnLoan
		l.Timestamp = now
		l.DueDate = &due
		tx.PutLog(l)
		entry = l
		return nil
	})
	return entry, err
}

// DenyBorrow moves a PENDING request to DENIED. No quantity effect.
func (e *Engine) DenyBorrow(ctx context.Context, logID string) (models.LogEntry, error) {
	var entry models.LogEntry
	err := e.run(ctx, "deny_borrow", func(tx store.Tx, _ emitFn) error {
		l, ok := tx.Log(logID)
		if !ok {
			return notFound("log", logID)
		}
		if l.Action != models.ActionBorrow || l.Status != models.BorrowPending {
			return invalidTransition("log", logID, "only pending borrow requests can be denied")
		}
		l.Status = models.BorrowDenied
		tx.PutLog(l)
		entry = l
		return nil
	})
	return entry, err
}

// RequestReturn flags an ON_LOAN entry as RETURN_REQUESTED and notifies
// admins. Requesting again while already flagged is an invalid transition.
func (e *Engine) RequestReturn(ctx context.Context, logID string) (models.LogEntry, error) {
	var entry models.LogEntry
	err := e.run(ctx, "request_return", func(tx store.Tx, emit emitFn) error {
		l, ok := tx.Log(logID)
		if !ok {
			return notFound("log", logID)
		}
		if l.Action != models.ActionBorrow || l.Status != models.BorrowOnLoan {
			return invalidTransition("log", logID, "only loans currently out can request a return")
		}
		user, ok := tx.User(l.UserID)
		if !ok {
			return notFound("user", l.UserID)
		}
		it, ok := tx.Item(l.ItemID)
		if !ok {
			return notFound("item", l.ItemID)
		}
		l.Status = models.BorrowReturnRequested
		tx.PutLog(l)
		emit(models.Notification{
			Type:         models.NotifyReturnRequest,
			Message:      fmt.Sprintf("%s requested to return %dx %s.", user.FullName, l.Quantity, it.Name),
			RelatedLogID: l.ID,
		})
		entry = l
		return nil
	})
	return entry, err
}

// ApproveReturn closes a loan: the borrow entry becomes RETURNED, stock is
// restored (clamped to total in case capacity was edited down meanwhile),
// and an immutable RETURN entry referencing the loan is appended. An admin
// may approve directly from ON_LOAN without a prior return request.
func (e *Engine) ApproveReturn(ctx context.Context, logID string) (models.LogEntry, error) {
	var entry models.LogEntry
	err := e.run(ctx, "approve_return", func(tx store.Tx, _ emitFn) error {
		l, ok := tx.Log(logID)
		if !ok {
			return notFound("log", logID)
		}
		onLoan := l.Status == models.BorrowOnLoan || l.Status == models.BorrowReturnRequested
		if l.Action != models.ActionBorrow || !onLoan {
			return invalidTransition("log", logID, "only loans currently out can be returned")
		}
		it, ok := tx.Item(l.ItemID)
		if !ok {
			return notFound("item", l.ItemID)
		}
		restored := it.AvailableQuantity + l.Quantity
		if restored > it.TotalQuantity {
			restored = it.TotalQuantity
		}
		it.AvailableQuantity = restored
		tx.PutItem(it)

		l.Status = models.BorrowReturned
		tx.PutLog(l)

		tx.PutLog(models.LogEntry{
			ID:           e.newID(),
			UserID:       l.UserID,
			ItemID:       l.ItemID,
			Quantity:     l.Quantity,
			Timestamp:    e.clock(),
			Action:       models.ActionReturn,
			RelatedLogID: l.ID,
		})
		entry = l
		return nil
	})
	return entry, err
}

// AddLogComment appends an immutable comment to a borrow record.
func (e *Engine) AddLogComment(ctx context.Context, logID, userID, text string) (models.LogComment, error) {
	var comment models.LogComment
	err := e.run(ctx, "add_log_comment", func(tx store.Tx, _ emitFn) error {
		if text == "" {
			return &Error{Kind: KindValidation, Entity: "log", ID: logID, Message: "comment text is required"}
		}
		if _, ok := tx.Log(logID); !ok {
			return notFound("log", logID)
		}
		if _, ok := tx.User(userID); !ok {
			return notFound("user", userID)
		}
		comment = models.LogComment{
			ID:        e.newID(),
			LogID:     logID,
			UserID:    userID,
			Text:      text,
			Timestamp: e.clock(),
		}
		tx.PutLogComment(comment)
		return nil
	})
	return comment, err
}
