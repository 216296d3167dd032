// Package engine implements the inventory workflow engine: borrow/return
// lifecycle, user activation, suggestion approval, and the quantity
// invariants protecting item stock. Every operation runs as one store
// transaction; failures come back as typed, recoverable errors.
package engine

import "fmt"

// Kind classifies a workflow failure.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation"
	KindInvalidTransition  Kind = "invalid_transition"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindStaleRequest       Kind = "stale_request"
	KindOutOfStock         Kind = "out_of_stock"
	KindOverCapacity       Kind = "over_capacity"
	KindBelowBorrowedCount Kind = "below_borrowed_count"
	KindLastAdminProtected Kind = "last_admin_protected"
	KindOutstandingLoans   Kind = "outstanding_loans"
)

// Error carries the failure kind, the offending entity, and the quantities
// involved so a caller can render an actionable message.
type Error struct {
	Kind    Kind
	Entity  string // item, user, log, suggestion, notification
	ID      string
	Message string
	Have    int // current quantity, when relevant
	Want    int // requested quantity, when relevant
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, msg)
	}
	return msg
}

// Is matches sentinels by kind so callers can use errors.Is with the
// exported Err* values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.ID == "" || t.ID == e.ID)
}

// Sentinels for errors.Is checks. Returned errors are richer instances
// carrying entity ids and quantities.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition}
	ErrInsufficientStock  = &Error{Kind: KindInsufficientStock}
	ErrStaleRequest       = &Error{Kind: KindStaleRequest}
	ErrOutOfStock         = &Error{Kind: KindOutOfStock}
	ErrOverCapacity       = &Error{Kind: KindOverCapacity}
	ErrBelowBorrowedCount = &Error{Kind: KindBelowBorrowedCount}
	ErrLastAdminProtected = &Error{Kind: KindLastAdminProtected}
	ErrOutstandingLoans   = &Error{Kind: KindOutstandingLoans}
)

func notFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Message: "does not exist"}
}

func invalidTransition(entity, id, msg string) *Error {
	return &Error{Kind: KindInvalidTransition, Entity: entity, ID: id, Message: msg}
}
