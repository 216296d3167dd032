package models

import "time"

type LogAction string

const (
	ActionBorrow LogAction = "BORROW"
	ActionReturn LogAction = "RETURN"
)

type BorrowStatus string

const (
	BorrowPending         BorrowStatus = "PENDING"
	BorrowOnLoan          BorrowStatus = "ON_LOAN"
	BorrowDenied          BorrowStatus = "DENIED"
	BorrowReturnRequested BorrowStatus = "RETURN_REQUESTED"
	BorrowReturned        BorrowStatus = "RETURNED"
)

// Terminal reports whether no further transition out of s is allowed.
func (s BorrowStatus) Terminal() bool {
	return s == BorrowDenied || s == BorrowReturned
}

// LogEntry records one borrow or return transaction. BORROW entries carry the
// workflow status and, once approved, a due date. RETURN entries are immutable
// and point back at the BORROW entry they close via RelatedLogID.
type LogEntry struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	ItemID       string       `json:"itemId"`
	Quantity     int          `json:"quantity"`
	Timestamp    time.Time    `json:"timestamp"`
	Action       LogAction    `json:"action"`
	Status       BorrowStatus `json:"status,omitempty"`
	DueDate      *time.Time   `json:"dueDate,omitempty"`
	RelatedLogID string       `json:"relatedLogId,omitempty"`
}

// Open reports whether the entry still holds stock: an approved borrow that
// has not been returned yet.
func (l LogEntry) Open() bool {
	return l.Action == ActionBorrow &&
		(l.Status == BorrowOnLoan || l.Status == BorrowReturnRequested)
}

// Outstanding reports whether the entry blocks deletion of its item or user:
// any borrow that has not reached a terminal status.
func (l LogEntry) Outstanding() bool {
	return l.Action == ActionBorrow && !l.Status.Terminal()
}

// Overdue reports whether an open loan is past its due date at now.
// Pure read-side computation; it never changes workflow state.
func (l LogEntry) Overdue(now time.Time) bool {
	return l.Open() && l.DueDate != nil && l.DueDate.Before(now)
}
