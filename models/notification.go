package models

import "time"

// NotificationType is a closed set; each type fixes which related id is set.
type NotificationType string

const (
	NotifyNewUserRequest NotificationType = "new_user_request" // RelatedUserID
	NotifyBorrowRequest  NotificationType = "borrow_request"   // RelatedLogID
	NotifyReturnRequest  NotificationType = "return_request"   // RelatedLogID
	NotifyAccountStatus  NotificationType = "account_status"   // RelatedUserID
)

// Notification is an append-only record produced by workflow transitions.
// The core only ever flips Read to true; delivery (email, push) belongs to
// external dispatchers consuming these records.
type Notification struct {
	ID            string           `json:"id"`
	Type          NotificationType `json:"type"`
	Message       string           `json:"message"`
	Read          bool             `json:"read"`
	Timestamp     time.Time        `json:"timestamp"`
	RelatedLogID  string           `json:"relatedLogId,omitempty"`
	RelatedUserID string           `json:"relatedUserId,omitempty"`
}
