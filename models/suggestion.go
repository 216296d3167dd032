package models

import "time"

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "PENDING"
	SuggestionApproved SuggestionStatus = "APPROVED"
	SuggestionDenied   SuggestionStatus = "DENIED"
)

// Suggestion is a member-proposed inventory item awaiting an admin decision.
// APPROVED and DENIED are terminal.
type Suggestion struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	ItemName  string           `json:"itemName"`
	Category  string           `json:"category"`
	Reason    string           `json:"reason"`
	Status    SuggestionStatus `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}
