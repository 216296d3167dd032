package models

import "time"

// Comment is append-only discussion attached to a suggestion.
type Comment struct {
	ID           string    `json:"id"`
	SuggestionID string    `json:"suggestionId"`
	UserID       string    `json:"userId"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
}

// LogComment is append-only discussion attached to a borrow record.
type LogComment struct {
	ID        string    `json:"id"`
	LogID     string    `json:"logId"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
