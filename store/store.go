// Package store provides the persistence contract for the workflow engine and
// three backends honoring it: an in-memory store, a SQLite-backed durable
// store, and a Postgres-backed document store with optimistic concurrency.
package store

import (
	"context"
	"errors"

	"olilab/models"
)

// ErrTxConflict is returned by optimistic backends after retry exhaustion.
// Callers are expected to re-fetch and retry the user-level action.
var ErrTxConflict = errors.New("transaction conflict: concurrent modification")

// View is read-only access to a consistent snapshot of all collections.
type View interface {
	Item(id string) (models.Item, bool)
	Items() []models.Item
	User(id string) (models.User, bool)
	Users() []models.User
	Log(id string) (models.LogEntry, bool)
	Logs() []models.LogEntry
	Suggestion(id string) (models.Suggestion, bool)
	Suggestions() []models.Suggestion
	Comments() []models.Comment
	LogComments() []models.LogComment
	Notification(id string) (models.Notification, bool)
	Notifications() []models.Notification
}

// Tx is the mutable scope handed to a transaction function. Reads observe the
// snapshot plus any writes buffered so far; nothing is visible to other
// callers until the transaction commits as a whole.
type Tx interface {
	View
	PutItem(models.Item)
	DeleteItem(id string)
	PutUser(models.User)
	DeleteUser(id string)
	PutLog(models.LogEntry)
	PutSuggestion(models.Suggestion)
	PutComment(models.Comment)
	PutLogComment(models.LogComment)
	PutNotification(models.Notification)
}

// Store is the persistence backend contract. RunTransaction applies fn
// atomically: either every buffered write commits or none do. An error from
// fn aborts the transaction and is returned unchanged.
type Store interface {
	RunTransaction(ctx context.Context, fn func(Tx) error) error
	View(ctx context.Context, fn func(View) error) error
	Close() error
}

// Snapshot is a point-in-time export of every collection, used for durable
// persistence and for moving state between backends.
type Snapshot struct {
	Items         map[string]models.Item         `json:"items"`
	Users         map[string]models.User         `json:"users"`
	Logs          map[string]models.LogEntry     `json:"logs"`
	Suggestions   map[string]models.Suggestion   `json:"suggestions"`
	Comments      map[string]models.Comment      `json:"comments"`
	LogComments   map[string]models.LogComment   `json:"logComments"`
	Notifications map[string]models.Notification `json:"notifications"`
}

// Collection names shared by the SQLite bucket layout and the Postgres
// document table.
const (
	colItems         = "items"
	colUsers         = "users"
	colLogs          = "logs"
	colSuggestions   = "suggestions"
	colComments      = "comments"
	colLogComments   = "log_comments"
	colNotifications = "notifications"
)

var collections = []string{
	colItems, colUsers, colLogs, colSuggestions, colComments, colLogComments, colNotifications,
}
