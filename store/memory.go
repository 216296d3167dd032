package store

import (
	"context"
	"sync"

	"olilab/models"
)

var _ Store = (*Memory)(nil)

// Memory is the single-writer in-memory store. Transactions run against a
// deep clone of the state under the writer lock; the clone replaces the live
// state only when the transaction function returns nil. Used directly for
// tests and as the mutation layer of the SQLite-backed store.
type Memory struct {
	mu    sync.RWMutex
	state state
}

func NewMemory() *Memory {
	return &Memory{state: newState()}
}

// memTx buffers writes by mutating the cloned state in place.
type memTx struct {
	stateView
}

func (t memTx) PutItem(it models.Item)                { t.s.items[it.ID] = it }
func (t memTx) DeleteItem(id string)                  { delete(t.s.items, id) }
func (t memTx) PutUser(u models.User)                 { t.s.users[u.ID] = u }
func (t memTx) DeleteUser(id string)                  { delete(t.s.users, id) }
func (t memTx) PutLog(l models.LogEntry)              { t.s.logs[l.ID] = cloneLog(l) }
func (t memTx) PutSuggestion(s models.Suggestion)     { t.s.suggestions[s.ID] = s }
func (t memTx) PutComment(c models.Comment)           { t.s.comments[c.ID] = c }
func (t memTx) PutLogComment(c models.LogComment)     { t.s.logComments[c.ID] = c }
func (t memTx) PutNotification(n models.Notification) { t.s.notifications[n.ID] = n }

func (m *Memory) RunTransaction(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(memTx{stateView{&work}}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *Memory) View(ctx context.Context, fn func(View) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	snapshot := m.state.clone()
	m.mu.RUnlock()
	return fn(stateView{&snapshot})
}

func (m *Memory) Close() error { return nil }

// ExportState returns a deep copy of the current state.
func (m *Memory) ExportState() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.snapshot()
}

// ImportState replaces the current state wholesale.
func (m *Memory) ImportState(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = stateFromSnapshot(snap)
}
