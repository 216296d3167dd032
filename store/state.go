package store

import (
	"sort"

	"olilab/models"
)

// state holds every collection keyed by id. It is the unit both the in-memory
// transaction and the Postgres snapshot operate on.
type state struct {
	items         map[string]models.Item
	users         map[string]models.User
	logs          map[string]models.LogEntry
	suggestions   map[string]models.Suggestion
	comments      map[string]models.Comment
	logComments   map[string]models.LogComment
	notifications map[string]models.Notification
}

func newState() state {
	return state{
		items:         make(map[string]models.Item),
		users:         make(map[string]models.User),
		logs:          make(map[string]models.LogEntry),
		suggestions:   make(map[string]models.Suggestion),
		comments:      make(map[string]models.Comment),
		logComments:   make(map[string]models.LogComment),
		notifications: make(map[string]models.Notification),
	}
}

func cloneLog(l models.LogEntry) models.LogEntry {
	if l.DueDate != nil {
		due := *l.DueDate
		l.DueDate = &due
	}
	return l
}

func (s state) clone() state {
	out := state{
		items:         make(map[string]models.Item, len(s.items)),
		users:         make(map[string]models.User, len(s.users)),
		logs:          make(map[string]models.LogEntry, len(s.logs)),
		suggestions:   make(map[string]models.Suggestion, len(s.suggestions)),
		comments:      make(map[string]models.Comment, len(s.comments)),
		logComments:   make(map[string]models.LogComment, len(s.logComments)),
		notifications: make(map[string]models.Notification, len(s.notifications)),
	}
	for k, v := range s.items {
		out.items[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.logs {
		out.logs[k] = cloneLog(v)
	}
	for k, v := range s.suggestions {
		out.suggestions[k] = v
	}
	for k, v := range s.comments {
		out.comments[k] = v
	}
	for k, v := range s.logComments {
		out.logComments[k] = v
	}
	for k, v := range s.notifications {
		out.notifications[k] = v
	}
	return out
}

func (s state) snapshot() Snapshot {
	c := s.clone()
	return Snapshot{
		Items:         c.items,
		Users:         c.users,
		Logs:          c.logs,
		Suggestions:   c.suggestions,
		Comments:      c.comments,
		LogComments:   c.logComments,
		Notifications: c.notifications,
	}
}

func stateFromSnapshot(snap Snapshot) state {
	s := newState()
	for k, v := range snap.Items {
		s.items[k] = v
	}
	for k, v := range snap.Users {
		s.users[k] = v
	}
	for k, v := range snap.Logs {
		s.logs[k] = cloneLog(v)
	}
	for k, v := range snap.Suggestions {
		s.suggestions[k] = v
	}
	for k, v := range snap.Comments {
		s.comments[k] = v
	}
	for k, v := range snap.LogComments {
		s.logComments[k] = v
	}
	for k, v := range snap.Notifications {
		s.notifications[k] = v
	}
	return s
}

// stateView adapts a state to the read-only View contract. Lists come back in
// a deterministic order: entries with timestamps newest first, everything
// else by id.
type stateView struct {
	s *state
}

func (v stateView) Item(id string) (models.Item, bool) {
	it, ok := v.s.items[id]
	return it, ok
}

func (v stateView) Items() []models.Item {
	out := make([]models.Item, 0, len(v.s.items))
	for _, it := range v.s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v stateView) User(id string) (models.User, bool) {
	u, ok := v.s.users[id]
	return u, ok
}

func (v stateView) Users() []models.User {
	out := make([]models.User, 0, len(v.s.users))
	for _, u := range v.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v stateView) Log(id string) (models.LogEntry, bool) {
	l, ok := v.s.logs[id]
	if !ok {
		return models.LogEntry{}, false
	}
	return cloneLog(l), true
}

func (v stateView) Logs() []models.LogEntry {
	out := make([]models.LogEntry, 0, len(v.s.logs))
	for _, l := range v.s.logs {
		out = append(out, cloneLog(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (v stateView) Suggestion(id string) (models.Suggestion, bool) {
	s, ok := v.s.suggestions[id]
	return s, ok
}

func (v stateView) Suggestions() []models.Suggestion {
	out := make([]models.Suggestion, 0, len(v.s.suggestions))
	for _, s := range v.s.suggestions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (v stateView) Comments() []models.Comment {
	out := make([]models.Comment, 0, len(v.s.comments))
	for _, c := range v.s.comments {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (v stateView) LogComments() []models.LogComment {
	out := make([]models.LogComment, 0, len(v.s.logComments))
	for _, c := range v.s.logComments {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (v stateView) Notification(id string) (models.Notification, bool) {
	n, ok := v.s.notifications[id]
	return n, ok
}

func (v stateView) Notifications() []models.Notification {
	out := make([]models.Notification, 0, len(v.s.notifications))
	for _, n := range v.s.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
