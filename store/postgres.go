package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"olilab/models"
)

var _ Store = (*Postgres)(nil)

const (
	pgMaxRetries  = 5
	pgBaseBackoff = 25 * time.Millisecond
)

// document is one entity serialized as a JSON payload, keyed by collection
// and id with a version counter for optimistic concurrency.
type document struct {
	Collection string `gorm:"primaryKey;size:40"`
	DocID      string `gorm:"primaryKey;size:80;column:doc_id"`
	Version    int64  `gorm:"not null"`
	Data       []byte `gorm:"type:jsonb;not null"`
}

func (document) TableName() string { return "olilab_documents" }

// Postgres is the remote store. Transactions run against a snapshot read at
// start; commit re-validates the version of everything the mutator read and
// guards every write with its base version. On conflict the whole mutator is
// retried from a fresh snapshot with doubling backoff, then ErrTxConflict.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &Postgres{db: db}, nil
}

type docKey struct {
	col string
	id  string
}

type pgWrite struct {
	data   []byte
	delete bool
}

// pgTx layers read/write bookkeeping over a decoded snapshot. Reads observe
// buffered writes because writes mutate the snapshot state as well.
type pgTx struct {
	stateView
	versions map[docKey]int64
	reads    map[docKey]int64
	scans    map[string]struct{}
	writes   map[docKey]pgWrite
}

func newPgTx(st *state, versions map[docKey]int64) *pgTx {
	return &pgTx{
		stateView: stateView{st},
		versions:  versions,
		reads:     make(map[docKey]int64),
		scans:     make(map[string]struct{}),
		writes:    make(map[docKey]pgWrite),
	}
}

func (t *pgTx) readDoc(col, id string) {
	key := docKey{col, id}
	if _, written := t.writes[key]; written {
		return
	}
	t.reads[key] = t.versions[key] // zero for absent docs, pinning absence
}

func (t *pgTx) putDoc(col, id string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		// entities are plain structs; this cannot fail at runtime
		panic(fmt.Errorf("encode %s/%s: %w", col, id, err))
	}
	t.writes[docKey{col, id}] = pgWrite{data: data}
}

func (t *pgTx) deleteDoc(col, id string) {
	t.writes[docKey{col, id}] = pgWrite{delete: true}
}

// Reads delegate to the snapshot view and record what was observed.

func (t *pgTx) Item(id string) (models.Item, bool) {
	t.readDoc(colItems, id)
	return t.stateView.Item(id)
}

func (t *pgTx) Items() []models.Item {
	t.scans[colItems] = struct{}{}
	return t.stateView.Items()
}

func (t *pgTx) User(id string) (models.User, bool) {
	t.readDoc(colUsers, id)
	return t.stateView.User(id)
}

func (t *pgTx) Users() []models.User {
	t.scans[colUsers] = struct{}{}
	return t.stateView.Users()
}

func (t *pgTx) Log(id string) (models.LogEntry, bool) {
	t.readDoc(colLogs, id)
	return t.stateView.Log(id)
}

func (t *pgTx) Logs() []models.LogEntry {
	t.scans[colLogs] = struct{}{}
	return t.stateView.Logs()
}

func (t *pgTx) Suggestion(id string) (models.Suggestion, bool) {
	t.readDoc(colSuggestions, id)
	return t.stateView.Suggestion(id)
}

func (t *pgTx) Suggestions() []models.Suggestion {
	t.scans[colSuggestions] = struct{}{}
	return t.stateView.Suggestions()
}

func (t *pgTx) Comments() []models.Comment {
	t.scans[colComments] = struct{}{}
	return t.stateView.Comments()
}

func (t *pgTx) LogComments() []models.LogComment {
	t.scans[colLogComments] = struct{}{}
	return t.stateView.LogComments()
}

func (t *pgTx) Notification(id string) (models.Notification, bool) {
	t.readDoc(colNotifications, id)
	return t.stateView.Notification(id)
}

func (t *pgTx) Notifications() []models.Notification {
	t.scans[colNotifications] = struct{}{}
	return t.stateView.Notifications()
}

// Writes update the snapshot state and buffer the guarded document write.

func (t *pgTx) PutItem(it models.Item) {
	t.s.items[it.ID] = it
	t.putDoc(colItems, it.ID, it)
}

func (t *pgTx) DeleteItem(id string) {
	delete(t.s.items, id)
	t.deleteDoc(colItems, id)
}

func (t *pgTx) PutUser(u models.User) {
	t.s.users[u.ID] = u
	t.putDoc(colUsers, u.ID, u)
}

func (t *pgTx) DeleteUser(id string) {
	delete(t.s.users, id)
	t.deleteDoc(colUsers, id)
}

func (t *pgTx) PutLog(l models.LogEntry) {
	t.s.logs[l.ID] = cloneLog(l)
	t.putDoc(colLogs, l.ID, l)
}

func (t *pgTx) PutSuggestion(s models.Suggestion) {
	t.s.suggestions[s.ID] = s
	t.putDoc(colSuggestions, s.ID, s)
}

func (t *pgTx) PutComment(c models.Comment) {
	t.s.comments[c.ID] = c
	t.putDoc(colComments, c.ID, c)
}

func (t *pgTx) PutLogComment(c models.LogComment) {
	t.s.logComments[c.ID] = c
	t.putDoc(colLogComments, c.ID, c)
}

func (t *pgTx) PutNotification(n models.Notification) {
	t.s.notifications[n.ID] = n
	t.putDoc(colNotifications, n.ID, n)
}

func (s *Postgres) loadState(ctx context.Context) (state, map[docKey]int64, error) {
	var docs []document
	if err := s.db.WithContext(ctx).Find(&docs).Error; err != nil {
		return state{}, nil, fmt.Errorf("load documents: %w", err)
	}
	st := newState()
	versions := make(map[docKey]int64, len(docs))
	for _, d := range docs {
		versions[docKey{d.Collection, d.DocID}] = d.Version
		var err error
		switch d.Collection {
		case colItems:
			var v models.Item
			if err = json.Unmarshal(d.Data, &v); err == nil {
				st.items[d.DocID] = v
			}
		case colUsers:
			var v models.User
			if err = json.Unmarshal(d.Data, &v); err == nil {
				st.users[d.DocID] = v
			}
		case colLogs:
			var v models.LogEntry
			if err = json.Unmarshal(d.Data, &v); err == nil {
				st.logs[d.DocID] = v
			}
		case colSuggestions:
			var v models.Suggestion
			if err = json.Unmarshal(d.Data, &v); err == nil {
				st.suggestions[d.DocID] = v
			}
		case colComments:
			var v models.Comment
			if err = json.Unmarshal(d.Data, &v); err == nil {
				st.comments[d.DocID] = v
			}
		case colLogComments:
			var v models.LogComment
			if err = json.Unmarshal(d.Data, &v); err == nil {
				st.logComments[d.DocID] = v
			}
		case colNotifications:
			var v models.Notification
			if err = json.Unmarshal(d.Data, &v); err == nil {
				st.notifications[d.DocID] = v
			}
		}
		if err != nil {
			return state{}, nil, fmt.Errorf("decode %s/%s: %w", d.Collection, d.DocID, err)
		}
	}
	return st, versions, nil
}

func (s *Postgres) RunTransaction(ctx context.Context, fn func(Tx) error) error {
	backoff := pgBaseBackoff
	for attempt := 0; attempt <= pgMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		st, versions, err := s.loadState(ctx)
		if err != nil {
			return err
		}
		tx := newPgTx(&st, versions)
		if err := fn(tx); err != nil {
			return err
		}
		if len(tx.writes) == 0 {
			return nil
		}

		err = s.commit(ctx, tx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrTxConflict) {
			return err
		}
	}
	return ErrTxConflict
}

func (s *Postgres) commit(ctx context.Context, t *pgTx) error {
	// Serializable isolation makes the read/scan validation atomic with the
	// writes. Version guards alone cannot catch two transactions whose scans
	// validated against the same pre-state but whose writes touch different
	// documents (two admins deleted concurrently, a username registered
	// twice). Overlapping serializable commits surface as serialization
	// failures, which retry like any other conflict.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-validate individual reads the mutator depended on.
		for key, seen := range t.reads {
			cur, err := currentVersion(tx, key)
			if err != nil {
				return err
			}
			if cur != seen {
				return ErrTxConflict
			}
		}

		// Re-validate collection scans: same id set, same versions.
		for col := range t.scans {
			if err := validateScan(tx, col, t.versions); err != nil {
				return err
			}
		}

		keys := make([]docKey, 0, len(t.writes))
		for key := range t.writes {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].col != keys[j].col {
				return keys[i].col < keys[j].col
			}
			return keys[i].id < keys[j].id
		})

		for _, key := range keys {
			w := t.writes[key]
			base := t.versions[key]
			switch {
			case w.delete:
				if base == 0 {
					continue // never persisted, nothing to delete
				}
				res := tx.Where("collection = ? AND doc_id = ? AND version = ?", key.col, key.id, base).
					Delete(&document{})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return ErrTxConflict
				}
			case base == 0:
				doc := document{Collection: key.col, DocID: key.id, Version: 1, Data: w.data}
				if err := tx.Create(&doc).Error; err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						return ErrTxConflict
					}
					return err
				}
			default:
				res := tx.Model(&document{}).
					Where("collection = ? AND doc_id = ? AND version = ?", key.col, key.id, base).
					Updates(map[string]any{"data": w.data, "version": base + 1})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return ErrTxConflict
				}
			}
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if isSerializationFailure(err) {
		return ErrTxConflict
	}
	return err
}

// isSerializationFailure reports Postgres serialization_failure (40001) and
// deadlock_detected (40P01), the two ways overlapping serializable
// transactions abort each other.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func currentVersion(tx *gorm.DB, key docKey) (int64, error) {
	var doc document
	err := tx.Select("version").
		Where("collection = ? AND doc_id = ?", key.col, key.id).
		Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}

func validateScan(tx *gorm.DB, col string, snapshot map[docKey]int64) error {
	var docs []document
	if err := tx.Select("doc_id, version").Where("collection = ?", col).Find(&docs).Error; err != nil {
		return err
	}
	want := make(map[string]int64)
	for key, ver := range snapshot {
		if key.col == col {
			want[key.id] = ver
		}
	}
	if len(docs) != len(want) {
		return ErrTxConflict
	}
	for _, d := range docs {
		if want[d.DocID] != d.Version {
			return ErrTxConflict
		}
	}
	return nil
}

func (s *Postgres) View(ctx context.Context, fn func(View) error) error {
	st, _, err := s.loadState(ctx)
	if err != nil {
		return err
	}
	return fn(stateView{&st})
}

func (s *Postgres) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
