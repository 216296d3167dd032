package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"olilab/models"
)

func TestMemoryCommitAndRollback(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.RunTransaction(ctx, func(tx Tx) error {
		tx.PutItem(models.Item{ID: "i1", Name: "Microscope", TotalQuantity: 3, AvailableQuantity: 3})
		tx.PutUser(models.User{ID: "u1", Username: "alice", FullName: "Alice", Status: models.UserActive})
		return nil
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	boom := errors.New("boom")
	err = m.RunTransaction(ctx, func(tx Tx) error {
		tx.DeleteItem("i1")
		tx.PutItem(models.Item{ID: "i2", Name: "Ghost"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	_ = m.View(ctx, func(v View) error {
		if _, ok := v.Item("i1"); !ok {
			t.Fatal("rolled back delete removed i1")
		}
		if _, ok := v.Item("i2"); ok {
			t.Fatal("rolled back insert left i2 behind")
		}
		return nil
	})
}

func TestMemoryTxReadsOwnWrites(t *testing.T) {
	m := NewMemory()
	err := m.RunTransaction(context.Background(), func(tx Tx) error {
		tx.PutItem(models.Item{ID: "i1", Name: "Beaker", TotalQuantity: 2, AvailableQuantity: 2})
		it, ok := tx.Item("i1")
		if !ok {
			t.Fatal("write not visible inside the transaction")
		}
		it.AvailableQuantity = 1
		tx.PutItem(it)
		if got, _ := tx.Item("i1"); got.AvailableQuantity != 1 {
			t.Fatalf("available = %d, want 1", got.AvailableQuantity)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestMemoryViewIsolation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.RunTransaction(ctx, func(tx Tx) error {
		tx.PutItem(models.Item{ID: "i1", Name: "Flask", TotalQuantity: 5, AvailableQuantity: 5})
		return nil
	})

	// Mutating the slice handed to a view must not leak into the store.
	_ = m.View(ctx, func(v View) error {
		items := v.Items()
		items[0].Name = "tampered"
		return nil
	})
	_ = m.View(ctx, func(v View) error {
		if it, _ := v.Item("i1"); it.Name != "Flask" {
			t.Fatalf("name = %q, view mutation leaked", it.Name)
		}
		return nil
	})
}

func TestMemoryDeterministicOrdering(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_ = m.RunTransaction(ctx, func(tx Tx) error {
		tx.PutItem(models.Item{ID: "b"})
		tx.PutItem(models.Item{ID: "a"})
		tx.PutItem(models.Item{ID: "c"})
		tx.PutLog(models.LogEntry{ID: "old", Timestamp: base, Action: models.ActionBorrow})
		tx.PutLog(models.LogEntry{ID: "new", Timestamp: base.Add(time.Hour), Action: models.ActionBorrow})
		return nil
	})

	_ = m.View(ctx, func(v View) error {
		items := v.Items()
		if items[0].ID != "a" || items[1].ID != "b" || items[2].ID != "c" {
			t.Fatalf("items not sorted by id: %+v", items)
		}
		logs := v.Logs()
		if logs[0].ID != "new" || logs[1].ID != "old" {
			t.Fatalf("logs not newest first: %+v", logs)
		}
		return nil
	})
}

func TestMemorySnapshotRoundTrip(t *testing.T) {
	m := NewMemory()
	due := time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)
	_ = m.RunTransaction(context.Background(), func(tx Tx) error {
		tx.PutItem(models.Item{ID: "i1", Name: "Scale", TotalQuantity: 2, AvailableQuantity: 1})
		tx.PutLog(models.LogEntry{ID: "l1", ItemID: "i1", Action: models.ActionBorrow, Status: models.BorrowOnLoan, DueDate: &due})
		return nil
	})

	other := NewMemory()
	other.ImportState(m.ExportState())
	_ = other.View(context.Background(), func(v View) error {
		l, ok := v.Log("l1")
		if !ok {
			t.Fatal("log missing after import")
		}
		if l.DueDate == nil || !l.DueDate.Equal(due) {
			t.Fatalf("due date = %v, want %v", l.DueDate, due)
		}
		return nil
	})

	// The snapshot is a copy, not a shared reference.
	*m.ExportState().Logs["l1"].DueDate = due.Add(time.Hour)
	_ = m.View(context.Background(), func(v View) error {
		if l, _ := v.Log("l1"); !l.DueDate.Equal(due) {
			t.Fatal("snapshot shares due date pointer with live state")
		}
		return nil
	})
}
