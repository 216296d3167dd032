package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"olilab/models"
)

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "olilab.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	due := time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)
	err = s.RunTransaction(ctx, func(tx Tx) error {
		tx.PutItem(models.Item{ID: "i1", Name: "Microscope", Category: "lab", TotalQuantity: 3, AvailableQuantity: 2})
		tx.PutUser(models.User{ID: "u1", Username: "alice", FullName: "Alice", Status: models.UserActive})
		tx.PutLog(models.LogEntry{ID: "l1", UserID: "u1", ItemID: "i1", Quantity: 1, Action: models.ActionBorrow, Status: models.BorrowOnLoan, DueDate: &due})
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	_ = reopened.View(ctx, func(v View) error {
		it, ok := v.Item("i1")
		if !ok || it.AvailableQuantity != 2 {
			t.Fatalf("item after reopen = %+v, ok=%v", it, ok)
		}
		if _, ok := v.User("u1"); !ok {
			t.Fatal("user missing after reopen")
		}
		l, ok := v.Log("l1")
		if !ok {
			t.Fatal("log missing after reopen")
		}
		if l.DueDate == nil || !l.DueDate.Equal(due) {
			t.Fatalf("due date after reopen = %v, want %v", l.DueDate, due)
		}
		return nil
	})
}

func TestSQLiteAbortedTransactionNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "olilab.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.RunTransaction(ctx, func(tx Tx) error {
		tx.PutItem(models.Item{ID: "i1", Name: "Beaker", TotalQuantity: 1, AvailableQuantity: 1})
		return nil
	})

	boom := errors.New("boom")
	if err := s.RunTransaction(ctx, func(tx Tx) error {
		tx.DeleteItem("i1")
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	_ = reopened.View(ctx, func(v View) error {
		if _, ok := v.Item("i1"); !ok {
			t.Fatal("aborted delete reached disk")
		}
		return nil
	})
}

func TestSQLiteFailedSnapshotRestoresMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "olilab.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.RunTransaction(ctx, func(tx Tx) error {
		tx.PutItem(models.Item{ID: "i1", Name: "Flask", TotalQuantity: 1, AvailableQuantity: 1})
		return nil
	})

	// Closing the database makes the next snapshot fail; the mutation must
	// not stay visible in memory after the transaction errors.
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	err = s.RunTransaction(ctx, func(tx Tx) error {
		tx.DeleteItem("i1")
		tx.PutItem(models.Item{ID: "i2", Name: "Ghost"})
		return nil
	})
	if err == nil {
		t.Fatal("transaction with failing snapshot must error")
	}
	_ = s.View(ctx, func(v View) error {
		if _, ok := v.Item("i1"); !ok {
			t.Fatal("failed snapshot left the delete applied in memory")
		}
		if _, ok := v.Item("i2"); ok {
			t.Fatal("failed snapshot left the insert applied in memory")
		}
		return nil
	})
}

func TestSQLiteEmptyDatabaseStartsClean(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "fresh.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	_ = s.View(context.Background(), func(v View) error {
		if n := len(v.Items()) + len(v.Users()) + len(v.Logs()); n != 0 {
			t.Fatalf("fresh database has %d records", n)
		}
		return nil
	})
}

func TestOpenSelectsDriver(t *testing.T) {
	mem, err := Open(DriverMemory, "", "")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := mem.(*Memory); !ok {
		t.Fatalf("driver memory gave %T", mem)
	}
	_ = mem.Close()

	sq, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "x.db"), "")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, ok := sq.(*SQLite); !ok {
		t.Fatalf("driver sqlite gave %T", sq)
	}
	_ = sq.Close()

	if _, err := Open("bogus", "", ""); err == nil {
		t.Fatal("unknown driver must error")
	}
}
