package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kartoza/material-forecast/internal/forecast"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStoreCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(dir, "forecasts.db")); err != nil {
		t.Errorf("Expected forecasts.db to exist: %v", err)
	}
}

func TestRecordAndGet(t *testing.T) {
	store := newTestStore(t)

	res := &forecast.Result{ACSRConductorM: 1234.5, TowersSteelCount: 30, ConcreteM3: 88.25}
	e := &Entry{Request: forecast.DefaultRequest(), Result: res, DurationMS: 42}
	if err := store.Record(e); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if e.ID == "" {
		t.Fatal("Expected ID to be assigned")
	}
	if e.CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be assigned")
	}

	got, err := store.Get(e.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Request != e.Request {
		t.Errorf("Expected request %+v, got %+v", e.Request, got.Request)
	}
	if got.Result == nil || *got.Result != *res {
		t.Errorf("Expected result %+v, got %+v", res, got.Result)
	}
	if got.DurationMS != 42 {
		t.Errorf("Expected duration 42, got %d", got.DurationMS)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("Expected CreatedAt %v, got %v", e.CreatedAt, got.CreatedAt)
	}
}

func TestRecordFailure(t *testing.T) {
	store := newTestStore(t)

	e := &Entry{Request: forecast.DefaultRequest(), Error: "Failed to fetch prediction"}
	if err := store.Record(e); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.Get(e.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Result != nil {
		t.Errorf("Expected no result, got %+v", got.Result)
	}
	if got.Error != "Failed to fetch prediction" {
		t.Errorf("Expected error text, got %q", got.Error)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	regions := []string{"North", "South", "East"}
	for i, region := range regions {
		req := forecast.DefaultRequest()
		req.Region = region
		e := &Entry{Request: req, CreatedAt: base.Add(time.Duration(i) * 100 * time.Millisecond)}
		if err := store.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Request.Region != "East" || entries[2].Request.Region != "North" {
		t.Errorf("Expected newest first, got %s..%s", entries[0].Request.Region, entries[2].Request.Region)
	}

	limited, err := store.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(limited))
	}
}

func TestListEmpty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", entries)
	}
}

func TestDeleteAndClear(t *testing.T) {
	store := newTestStore(t)

	a := &Entry{Request: forecast.DefaultRequest()}
	b := &Entry{Request: forecast.DefaultRequest()}
	store.Record(a)
	store.Record(b)

	if err := store.Delete(a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	entries, _ := store.List(10)
	if len(entries) != 0 {
		t.Errorf("Expected no entries after clear, got %d", len(entries))
	}
}

func TestGetUnknown(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get("does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
