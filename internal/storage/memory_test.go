package storage

import (
	"errors"
	"testing"
	"time"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	return NewMemoryStorage(&logger.NopLogger{})
}

func spaceFor(t *testing.T) domain.Space {
	t.Helper()
	sp, err := domain.NewSpace(16, 4)
	if err != nil {
		t.Fatalf("NewSpace failed: %v", err)
	}
	return sp
}

func TestStoragePutGetDelete(t *testing.T) {
	s := newTestStorage(t)
	sp := spaceFor(t)
	id := sp.FromUint64(42)

	if _, err := s.Get(id); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound before Put, got %v", err)
	}

	res := domain.Resource{Key: id, RawKey: "k", Value: []byte("v")}
	s.Put(res)

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get after Put failed: %v", err)
	}
	if got.RawKey != "k" || string(got.Value) != "v" {
		t.Fatalf("Get returned unexpected resource: %+v", got)
	}

	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(id); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound on second Delete, got %v", err)
	}
}

func TestStorageExpiry(t *testing.T) {
	s := newTestStorage(t)
	sp := spaceFor(t)
	id := sp.FromUint64(7)

	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }

	res := domain.Resource{Key: id, Value: []byte("v"), ExpiresAtUnix: frozen.Add(time.Second).Unix()}
	s.Put(res)

	if _, err := s.Get(id); err != nil {
		t.Fatalf("expected resource still valid before TTL, got %v", err)
	}

	s.now = func() time.Time { return frozen.Add(2 * time.Second) }
	expired, err := s.Get(id)
	if !errors.Is(err, domain.ErrResourceExpired) {
		t.Fatalf("expected ErrResourceExpired after TTL, got %v", err)
	}
	if string(expired.Value) != "v" {
		t.Fatalf("expected expired Get to still return the evicted value, got %+v", expired)
	}
	// Lazily evicted: a second Get reports not-found, not expired.
	if _, err := s.Get(id); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound after eviction, got %v", err)
	}
}

func TestStorageBetweenAndAll(t *testing.T) {
	s := newTestStorage(t)
	sp := spaceFor(t)

	ids := []uint64{1, 5, 10, 20}
	for _, v := range ids {
		s.Put(domain.Resource{Key: sp.FromUint64(v), Value: []byte("v")})
	}

	from := sp.FromUint64(0)
	to := sp.FromUint64(10)
	in, err := s.Between(from, to)
	if err != nil {
		t.Fatalf("Between failed: %v", err)
	}
	if len(in) != 3 { // 1, 5, 10 are in (0, 10]
		t.Fatalf("Between(0, 10] returned %d resources, want 3", len(in))
	}

	all := s.All()
	if len(all) != 4 {
		t.Fatalf("All returned %d resources, want 4", len(all))
	}
	if s.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", s.Size())
	}
}
