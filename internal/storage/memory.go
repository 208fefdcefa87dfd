package storage

import (
	"sort"
	"sync"
	"time"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// Storage is an in-memory key-value store for resources owned by a single
// node. It is concurrency-safe. Entries carry an optional TTL; expired
// entries are evicted lazily, on the next Get/Between/All that encounters
// them, rather than by a background sweep.
type Storage struct {
	lgr  logger.Logger
	mu   sync.RWMutex
	data map[string]domain.Resource // key = hex ID
	now  func() time.Time
}

// NewMemoryStorage creates and returns a new, empty in-memory storage.
func NewMemoryStorage(lgr logger.Logger) *Storage {
	s := &Storage{
		lgr:  lgr,
		data: make(map[string]domain.Resource),
		now:  time.Now,
	}
	s.lgr.Debug("initialized storage")
	return s
}

// Put inserts or updates the given resource in the store, indexed by its
// ID serialized as a hexadecimal string.
func (s *Storage) Put(resource domain.Resource) {
	key := resource.Key.String()
	s.mu.Lock()
	_, existed := s.data[key]
	s.data[key] = resource
	s.mu.Unlock()
	if existed {
		s.lgr.Debug("Put: resource updated", logger.FResource("resource", resource))
	} else {
		s.lgr.Debug("Put: resource inserted", logger.FResource("resource", resource))
	}
}

// Get retrieves the resource with the given ID.
//
// If the key is not present, it returns ErrResourceNotFound. If the key is
// present but its TTL has elapsed, the entry is evicted and
// ErrResourceExpired is returned instead — a status distinct from
// not-found, per spec.md §4.2.
func (s *Storage) Get(id domain.ID) (domain.Resource, error) {
	key := id.String()

	s.mu.RLock()
	res, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		s.lgr.Debug("Get: resource not found", logger.F("key", key))
		return domain.Resource{}, domain.ErrResourceNotFound
	}
	if res.Expired(s.now()) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		s.lgr.Debug("Get: resource expired, evicted", logger.F("key", key))
		return res, domain.ErrResourceExpired
	}
	s.lgr.Debug("Get: resource retrieved", logger.FResource("resource", res))
	return res, nil
}

// Delete removes the resource with the given ID from the store.
// If the key is not present, it returns ErrResourceNotFound.
func (s *Storage) Delete(id domain.ID) error {
	key := id.String()
	s.mu.Lock()
	_, ok := s.data[key]
	if ok {
		delete(s.data, key)
	}
	s.mu.Unlock()
	if !ok {
		s.lgr.Debug("Storage: delete failed, resource not found", logger.F("key", key))
		return domain.ErrResourceNotFound
	}
	s.lgr.Debug("Storage: resource deleted", logger.F("key", key))
	return nil
}

// Between returns all non-expired resources with IDs k such that
// k ∈ (from, to] on the ring. Expired entries encountered along the way
// are evicted as a side effect. The wrap-around case (from > to) is
// handled by domain.ID.Between.
func (s *Storage) Between(from, to domain.ID) ([]domain.Resource, error) {
	now := s.now()
	s.mu.Lock()
	var result []domain.Resource
	for key, res := range s.data {
		if !res.Key.Between(from, to) {
			continue
		}
		if res.Expired(now) {
			delete(s.data, key)
			continue
		}
		result = append(result, res)
	}
	s.mu.Unlock()

	keys := make([]string, 0, len(result))
	for _, r := range result {
		keys = append(keys, r.Key.String())
	}
	s.lgr.Debug("Storage: range query completed",
		logger.F("from", from.String()),
		logger.F("to", to.String()),
		logger.F("count", len(result)),
		logger.F("keys", keys),
	)
	return result, nil
}

// All returns a snapshot of all non-expired resources currently stored.
// Expired entries encountered are evicted as a side effect. The slice is a
// copy; modifications to it do not affect the storage.
func (s *Storage) All() []domain.Resource {
	now := s.now()
	s.mu.Lock()
	result := make([]domain.Resource, 0, len(s.data))
	for key, res := range s.data {
		if res.Expired(now) {
			delete(s.data, key)
			continue
		}
		result = append(result, res)
	}
	s.mu.Unlock()

	keys := make([]string, 0, len(result))
	for _, r := range result {
		keys = append(keys, r.Key.String())
	}
	s.lgr.Debug("Storage: snapshot retrieved",
		logger.F("count", len(result)),
		logger.F("keys", keys),
	)
	return result
}

// Size reports the number of non-expired keys currently stored.
func (s *Storage) Size() int {
	return len(s.All())
}

// DebugLog emits a structured DEBUG-level log with the contents of the
// storage: a count of stored resources and an ordered list of their keys
// and values. Read under a read lock; does not evict expired entries
// (that is left to the accessors above, to avoid surprising side effects
// from a pure debug call).
func (s *Storage) DebugLog() {
	s.mu.RLock()
	snapshot := make([]domain.Resource, 0, len(s.data))
	for _, res := range s.data {
		snapshot = append(snapshot, res)
	}
	s.mu.RUnlock()
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Key.String() < snapshot[j].Key.String()
	})
	entries := make([]map[string]any, 0, len(snapshot))
	for _, res := range snapshot {
		entries = append(entries, map[string]any{
			"key":        res.Key.String(),
			"value":      res.Value,
			"expires_at": res.ExpiresAtUnix,
		})
	}
	s.lgr.Debug("Storage snapshot",
		logger.F("count", len(snapshot)),
		logger.F("resources", entries),
	)
}
