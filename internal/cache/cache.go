package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/shef088/Hospital-Management-System-sub001/internal/config"
)

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusStale
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusStale:
		return "stale"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Key identifies one cached query: the resource type plus the rendered
// query parameters.
type Key struct {
	Type  string
	Query string
}

func NewKey(resourceType, query string) Key {
	return Key{Type: resourceType, Query: query}
}

// ItemKey is the canonical key for a single entity fetched by id.
func ItemKey(resourceType, id string) Key {
	return Key{Type: resourceType, Query: "id=" + id}
}

func (k Key) String() string { return k.Type + "?" + k.Query }

// TypeTag and IDTag render the two tag forms entries are indexed under.
func TypeTag(resourceType string) string { return resourceType }

func IDTag(resourceType, id string) string { return resourceType + ":" + id }

// FetchFunc loads data for a key. The returned tags are added to the entry
// on top of the resource-type tag, typically one IDTag per contained entity
// so invalidation can be narrowed to entries holding a given id.
type FetchFunc func(ctx context.Context) (data any, tags []string, err error)

type entry struct {
	data      any
	status    Status
	tags      map[string]struct{}
	fetchedAt time.Time
	err       error
}

func (e *entry) tagged(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// listSnapshot is implemented by *models.Page[T]; the cache manipulates
// list entries through it without knowing the element type. Both methods
// are copy-on-write: the cache swaps the entry data for the returned value.
type listSnapshot interface {
	WithAppended(v any) (any, bool)
	WithoutID(id string) (any, bool)
}

// Store is the process-wide resource cache: keyed entries, tag-based
// invalidation, stale-while-revalidate reads, and at most one in-flight
// fetch per key.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group
	ttl     time.Duration
	log     zerolog.Logger
}

func New(cfg config.CacheConfig, log zerolog.Logger) *Store {
	return &Store{
		entries: make(map[Key]*entry),
		ttl:     cfg.TTL,
		log:     log.With().Str("component", "cache").Logger(),
	}
}

func (s *Store) fresh(e *entry) bool {
	if s.ttl <= 0 {
		return true
	}
	return time.Since(e.fetchedAt) < s.ttl
}

// Read returns cached data for key when the entry is Ready and within TTL.
// A Stale (or expired) entry with data is served immediately while a
// background refetch runs. Otherwise the fetch runs in the caller's frame;
// concurrent readers of the same key share a single fetch.
func (s *Store) Read(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		switch {
		case e.status == StatusReady && s.fresh(e):
			data := e.data
			s.mu.Unlock()
			return data, nil
		case e.status != StatusError && e.data != nil:
			data := e.data
			s.mu.Unlock()
			go func() {
				if _, err := s.doFetch(context.WithoutCancel(ctx), key, fetch); err != nil {
					s.log.Debug().Err(err).Str("key", key.String()).Msg("revalidation failed")
				}
			}()
			return data, nil
		}
	}
	s.mu.Unlock()
	return s.doFetch(ctx, key, fetch)
}

func (s *Store) doFetch(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	v, err, _ := s.group.Do(key.String(), func() (any, error) {
		s.markPending(key)
		// The fetch outlives caller cancellation: an abandoned read is
		// still worth caching for the next consumer of the same key.
		data, tags, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			s.markError(key, err)
			return nil, err
		}
		s.put(key, data, append(tags, TypeTag(key.Type)))
		return data, nil
	})
	return v, err
}

func (s *Store) markPending(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{tags: map[string]struct{}{TypeTag(key.Type): {}}}
		s.entries[key] = e
	}
	e.status = StatusPending
	e.err = nil
}

func (s *Store) markError(key Key, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.status = StatusError
		e.err = err
	}
}

func (s *Store) put(key Key, data any, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.data = data
	e.status = StatusReady
	e.fetchedAt = time.Now()
	e.err = nil
	e.tags = make(map[string]struct{}, len(tags))
	for _, t := range tags {
		e.tags[t] = struct{}{}
	}
}

// Write stores the server-returned entity under its item key without a
// network round-trip, then marks every other entry of the type stale so
// paginated and filtered views refetch.
func (s *Store) Write(resourceType, id string, data any) {
	key := ItemKey(resourceType, id)
	s.put(key, data, []string{TypeTag(resourceType), IDTag(resourceType, id)})

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if k == key || !e.tagged(TypeTag(resourceType)) {
			continue
		}
		if e.status == StatusReady {
			e.status = StatusStale
		}
	}
}

// Invalidate marks entries tagged with resourceType stale; when id is
// non-empty only entries containing that id are touched. Data is kept and
// served until the next read revalidates it.
func (s *Store) Invalidate(resourceType, id string) {
	tag := TypeTag(resourceType)
	if id != "" {
		tag = IDTag(resourceType, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if !e.tagged(tag) {
			continue
		}
		if e.status == StatusReady {
			e.status = StatusStale
			n++
		}
	}
	s.log.Debug().Str("tag", tag).Int("entries", n).Msg("invalidated")
}

// Forget removes the entity's item entry and drops the id from every list
// snapshot of the type, then marks those lists stale. Used after a remove:
// the next Get(id) misses and refetches.
func (s *Store) Forget(resourceType, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, ItemKey(resourceType, id))
	for _, e := range s.entries {
		if !e.tagged(TypeTag(resourceType)) {
			continue
		}
		if snap, ok := e.data.(listSnapshot); ok {
			if next, removed := snap.WithoutID(id); removed {
				e.data = next
			}
		}
		delete(e.tags, IDTag(resourceType, id))
		if e.status == StatusReady {
			e.status = StatusStale
		}
	}
}

// Append adds item to every list snapshot of the type, in call order.
// Realtime notification events come through here; no deduplication is
// performed.
func (s *Store) Append(resourceType, id string, item any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if !e.tagged(TypeTag(resourceType)) {
			continue
		}
		if snap, ok := e.data.(listSnapshot); ok {
			if next, appended := snap.WithAppended(item); appended {
				e.data = next
				e.tags[IDTag(resourceType, id)] = struct{}{}
			}
		}
	}
}

// Clear evicts everything. Called on logout: nothing cached under the old
// session is trustworthy.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key]*entry)
	s.log.Debug().Msg("cache cleared")
}

// Sweep evicts errored entries and stale entries older than retention.
// Returns the number of evictions.
func (s *Store) Sweep(retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if e.status == StatusError || (e.status == StatusStale && time.Since(e.fetchedAt) > retention) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Peek exposes an entry's data and status without triggering a fetch.
func (s *Store) Peek(key Key) (any, Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, 0, false
	}
	return e.data, e.status, true
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
