// Package store holds the advertisement list in memory and keeps it
// consistent with the durable slot: every successful mutation persists the
// full list before the in-memory state is swapped.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"jobads/internal/domain"
	"jobads/internal/infrastructure/metrics"
	"jobads/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MaxAdvertisements is the hard cap on tracked records. The handler layer
// surfaces it proactively; Add enforces it authoritatively.
const MaxAdvertisements = 5

// dateLayout renders creation times for search matching: day.month.year,
// 24-hour clock. The rendered string is deliberately searchable text, so
// typing "12.03" finds records created on the 12th of March.
const dateLayout = "02.01.2006 15:04"

var (
	ErrCapacityExceeded = errors.New("advertisement limit reached")
	ErrNotReady         = errors.New("store is still loading")
)

type AdvertisementStore interface {
	Load(ctx context.Context) error
	Add(ctx context.Context, imageURI, description, url string) (*domain.Advertisement, error)
	Remove(ctx context.Context, id string) (bool, error)
	Search(query string) []*domain.Advertisement
	List() []*domain.Advertisement
	Count() int
	Capacity() int
	Ready() bool
}

type advertisementStore struct {
	slot    storage.Slot
	metrics *metrics.StoreMetrics
	tracer  trace.Tracer

	mu    sync.RWMutex
	ads   []*domain.Advertisement
	ready bool
}

func NewAdvertisementStore(slot storage.Slot, metrics *metrics.StoreMetrics) AdvertisementStore {
	tracer := otel.Tracer("jobads/store")
	return &advertisementStore{
		slot:    slot,
		metrics: metrics,
		tracer:  tracer,
	}
}

// Load reads the durable slot and becomes ready. An empty slot is a normal
// first run. A failed read or decode still flips the store to ready over an
// empty list; the error is returned for logging, not treated as fatal.
func (s *advertisementStore) Load(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "Load")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("Load", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("Load", status).Observe(duration)
	}()

	data, err := s.slot.Read(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSlotEmpty) {
			s.commit(nil)
			return nil
		}
		status = "error"
		span.RecordError(err)
		s.commit(nil)
		return err
	}

	var ads []*domain.Advertisement
	if err := json.Unmarshal(data, &ads); err != nil {
		readErr := &storage.ReadError{Err: err}
		status = "error"
		span.RecordError(readErr)
		s.commit(nil)
		return readErr
	}

	span.SetAttributes(attribute.Int("ads.count", len(ads)))
	s.commit(ads)
	return nil
}

// Add validates, constructs, and prepends a new record. The write lock is
// held across the capacity check, the durable write, and the commit so two
// concurrent adds cannot both pass the check or overwrite each other's
// persisted list.
func (s *advertisementStore) Add(ctx context.Context, imageURI, description, url string) (*domain.Advertisement, error) {
	ctx, span := s.tracer.Start(ctx, "Add")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("Add", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("Add", status).Observe(duration)
	}()

	ad, err := domain.New(imageURI, description, url)
	if err != nil {
		status = "invalid"
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		status = "not_ready"
		return nil, ErrNotReady
	}

	if len(s.ads) >= MaxAdvertisements {
		status = "rejected"
		return nil, ErrCapacityExceeded
	}

	next := make([]*domain.Advertisement, 0, len(s.ads)+1)
	next = append(next, ad)
	next = append(next, s.ads...)

	if err := s.persist(ctx, next); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}
	s.ads = next

	span.SetAttributes(
		attribute.String("ad.id", ad.ID),
		attribute.Int("ads.count", len(next)),
	)
	return ad, nil
}

// Remove deletes the record with the given id. Removing an absent id is a
// no-op returning false, not an error.
func (s *advertisementStore) Remove(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "Remove")
	defer span.End()

	span.SetAttributes(attribute.String("ad.id", id))

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("Remove", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("Remove", status).Observe(duration)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		status = "not_ready"
		return false, ErrNotReady
	}

	idx := -1
	for i, ad := range s.ads {
		if ad.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		status = "not_found"
		return false, nil
	}

	next := make([]*domain.Advertisement, 0, len(s.ads)-1)
	next = append(next, s.ads[:idx]...)
	next = append(next, s.ads[idx+1:]...)

	if err := s.persist(ctx, next); err != nil {
		status = "error"
		span.RecordError(err)
		return false, err
	}
	s.ads = next

	return true, nil
}

// Search is a pure filter over the current in-memory list; it never touches
// the durable slot. A record matches when the lowercased query is a
// substring of the lowercased description, the lowercased url, or the
// creation date rendered with dateLayout. An empty or all-whitespace query
// matches everything. Order stays newest-first.
func (s *advertisementStore) Search(query string) []*domain.Advertisement {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("Search", "success").Inc()
		s.metrics.MethodDuration.WithLabelValues("Search", "success").Observe(duration)
	}()

	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		return s.snapshot()
	}

	matched := make([]*domain.Advertisement, 0, len(s.ads))
	for _, ad := range s.ads {
		if strings.Contains(strings.ToLower(ad.Description), query) ||
			strings.Contains(strings.ToLower(ad.URL), query) ||
			strings.Contains(ad.CreatedTime().Format(dateLayout), query) {
			matched = append(matched, ad)
		}
	}
	return matched
}

// List returns a snapshot of all records, newest-first.
func (s *advertisementStore) List() []*domain.Advertisement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *advertisementStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ads)
}

func (s *advertisementStore) Capacity() int {
	return MaxAdvertisements
}

// Ready reports whether Load has completed. Queries before that observe the
// loading state and should be suppressed by the caller.
func (s *advertisementStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// persist writes the full candidate list durably. Callers swap in-memory
// state only after it returns nil.
func (s *advertisementStore) persist(ctx context.Context, ads []*domain.Advertisement) error {
	data, err := json.Marshal(ads)
	if err != nil {
		return &storage.WriteError{Err: err}
	}
	return s.slot.Write(ctx, data)
}

func (s *advertisementStore) commit(ads []*domain.Advertisement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads = ads
	s.ready = true
}

func (s *advertisementStore) snapshot() []*domain.Advertisement {
	out := make([]*domain.Advertisement, len(s.ads))
	copy(out, s.ads)
	return out
}
