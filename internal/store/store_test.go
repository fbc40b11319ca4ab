package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"jobads/internal/domain"
	"jobads/internal/infrastructure/metrics"
	"jobads/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Registered once; prometheus panics on duplicate collector registration.
var storeMetrics = metrics.NewStoreMetrics()

type failingSlot struct {
	data     []byte
	readErr  error
	writeErr error
}

func (s *failingSlot) Read(ctx context.Context) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.data == nil {
		return nil, storage.ErrSlotEmpty
	}
	return s.data, nil
}

func (s *failingSlot) Write(ctx context.Context, data []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.data = data
	return nil
}

func newTestStore(t *testing.T) (AdvertisementStore, *storage.MemorySlot) {
	t.Helper()
	slot := storage.NewMemorySlot()
	s := NewAdvertisementStore(slot, storeMetrics)
	require.NoError(t, s.Load(context.Background()))
	return s, slot
}

func seedSlot(t *testing.T, slot storage.Slot, ads []*domain.Advertisement) {
	t.Helper()
	data, err := json.Marshal(ads)
	require.NoError(t, err)
	require.NoError(t, slot.Write(context.Background(), data))
}

func TestLoadEmptySlot(t *testing.T) {
	slot := storage.NewMemorySlot()
	s := NewAdvertisementStore(slot, storeMetrics)

	assert.False(t, s.Ready())
	require.NoError(t, s.Load(context.Background()))
	assert.True(t, s.Ready())
	assert.Equal(t, 0, s.Count())
}

func TestLoadCorruptBlobFallsBackEmpty(t *testing.T) {
	slot := storage.NewMemorySlot()
	require.NoError(t, slot.Write(context.Background(), []byte("{not json")))

	s := NewAdvertisementStore(slot, storeMetrics)
	err := s.Load(context.Background())

	var readErr *storage.ReadError
	require.Error(t, err)
	assert.True(t, errors.As(err, &readErr))
	assert.True(t, s.Ready())
	assert.Equal(t, 0, s.Count())
}

func TestAddRejectsBeforeLoad(t *testing.T) {
	s := NewAdvertisementStore(storage.NewMemorySlot(), storeMetrics)

	_, err := s.Add(context.Background(), "file:///img.png", "Job", "http://a")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestAddValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "", "Job", "http://a")
	assert.ErrorIs(t, err, domain.ErrMissingImage)

	_, err = s.Add(ctx, "file:///img.png", "   ", "http://a")
	assert.ErrorIs(t, err, domain.ErrMissingDescription)

	_, err = s.Add(ctx, "file:///img.png", "Job", "  ")
	assert.ErrorIs(t, err, domain.ErrMissingURL)

	assert.Equal(t, 0, s.Count())
}

func TestCapacityInvariant(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < MaxAdvertisements; i++ {
		_, err := s.Add(ctx, "file:///img.png", "Job", "http://a")
		require.NoError(t, err)
	}
	require.Equal(t, MaxAdvertisements, s.Count())

	before := s.List()
	_, err := s.Add(ctx, "file:///img.png", "One too many", "http://b")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, MaxAdvertisements, s.Count())
	assert.Equal(t, before, s.List())
}

func TestOrderingNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.Add(ctx, "file:///a.png", "Job A", "http://a")
	require.NoError(t, err)
	b, err := s.Add(ctx, "file:///b.png", "Job B", "http://b")
	require.NoError(t, err)

	ads := s.List()
	require.Len(t, ads, 2)
	assert.Equal(t, b.ID, ads[0].ID)
	assert.Equal(t, a.ID, ads[1].ID)
}

func TestIDUniqueness(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < MaxAdvertisements; i++ {
		ad, err := s.Add(ctx, "file:///img.png", "Job", "http://a")
		require.NoError(t, err)
		assert.False(t, seen[ad.ID])
		seen[ad.ID] = true
	}
}

func TestRoundTripReload(t *testing.T) {
	s, slot := newTestStore(t)
	ctx := context.Background()

	original, err := s.Add(ctx, "file:///img.png", "Senior React Developer", "https://x.com/job1")
	require.NoError(t, err)

	// Fresh store over the same slot simulates a process restart.
	reloaded := NewAdvertisementStore(slot, storeMetrics)
	require.NoError(t, reloaded.Load(ctx))

	ads := reloaded.List()
	require.Len(t, ads, 1)
	assert.Equal(t, original, ads[0])
}

func TestRemoveIdempotence(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ad, err := s.Add(ctx, "file:///img.png", "Job", "http://a")
	require.NoError(t, err)

	removed, err := s.Remove(ctx, ad.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, s.Count())

	removed, err = s.Remove(ctx, ad.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 0, s.Count())

	removed, err = s.Remove(ctx, "never-existed")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSearch(t *testing.T) {
	slot := storage.NewMemorySlot()
	react := &domain.Advertisement{
		ID:          "ad-react",
		ImageURI:    "file:///react.png",
		Description: "Senior React Developer",
		URL:         "https://x.com/job1",
		CreatedAt:   time.Date(2024, 3, 12, 9, 0, 0, 0, time.Local).UnixMilli(),
	}
	golang := &domain.Advertisement{
		ID:          "ad-go",
		ImageURI:    "file:///go.png",
		Description: "Backend Engineer",
		URL:         "https://jobs.example.com/backend",
		CreatedAt:   time.Date(2024, 7, 1, 14, 30, 0, 0, time.Local).UnixMilli(),
	}
	// Newest-first on disk, matching the store's ordering guarantee.
	seedSlot(t, slot, []*domain.Advertisement{golang, react})

	s := NewAdvertisementStore(slot, storeMetrics)
	require.NoError(t, s.Load(context.Background()))

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"description match", "react", []string{"ad-react"}},
		{"url match is case-insensitive", "JOB1", []string{"ad-react"}},
		{"rendered date match", "12.03.2024", []string{"ad-react"}},
		{"partial date match", "12.03", []string{"ad-react"}},
		{"time of day match", "14:30", []string{"ad-go"}},
		{"no match", "golang", []string{}},
		{"empty query matches all in order", "", []string{"ad-go", "ad-react"}},
		{"whitespace query matches all", "   ", []string{"ad-go", "ad-react"}},
		{"shared substring keeps order", "x", []string{"ad-go", "ad-react"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Search(tc.query)
			ids := make([]string, 0, len(got))
			for _, ad := range got {
				ids = append(ids, ad.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestSearchNeverTouchesSlot(t *testing.T) {
	slot := &failingSlot{}
	s := NewAdvertisementStore(slot, storeMetrics)
	require.NoError(t, s.Load(context.Background()))

	_, err := s.Add(context.Background(), "file:///img.png", "Job", "http://a")
	require.NoError(t, err)

	// Any slot access from here on would fail the test.
	slot.readErr = errors.New("slot must not be read")
	slot.writeErr = errors.New("slot must not be written")

	assert.Len(t, s.Search("job"), 1)
	assert.Len(t, s.Search(""), 1)
}

func TestWriteFailureConsistency(t *testing.T) {
	slot := &failingSlot{}
	s := NewAdvertisementStore(slot, storeMetrics)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	kept, err := s.Add(ctx, "file:///img.png", "Keep me", "http://keep")
	require.NoError(t, err)
	before := s.List()

	slot.writeErr = &storage.WriteError{Err: errors.New("disk full")}

	_, err = s.Add(ctx, "file:///img.png", "Lost", "http://lost")
	var writeErr *storage.WriteError
	require.Error(t, err)
	assert.True(t, errors.As(err, &writeErr))
	assert.Equal(t, before, s.List())

	removed, err := s.Remove(ctx, kept.ID)
	require.Error(t, err)
	assert.False(t, removed)
	assert.Equal(t, before, s.List())
}

func TestEndToEndScenario(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.Equal(t, 0, s.Count())

	a, err := s.Add(ctx, "file:///img1.png", "Job A", "http://a")
	require.NoError(t, err)
	require.Equal(t, 1, s.Count())

	b, err := s.Add(ctx, "file:///img2.png", "Job B", "http://b")
	require.NoError(t, err)
	require.Equal(t, 2, s.Count())

	ads := s.List()
	assert.Equal(t, []string{b.ID, a.ID}, []string{ads[0].ID, ads[1].ID})

	found := s.Search("job a")
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)

	removed, err := s.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, b.ID, s.List()[0].ID)

	removed, err = s.Remove(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, s.Count())
}
