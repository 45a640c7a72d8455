package coord

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/tourist/internal/event"
	"github.com/abelbrown/tourist/internal/flickr"
	"github.com/abelbrown/tourist/internal/geo"
	"github.com/abelbrown/tourist/internal/store"
)

var sanFrancisco = geo.Coordinates{Latitude: 37.7749, Longitude: -122.4194}

// mockClient implements the photoClient interface for testing.
type mockClient struct {
	mu          sync.Mutex
	results     [][]flickr.Descriptor // one per Search call; the last repeats
	searchErr   error
	fetchErr    error
	searchGate  chan struct{} // if non-nil, Search blocks until closed
	fetchGate   chan struct{} // if non-nil, FetchBytes blocks until closed
	searchCount atomic.Int32
	fetchCount  atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (m *mockClient) Search(ctx context.Context, at geo.Coordinates, page int) ([]flickr.Descriptor, error) {
	n := int(m.searchCount.Add(1))
	if m.searchGate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.searchGate:
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.results) == 0 {
		return []flickr.Descriptor{}, nil
	}
	if n > len(m.results) {
		n = len(m.results)
	}
	return m.results[n-1], nil
}

func (m *mockClient) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	m.fetchCount.Add(1)
	cur := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		prev := m.maxInFlight.Load()
		if cur <= prev || m.maxInFlight.CompareAndSwap(prev, cur) {
			break
		}
	}

	if m.fetchGate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.fetchGate:
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return []byte("jpeg:" + rawURL), nil
}

func (m *mockClient) setFetchErr(err error) {
	m.mu.Lock()
	m.fetchErr = err
	m.mu.Unlock()
}

func descriptors(ids ...string) []flickr.Descriptor {
	out := make([]flickr.Descriptor, len(ids))
	for i, id := range ids {
		out[i] = flickr.Descriptor{ID: id, Title: "photo " + id, RemoteURL: "https://live.staticflickr.com/" + id + "_m.jpg"}
	}
	return out
}

type fixture struct {
	store *store.Store
	bus   *event.Bus
	mock  *mockClient
	coord *Coordinator
	pin   store.Pin
}

func newFixture(t *testing.T, mock *mockClient, opts Options) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "tourist.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	bus := event.NewBus()
	t.Cleanup(func() {
		bus.Close()
		s.Close()
	})

	c := NewCoordinatorWithClient(s, mock, bus, opts)
	pin, _, err := c.AddPin(sanFrancisco)
	if err != nil {
		t.Fatalf("AddPin: %v", err)
	}
	return &fixture{store: s, bus: bus, mock: mock, coord: c, pin: pin}
}

// waitFor drains sub until a message on topic arrives.
func waitFor(t *testing.T, sub event.Subscription, topic string) event.Message {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-sub.Receiver:
			if msg.Name == topic {
				return msg
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", topic)
			return event.Message{}
		}
	}
}

// waitUntil polls cond for up to two seconds.
func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRefreshStoresUnhydratedPhotos(t *testing.T) {
	mock := &mockClient{results: [][]flickr.Descriptor{descriptors("a", "b", "c")}}
	f := newFixture(t, mock, Options{})
	sub := f.bus.Subscribe(event.PhotosReplaced)
	defer f.bus.Unsubscribe(sub)

	cs, err := f.coord.RefreshPhotos(context.Background(), f.pin.ID)
	if err != nil {
		t.Fatalf("RefreshPhotos: %v", err)
	}
	if len(cs.Inserted) != 3 {
		t.Errorf("inserted %d, want 3", len(cs.Inserted))
	}

	photos, _ := f.store.Photos(f.pin.ID)
	if len(photos) != 3 {
		t.Fatalf("stored %d photos, want 3", len(photos))
	}
	for _, p := range photos {
		if p.Hydrated() {
			t.Errorf("photo %s should not have bytes yet", p.ID)
		}
		if got := f.coord.State(f.pin.ID, p.ID); got != Unhydrated {
			t.Errorf("state(%s) = %v, want unhydrated", p.ID, got)
		}
	}

	msg := waitFor(t, sub, event.PhotosReplaced)
	if msg.Fields[event.KeyPin] != f.pin.ID || msg.Fields[event.KeyInserted] != 3 {
		t.Errorf("unexpected event %+v", msg.Fields)
	}
	if mock.fetchCount.Load() != 0 {
		t.Error("refresh must not fetch image bytes")
	}
}

func TestRefreshEmptyPublishesAlbumEmpty(t *testing.T) {
	mock := &mockClient{}
	f := newFixture(t, mock, Options{})
	sub := f.bus.Subscribe(event.AlbumEmpty)
	defer f.bus.Unsubscribe(sub)

	cs, err := f.coord.RefreshPhotos(context.Background(), f.pin.ID)
	if err != nil {
		t.Fatalf("RefreshPhotos: %v", err)
	}
	if len(cs.Inserted) != 0 {
		t.Errorf("inserted %v, want none", cs.Inserted)
	}

	msg := waitFor(t, sub, event.AlbumEmpty)
	if msg.Fields[event.KeyPin] != f.pin.ID {
		t.Errorf("album.empty for %v, want %s", msg.Fields[event.KeyPin], f.pin.ID)
	}
}

func TestRefreshTwiceKeepsSecondSet(t *testing.T) {
	mock := &mockClient{results: [][]flickr.Descriptor{
		descriptors("a", "b", "c"),
		descriptors("d", "e"),
	}}
	f := newFixture(t, mock, Options{})
	ctx := context.Background()

	f.coord.RefreshPhotos(ctx, f.pin.ID)
	if _, err := f.coord.RefreshPhotos(ctx, f.pin.ID); err != nil {
		t.Fatalf("RefreshPhotos: %v", err)
	}

	photos, _ := f.store.Photos(f.pin.ID)
	if len(photos) != 2 || photos[0].ID != "d" || photos[1].ID != "e" {
		t.Errorf("photos after second refresh = %+v", photos)
	}
}

func TestRefreshSearchErrorLeavesStoreUntouched(t *testing.T) {
	mock := &mockClient{results: [][]flickr.Descriptor{descriptors("a", "b")}}
	f := newFixture(t, mock, Options{})
	ctx := context.Background()

	f.coord.RefreshPhotos(ctx, f.pin.ID)

	mock.mu.Lock()
	mock.searchErr = &flickr.StatusError{Code: 503, Status: "Service Unavailable"}
	mock.mu.Unlock()

	_, err := f.coord.RefreshPhotos(ctx, f.pin.ID)
	var se *flickr.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}

	photos, _ := f.store.Photos(f.pin.ID)
	if len(photos) != 2 {
		t.Errorf("prior photos should survive, got %d", len(photos))
	}
}

func TestRefreshUnknownPin(t *testing.T) {
	f := newFixture(t, &mockClient{}, Options{})
	if _, err := f.coord.RefreshPhotos(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentRefreshSharesOneSearch(t *testing.T) {
	mock := &mockClient{
		results:    [][]flickr.Descriptor{descriptors("a")},
		searchGate: make(chan struct{}),
	}
	f := newFixture(t, mock, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = f.coord.RefreshPhotos(ctx, f.pin.ID)
	}()
	waitUntil(t, "first search", func() bool { return mock.searchCount.Load() == 1 })

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[1] = f.coord.RefreshPhotos(ctx, f.pin.ID)
	}()
	time.Sleep(50 * time.Millisecond)
	close(mock.searchGate)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("refresh %d: %v", i, err)
		}
	}
	if got := mock.searchCount.Load(); got != 1 {
		t.Errorf("search ran %d times, want 1", got)
	}
}

func TestLoadAlbumSearchesOnlyWhenEmpty(t *testing.T) {
	mock := &mockClient{results: [][]flickr.Descriptor{descriptors("a", "b")}}
	f := newFixture(t, mock, Options{})
	ctx := context.Background()

	photos, err := f.coord.LoadAlbum(ctx, f.pin.ID)
	if err != nil {
		t.Fatalf("LoadAlbum: %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("got %d photos, want 2", len(photos))
	}

	if _, err := f.coord.LoadAlbum(ctx, f.pin.ID); err != nil {
		t.Fatalf("LoadAlbum: %v", err)
	}
	if got := mock.searchCount.Load(); got != 1 {
		t.Errorf("search ran %d times, want 1", got)
	}
}

func TestDeletePhotosRemovesExactlySubset(t *testing.T) {
	mock := &mockClient{results: [][]flickr.Descriptor{descriptors("a", "b", "c", "d")}}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)
	sub := f.bus.Subscribe(event.PhotosDeleted)
	defer f.bus.Unsubscribe(sub)

	cs, err := f.coord.DeletePhotos(f.pin.ID, []string{"a", "c"})
	if err != nil {
		t.Fatalf("DeletePhotos: %v", err)
	}
	if len(cs.Deleted) != 2 {
		t.Errorf("deleted %v", cs.Deleted)
	}

	photos, _ := f.store.Photos(f.pin.ID)
	if len(photos) != 2 || photos[0].ID != "b" || photos[1].ID != "d" {
		t.Errorf("remaining photos = %+v", photos)
	}
	if mock.searchCount.Load() != 1 {
		t.Error("delete must not search")
	}

	msg := waitFor(t, sub, event.PhotosDeleted)
	if msg.Fields[event.KeyDeleted] != 2 {
		t.Errorf("unexpected event %+v", msg.Fields)
	}
}

func TestHydrate(t *testing.T) {
	mock := &mockClient{results: [][]flickr.Descriptor{descriptors("a")}}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)
	sub := f.bus.Subscribe(event.PhotoHydrated)
	defer f.bus.Unsubscribe(sub)

	if err := f.coord.Hydrate(context.Background(), f.pin.ID, "a"); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	p, _ := f.store.Photo(f.pin.ID, "a")
	if string(p.Image) != "jpeg:https://live.staticflickr.com/a_m.jpg" {
		t.Errorf("image = %q", p.Image)
	}
	if got := f.coord.State(f.pin.ID, "a"); got != Hydrated {
		t.Errorf("state = %v, want hydrated", got)
	}
	msg := waitFor(t, sub, event.PhotoHydrated)
	if msg.Fields[event.KeyPhoto] != "a" {
		t.Errorf("unexpected event %+v", msg.Fields)
	}
}

func TestConcurrentRequestsShareOneFetch(t *testing.T) {
	mock := &mockClient{
		results:   [][]flickr.Descriptor{descriptors("a")},
		fetchGate: make(chan struct{}),
	}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)

	first := f.coord.RequestImage(f.pin.ID, "a")
	second := f.coord.RequestImage(f.pin.ID, "a")
	if first != Hydrating || second != Hydrating {
		t.Errorf("states = %v, %v, want hydrating twice", first, second)
	}

	close(mock.fetchGate)
	f.coord.Wait()

	if got := mock.fetchCount.Load(); got != 1 {
		t.Errorf("fetched %d times, want 1", got)
	}
	for i := 0; i < 2; i++ {
		if got := f.coord.State(f.pin.ID, "a"); got != Hydrated {
			t.Errorf("reader %d saw %v, want hydrated", i, got)
		}
	}
}

func TestConcurrentHydrateCallsShareOneFetch(t *testing.T) {
	mock := &mockClient{
		results:   [][]flickr.Descriptor{descriptors("a")},
		fetchGate: make(chan struct{}),
	}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.coord.Hydrate(context.Background(), f.pin.ID, "a")
		}()
	}
	waitUntil(t, "fetch to start", func() bool { return mock.fetchCount.Load() == 1 })
	time.Sleep(20 * time.Millisecond)
	close(mock.fetchGate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Hydrate: %v", err)
		}
	}
	if got := mock.fetchCount.Load(); got != 1 {
		t.Errorf("fetched %d times, want 1", got)
	}
}

func TestHydrationFailure(t *testing.T) {
	mock := &mockClient{
		results:  [][]flickr.Descriptor{descriptors("a")},
		fetchErr: &flickr.StatusError{Code: 404, Status: "Not Found"},
	}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)
	sub := f.bus.Subscribe(event.PhotoFailed)
	defer f.bus.Unsubscribe(sub)

	err := f.coord.Hydrate(context.Background(), f.pin.ID, "a")
	var se *flickr.StatusError
	if !errors.As(err, &se) || se.Code != 404 {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if got := f.coord.State(f.pin.ID, "a"); got != HydrationFailed {
		t.Errorf("state = %v, want failed", got)
	}
	p, _ := f.store.Photo(f.pin.ID, "a")
	if p.Image != nil {
		t.Errorf("bytes should be absent, got %v", p.Image)
	}
	waitFor(t, sub, event.PhotoFailed)

	// No automatic retry; an explicit request tries again.
	mock.setFetchErr(nil)
	if got := f.coord.RequestImage(f.pin.ID, "a"); got != Hydrating {
		t.Errorf("retry state = %v, want hydrating", got)
	}
	f.coord.Wait()
	if got := f.coord.State(f.pin.ID, "a"); got != Hydrated {
		t.Errorf("state after retry = %v, want hydrated", got)
	}
	if got := mock.fetchCount.Load(); got != 2 {
		t.Errorf("fetched %d times, want 2", got)
	}
}

func TestHydratedNeverRegresses(t *testing.T) {
	mock := &mockClient{results: [][]flickr.Descriptor{descriptors("a")}}
	f := newFixture(t, mock, Options{})
	ctx := context.Background()
	f.coord.RefreshPhotos(ctx, f.pin.ID)

	if err := f.coord.Hydrate(ctx, f.pin.ID, "a"); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	mock.setFetchErr(errors.New("network down"))

	if got := f.coord.RequestImage(f.pin.ID, "a"); got != Hydrated {
		t.Errorf("RequestImage = %v, want hydrated", got)
	}
	if err := f.coord.Hydrate(ctx, f.pin.ID, "a"); err != nil {
		t.Errorf("Hydrate on hydrated photo: %v", err)
	}
	f.coord.Wait()

	if got := mock.fetchCount.Load(); got != 1 {
		t.Errorf("fetched %d times, want 1", got)
	}
	if got := f.coord.State(f.pin.ID, "a"); got != Hydrated {
		t.Errorf("state = %v, want hydrated", got)
	}
}

func TestStaleHydrationIsDiscarded(t *testing.T) {
	mock := &mockClient{
		results:   [][]flickr.Descriptor{descriptors("a", "b")},
		fetchGate: make(chan struct{}),
	}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)
	sub := f.bus.Subscribe(event.PhotoHydrated)
	defer f.bus.Unsubscribe(sub)

	f.coord.RequestImage(f.pin.ID, "a")
	waitUntil(t, "fetch to start", func() bool { return mock.fetchCount.Load() == 1 })

	if _, err := f.coord.DeletePhotos(f.pin.ID, []string{"a"}); err != nil {
		t.Fatalf("DeletePhotos: %v", err)
	}
	close(mock.fetchGate)
	f.coord.Wait()

	if _, err := f.store.Photo(f.pin.ID, "a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("deleted photo came back: %v", err)
	}
	if got := f.coord.State(f.pin.ID, "a"); got == Hydrated {
		t.Error("stale result must not mark the photo hydrated")
	}
	select {
	case msg := <-sub.Receiver:
		t.Errorf("unexpected event %s %+v", msg.Name, msg.Fields)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFailureForDeletedPhotoIsDropped(t *testing.T) {
	mock := &mockClient{
		results:   [][]flickr.Descriptor{descriptors("a", "b")},
		fetchErr:  errors.New("connection reset"),
		fetchGate: make(chan struct{}),
	}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)
	sub := f.bus.Subscribe(event.PhotoFailed)
	defer f.bus.Unsubscribe(sub)

	f.coord.RequestImage(f.pin.ID, "a")
	waitUntil(t, "fetch to start", func() bool { return mock.fetchCount.Load() == 1 })

	if _, err := f.coord.DeletePhotos(f.pin.ID, []string{"a"}); err != nil {
		t.Fatalf("DeletePhotos: %v", err)
	}
	close(mock.fetchGate)
	f.coord.Wait()

	f.coord.mu.Lock()
	_, tracked := f.coord.states[photoKey{f.pin.ID, "a"}]
	f.coord.mu.Unlock()
	if tracked {
		t.Error("deleted photo should have no hydration state")
	}
	if got := f.coord.State(f.pin.ID, "a"); got != Unhydrated {
		t.Errorf("state = %v, want unhydrated", got)
	}
	select {
	case msg := <-sub.Receiver:
		t.Errorf("unexpected event %s %+v", msg.Name, msg.Fields)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHydrateReadFailureIsReported(t *testing.T) {
	mock := &mockClient{results: [][]flickr.Descriptor{descriptors("a")}}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)
	p, err := f.store.Photo(f.pin.ID, "a")
	if err != nil {
		t.Fatalf("Photo: %v", err)
	}
	sub := f.bus.Subscribe(event.PhotoFailed)
	defer f.bus.Unsubscribe(sub)

	f.store.Close()
	err = f.coord.hydrate(photoKey{f.pin.ID, "a"}, p.RemoteURL)

	var pe *store.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if errors.Is(err, store.ErrNotFound) {
		t.Error("a read failure must not be reported as not found")
	}
	if got := f.coord.State(f.pin.ID, "a"); got != HydrationFailed {
		t.Errorf("state = %v, want failed", got)
	}
	waitFor(t, sub, event.PhotoFailed)
	if got := mock.fetchCount.Load(); got != 0 {
		t.Errorf("fetched %d times, want 0", got)
	}
}

func TestHydrateVisibleIsBounded(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	mock := &mockClient{results: [][]flickr.Descriptor{descriptors(ids...)}}
	f := newFixture(t, mock, Options{MaxConcurrentFetches: 2})
	ctx := context.Background()
	f.coord.RefreshPhotos(ctx, f.pin.ID)

	if err := f.coord.HydrateVisible(ctx, f.pin.ID, ids[:4]); err != nil {
		t.Fatalf("HydrateVisible: %v", err)
	}

	if got := mock.maxInFlight.Load(); got > 2 {
		t.Errorf("max in-flight fetches = %d, want <= 2", got)
	}
	_, hydrated, _ := f.store.CountPhotos(f.pin.ID)
	if hydrated != 4 {
		t.Errorf("hydrated %d photos, want only the 4 visible", hydrated)
	}
}

func TestHydrateMissingPhoto(t *testing.T) {
	f := newFixture(t, &mockClient{}, Options{})
	if err := f.coord.Hydrate(context.Background(), f.pin.ID, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if got := f.coord.RequestImage(f.pin.ID, "nope"); got != Unhydrated {
		t.Errorf("RequestImage = %v, want unhydrated", got)
	}
}

func TestDeletePinPublishes(t *testing.T) {
	mock := &mockClient{results: [][]flickr.Descriptor{descriptors("a")}}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)
	sub := f.bus.Subscribe(event.PinDeleted)
	defer f.bus.Unsubscribe(sub)

	if _, err := f.coord.DeletePin(f.pin.ID); err != nil {
		t.Fatalf("DeletePin: %v", err)
	}
	waitFor(t, sub, event.PinDeleted)

	if _, err := f.store.Pin(f.pin.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("pin still present: %v", err)
	}
}

func TestAddPinExisting(t *testing.T) {
	f := newFixture(t, &mockClient{}, Options{})
	pin, created, err := f.coord.AddPin(geo.Coordinates{Latitude: 37.77491, Longitude: -122.41941})
	if err != nil {
		t.Fatalf("AddPin: %v", err)
	}
	if created || pin.ID != f.pin.ID {
		t.Errorf("expected existing pin %s, got %s created=%v", f.pin.ID, pin.ID, created)
	}
}

func TestStartCancelAbortsFetches(t *testing.T) {
	mock := &mockClient{
		results:   [][]flickr.Descriptor{descriptors("a")},
		fetchGate: make(chan struct{}),
	}
	f := newFixture(t, mock, Options{})
	f.coord.RefreshPhotos(context.Background(), f.pin.ID)

	ctx, cancel := context.WithCancel(context.Background())
	f.coord.Start(ctx)
	f.coord.RequestImage(f.pin.ID, "a")
	waitUntil(t, "fetch to start", func() bool { return mock.fetchCount.Load() == 1 })

	cancel()
	done := make(chan struct{})
	go func() {
		f.coord.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}

	if got := f.coord.State(f.pin.ID, "a"); got != HydrationFailed {
		t.Errorf("state = %v, want failed", got)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Unhydrated:      "unhydrated",
		Hydrating:       "hydrating",
		Hydrated:        "hydrated",
		HydrationFailed: "failed",
		State(99):       "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
