// Package coord keeps a pin's stored photos in step with Flickr: it runs the
// search-and-replace reconciliation and hydrates image bytes on demand.
package coord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/abelbrown/tourist/internal/event"
	"github.com/abelbrown/tourist/internal/flickr"
	"github.com/abelbrown/tourist/internal/geo"
	"github.com/abelbrown/tourist/internal/logging"
	"github.com/abelbrown/tourist/internal/store"
)

// Defaults for Options fields left zero.
const (
	DefaultMaxConcurrentFetches = 4
	DefaultSearchTimeout        = 30 * time.Second
	DefaultFetchTimeout         = 30 * time.Second
)

// photoClient interface for dependency injection (testing).
// *flickr.Client satisfies it.
type photoClient interface {
	Search(ctx context.Context, at geo.Coordinates, page int) ([]flickr.Descriptor, error)
	FetchBytes(ctx context.Context, rawURL string) ([]byte, error)
}

// Options tunes a Coordinator.
type Options struct {
	MaxConcurrentFetches int
	SearchTimeout        time.Duration
	FetchTimeout         time.Duration
}

type photoKey struct {
	pin   string
	photo string
}

// hydration is the in-memory state of one photo, tied to the URL it was
// started for so a late result for an old URL can be told apart.
type hydration struct {
	state State
	url   string
}

// Coordinator owns all network work for pins and photos.
// Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	store  *store.Store
	client photoClient // interface for testing
	bus    *event.Bus  // optional: nil disables notifications
	log    *log.Logger

	searchTimeout time.Duration
	fetchTimeout  time.Duration
	maxFetches    int
	fetchSlots    *semaphore.Weighted

	searches singleflight.Group // keyed by pin id
	fetches  singleflight.Group // keyed by pin, photo and URL

	mu     sync.Mutex
	states map[photoKey]hydration
	base   context.Context

	wg sync.WaitGroup
}

// NewCoordinator creates a Coordinator using the real Flickr client.
func NewCoordinator(s *store.Store, c *flickr.Client, bus *event.Bus, opts Options) *Coordinator {
	return NewCoordinatorWithClient(s, c, bus, opts)
}

// NewCoordinatorWithClient allows injecting a custom client (for testing).
func NewCoordinatorWithClient(s *store.Store, c photoClient, bus *event.Bus, opts Options) *Coordinator {
	if opts.MaxConcurrentFetches <= 0 {
		opts.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = DefaultSearchTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}

	return &Coordinator{
		store:         s,
		client:        c,
		bus:           bus,
		log:           logging.WithPrefix("coord"),
		searchTimeout: opts.SearchTimeout,
		fetchTimeout:  opts.FetchTimeout,
		maxFetches:    opts.MaxConcurrentFetches,
		fetchSlots:    semaphore.NewWeighted(int64(opts.MaxConcurrentFetches)),
		states:        make(map[photoKey]hydration),
		base:          context.Background(),
	}
}

// Start ties background image fetches to ctx. Cancelling it aborts fetches
// in flight; call Wait afterwards.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	c.base = ctx
	c.mu.Unlock()
}

// Wait blocks until every background fetch has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// AddPin stores a pin, or returns the one already within tolerance.
func (c *Coordinator) AddPin(at geo.Coordinates) (store.Pin, bool, error) {
	pin, created, err := c.store.AddPin(at)
	if err != nil {
		c.log.Error("add pin failed", "at", at, "error", err)
		return store.Pin{}, false, err
	}
	if created {
		c.log.Info("pin added", "pin", pin.ID, "at", at)
		c.publish(event.PinAdded, event.Data{event.KeyPin: pin.ID})
	}
	return pin, created, nil
}

// DeletePin removes a pin and its photos.
func (c *Coordinator) DeletePin(pinID string) (store.ChangeSet, error) {
	cs, err := c.store.DeletePin(pinID)
	if err != nil {
		c.log.Error("delete pin failed", "pin", pinID, "error", err)
		return store.ChangeSet{}, err
	}
	c.forgetPin(pinID)
	c.publish(event.PinDeleted, event.Data{event.KeyPin: pinID, event.KeyDeleted: len(cs.Deleted)})
	return cs, nil
}

// RefreshPhotos runs a fresh search for the pin and replaces its stored
// photos with the result in one transaction. A failed search leaves the
// store untouched. Concurrent refreshes of one pin share a single search.
func (c *Coordinator) RefreshPhotos(ctx context.Context, pinID string) (store.ChangeSet, error) {
	v, err, _ := c.searches.Do(pinID, func() (interface{}, error) {
		return c.refresh(ctx, pinID)
	})
	if err != nil {
		return store.ChangeSet{}, err
	}
	return v.(store.ChangeSet), nil
}

func (c *Coordinator) refresh(ctx context.Context, pinID string) (store.ChangeSet, error) {
	pin, err := c.store.Pin(pinID)
	if err != nil {
		return store.ChangeSet{}, err
	}

	searchCtx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	descriptors, err := c.client.Search(searchCtx, pin.Coordinates, 0)
	if err != nil {
		c.log.Warn("search failed", "pin", pinID, "error", err)
		return store.ChangeSet{}, fmt.Errorf("search photos near %v: %w", pin.Coordinates, err)
	}

	photos := make([]store.Photo, len(descriptors))
	for i, d := range descriptors {
		photos[i] = store.Photo{ID: d.ID, Title: d.Title, RemoteURL: d.RemoteURL}
	}

	cs, err := c.store.ReplacePhotos(pinID, photos)
	if err != nil {
		c.log.Error("replace photos failed", "pin", pinID, "error", err)
		return store.ChangeSet{}, err
	}

	c.forgetPin(pinID)
	c.log.Info("photos replaced", "pin", pinID, "inserted", len(cs.Inserted), "deleted", len(cs.Deleted))
	c.publish(event.PhotosReplaced, event.Data{
		event.KeyPin:      pinID,
		event.KeyInserted: len(cs.Inserted),
		event.KeyDeleted:  len(cs.Deleted),
	})
	if len(cs.Inserted) == 0 {
		c.publish(event.AlbumEmpty, event.Data{event.KeyPin: pinID})
	}
	return cs, nil
}

// LoadAlbum returns the pin's photos, searching first when none are stored.
func (c *Coordinator) LoadAlbum(ctx context.Context, pinID string) ([]store.Photo, error) {
	photos, err := c.store.Photos(pinID)
	if err != nil {
		return nil, err
	}
	if len(photos) > 0 {
		return photos, nil
	}

	if _, err := c.RefreshPhotos(ctx, pinID); err != nil {
		return nil, err
	}
	return c.store.Photos(pinID)
}

// DeletePhotos removes exactly the listed photos. No search is made.
func (c *Coordinator) DeletePhotos(pinID string, ids []string) (store.ChangeSet, error) {
	cs, err := c.store.DeletePhotos(pinID, ids)
	if err != nil {
		c.log.Error("delete photos failed", "pin", pinID, "error", err)
		return store.ChangeSet{}, err
	}
	if cs.Empty() {
		return cs, nil
	}

	c.mu.Lock()
	for _, id := range cs.Deleted {
		delete(c.states, photoKey{pinID, id})
	}
	c.mu.Unlock()

	c.log.Info("photos deleted", "pin", pinID, "deleted", len(cs.Deleted))
	c.publish(event.PhotosDeleted, event.Data{event.KeyPin: pinID, event.KeyDeleted: len(cs.Deleted)})
	return cs, nil
}

// State returns what is known about a photo's bytes.
func (c *Coordinator) State(pinID, photoID string) State {
	c.mu.Lock()
	h, ok := c.states[photoKey{pinID, photoID}]
	c.mu.Unlock()
	if ok {
		return h.state
	}

	p, err := c.store.Photo(pinID, photoID)
	if err == nil && p.Hydrated() {
		return Hydrated
	}
	return Unhydrated
}

// RequestImage asks for a photo's bytes without blocking. Hydrated photos
// return Hydrated; anything else starts or joins the one fetch for that
// photo and returns Hydrating. A failed photo is retried.
func (c *Coordinator) RequestImage(pinID, photoID string) State {
	state, _, err := c.startHydration(pinID, photoID)
	if err != nil {
		c.log.Debug("image request ignored", "pin", pinID, "photo", photoID, "error", err)
		return Unhydrated
	}
	return state
}

// Hydrate fetches a photo's bytes and blocks until they are stored or the
// fetch fails. A fetch already running for the photo is joined.
func (c *Coordinator) Hydrate(ctx context.Context, pinID, photoID string) error {
	_, done, err := c.startHydration(pinID, photoID)
	if err != nil || done == nil {
		return err
	}
	select {
	case r := <-done:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HydrateVisible hydrates the given photos with bounded parallelism and
// returns the first failure. One failure does not stop the others.
func (c *Coordinator) HydrateVisible(ctx context.Context, pinID string, ids []string) error {
	var g errgroup.Group
	g.SetLimit(c.maxFetches)

	for _, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return c.Hydrate(ctx, pinID, id)
		})
	}

	return g.Wait()
}

// startHydration moves a photo to Hydrating and returns the channel of the
// shared fetch. done is nil when the photo is already hydrated.
func (c *Coordinator) startHydration(pinID, photoID string) (State, <-chan singleflight.Result, error) {
	key := photoKey{pinID, photoID}

	p, err := c.store.Photo(pinID, photoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.mu.Lock()
			delete(c.states, key)
			c.mu.Unlock()
		}
		return Unhydrated, nil, err
	}
	if p.Hydrated() {
		c.setState(key, p.RemoteURL, Hydrated)
		return Hydrated, nil, nil
	}

	if c.setState(key, p.RemoteURL, Hydrating) {
		c.publish(event.PhotoHydrating, event.Data{event.KeyPin: pinID, event.KeyPhoto: photoID})
	}

	flightKey := pinID + "\x00" + photoID + "\x00" + p.RemoteURL
	shared := c.fetches.DoChan(flightKey, func() (interface{}, error) {
		return nil, c.hydrate(key, p.RemoteURL)
	})

	// Relay through a goroutine Wait can see, so callers that stop
	// listening don't leave the fetch untracked.
	done := make(chan singleflight.Result, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		done <- <-shared
	}()
	return Hydrating, done, nil
}

// hydrate runs the single fetch for one photo identity.
func (c *Coordinator) hydrate(key photoKey, url string) error {
	c.mu.Lock()
	base := c.base
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(base, c.fetchTimeout)
	defer cancel()

	// A fetch that finished just before this one was registered already
	// stored the bytes.
	p, err := c.store.Photo(key.pin, key.photo)
	if errors.Is(err, store.ErrNotFound) || (err == nil && p.RemoteURL != url) {
		c.forget(key, url)
		return store.ErrNotFound
	}
	if err != nil {
		return c.fail(key, url, err)
	}
	if p.Hydrated() {
		c.setState(key, url, Hydrated)
		return nil
	}

	if err := c.fetchSlots.Acquire(ctx, 1); err != nil {
		return c.fail(key, url, err)
	}
	data, err := c.client.FetchBytes(ctx, url)
	c.fetchSlots.Release(1)
	if err != nil {
		return c.fail(key, url, err)
	}

	if err := c.store.AttachImage(key.pin, key.photo, url, data); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.log.Debug("discarding bytes for stale photo", "pin", key.pin, "photo", key.photo)
			c.forget(key, url)
			return err
		}
		return c.fail(key, url, err)
	}

	c.setState(key, url, Hydrated)
	c.publish(event.PhotoHydrated, event.Data{
		event.KeyPin:   key.pin,
		event.KeyPhoto: key.photo,
		event.KeySize:  len(data),
	})
	return nil
}

// fail records a failed fetch. A photo deleted or refreshed to a new URL
// while the fetch ran gets no state and no event.
func (c *Coordinator) fail(key photoKey, url string, err error) error {
	p, perr := c.store.Photo(key.pin, key.photo)
	if errors.Is(perr, store.ErrNotFound) || (perr == nil && p.RemoteURL != url) {
		c.log.Debug("dropping failure for stale photo", "pin", key.pin, "photo", key.photo, "error", err)
		c.forget(key, url)
		return err
	}

	c.log.Warn("hydration failed", "pin", key.pin, "photo", key.photo, "error", err)
	if c.setState(key, url, HydrationFailed) {
		c.publish(event.PhotoFailed, event.Data{
			event.KeyPin:   key.pin,
			event.KeyPhoto: key.photo,
			event.KeyError: err.Error(),
		})
	}
	return err
}

// setState records s for key unless a newer URL owns the entry. Hydrated
// only ever moves to Hydrated. Reports whether the state changed.
func (c *Coordinator) setState(key photoKey, url string, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.states[key]
	if ok && cur.url != url && s != Hydrating {
		return false
	}
	if ok && cur.url == url && cur.state == Hydrated {
		return false
	}
	if ok && cur == (hydration{state: s, url: url}) {
		return false
	}
	c.states[key] = hydration{state: s, url: url}
	return true
}

// forget drops key's state if it still belongs to url.
func (c *Coordinator) forget(key photoKey, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.states[key]; ok && cur.url == url {
		delete(c.states, key)
	}
}

func (c *Coordinator) forgetPin(pinID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.states {
		if k.pin == pinID {
			delete(c.states, k)
		}
	}
}

func (c *Coordinator) publish(topic string, data event.Data) {
	if c.bus != nil {
		c.bus.Publish(topic, data)
	}
}
