package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/tourist/internal/config"
	"github.com/abelbrown/tourist/internal/coord"
	"github.com/abelbrown/tourist/internal/event"
	"github.com/abelbrown/tourist/internal/flickr"
	"github.com/abelbrown/tourist/internal/geo"
	"github.com/abelbrown/tourist/internal/logging"
	"github.com/abelbrown/tourist/internal/store"
	"github.com/abelbrown/tourist/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tourist:", err)
		os.Exit(1)
	}
}

func run() error {
	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.LoadDotEnv(".env"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(config.Dir(), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := logging.Init(config.Dir()); err != nil {
		return err
	}
	defer logging.Close()

	dbPath := cfg.DBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	bus := event.NewBus()
	defer bus.Close()

	client := flickr.NewClient(cfg.Flickr.APIKey, cfg.FlickrOptions())
	coordinator := coord.NewCoordinator(st, client, bus, coord.Options{
		MaxConcurrentFetches: cfg.Hydration.MaxConcurrentFetches,
		SearchTimeout:        time.Duration(cfg.Flickr.TimeoutSeconds) * time.Second,
		FetchTimeout:         time.Duration(cfg.Flickr.TimeoutSeconds) * time.Second,
	})
	coordinator.Start(ctx)

	app := ui.NewApp(actions(ctx, st, coordinator, bus), cfg.InitialRegion(geo.Coordinates{}))
	program := tea.NewProgram(app, tea.WithAltScreen())

	// Forward bus events into the update loop
	sub := bus.Subscribe(ui.Topics...)
	go func() {
		for msg := range sub.Receiver {
			if m, ok := ui.FromEvent(msg); ok {
				program.Send(m)
			}
		}
	}()

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		logging.Error("Error running program", "error", err)
	}

	// Graceful shutdown
	cancel()
	coordinator.Wait()
	bus.Unsubscribe(sub)
	return nil
}

// actions wires the UI's commands to the store and coordinator.
func actions(ctx context.Context, st *store.Store, c *coord.Coordinator, bus *event.Bus) ui.Actions {
	return ui.Actions{
		LoadPins: func() tea.Cmd {
			return func() tea.Msg {
				pins, err := st.Pins()
				if err != nil {
					return ui.PinsLoaded{Err: err}
				}
				region, ok, err := st.LoadRegion()
				if err != nil {
					bus.Error("Could not restore the last viewed region")
				}
				return ui.PinsLoaded{Pins: pins, Region: region, HasRegion: ok}
			}
		},
		AddPin: func(at geo.Coordinates) tea.Cmd {
			return func() tea.Msg {
				pin, created, err := c.AddPin(at)
				return ui.PinAdded{Pin: pin, Created: created, Err: err}
			}
		},
		DeletePin: func(id string) tea.Cmd {
			return func() tea.Msg {
				_, err := c.DeletePin(id)
				return ui.PinDeleted{ID: id, Err: err}
			}
		},
		OpenAlbum: func(pinID string) tea.Cmd {
			return func() tea.Msg {
				photos, err := c.LoadAlbum(ctx, pinID)
				return ui.AlbumLoaded{PinID: pinID, Photos: photos, Err: err}
			}
		},
		NewCollection: func(pinID string) tea.Cmd {
			return func() tea.Msg {
				cs, err := c.RefreshPhotos(ctx, pinID)
				if err != nil {
					return ui.AlbumLoaded{PinID: pinID, Err: err}
				}
				if len(cs.Inserted) > 0 {
					bus.Info(fmt.Sprintf("New collection: %d photos", len(cs.Inserted)))
				}
				photos, err := st.Photos(pinID)
				return ui.AlbumLoaded{PinID: pinID, Photos: photos, Err: err}
			}
		},
		RemovePhotos: func(pinID string, ids []string) tea.Cmd {
			return func() tea.Msg {
				cs, err := c.DeletePhotos(pinID, ids)
				return ui.PhotosRemoved{PinID: pinID, IDs: cs.Deleted, Err: err}
			}
		},
		RequestImages: func(pinID string, ids []string) tea.Cmd {
			return func() tea.Msg {
				states := make(map[string]coord.State, len(ids))
				for _, id := range ids {
					states[id] = c.RequestImage(pinID, id)
				}
				return ui.ImageStates{PinID: pinID, States: states}
			}
		},
		SaveRegion: func(r geo.Region) tea.Cmd {
			return func() tea.Msg {
				return ui.RegionSaved{Err: st.SaveRegion(r)}
			}
		},
	}
}
