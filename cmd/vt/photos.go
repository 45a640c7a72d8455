package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/tourist/internal/event"
)

func runPhotos() {
	fs := flag.NewFlagSet("photos", flag.ExitOnError)
	urls := fs.Bool("urls", false, "Show remote URLs")
	fs.Parse(os.Args[1:])
	requireArgs(fs.Args(), 1, "photos [-urls] <pin>")

	cfg := loadConfig(false)
	st := openDB(cfg)
	defer st.Close()

	pinID := fs.Arg(0)
	if _, err := st.Pin(pinID); err != nil {
		log.Fatalf("failed to load pin: %v", err)
	}
	photos, err := st.Photos(pinID)
	if err != nil {
		log.Fatalf("failed to list photos: %v", err)
	}
	if len(photos) == 0 {
		fmt.Println("This pin has no images.")
		return
	}

	var bytes uint64
	hydrated := 0
	for _, p := range photos {
		state := "unhydrated"
		size := ""
		if p.Hydrated() {
			state = "hydrated"
			size = humanize.Bytes(uint64(len(p.Image)))
			bytes += uint64(len(p.Image))
			hydrated++
		}
		fmt.Printf("%3d  %-14s  %-10s  %8s  %s\n", p.Position, p.ID, state, size, truncate(p.Title, 40))
		if *urls {
			fmt.Printf("     %s\n", p.RemoteURL)
		}
	}
	fmt.Printf("\n%d photos, %d hydrated (%s)\n", len(photos), hydrated, humanize.Bytes(bytes))
}

func runRefresh() {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(os.Args[1:])
	requireArgs(fs.Args(), 1, "refresh [-v] <pin>")

	cfg := loadConfig(*verbose)
	requireAPIKey(cfg)
	st := openDB(cfg)
	defer st.Close()

	ctx, cancel := signalContext()
	defer cancel()

	c := newCoordinator(ctx, cfg, st, nil)
	defer c.Wait()

	cs, err := c.RefreshPhotos(ctx, fs.Arg(0))
	if err != nil {
		log.Fatalf("refresh failed: %v", err)
	}
	fmt.Printf("Replaced collection: %d removed, %d added\n", len(cs.Deleted), len(cs.Inserted))
	if len(cs.Inserted) == 0 {
		fmt.Println("This pin has no images.")
	}
}

func runRemove() {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	fs.Parse(os.Args[1:])
	requireArgs(fs.Args(), 2, "rm <pin> <photo-id>...")

	cfg := loadConfig(false)
	st := openDB(cfg)
	defer st.Close()

	cs, err := st.DeletePhotos(fs.Arg(0), fs.Args()[1:])
	if err != nil {
		log.Fatalf("remove failed: %v", err)
	}
	fmt.Printf("Removed %d of %d photos\n", len(cs.Deleted), len(fs.Args())-1)
}

func runHydrate() {
	fs := flag.NewFlagSet("hydrate", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(os.Args[1:])
	requireArgs(fs.Args(), 1, "hydrate [-v] <pin> [photo-id...]")

	cfg := loadConfig(*verbose)
	requireAPIKey(cfg)
	st := openDB(cfg)
	defer st.Close()

	pinID := fs.Arg(0)
	ids := fs.Args()[1:]
	if len(ids) == 0 {
		photos, err := st.Photos(pinID)
		if err != nil {
			log.Fatalf("failed to list photos: %v", err)
		}
		for _, p := range photos {
			if !p.Hydrated() {
				ids = append(ids, p.ID)
			}
		}
	}
	if len(ids) == 0 {
		fmt.Println("Nothing to hydrate.")
		return
	}

	ctx, cancel := signalContext()
	defer cancel()

	bus := event.NewBus()
	defer bus.Close()
	// Progress lines may drop under load; the summary below reads the store.
	sub := bus.Watch(event.PhotoHydrated, event.PhotoFailed)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range sub.Receiver {
			photo, _ := msg.Fields[event.KeyPhoto].(string)
			if msg.Name == event.PhotoFailed {
				errText, _ := msg.Fields[event.KeyError].(string)
				fmt.Printf("  ✗ %s: %s\n", photo, errText)
				continue
			}
			size, _ := msg.Fields[event.KeySize].(int)
			fmt.Printf("  ✓ %s (%s)\n", photo, humanize.Bytes(uint64(size)))
		}
	}()

	c := newCoordinator(ctx, cfg, st, bus)
	fmt.Printf("Hydrating %d photos...\n", len(ids))
	err := c.HydrateVisible(ctx, pinID, ids)
	c.Wait()
	bus.Unsubscribe(sub)
	<-done

	total, hydrated, cerr := st.CountPhotos(pinID)
	if cerr == nil {
		fmt.Printf("%d of %d photos hydrated\n", hydrated, total)
	}
	if err != nil {
		log.Fatalf("hydrate finished with errors: %v", err)
	}
}
