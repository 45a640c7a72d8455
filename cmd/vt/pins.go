package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/tourist/internal/geo"
)

func runPins() {
	fs := flag.NewFlagSet("pins", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*verbose)
	st := openDB(cfg)
	defer st.Close()

	pins, err := st.Pins()
	if err != nil {
		log.Fatalf("failed to list pins: %v", err)
	}
	if len(pins) == 0 {
		fmt.Println("No pins.")
		return
	}

	fmt.Printf("%-36s  %-24s  %7s  %8s  %s\n", "ID", "LOCATION", "PHOTOS", "HYDRATED", "ADDED")
	for _, p := range pins {
		total, hydrated, err := st.CountPhotos(p.ID)
		if err != nil {
			log.Fatalf("failed to count photos: %v", err)
		}
		fmt.Printf("%-36s  %-24s  %7d  %8d  %s\n", p.ID, p.Coordinates.String(), total, hydrated, humanize.Time(p.CreatedAt))
	}
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	fs.Parse(os.Args[1:])
	requireArgs(fs.Args(), 1, "add <lat,lon>")

	at, err := geo.ParseCoordinates(fs.Arg(0))
	if err != nil {
		log.Fatalf("invalid coordinates: %v", err)
	}

	cfg := loadConfig(false)
	st := openDB(cfg)
	defer st.Close()

	pin, created, err := st.AddPin(at)
	if err != nil {
		log.Fatalf("failed to add pin: %v", err)
	}
	if created {
		fmt.Printf("Added pin %s at %s\n", pin.ID, pin.Coordinates)
	} else {
		fmt.Printf("Pin %s already exists at %s\n", pin.ID, pin.Coordinates)
	}
}

func runRegion() {
	fs := flag.NewFlagSet("region", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	cfg := loadConfig(false)
	st := openDB(cfg)
	defer st.Close()

	r, ok, err := st.LoadRegion()
	if err != nil {
		log.Fatalf("failed to load region: %v", err)
	}
	if !ok {
		fmt.Println("No saved region.")
		return
	}
	fmt.Printf("Center:  %s\n", r.Center)
	fmt.Printf("Span:    %g x %g degrees\n", r.LatitudeDelta, r.LongitudeDelta)
}
