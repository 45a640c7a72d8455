// Command vt inspects and maintains the tourist photo cache from the shell.
//
// Usage:
//
//	vt                      Show help
//	vt pins                 List pins with photo counts
//	vt add <lat,lon>        Drop a pin (reuses a pin at the same spot)
//	vt refresh <pin>        Replace a pin's photos with a fresh search
//	vt photos <pin>         List a pin's photos and hydration state
//	vt hydrate <pin> [ids]  Download images for a pin
//	vt rm <pin> <ids...>    Remove photos from a pin
//	vt region               Show the saved map region
//	vt config [-init]       Show the effective config or write a default one
package main

import (
	"fmt"
	"os"
)

const usage = `vt - tourist cache CLI

Usage:
  vt <command> [flags]

Commands:
  pins        List pins with photo counts
  add         Drop a pin at "lat,lon"
  refresh     Replace a pin's photos with a fresh search (requires FLICKR_API_KEY)
  photos      List a pin's photos and hydration state
  hydrate     Download images for a pin (requires FLICKR_API_KEY)
  rm          Remove photos from a pin
  region      Show the saved map region
  config      Show the effective config (-init writes a default file)

Environment:
  FLICKR_API_KEY    Flickr API key (required for refresh, hydrate)
  TOURIST_DB_PATH   Database path (default: ~/.tourist/tourist.db)

Run 'vt <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "pins":
		runPins()
	case "add":
		runAdd()
	case "refresh":
		runRefresh()
	case "photos":
		runPhotos()
	case "hydrate":
		runHydrate()
	case "rm":
		runRemove()
	case "region":
		runRegion()
	case "config":
		runConfig()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "vt: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
