// Package ui provides the Bubble Tea TUI for Tourist.
package ui

import (
	"github.com/abelbrown/tourist/internal/coord"
	"github.com/abelbrown/tourist/internal/geo"
	"github.com/abelbrown/tourist/internal/store"
)

// PinsLoaded is sent when pins and the saved region are read from the store.
type PinsLoaded struct {
	Pins      []store.Pin
	Region    geo.Region
	HasRegion bool
	Err       error
}

// PinAdded is sent after an add-pin request commits.
type PinAdded struct {
	Pin     store.Pin
	Created bool
	Err     error
}

// PinDeleted is sent after a pin and its photos are removed.
type PinDeleted struct {
	ID  string
	Err error
}

// AlbumLoaded is sent when a pin's photos are available, either from the
// store or after a fresh search.
type AlbumLoaded struct {
	PinID  string
	Photos []store.Photo
	Err    error
}

// PhotosRemoved is sent after a selective delete commits.
type PhotosRemoved struct {
	PinID string
	IDs   []string
	Err   error
}

// ImageStates reports the states returned by image requests.
type ImageStates struct {
	PinID  string
	States map[string]coord.State
}

// PhotoHydrated is sent when a photo's bytes have been stored.
type PhotoHydrated struct {
	PinID   string
	PhotoID string
	Size    int
}

// PhotoFailed is sent when a photo's fetch failed.
type PhotoFailed struct {
	PinID   string
	PhotoID string
	Err     string
}

// AlbumEmpty is sent when a search for a pin found nothing.
type AlbumEmpty struct {
	PinID string
}

// Notice is a dismissible message for the user.
type Notice struct {
	Text  string
	Error bool
}

// RegionSaved is sent after the region has been written.
type RegionSaved struct {
	Err error
}
