// Package geo holds the coordinate and map-region types shared by the store,
// the search client, and the UI.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tolerance is the half-width of the band, in degrees, inside which two
// coordinates name the same pin. Gesture events at "the same" point rarely
// land on bit-identical floats.
const Tolerance = 0.0001

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether c is finite and inside the WGS84 range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Near reports whether o lies within Tolerance of c on both axes.
func (c Coordinates) Near(o Coordinates) bool {
	return math.Abs(c.Latitude-o.Latitude) <= Tolerance &&
		math.Abs(c.Longitude-o.Longitude) <= Tolerance
}

// Bounds returns the tolerance band around c as (minLat, maxLat, minLon, maxLon).
func (c Coordinates) Bounds() (float64, float64, float64, float64) {
	return c.Latitude - Tolerance, c.Latitude + Tolerance,
		c.Longitude - Tolerance, c.Longitude + Tolerance
}

// Distance returns a cheap squared-degree distance, good enough to pick the
// nearest of a handful of pins.
func (c Coordinates) Distance(o Coordinates) float64 {
	dLat := c.Latitude - o.Latitude
	dLon := c.Longitude - o.Longitude
	return dLat*dLat + dLon*dLon
}

// ParseCoordinates reads "lat,lon" or "lat lon".
func ParseCoordinates(s string) (Coordinates, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 2 {
		return Coordinates{}, fmt.Errorf("expected \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("longitude: %w", err)
	}
	c := Coordinates{Latitude: lat, Longitude: lon}
	if !c.Valid() {
		return Coordinates{}, fmt.Errorf("coordinates out of range: %v", c)
	}
	return c, nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// Region is a visible map area: a center and a span in degrees.
type Region struct {
	Center         Coordinates `json:"center"`
	LatitudeDelta  float64     `json:"latitude_delta"`
	LongitudeDelta float64     `json:"longitude_delta"`
}

// IsZero reports whether r was never set.
func (r Region) IsZero() bool {
	return r == Region{}
}

// Focus returns the region an album opens on: centered on c, keeping the
// longitude span and narrowing the latitude span to a third.
func (r Region) Focus(c Coordinates) Region {
	return Region{
		Center:         c,
		LatitudeDelta:  r.LatitudeDelta / 3,
		LongitudeDelta: r.LongitudeDelta,
	}
}
