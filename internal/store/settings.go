package store

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/abelbrown/tourist/internal/geo"
)

// Region setting keys.
const (
	keyLatitude       = "latitude"
	keyLongitude      = "longitude"
	keyLatitudeDelta  = "latitudeDelta"
	keyLongitudeDelta = "longitudeDelta"
)

// setSetting upserts one scalar value inside tx.
func setSetting(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// Setting returns the value stored under key, or ErrNotFound.
// Thread-safe: acquires read lock.
func (s *Store) Setting(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, persistErr("get setting", err)
}

// SaveRegion persists the last viewed region as four settings in one
// transaction.
// Thread-safe: acquires write lock.
func (s *Store) SaveRegion(r geo.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := map[string]float64{
		keyLatitude:       r.Center.Latitude,
		keyLongitude:      r.Center.Longitude,
		keyLatitudeDelta:  r.LatitudeDelta,
		keyLongitudeDelta: r.LongitudeDelta,
	}
	err := s.withTx(func(tx *sql.Tx) error {
		for k, v := range values {
			if err := setSetting(tx, k, strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
				return err
			}
		}
		return nil
	})
	return persistErr("save region", err)
}

// LoadRegion returns the saved region. ok is false when none was saved or
// a value is unreadable.
// Thread-safe: acquires read lock.
func (s *Store) LoadRegion() (r geo.Region, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := map[string]*float64{
		keyLatitude:       &r.Center.Latitude,
		keyLongitude:      &r.Center.Longitude,
		keyLatitudeDelta:  &r.LatitudeDelta,
		keyLongitudeDelta: &r.LongitudeDelta,
	}
	for k, dst := range targets {
		var raw string
		err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", k).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			return geo.Region{}, false, nil
		}
		if err != nil {
			return geo.Region{}, false, persistErr("load region", err)
		}
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return geo.Region{}, false, nil
		}
		*dst = v
	}
	if !r.Center.Valid() {
		return geo.Region{}, false, nil
	}
	return r, true, nil
}
