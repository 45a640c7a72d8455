package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/tourist/internal/geo"
)

// Pin is a user-dropped location. Coordinates never change after creation.
type Pin struct {
	ID          string
	Coordinates geo.Coordinates
	CreatedAt   time.Time
}

// AddPin stores a pin at c, or returns the existing pin within geo.Tolerance
// of c with created == false.
// Thread-safe: acquires write lock.
func (s *Store) AddPin(c geo.Coordinates) (Pin, bool, error) {
	if !c.Valid() {
		return Pin{}, false, fmt.Errorf("store: invalid coordinates %v", c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findPin(c)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Pin{}, false, persistErr("find pin", err)
	}

	p := Pin{
		ID:          uuid.NewString(),
		Coordinates: c,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.Exec(
		"INSERT INTO pins (id, latitude, longitude, created_at) VALUES (?, ?, ?, ?)",
		p.ID, c.Latitude, c.Longitude, p.CreatedAt,
	)
	if err != nil {
		return Pin{}, false, persistErr("insert pin", err)
	}
	return p, true, nil
}

// Pins returns every pin, oldest first.
// Thread-safe: acquires read lock.
func (s *Store) Pins() ([]Pin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, latitude, longitude, created_at FROM pins ORDER BY created_at, id")
	if err != nil {
		return nil, persistErr("list pins", err)
	}
	defer rows.Close()

	var pins []Pin
	for rows.Next() {
		var p Pin
		if err := rows.Scan(&p.ID, &p.Coordinates.Latitude, &p.Coordinates.Longitude, &p.CreatedAt); err != nil {
			return nil, persistErr("scan pin", err)
		}
		pins = append(pins, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list pins", err)
	}
	return pins, nil
}

// Pin returns the pin with the given id.
// Thread-safe: acquires read lock.
func (s *Store) Pin(id string) (Pin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPin(s.db.QueryRow(
		"SELECT id, latitude, longitude, created_at FROM pins WHERE id = ?", id,
	))
	return p, persistErr("get pin", err)
}

// FindPin returns the pin within geo.Tolerance of c.
// Thread-safe: acquires read lock.
func (s *Store) FindPin(c geo.Coordinates) (Pin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.findPin(c)
	return p, persistErr("find pin", err)
}

// findPin matches c against the tolerance band. The closest pin wins when
// bands overlap. Caller must hold s.mu.
func (s *Store) findPin(c geo.Coordinates) (Pin, error) {
	minLat, maxLat, minLon, maxLon := c.Bounds()
	rows, err := s.db.Query(`
		SELECT id, latitude, longitude, created_at FROM pins
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`,
		minLat, maxLat, minLon, maxLon,
	)
	if err != nil {
		return Pin{}, err
	}
	defer rows.Close()

	var best Pin
	found := false
	for rows.Next() {
		var p Pin
		if err := rows.Scan(&p.ID, &p.Coordinates.Latitude, &p.Coordinates.Longitude, &p.CreatedAt); err != nil {
			return Pin{}, err
		}
		if !c.Near(p.Coordinates) {
			continue
		}
		if !found || c.Distance(p.Coordinates) < c.Distance(best.Coordinates) {
			best, found = p, true
		}
	}
	if err := rows.Err(); err != nil {
		return Pin{}, err
	}
	if !found {
		return Pin{}, ErrNotFound
	}
	return best, nil
}

// DeletePin removes a pin and every photo it owns in one transaction.
// Thread-safe: acquires write lock.
func (s *Store) DeletePin(id string) (ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := ChangeSet{PinID: id}
	err := s.withTx(func(tx *sql.Tx) error {
		if err := pinExists(tx, id); err != nil {
			return err
		}
		ids, err := photoIDs(tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM photos WHERE pin_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM pins WHERE id = ?", id); err != nil {
			return err
		}
		cs.Deleted = ids
		return nil
	})
	if err != nil {
		return ChangeSet{}, persistErr("delete pin", err)
	}
	return cs, nil
}

func scanPin(row *sql.Row) (Pin, error) {
	var p Pin
	err := row.Scan(&p.ID, &p.Coordinates.Latitude, &p.Coordinates.Longitude, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Pin{}, ErrNotFound
	}
	return p, err
}

func pinExists(tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRow("SELECT 1 FROM pins WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
