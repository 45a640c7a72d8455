package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Photo is one search hit persisted under its pin. Image stays nil until
// the bytes have been fetched.
type Photo struct {
	PinID      string
	ID         string
	Title      string
	RemoteURL  string
	Image      []byte
	Position   int
	HydratedAt time.Time
}

// Hydrated reports whether the image bytes are present.
func (p Photo) Hydrated() bool {
	return len(p.Image) > 0
}

const photoColumns = "pin_id, photo_id, title, remote_url, image, position, hydrated_at"

// ReplacePhotos swaps the pin's whole photo set for photos in one
// transaction. Order is kept as Position; a repeated ID keeps its first
// occurrence. On any error the previous set is untouched.
// Thread-safe: acquires write lock.
func (s *Store) ReplacePhotos(pinID string, photos []Photo) (ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := ChangeSet{PinID: pinID, Inserted: []string{}}
	err := s.withTx(func(tx *sql.Tx) error {
		if err := pinExists(tx, pinID); err != nil {
			return err
		}

		old, err := photoIDs(tx, pinID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM photos WHERE pin_id = ?", pinID); err != nil {
			return fmt.Errorf("delete photos: %w", err)
		}
		cs.Deleted = old

		stmt, err := tx.Prepare(`INSERT INTO photos (pin_id, photo_id, title, remote_url, position)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		seen := make(map[string]bool, len(photos))
		for _, p := range photos {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			if _, err := stmt.Exec(pinID, p.ID, p.Title, p.RemoteURL, len(cs.Inserted)); err != nil {
				return fmt.Errorf("insert photo %s: %w", p.ID, err)
			}
			cs.Inserted = append(cs.Inserted, p.ID)
		}
		return nil
	})
	if err != nil {
		return ChangeSet{}, persistErr("replace photos", err)
	}
	return cs, nil
}

// Photos returns the pin's photos in search order.
// Thread-safe: acquires read lock.
func (s *Store) Photos(pinID string) ([]Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT "+photoColumns+" FROM photos WHERE pin_id = ? ORDER BY position", pinID,
	)
	if err != nil {
		return nil, persistErr("list photos", err)
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, persistErr("scan photo", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list photos", err)
	}
	return photos, nil
}

// Photo returns a single photo.
// Thread-safe: acquires read lock.
func (s *Store) Photo(pinID, photoID string) (Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPhoto(s.db.QueryRow(
		"SELECT "+photoColumns+" FROM photos WHERE pin_id = ? AND photo_id = ?", pinID, photoID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Photo{}, ErrNotFound
	}
	return p, persistErr("get photo", err)
}

// CountPhotos returns how many photos the pin has and how many are hydrated.
// Thread-safe: acquires read lock.
func (s *Store) CountPhotos(pinID string) (total, hydrated int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRow(
		"SELECT COUNT(*), COUNT(image) FROM photos WHERE pin_id = ?", pinID,
	).Scan(&total, &hydrated)
	return total, hydrated, persistErr("count photos", err)
}

// DeletePhotos removes exactly the listed photos of a pin in one
// transaction. IDs that are not stored are ignored.
// Thread-safe: acquires write lock.
func (s *Store) DeletePhotos(pinID string, ids []string) (ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := ChangeSet{PinID: pinID, Deleted: []string{}}
	if len(ids) == 0 {
		return cs, nil
	}

	err := s.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("DELETE FROM photos WHERE pin_id = ? AND photo_id = ?")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, id := range ids {
			res, err := stmt.Exec(pinID, id)
			if err != nil {
				return fmt.Errorf("delete photo %s: %w", id, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				cs.Deleted = append(cs.Deleted, id)
			}
		}
		return nil
	})
	if err != nil {
		return ChangeSet{}, persistErr("delete photos", err)
	}
	return cs, nil
}

// AttachImage stores fetched bytes on a photo. The write only lands if the
// photo still exists with the same remote URL and no bytes yet; a photo that
// was replaced or deleted while the fetch ran yields ErrNotFound and the
// bytes are dropped. Attaching to an already hydrated photo is a no-op.
// Thread-safe: acquires write lock.
func (s *Store) AttachImage(pinID, photoID, remoteURL string, image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("store: refusing to attach empty image to %s/%s", pinID, photoID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE photos SET image = ?, hydrated_at = ?
		WHERE pin_id = ? AND photo_id = ? AND remote_url = ? AND image IS NULL`,
		image, time.Now().UTC(), pinID, photoID, remoteURL,
	)
	if err != nil {
		return persistErr("attach image", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var one int
	err = s.db.QueryRow(`
		SELECT 1 FROM photos
		WHERE pin_id = ? AND photo_id = ? AND remote_url = ? AND image IS NOT NULL`,
		pinID, photoID, remoteURL,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return persistErr("attach image", err)
}

// photoIDs lists a pin's photo ids in position order inside tx.
func photoIDs(tx *sql.Tx, pinID string) ([]string, error) {
	rows, err := tx.Query("SELECT photo_id FROM photos WHERE pin_id = ? ORDER BY position", pinID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row scanner) (Photo, error) {
	var p Photo
	var hydratedAt sql.NullTime
	err := row.Scan(&p.PinID, &p.ID, &p.Title, &p.RemoteURL, &p.Image, &p.Position, &hydratedAt)
	if err != nil {
		return Photo{}, err
	}
	if hydratedAt.Valid {
		p.HydratedAt = hydratedAt.Time
	}
	return p, nil
}

