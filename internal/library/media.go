package library

import (
	"fmt"
	"time"
)

const mediaColumns = `id, media_type, tmdb_id, tvdb_id,
	status, service_id, external_service_id, external_service_slug,
	status_4k, service_id_4k, external_service_id_4k, external_service_slug_4k,
	created_at, updated_at`

func scanMedia(row rowScanner) (*Media, error) {
	m := &Media{}
	err := row.Scan(&m.ID, &m.Type, &m.TMDBID, &m.TVDBID,
		&m.Standard.Status, &m.Standard.ServiceID, &m.Standard.ExternalServiceID, &m.Standard.ExternalServiceSlug,
		&m.FourK.Status, &m.FourK.ServiceID, &m.FourK.ExternalServiceID, &m.FourK.ExternalServiceSlug,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func addMedia(q querier, m *Media) error {
	if m.Standard.Status == "" {
		m.Standard.Status = MediaStatusUnknown
	}
	if m.FourK.Status == "" {
		m.FourK.Status = MediaStatusUnknown
	}
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO media (media_type, tmdb_id, tvdb_id,
			status, service_id, external_service_id, external_service_slug,
			status_4k, service_id_4k, external_service_id_4k, external_service_slug_4k,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Type, m.TMDBID, m.TVDBID,
		m.Standard.Status, m.Standard.ServiceID, m.Standard.ExternalServiceID, m.Standard.ExternalServiceSlug,
		m.FourK.Status, m.FourK.ServiceID, m.FourK.ExternalServiceID, m.FourK.ExternalServiceSlug,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("insert media: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// AddMedia inserts a new media item. Sets ID, CreatedAt and UpdatedAt.
// Unset variant statuses default to unknown.
func (s *Store) AddMedia(m *Media) error { return addMedia(s.db, m) }

// AddMedia inserts a new media item within a transaction.
func (t *Tx) AddMedia(m *Media) error { return addMedia(t.tx, m) }

func getMedia(q querier, id int64) (*Media, error) {
	m, err := scanMedia(q.QueryRow("SELECT "+mediaColumns+" FROM media WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get media %d: %w", id, mapSQLiteError(err))
	}
	return m, nil
}

// GetMedia retrieves a media item by ID.
// Returns ErrNotFound if the media does not exist.
func (s *Store) GetMedia(id int64) (*Media, error) { return getMedia(s.db, id) }

// GetMedia retrieves a media item by ID within a transaction.
func (t *Tx) GetMedia(id int64) (*Media, error) { return getMedia(t.tx, id) }

func getMediaByTMDB(q querier, typ MediaType, tmdbID int64) (*Media, error) {
	m, err := scanMedia(q.QueryRow("SELECT "+mediaColumns+" FROM media WHERE media_type = ? AND tmdb_id = ?", typ, tmdbID))
	if err != nil {
		return nil, fmt.Errorf("get %s media tmdb:%d: %w", typ, tmdbID, mapSQLiteError(err))
	}
	return m, nil
}

// GetMediaByTMDB finds a media item by type and TMDB id.
// Returns ErrNotFound if no such media exists.
func (s *Store) GetMediaByTMDB(typ MediaType, tmdbID int64) (*Media, error) {
	return getMediaByTMDB(s.db, typ, tmdbID)
}

// GetMediaByTMDB finds a media item by type and TMDB id within a transaction.
func (t *Tx) GetMediaByTMDB(typ MediaType, tmdbID int64) (*Media, error) {
	return getMediaByTMDB(t.tx, typ, tmdbID)
}

func updateMedia(q querier, m *Media) error {
	now := time.Now()
	result, err := q.Exec(`
		UPDATE media SET media_type = ?, tmdb_id = ?, tvdb_id = ?,
			status = ?, service_id = ?, external_service_id = ?, external_service_slug = ?,
			status_4k = ?, service_id_4k = ?, external_service_id_4k = ?, external_service_slug_4k = ?,
			updated_at = ?
		WHERE id = ?`,
		m.Type, m.TMDBID, m.TVDBID,
		m.Standard.Status, m.Standard.ServiceID, m.Standard.ExternalServiceID, m.Standard.ExternalServiceSlug,
		m.FourK.Status, m.FourK.ServiceID, m.FourK.ExternalServiceID, m.FourK.ExternalServiceSlug,
		now, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update media %d: %w", m.ID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update media %d: %w", m.ID, ErrNotFound)
	}
	m.UpdatedAt = now
	return nil
}

// UpdateMedia writes every field of m. Sets UpdatedAt.
// Returns ErrNotFound if the media does not exist.
func (s *Store) UpdateMedia(m *Media) error { return updateMedia(s.db, m) }

// UpdateMedia writes every field of m within a transaction.
func (t *Tx) UpdateMedia(m *Media) error { return updateMedia(t.tx, m) }

func deleteMedia(q querier, id int64) error {
	if _, err := q.Exec(`
		DELETE FROM season_requests
		WHERE request_id IN (SELECT id FROM media_requests WHERE media_id = ?)`, id); err != nil {
		return fmt.Errorf("delete seasons of media %d: %w", id, mapSQLiteError(err))
	}
	if _, err := q.Exec("DELETE FROM media_requests WHERE media_id = ?", id); err != nil {
		return fmt.Errorf("delete requests of media %d: %w", id, mapSQLiteError(err))
	}
	if _, err := q.Exec("DELETE FROM media WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete media %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

// DeleteMedia removes a media item together with its requests and their seasons.
// Idempotent.
func (s *Store) DeleteMedia(id int64) error {
	return s.WithTx(func(tx *Tx) error { return deleteMedia(tx.tx, id) })
}

// DeleteMedia removes a media item and everything it owns within a transaction.
func (t *Tx) DeleteMedia(id int64) error { return deleteMedia(t.tx, id) }
