package library

import (
	"fmt"
	"strings"
	"time"
)

const requestColumns = `r.id, r.media_id, r.type, r.status, r.is_4k, r.requested_by, r.modified_by,
	r.server_id, r.profile_id, r.root_folder, r.language_profile_id, r.created_at, r.updated_at`

func scanRequest(row rowScanner) (*Request, error) {
	r := &Request{}
	err := row.Scan(&r.ID, &r.MediaID, &r.Type, &r.Status, &r.Is4K, &r.RequestedBy, &r.ModifiedBy,
		&r.ServerID, &r.ProfileID, &r.RootFolder, &r.LanguageProfileID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func insertSeason(q querier, requestID int64, s *SeasonRequest, now time.Time) error {
	result, err := q.Exec(`
		INSERT INTO season_requests (request_id, season_number, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		requestID, s.SeasonNumber, s.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert season %d of request %d: %w", s.SeasonNumber, requestID, mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	s.ID = id
	s.RequestID = requestID
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

func addRequest(q querier, r *Request) error {
	if r.Type == MediaTypeMovie && len(r.Seasons) > 0 {
		return fmt.Errorf("insert request: movie request with seasons: %w", ErrConstraint)
	}
	if r.Type == MediaTypeTV && len(r.Seasons) == 0 {
		return fmt.Errorf("insert request: tv request without seasons: %w", ErrConstraint)
	}
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO media_requests (media_id, requested_by, modified_by, status, type, is_4k,
			server_id, profile_id, root_folder, language_profile_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MediaID, r.RequestedBy, r.ModifiedBy, r.Status, r.Type, r.Is4K,
		r.ServerID, r.ProfileID, r.RootFolder, r.LanguageProfileID, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	for _, s := range r.Seasons {
		if err := insertSeason(q, id, s, now); err != nil {
			return err
		}
	}
	return nil
}

// AddRequest inserts a request and its seasons atomically.
// Sets ID and timestamps on the request and every season.
func (s *Store) AddRequest(r *Request) error {
	return s.WithTx(func(tx *Tx) error { return addRequest(tx.tx, r) })
}

// AddRequest inserts a request and its seasons within a transaction.
func (t *Tx) AddRequest(r *Request) error { return addRequest(t.tx, r) }

// loadSeasons attaches season rows to the given requests.
func loadSeasons(q querier, reqs []*Request) error {
	if len(reqs) == 0 {
		return nil
	}
	byID := make(map[int64]*Request, len(reqs))
	args := make([]any, 0, len(reqs))
	for _, r := range reqs {
		r.Seasons = nil
		byID[r.ID] = r
		args = append(args, r.ID)
	}
	rows, err := q.Query(`
		SELECT id, request_id, season_number, status, created_at, updated_at
		FROM season_requests WHERE request_id IN (`+placeholders(len(args))+`)
		ORDER BY request_id, season_number`, args...)
	if err != nil {
		return fmt.Errorf("list seasons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		s := &SeasonRequest{}
		if err := rows.Scan(&s.ID, &s.RequestID, &s.SeasonNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return fmt.Errorf("scan season: %w", err)
		}
		if r, ok := byID[s.RequestID]; ok {
			r.Seasons = append(r.Seasons, s)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate seasons: %w", err)
	}
	return nil
}

func getRequest(q querier, id int64) (*Request, error) {
	r, err := scanRequest(q.QueryRow("SELECT "+requestColumns+" FROM media_requests r WHERE r.id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get request %d: %w", id, mapSQLiteError(err))
	}
	if err := loadSeasons(q, []*Request{r}); err != nil {
		return nil, fmt.Errorf("get request %d: %w", id, err)
	}
	return r, nil
}

// GetRequest retrieves a request with its seasons.
// Returns ErrNotFound if the request does not exist.
func (s *Store) GetRequest(id int64) (*Request, error) { return getRequest(s.db, id) }

// GetRequest retrieves a request with its seasons within a transaction.
func (t *Tx) GetRequest(id int64) (*Request, error) { return getRequest(t.tx, id) }

func requestWhere(f RequestFilter) (string, []any) {
	var conditions []string
	var args []any

	if len(f.Statuses) > 0 {
		conditions = append(conditions, "r.status IN ("+placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if len(f.MediaStatuses) > 0 {
		conditions = append(conditions,
			"(CASE WHEN r.is_4k THEN m.status_4k ELSE m.status END) IN ("+placeholders(len(f.MediaStatuses))+")")
		for _, s := range f.MediaStatuses {
			args = append(args, s)
		}
	}
	if f.RequestedBy != nil {
		conditions = append(conditions, "r.requested_by = ?")
		args = append(args, *f.RequestedBy)
	}
	if f.MediaID != nil {
		conditions = append(conditions, "r.media_id = ?")
		args = append(args, *f.MediaID)
	}
	if f.Type != nil {
		conditions = append(conditions, "r.type = ?")
		args = append(args, *f.Type)
	}
	if f.Is4K != nil {
		conditions = append(conditions, "r.is_4k = ?")
		args = append(args, *f.Is4K)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func listRequests(q querier, f RequestFilter) ([]*Request, int, error) {
	whereClause, args := requestWhere(f)
	from := " FROM media_requests r JOIN media m ON m.id = r.media_id "

	var total int
	if err := q.QueryRow("SELECT COUNT(*)"+from+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	order := " ORDER BY r.id DESC"
	if f.Sort == SortModified {
		order = " ORDER BY r.updated_at DESC, r.id DESC"
	}
	query := "SELECT " + requestColumns + from + whereClause + order
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan request: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate requests: %w", err)
	}
	_ = rows.Close()

	if err := loadSeasons(q, results); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// ListRequests returns requests matching the filter with pagination.
// Returns (results, totalCount, error).
func (s *Store) ListRequests(f RequestFilter) ([]*Request, int, error) { return listRequests(s.db, f) }

// ListRequests returns requests matching the filter within a transaction.
func (t *Tx) ListRequests(f RequestFilter) ([]*Request, int, error) { return listRequests(t.tx, f) }

// ListRequestsForMedia returns every request pointing at a media item, oldest first.
func (s *Store) ListRequestsForMedia(mediaID int64) ([]*Request, error) {
	return listRequestsForMedia(s.db, mediaID)
}

// ListRequestsForMedia returns every request pointing at a media item within a transaction.
func (t *Tx) ListRequestsForMedia(mediaID int64) ([]*Request, error) {
	return listRequestsForMedia(t.tx, mediaID)
}

func listRequestsForMedia(q querier, mediaID int64) ([]*Request, error) {
	rows, err := q.Query("SELECT "+requestColumns+" FROM media_requests r WHERE r.media_id = ? ORDER BY r.id", mediaID)
	if err != nil {
		return nil, fmt.Errorf("list requests of media %d: %w", mediaID, err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	_ = rows.Close()

	if err := loadSeasons(q, results); err != nil {
		return nil, err
	}
	return results, nil
}

func countRequests(q querier, f RequestFilter) (int, error) {
	whereClause, args := requestWhere(f)
	var n int
	err := q.QueryRow("SELECT COUNT(*) FROM media_requests r JOIN media m ON m.id = r.media_id "+whereClause, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return n, nil
}

// CountRequests counts requests matching the filter. Sort and pagination are ignored.
func (s *Store) CountRequests(f RequestFilter) (int, error) { return countRequests(s.db, f) }

// CountRequests counts requests matching the filter within a transaction.
func (t *Tx) CountRequests(f RequestFilter) (int, error) { return countRequests(t.tx, f) }

// syncSeasons makes the stored seasons of r match r.Seasons.
// Seasons with ID 0 are inserted; stored seasons absent from r.Seasons are deleted.
func syncSeasons(q querier, r *Request, now time.Time) error {
	keep := make(map[int64]bool, len(r.Seasons))
	for _, s := range r.Seasons {
		if s.ID != 0 {
			keep[s.ID] = true
		}
	}

	rows, err := q.Query("SELECT id FROM season_requests WHERE request_id = ?", r.ID)
	if err != nil {
		return fmt.Errorf("list seasons of request %d: %w", r.ID, err)
	}
	var stale []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan season id: %w", err)
		}
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterate seasons: %w", err)
	}
	_ = rows.Close()

	for _, id := range stale {
		if _, err := q.Exec("DELETE FROM season_requests WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete season %d: %w", id, mapSQLiteError(err))
		}
	}

	for _, s := range r.Seasons {
		if s.ID == 0 {
			if err := insertSeason(q, r.ID, s, now); err != nil {
				return err
			}
			continue
		}
		if _, err := q.Exec("UPDATE season_requests SET status = ?, updated_at = ? WHERE id = ? AND request_id = ?",
			s.Status, now, s.ID, r.ID); err != nil {
			return fmt.Errorf("update season %d: %w", s.ID, mapSQLiteError(err))
		}
		s.UpdatedAt = now
	}
	return nil
}

func updateRequest(q querier, r *Request) error {
	now := time.Now()
	result, err := q.Exec(`
		UPDATE media_requests SET media_id = ?, requested_by = ?, modified_by = ?, status = ?, type = ?, is_4k = ?,
			server_id = ?, profile_id = ?, root_folder = ?, language_profile_id = ?, updated_at = ?
		WHERE id = ?`,
		r.MediaID, r.RequestedBy, r.ModifiedBy, r.Status, r.Type, r.Is4K,
		r.ServerID, r.ProfileID, r.RootFolder, r.LanguageProfileID, now, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update request %d: %w", r.ID, mapSQLiteError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update request %d: %w", r.ID, ErrNotFound)
	}
	if r.Type == MediaTypeTV {
		if err := syncSeasons(q, r, now); err != nil {
			return err
		}
	}
	r.UpdatedAt = now
	return nil
}

// UpdateRequest writes every field of r and reconciles its season rows.
// Returns ErrNotFound if the request does not exist.
func (s *Store) UpdateRequest(r *Request) error {
	return s.WithTx(func(tx *Tx) error { return updateRequest(tx.tx, r) })
}

// UpdateRequest writes r and its seasons within a transaction.
func (t *Tx) UpdateRequest(r *Request) error { return updateRequest(t.tx, r) }

func setSeasonStatuses(q querier, requestID int64, status RequestStatus) error {
	_, err := q.Exec("UPDATE season_requests SET status = ?, updated_at = ? WHERE request_id = ?",
		status, time.Now(), requestID)
	if err != nil {
		return fmt.Errorf("set season status of request %d: %w", requestID, mapSQLiteError(err))
	}
	return nil
}

// SetSeasonStatuses sets every season of a request to status.
func (s *Store) SetSeasonStatuses(requestID int64, status RequestStatus) error {
	return setSeasonStatuses(s.db, requestID, status)
}

// SetSeasonStatuses sets every season of a request to status within a transaction.
func (t *Tx) SetSeasonStatuses(requestID int64, status RequestStatus) error {
	return setSeasonStatuses(t.tx, requestID, status)
}

func deleteRequest(q querier, id int64) error {
	if _, err := q.Exec("DELETE FROM season_requests WHERE request_id = ?", id); err != nil {
		return fmt.Errorf("delete seasons of request %d: %w", id, mapSQLiteError(err))
	}
	result, err := q.Exec("DELETE FROM media_requests WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete request %d: %w", id, mapSQLiteError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete request %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteRequest removes a request and its seasons.
// Returns ErrNotFound if the request does not exist.
func (s *Store) DeleteRequest(id int64) error {
	return s.WithTx(func(tx *Tx) error { return deleteRequest(tx.tx, id) })
}

// DeleteRequest removes a request and its seasons within a transaction.
func (t *Tx) DeleteRequest(id int64) error { return deleteRequest(t.tx, id) }
