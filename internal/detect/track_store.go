package detect

import (
	"database/sql"
	"fmt"
	"time"
)

// Session describes one tracking run and the configuration it ran under.
type Session struct {
	ID                  string
	StartedUnixNanos    int64
	EndedUnixNanos      int64 // 0 while the session is open
	ConfidenceThreshold float64
	IoUThreshold        float64
	MaxDetections       int
	ProcessEveryN       int
	SpeedUnits          string
	MetersPerPixel      float64
}

// TrackRow is the per-identity aggregate persisted for a session.
type TrackRow struct {
	SessionID        string
	Identity         int64
	Class            string
	FirstUnixNanos   int64
	LastUnixNanos    int64
	ObservationCount int64
	PeakSpeedPxS     float64
	AvgSpeedPxS      float64
}

// ObservationRow is a single per-frame sighting of a tracked identity.
type ObservationRow struct {
	SessionID   string
	Identity    int64
	TSUnixNanos int64
	CX          float64
	CY          float64
	SpeedPxS    float64
	Confidence  float64
	Box         BBox
}

// InsertSession records the start of a tracking session.
func InsertSession(db *sql.DB, s *Session) error {
	query := `
		INSERT INTO sessions (
			session_id, started_unix_nanos,
			confidence_threshold, iou_threshold, max_detections,
			process_every_n, speed_units, meters_per_pixel
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		s.ID,
		s.StartedUnixNanos,
		s.ConfidenceThreshold,
		s.IoUThreshold,
		s.MaxDetections,
		s.ProcessEveryN,
		s.SpeedUnits,
		s.MetersPerPixel,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// CloseSession stamps the session's end time.
func CloseSession(db *sql.DB, sessionID string, endedUnixNanos int64) error {
	_, err := db.Exec(
		`UPDATE sessions SET ended_unix_nanos = ? WHERE session_id = ?`,
		endedUnixNanos, sessionID,
	)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// UpsertTrack inserts or refreshes a track aggregate.
func UpsertTrack(db *sql.DB, row *TrackRow) error {
	// ON CONFLICT DO UPDATE avoids the cascade delete on track_obs that
	// INSERT OR REPLACE would trigger by deleting the row first.
	query := `
		INSERT INTO tracks (
			session_id, identity, class,
			first_unix_nanos, last_unix_nanos, observation_count,
			peak_speed_px_s, avg_speed_px_s
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, identity) DO UPDATE SET
			class = excluded.class,
			first_unix_nanos = excluded.first_unix_nanos,
			last_unix_nanos = excluded.last_unix_nanos,
			observation_count = excluded.observation_count,
			peak_speed_px_s = excluded.peak_speed_px_s,
			avg_speed_px_s = excluded.avg_speed_px_s
	`

	_, err := db.Exec(query,
		row.SessionID,
		row.Identity,
		row.Class,
		row.FirstUnixNanos,
		row.LastUnixNanos,
		row.ObservationCount,
		row.PeakSpeedPxS,
		row.AvgSpeedPxS,
	)
	if err != nil {
		return fmt.Errorf("upsert track: %w", err)
	}

	return nil
}

// InsertObservation records one per-frame sighting.
func InsertObservation(db *sql.DB, obs *ObservationRow) error {
	query := `
		INSERT OR REPLACE INTO track_obs (
			session_id, identity, ts_unix_nanos,
			cx, cy, speed_px_s, confidence,
			x1, y1, x2, y2
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		obs.SessionID,
		obs.Identity,
		obs.TSUnixNanos,
		obs.CX, obs.CY, obs.SpeedPxS, obs.Confidence,
		obs.Box.X1, obs.Box.Y1, obs.Box.X2, obs.Box.Y2,
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}

	return nil
}

// GetSession fetches one session by ID.
func GetSession(db *sql.DB, sessionID string) (*Session, error) {
	s := &Session{}
	var ended sql.NullInt64

	err := db.QueryRow(`
		SELECT session_id, started_unix_nanos, ended_unix_nanos,
			confidence_threshold, iou_threshold, max_detections,
			process_every_n, speed_units, meters_per_pixel
		FROM sessions
		WHERE session_id = ?
	`, sessionID).Scan(
		&s.ID,
		&s.StartedUnixNanos,
		&ended,
		&s.ConfidenceThreshold,
		&s.IoUThreshold,
		&s.MaxDetections,
		&s.ProcessEveryN,
		&s.SpeedUnits,
		&s.MetersPerPixel,
	)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if ended.Valid {
		s.EndedUnixNanos = ended.Int64
	}

	return s, nil
}

// RecentSessions returns sessions newest-first.
func RecentSessions(db *sql.DB, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT session_id, started_unix_nanos, ended_unix_nanos,
			confidence_threshold, iou_threshold, max_detections,
			process_every_n, speed_units, meters_per_pixel
		FROM sessions
		ORDER BY started_unix_nanos DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s := &Session{}
		var ended sql.NullInt64
		if err := rows.Scan(
			&s.ID,
			&s.StartedUnixNanos,
			&ended,
			&s.ConfidenceThreshold,
			&s.IoUThreshold,
			&s.MaxDetections,
			&s.ProcessEveryN,
			&s.SpeedUnits,
			&s.MetersPerPixel,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if ended.Valid {
			s.EndedUnixNanos = ended.Int64
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// SessionTracks returns a session's track aggregates, longest-lived first.
func SessionTracks(db *sql.DB, sessionID string) ([]*TrackRow, error) {
	rows, err := db.Query(`
		SELECT session_id, identity, class,
			first_unix_nanos, last_unix_nanos, observation_count,
			peak_speed_px_s, avg_speed_px_s
		FROM tracks
		WHERE session_id = ?
		ORDER BY (last_unix_nanos - first_unix_nanos) DESC, identity ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*TrackRow
	for rows.Next() {
		row := &TrackRow{}
		if err := rows.Scan(
			&row.SessionID,
			&row.Identity,
			&row.Class,
			&row.FirstUnixNanos,
			&row.LastUnixNanos,
			&row.ObservationCount,
			&row.PeakSpeedPxS,
			&row.AvgSpeedPxS,
		); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}

	return tracks, nil
}

// TrackObservations returns one identity's sightings in time order.
func TrackObservations(db *sql.DB, sessionID string, identity int64, limit int) ([]*ObservationRow, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := db.Query(`
		SELECT session_id, identity, ts_unix_nanos,
			cx, cy, speed_px_s, confidence,
			x1, y1, x2, y2
		FROM track_obs
		WHERE session_id = ? AND identity = ?
		ORDER BY ts_unix_nanos ASC
		LIMIT ?
	`, sessionID, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var observations []*ObservationRow
	for rows.Next() {
		obs := &ObservationRow{}
		if err := rows.Scan(
			&obs.SessionID,
			&obs.Identity,
			&obs.TSUnixNanos,
			&obs.CX, &obs.CY, &obs.SpeedPxS, &obs.Confidence,
			&obs.Box.X1, &obs.Box.Y1, &obs.Box.X2, &obs.Box.Y2,
		); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		observations = append(observations, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	return observations, nil
}

// SessionSpeeds returns every observed nonzero speed in a session, in time
// order. Zero speeds are skipped: they mark first sightings and frames
// with no timing, not stationary objects.
func SessionSpeeds(db *sql.DB, sessionID string) ([]float64, error) {
	rows, err := db.Query(`
		SELECT speed_px_s
		FROM track_obs
		WHERE session_id = ? AND speed_px_s > 0
		ORDER BY ts_unix_nanos ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query speeds: %w", err)
	}
	defer rows.Close()

	var speeds []float64
	for rows.Next() {
		var speed float64
		if err := rows.Scan(&speed); err != nil {
			return nil, fmt.Errorf("scan speed: %w", err)
		}
		speeds = append(speeds, speed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate speeds: %w", err)
	}

	return speeds, nil
}

// ActivityBucket counts one class's observations within a time bucket.
type ActivityBucket struct {
	BucketUnixNanos int64
	Class           string
	Count           int64
}

// SessionActivity aggregates a session's observations into fixed time
// buckets per class, ordered by bucket then class. A non-positive bucket
// falls back to one minute.
func SessionActivity(db *sql.DB, sessionID string, bucket time.Duration) ([]*ActivityBucket, error) {
	if bucket <= 0 {
		bucket = time.Minute
	}
	bucketNanos := bucket.Nanoseconds()

	rows, err := db.Query(`
		SELECT (o.ts_unix_nanos / ?) * ? AS bucket_start, t.class, COUNT(*)
		FROM track_obs o
		JOIN tracks t ON t.session_id = o.session_id AND t.identity = o.identity
		WHERE o.session_id = ?
		GROUP BY bucket_start, t.class
		ORDER BY bucket_start ASC, t.class ASC
	`, bucketNanos, bucketNanos, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var buckets []*ActivityBucket
	for rows.Next() {
		b := &ActivityBucket{}
		if err := rows.Scan(&b.BucketUnixNanos, &b.Class, &b.Count); err != nil {
			return nil, fmt.Errorf("scan activity bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity buckets: %w", err)
	}

	return buckets, nil
}

// PruneSessions deletes all but the newest keep sessions, cascading to
// their tracks and observations. Returns the number of sessions removed.
func PruneSessions(db *sql.DB, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := db.Exec(`
		DELETE FROM sessions
		WHERE session_id NOT IN (
			SELECT session_id FROM sessions
			ORDER BY started_unix_nanos DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune sessions rows affected: %w", err)
	}

	return removed, nil
}
