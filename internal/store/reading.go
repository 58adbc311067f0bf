package store

import (
	"database/sql"
	"encoding/json"
	"image"
	"time"
)

// Reading is a stored per-frame finger count.
type Reading struct {
	ID           int64         `json:"id"`
	SessionID    string        `json:"session_id"`
	Seq          int64         `json:"seq"`
	Count        int           `json:"count"`
	ContourArea  float64       `json:"contour_area"`
	HullVertices int           `json:"hull_vertices"`
	Defects      int           `json:"defects"`
	Valleys      []image.Point `json:"valleys"`
	CapturedAt   time.Time     `json:"captured_at"`
}

// ReadingRepository provides access to stored readings.
type ReadingRepository struct {
	db *sql.DB
}

// Readings returns the reading repository for this store.
func (s *Store) Readings() *ReadingRepository {
	return &ReadingRepository{db: s.db}
}

// Create inserts readings in a single transaction.
func (r *ReadingRepository) Create(readings []Reading) error {
	if len(readings) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO readings (session_id, seq, count, contour_area, hull_vertices, defects, valleys, captured_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range readings {
		rd := &readings[i]

		valleys := rd.Valleys
		if valleys == nil {
			valleys = []image.Point{}
		}
		data, err := json.Marshal(valleys)
		if err != nil {
			return err
		}

		if _, err := stmt.Exec(rd.SessionID, rd.Seq, rd.Count, rd.ContourArea, rd.HullVertices, rd.Defects, string(data), rd.CapturedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession returns the readings of a session in frame order, starting
// after seq since. A limit of 0 or less returns all of them.
func (r *ReadingRepository) ListBySession(sessionID string, since int64, limit int) ([]Reading, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, seq, count, contour_area, hull_vertices, defects, valleys, captured_at
		 FROM readings
		 WHERE session_id = ? AND seq > ?
		 ORDER BY seq
		 LIMIT ?`,
		sessionID, since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var rd Reading
		var data string
		if err := rows.Scan(&rd.ID, &rd.SessionID, &rd.Seq, &rd.Count, &rd.ContourArea, &rd.HullVertices, &rd.Defects, &data, &rd.CapturedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &rd.Valleys); err != nil {
			return nil, err
		}
		readings = append(readings, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return readings, nil
}

// Histogram returns how many frames of a session reported each count.
func (r *ReadingRepository) Histogram(sessionID string) (map[int]int, error) {
	rows, err := r.db.Query(
		`SELECT count, COUNT(*) FROM readings WHERE session_id = ? GROUP BY count`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	histogram := make(map[int]int)
	for rows.Next() {
		var count, frames int
		if err := rows.Scan(&count, &frames); err != nil {
			return nil, err
		}
		histogram[count] = frames
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return histogram, nil
}

// DeleteBySession removes all readings of a session.
func (r *ReadingRepository) DeleteBySession(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM readings WHERE session_id = ?`, sessionID)
	return err
}
