package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Selection kinds recorded in history.
const (
	SelectionKindAudio    = "audio"
	SelectionKindSubtitle = "subtitle"
)

// SelectionRecord is one auto-selection decision.
type SelectionRecord struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	MediaTitle string    `json:"mediaTitle"`
	Kind       string    `json:"kind"`
	Source     string    `json:"source"`
	TrackID    *int      `json:"trackId,omitempty"`
	SubtitleID *string   `json:"subtitleId,omitempty"`
	Language   string    `json:"language"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateSelectionRecord appends a decision to the history log.
func (db *DB) CreateSelectionRecord(rec *SelectionRecord) error {
	res, err := db.Exec(`
		INSERT INTO selection_history (user_id, media_title, kind, source, track_id, subtitle_id, language)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.UserID, rec.MediaTitle, rec.Kind, rec.Source, rec.TrackID, rec.SubtitleID, rec.Language)
	if err != nil {
		return fmt.Errorf("failed to create selection record: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// ListSelectionHistory returns the most recent decisions, optionally filtered
// by user, newest first.
func (db *DB) ListSelectionHistory(userID string, limit, offset int) ([]*SelectionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, media_title, kind, source, track_id, subtitle_id, language, created_at
		FROM selection_history
	`
	args := []any{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list selection history: %w", err)
	}
	defer rows.Close()

	var records []*SelectionRecord
	for rows.Next() {
		rec := &SelectionRecord{}
		var trackID sql.NullInt64
		var subtitleID sql.NullString
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.MediaTitle, &rec.Kind, &rec.Source, &trackID, &subtitleID, &rec.Language, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan selection record: %w", err)
		}
		if trackID.Valid {
			v := int(trackID.Int64)
			rec.TrackID = &v
		}
		if subtitleID.Valid {
			v := subtitleID.String
			rec.SubtitleID = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PruneSelectionHistory deletes records older than the retention window.
// Returns the number of rows removed.
func (db *DB) PruneSelectionHistory(retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-retention)
	res, err := db.Exec("DELETE FROM selection_history WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune selection history: %w", err)
	}
	return res.RowsAffected()
}
