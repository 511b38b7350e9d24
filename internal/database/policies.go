package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/selectarr/selectarr/internal/tracks"
)

// Policy is a persisted per-user selection policy row.
type Policy struct {
	UserID            string                  `json:"userId"`
	PreferredLanguage string                  `json:"preferredLanguage"`
	SubtitleSource    tracks.SourcePreference `json:"subtitleSource"`
	AutoSelect        bool                    `json:"autoSelect"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

// SelectionPolicy converts the row to the engine's policy value.
func (p *Policy) SelectionPolicy() tracks.SelectionPolicy {
	return tracks.SelectionPolicy{
		PreferredLanguage: p.PreferredLanguage,
		SubtitleSource:    p.SubtitleSource,
		AutoSelect:        p.AutoSelect,
	}
}

// DefaultPolicy returns the policy used when a user has never saved one.
func DefaultPolicy(userID string) *Policy {
	return &Policy{
		UserID:         userID,
		SubtitleSource: tracks.SourceAny,
		AutoSelect:     false,
	}
}

// GetPolicy retrieves the selection policy for a user, or nil when none is stored.
func (db *DB) GetPolicy(userID string) (*Policy, error) {
	p := &Policy{}
	err := db.QueryRow(`
		SELECT user_id, preferred_language, subtitle_source, auto_select, updated_at
		FROM policies WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.PreferredLanguage, &p.SubtitleSource, &p.AutoSelect, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy for %s: %w", userID, err)
	}
	return p, nil
}

// UpsertPolicy stores the selection policy for a user.
func (db *DB) UpsertPolicy(p *Policy) error {
	if !p.SubtitleSource.Valid() {
		return fmt.Errorf("invalid subtitle source %q", p.SubtitleSource)
	}
	_, err := db.Exec(`
		INSERT INTO policies (user_id, preferred_language, subtitle_source, auto_select, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			preferred_language = excluded.preferred_language,
			subtitle_source = excluded.subtitle_source,
			auto_select = excluded.auto_select,
			updated_at = excluded.updated_at
	`, p.UserID, p.PreferredLanguage, string(p.SubtitleSource), p.AutoSelect, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert policy for %s: %w", p.UserID, err)
	}
	return nil
}

// DeletePolicy removes the stored policy for a user.
func (db *DB) DeletePolicy(userID string) error {
	_, err := db.Exec("DELETE FROM policies WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete policy for %s: %w", userID, err)
	}
	return nil
}

// ListPolicies returns all stored policies ordered by user.
func (db *DB) ListPolicies() ([]*Policy, error) {
	rows, err := db.Query(`
		SELECT user_id, preferred_language, subtitle_source, auto_select, updated_at
		FROM policies ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var policies []*Policy
	for rows.Next() {
		p := &Policy{}
		if err := rows.Scan(&p.UserID, &p.PreferredLanguage, &p.SubtitleSource, &p.AutoSelect, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}
