package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Device is a paired player integration identified by an API key.
type Device struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	APIKey     string     `json:"apiKey"`
	Enabled    bool       `json:"enabled"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

// CreateDevice stores a new device.
func (db *DB) CreateDevice(d *Device) error {
	res, err := db.Exec(`
		INSERT INTO devices (name, api_key, enabled) VALUES (?, ?, ?)
	`, d.Name, d.APIKey, d.Enabled)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		d.ID = id
	}
	return nil
}

// GetDeviceByAPIKey returns the enabled device matching the key, or nil.
func (db *DB) GetDeviceByAPIKey(apiKey string) (*Device, error) {
	d := &Device{}
	var lastSeen sql.NullTime
	err := db.QueryRow(`
		SELECT id, name, api_key, enabled, created_at, last_seen_at
		FROM devices WHERE api_key = ? AND enabled = 1
	`, apiKey).Scan(&d.ID, &d.Name, &d.APIKey, &d.Enabled, &d.CreatedAt, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device by api key: %w", err)
	}
	if lastSeen.Valid {
		d.LastSeenAt = &lastSeen.Time
	}
	return d, nil
}

// TouchDevice updates a device's last-seen timestamp.
func (db *DB) TouchDevice(id int64) error {
	_, err := db.Exec("UPDATE devices SET last_seen_at = ? WHERE id = ?", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to touch device %d: %w", id, err)
	}
	return nil
}

// ListDevices returns all devices ordered by creation time.
func (db *DB) ListDevices() ([]*Device, error) {
	rows, err := db.Query(`
		SELECT id, name, api_key, enabled, created_at, last_seen_at
		FROM devices ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		d := &Device{}
		var lastSeen sql.NullTime
		if err := rows.Scan(&d.ID, &d.Name, &d.APIKey, &d.Enabled, &d.CreatedAt, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		if lastSeen.Valid {
			d.LastSeenAt = &lastSeen.Time
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// DeleteDevice removes a device.
func (db *DB) DeleteDevice(id int64) error {
	_, err := db.Exec("DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete device %d: %w", id, err)
	}
	return nil
}

// CountDevices returns the number of paired devices.
func (db *DB) CountDevices() (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM devices").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return count, nil
}
