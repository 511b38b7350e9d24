// Package auth issues and validates the API keys paired player devices use
// to call the selection API.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/selectarr/selectarr/internal/database"
)

// APIKeyLength is the length of generated API keys in bytes (hex encoded on
// the wire, so keys are twice this many characters).
const APIKeyLength = 32

// DeviceAuthService handles device pairing and API key validation.
type DeviceAuthService struct {
	db *database.DB
}

// NewDeviceAuthService creates a new device auth service.
func NewDeviceAuthService(db *database.DB) *DeviceAuthService {
	return &DeviceAuthService{db: db}
}

// GenerateAPIKey creates a new cryptographically secure API key.
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, APIKeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// PairDevice registers a new device and returns it with a fresh API key.
func (s *DeviceAuthService) PairDevice(name string) (*database.Device, error) {
	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}

	device := &database.Device{
		Name:    name,
		APIKey:  key,
		Enabled: true,
	}
	if err := s.db.CreateDevice(device); err != nil {
		return nil, err
	}
	return device, nil
}

// ValidateAPIKey checks an API key against the paired devices. It returns the
// matching device, or nil when the key is unknown or the device is disabled.
// Validated devices get their last-seen timestamp refreshed.
func (s *DeviceAuthService) ValidateAPIKey(apiKey string) (*database.Device, error) {
	if apiKey == "" {
		return nil, nil
	}

	device, err := s.db.GetDeviceByAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, nil
	}

	if err := s.db.TouchDevice(device.ID); err != nil {
		return nil, err
	}
	return device, nil
}

// RegenerateAPIKey replaces a device's key, invalidating the old one.
func (s *DeviceAuthService) RegenerateAPIKey(deviceID int64) (string, error) {
	key, err := GenerateAPIKey()
	if err != nil {
		return "", err
	}

	result, err := s.db.Exec("UPDATE devices SET api_key = ? WHERE id = ?", key, deviceID)
	if err != nil {
		return "", fmt.Errorf("failed to update api key: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return "", fmt.Errorf("device not found: %d", deviceID)
	}
	return key, nil
}
