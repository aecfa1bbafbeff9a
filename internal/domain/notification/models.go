package notification

import (
	"errors"
	"fmt"
	"time"

	"finanzas/internal/shared/apperr"
)

// Notification categories
const (
	CategoryRecurring = "recurring"
	CategoryTransfers = "transfers"
	CategoryGeneral   = "general"
)

var validCategories = map[string]struct{}{
	CategoryRecurring: {},
	CategoryTransfers: {},
	CategoryGeneral:   {},
}

var validDeviceTypes = map[string]struct{}{
	"ios":     {},
	"android": {},
	"web":     {},
}

// Domain errors
var (
	ErrNotificationNotFound = fmt.Errorf("notification %w", apperr.ErrNotFound)
	ErrPreferencesNotFound  = fmt.Errorf("notification preferences %w", apperr.ErrNotFound)
	ErrInvalidCategory      = fmt.Errorf("invalid notification category: %w", apperr.ErrInvalidInput)
	ErrInvalidDeviceType    = fmt.Errorf("device type must be 'ios', 'android' or 'web': %w", apperr.ErrInvalidInput)
	ErrInvalidToken         = fmt.Errorf("device token is required: %w", apperr.ErrInvalidInput)
)

// DeviceToken represents a registered FCM device token
type DeviceToken struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Token      string    `json:"token"`
	DeviceType string    `json:"deviceType"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsed   time.Time `json:"lastUsed"`
}

// Preference stores per-category notification toggles for a user
type Preference struct {
	UserID           string    `json:"-"`
	RecurringEnabled bool      `json:"recurring_enabled"`
	TransfersEnabled bool      `json:"transfers_enabled"`
	GeneralEnabled   bool      `json:"general_enabled"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DefaultPreference has every category enabled.
func DefaultPreference(userID string) *Preference {
	return &Preference{
		UserID:           userID,
		RecurringEnabled: true,
		TransfersEnabled: true,
		GeneralEnabled:   true,
	}
}

// Notification represents a stored notification record
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"-"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Category  string            `json:"category"`
	Data      map[string]string `json:"data"`
	OpenedAt  *time.Time        `json:"opened_at"`
	CreatedAt time.Time         `json:"created_at"`
}

// CreateDeviceTokenParams contains parameters for registering a device
type CreateDeviceTokenParams struct {
	UserID     string
	Token      string
	DeviceType string
}

func (p CreateDeviceTokenParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if p.Token == "" {
		return ErrInvalidToken
	}
	if !IsValidDeviceType(p.DeviceType) {
		return ErrInvalidDeviceType
	}
	return nil
}

// UpdatePreferenceParams contains fields for updating notification preferences
type UpdatePreferenceParams struct {
	RecurringEnabled *bool
	TransfersEnabled *bool
	GeneralEnabled   *bool
}

// CreateNotificationParams contains parameters for storing a notification
type CreateNotificationParams struct {
	UserID   string
	Title    string
	Message  string
	Category string
	Data     map[string]string
}

func (p CreateNotificationParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if p.Title == "" {
		return errors.New("notification title is required")
	}
	if p.Message == "" {
		return errors.New("notification message is required")
	}
	if !IsValidCategory(p.Category) {
		return ErrInvalidCategory
	}
	return nil
}

func IsValidCategory(c string) bool {
	_, ok := validCategories[c]
	return ok
}

func IsValidDeviceType(dt string) bool {
	_, ok := validDeviceTypes[dt]
	return ok
}

// IsCategoryEnabled checks if a specific category is enabled in preferences
func (p *Preference) IsCategoryEnabled(category string) bool {
	switch category {
	case CategoryRecurring:
		return p.RecurringEnabled
	case CategoryTransfers:
		return p.TransfersEnabled
	case CategoryGeneral:
		return p.GeneralEnabled
	default:
		return false
	}
}
