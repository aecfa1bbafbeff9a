package notification

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"finanzas/internal/domain/transaction"
	"finanzas/internal/domain/transfer"
	"finanzas/internal/shared/messages"
)

// Service contains the business logic for notification operations
type Service struct {
	repo      Repository
	messenger Messenger
	texts     *messages.Messages
	log       zerolog.Logger
}

// NewService creates a new notification service. messenger may be nil, in
// which case notifications are stored but not pushed.
func NewService(repo Repository, messenger Messenger, texts *messages.Messages, log zerolog.Logger) *Service {
	if texts == nil {
		texts = &messages.Defaults
	}
	return &Service{repo: repo, messenger: messenger, texts: texts, log: log}
}

// RegisterDevice registers a device token for the authenticated user.
// If the token already belongs to another user, it is reassigned.
func (s *Service) RegisterDevice(ctx context.Context, params CreateDeviceTokenParams) (*DeviceToken, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	token, err := s.repo.UpsertDeviceToken(ctx, params)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetPreferences(ctx, params.UserID); err != nil {
		if _, err := s.repo.UpsertPreferences(ctx, params.UserID, UpdatePreferenceParams{}); err != nil {
			s.log.Warn().Err(err).Str("user_id", params.UserID).Msg("failed to create default notification preferences")
		}
	}

	return token, nil
}

// UnregisterDevice deactivates a device token.
func (s *Service) UnregisterDevice(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	return s.repo.DeactivateToken(ctx, token)
}

// GetPreferences returns the notification preferences for a user.
// Returns default (all-enabled) preferences if none have been created yet.
func (s *Service) GetPreferences(ctx context.Context, userID string) (*Preference, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}

	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrPreferencesNotFound) {
			return DefaultPreference(userID), nil
		}
		return nil, err
	}
	return prefs, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, params UpdatePreferenceParams) (*Preference, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	return s.repo.UpsertPreferences(ctx, userID, params)
}

// ListNotifications returns paginated notifications for a user
func (s *Service) ListNotifications(ctx context.Context, userID string, page, perPage int) ([]*Notification, int, error) {
	if userID == "" {
		return nil, 0, errors.New("user ID is required")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.repo.ListByUserID(ctx, userID, page, perPage)
}

func (s *Service) MarkNotificationOpened(ctx context.Context, userID, notificationID string) error {
	if notificationID == "" {
		return errors.New("notification ID is required")
	}
	return s.repo.MarkOpened(ctx, userID, notificationID)
}

// SendToUser pushes a notification to every active device of a user and
// stores a record of it. Disabled categories are skipped silently.
// Delivery failures are logged, not returned.
func (s *Service) SendToUser(ctx context.Context, userID, title, body, category string, data map[string]string) error {
	if !IsValidCategory(category) {
		return ErrInvalidCategory
	}

	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}
	if !prefs.IsCategoryEnabled(category) {
		s.log.Debug().Str("user_id", userID).Str("category", category).Msg("notification skipped: category disabled")
		return nil
	}

	if data == nil {
		data = make(map[string]string)
	}
	if _, ok := data["route"]; !ok {
		data["route"] = category
	}

	if s.messenger != nil {
		tokens, err := s.repo.GetActiveTokensByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if len(tokens) > 0 {
			tokenStrings := make([]string, len(tokens))
			for i, t := range tokens {
				tokenStrings[i] = t.Token
			}
			if err := s.messenger.SendMulticast(ctx, tokenStrings, title, body, data); err != nil {
				s.log.Error().Err(err).Str("user_id", userID).Msg("failed to send push notification")
			}
		}
	}

	if _, err := s.repo.CreateNotification(ctx, CreateNotificationParams{
		UserID:   userID,
		Title:    title,
		Message:  body,
		Category: category,
		Data:     data,
	}); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to store notification")
	}

	return nil
}

// NotifyRecurringGenerated tells a user that a recurring rule produced a
// transaction.
func (s *Service) NotifyRecurringGenerated(ctx context.Context, tx *transaction.Transaction) error {
	text := s.texts.RecurringGenerated.Render(map[string]string{
		"description": tx.Description,
		"amount":      tx.Amount.StringFixed(2),
	})
	return s.SendToUser(ctx, tx.UserID, text.Title, text.Body, CategoryRecurring, map[string]string{
		"transaction_id": tx.ID,
		"rule_id":        tx.RecurringRuleID,
	})
}

// NotifyTransferExecuted tells a user that money moved between two of their
// accounts.
func (s *Service) NotifyTransferExecuted(ctx context.Context, tr *transfer.Transfer, fromName, toName string) error {
	text := s.texts.TransferExecuted.Render(map[string]string{
		"amount": tr.Amount.StringFixed(2),
		"from":   fromName,
		"to":     toName,
	})
	return s.SendToUser(ctx, tr.UserID, text.Title, text.Body, CategoryTransfers, map[string]string{
		"transfer_id": tr.ID,
	})
}
