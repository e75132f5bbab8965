package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/pkg/logger"
	"github.com/sirupsen/logrus"
)

// TokenStore is the slice of the token repository the service depends on.
type TokenStore interface {
	GetTokenByID(ctx context.Context, id string) (*models.NotificationToken, error)
	InsertToken(ctx context.Context, token *models.NotificationToken) error
	TouchToken(ctx context.Context, id string, now time.Time) error
	MarkInvalid(ctx context.Context, id string) error
	DeleteToken(ctx context.Context, id string) error
	GetValidTokens(ctx context.Context) ([]models.NotificationToken, error)
	GetAllTokens(ctx context.Context) ([]models.NotificationToken, error)
	GetTokensLastActiveBefore(ctx context.Context, cutoff time.Time) ([]models.NotificationToken, error)
	GetInstallMetrics(ctx context.Context) (*models.InstallMetrics, error)
	IncrementInstallMetrics(ctx context.Context, totalDelta, activeDelta int64, monthKey string) error
}

const (
	// lastActiveWindow bounds write volume: a token's last-active stamp is
	// refreshed at most once per window.
	lastActiveWindow = 7 * 24 * time.Hour

	// defaultCleanupDays is the inactivity threshold for the purge sweep.
	defaultCleanupDays = 90

	maxTokenIDLen = 100
)

// DeriveTokenID computes the canonical document ID for a token: every
// non-alphanumeric character stripped, then truncated. Every operation on
// a token resolves through this same ID, which makes re-registration an
// upsert rather than a duplicate insert.
func DeriveTokenID(token string) string {
	var b strings.Builder
	for _, r := range token {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if len(id) > maxTokenIDLen {
		id = id[:maxTokenIDLen]
	}
	return id
}

// TokenService manages notification token lifecycle and keeps the install
// metrics counters in step with token state transitions.
type TokenService struct {
	repo TokenStore
	now  func() time.Time
}

// NewTokenService creates a new instance of TokenService.
func NewTokenService(repo TokenStore) *TokenService {
	return &TokenService{repo: repo, now: time.Now}
}

// SaveToken upserts a device token. A first-time token is stored in full
// and counted in the install metrics (total, active and the current
// month's bucket). A known token only has its last-active stamp refreshed,
// and only when the previous stamp is older than the throttle window;
// otherwise the call writes nothing.
func (s *TokenService) SaveToken(ctx context.Context, token string, device models.DeviceInfo, userID string) (*models.NotificationToken, error) {
	id := DeriveTokenID(token)
	if id == "" {
		return nil, fmt.Errorf("invalid token: empty after sanitizing")
	}

	existing, err := s.repo.GetTokenByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %v", err)
	}

	now := s.now()

	if existing == nil {
		if device.InstalledAt.IsZero() {
			device.InstalledAt = now
		}
		record := &models.NotificationToken{
			ID:           id,
			Token:        token,
			UserID:       userID,
			Device:       device,
			LastActiveAt: now,
			IsValid:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.InsertToken(ctx, record); err != nil {
			return nil, err
		}
		if err := s.repo.IncrementInstallMetrics(ctx, 1, 1, now.Format("2006-01")); err != nil {
			return nil, err
		}
		return record, nil
	}

	if now.Sub(existing.LastActiveAt) > lastActiveWindow {
		if err := s.repo.TouchToken(ctx, id, now); err != nil {
			return nil, err
		}
		existing.LastActiveAt = now
		existing.IsValid = true
	}

	return existing, nil
}

// GetAllValidTokens returns the raw token strings of every record still
// marked valid. Read failures degrade to an empty list so callers can keep
// rendering; absence here never means a definitive zero.
func (s *TokenService) GetAllValidTokens(ctx context.Context) []string {
	records, err := s.repo.GetValidTokens(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch valid tokens, returning none")
		return nil
	}

	tokens := make([]string, 0, len(records))
	for _, record := range records {
		tokens = append(tokens, record.Token)
	}
	return tokens
}

// GetAllTokensWithDetails returns fully hydrated records for the admin
// view, defaulting missing device fields to "Unknown". Degrades to empty
// on read failure.
func (s *TokenService) GetAllTokensWithDetails(ctx context.Context) []models.NotificationToken {
	records, err := s.repo.GetAllTokens(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch token details, returning none")
		return nil
	}

	for i := range records {
		if records[i].Device.UserAgent == "" {
			records[i].Device.UserAgent = "Unknown"
		}
		if records[i].Device.Platform == "" {
			records[i].Device.Platform = "Unknown"
		}
	}
	return records
}

// MarkTokenInvalid flags a token after a failed delivery attempt and
// decrements the active install count. Total installs are untouched: an
// invalid token is not an uninstall. Invalidating an already-invalid
// token is a no-op so the counter never drifts.
func (s *TokenService) MarkTokenInvalid(ctx context.Context, token string) error {
	id := DeriveTokenID(token)

	record, err := s.repo.GetTokenByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up token: %v", err)
	}
	if record == nil {
		return fmt.Errorf("token %s: %w", id, ErrNotFound)
	}
	if !record.IsValid {
		return nil
	}

	if err := s.repo.MarkInvalid(ctx, id); err != nil {
		return err
	}
	if err := s.repo.IncrementInstallMetrics(ctx, 0, -1, ""); err != nil {
		return err
	}

	logger.Log.WithField("token_id", id).Info("Token marked invalid")
	return nil
}

// GetInstallMetrics reads the aggregate counters. Degrades to nil on read
// failure so the admin page still renders.
func (s *TokenService) GetInstallMetrics(ctx context.Context) *models.InstallMetrics {
	metrics, err := s.repo.GetInstallMetrics(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to read install metrics")
		return nil
	}
	return metrics
}

// CleanupOldTokens deletes every token inactive for longer than
// daysInactive (default 90), decrementing the active install count for
// each deleted record that was still valid. Returns how many were removed.
func (s *TokenService) CleanupOldTokens(ctx context.Context, daysInactive int) (int, error) {
	if daysInactive <= 0 {
		daysInactive = defaultCleanupDays
	}
	cutoff := s.now().AddDate(0, 0, -daysInactive)

	stale, err := s.repo.GetTokensLastActiveBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to scan stale tokens: %v", err)
	}

	deleted := 0
	for _, record := range stale {
		if err := s.repo.DeleteToken(ctx, record.ID); err != nil {
			return deleted, err
		}
		if record.IsValid {
			if err := s.repo.IncrementInstallMetrics(ctx, 0, -1, ""); err != nil {
				return deleted, err
			}
		}
		deleted++
	}

	logger.Log.WithFields(map[string]interface{}{
		"deleted":       deleted,
		"days_inactive": daysInactive,
	}).Info("Token cleanup completed")

	return deleted, nil
}
