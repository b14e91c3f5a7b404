package identity

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/models"
	"github.com/b1naryth1ef/heracles/internal/security"
)

// IssueSession creates an active session row for the user and returns the
// signed cookie value carrying the session identifier.
func IssueSession(ctx context.Context, conn *gorm.DB, cfg config.SessionConfig, userID uint64) (string, error) {
	sessionID, err := security.GenerateSessionID()
	if err != nil {
		return "", err
	}

	session := models.Session{
		SessionID: sessionID,
		UserID:    userID,
		Active:    true,
	}
	if err := conn.WithContext(ctx).Create(&session).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return security.SignSessionToken(cfg.Secret, sessionID, cfg.Expiry)
}

// RevokeSession deactivates a session. Revoking an already-inactive or
// unknown session is a no-op.
func RevokeSession(ctx context.Context, conn *gorm.DB, sessionID string) error {
	return conn.WithContext(ctx).Model(&models.Session{}).
		Where("session_id = ?", sessionID).
		Update("active", false).Error
}
