package middleware

import (
	"time"

	"github.com/GroundGame/Canvass-Backend/internal/db"
	"github.com/GroundGame/Canvass-Backend/internal/utils"
)

// Session mirrors the auth service's session table. That service owns the
// schema; this model exists only for read access.
type Session struct {
	SessionID string `gorm:"primaryKey"`
	UserID    string
	ExpiresAt time.Time
}

func (Session) TableName() string { return "app_auth.sessions" }

// SessionInfo is the production SessionFetcher, backed by the shared
// database connection.
type SessionInfo struct{}

func (SessionInfo) FindSessionByID(id string) (utils.SessionData, error) {
	var s Session
	if err := db.DB.First(&s, "session_id = ?", id).Error; err != nil {
		return utils.SessionData{}, err
	}
	return utils.SessionData{UserID: s.UserID, ExpiresAt: s.ExpiresAt}, nil
}
