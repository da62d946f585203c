package models

import (
	"time"

	"github.com/google/uuid"
)

// PasscodeChallenge keeps track of one-time codes dispatched to the operator.
type PasscodeChallenge struct {
	BaseModel
	Address   string     `gorm:"index" json:"address"`
	CodeHash  string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Attempts  int        `json:"attempts"`
	UsedAt    *time.Time `json:"used_at"`
}

// AdminSession backs an issued admin token. A token is only honoured while
// its row is neither revoked nor expired.
type AdminSession struct {
	BaseModel
	Address   string     `gorm:"index" json:"address"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

// Active reports whether the session can still authorize requests.
func (s AdminSession) Active(now time.Time) bool {
	return s.ID != uuid.Nil && s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
