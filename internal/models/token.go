package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is a static API token accepted via "Authorization: Token <key>".
// It exists for callers that bypass the JWT login flow (scripts, integrations).
type AuthToken struct {
	Key       string    `json:"-" db:"key"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
