package model

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription is one browser's web-push endpoint for a user.
type PushSubscription struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}
