package models

import "time"

// IdempotencyKey remembers the first successful response to a mutating
// request so a terminal retrying after a dropped connection gets the same
// order or payment back instead of a duplicate. Keys are scoped per user.
type IdempotencyKey struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         string     `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_idempotency_user_key,priority:1"`
	Key            string     `json:"key" gorm:"size:128;not null;uniqueIndex:idx_idempotency_user_key,priority:2"`
	Fingerprint    string     `json:"fingerprint" gorm:"size:64;not null"` // sha256 of method, path and body
	Route          string     `json:"route" gorm:"size:255"`
	ResponseStatus int        `json:"response_status"` // 0 while the request is in flight
	ResponseBody   []byte     `json:"-" gorm:"type:bytea"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at" gorm:"index"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// Completed reports whether a response has been stored for replay.
func (k *IdempotencyKey) Completed() bool {
	return k.ResponseStatus != 0
}
