package models

import "time"

// Topic lifecycle states. A topic is created as a draft, promoted to active
// for a fixed window, and finally expired. Expired is terminal.
const (
	TopicStatusDraft   = "draft"
	TopicStatusActive  = "active"
	TopicStatusExpired = "expired"
)

// Topic is a daily question families answer together. At most one topic is
// active at any instant; the activation and expiry jobs enforce that through
// conditional updates on the status column.
type Topic struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Question    string     `gorm:"size:2000;not null" json:"question"`
	Status      string     `gorm:"size:16;not null;default:'draft';index" json:"status"`
	Level       int        `gorm:"default:1" json:"level"`
	ActiveFrom  *time.Time `gorm:"index" json:"active_from"`
	ActiveUntil *time.Time `gorm:"index" json:"active_until"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ActiveAt reports whether the topic's window [ActiveFrom, ActiveUntil) covers now.
func (t *Topic) ActiveAt(now time.Time) bool {
	if t.Status != TopicStatusActive || t.ActiveFrom == nil || t.ActiveUntil == nil {
		return false
	}
	return !now.Before(*t.ActiveFrom) && now.Before(*t.ActiveUntil)
}
