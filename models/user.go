package models

import "time"

// User is a family member. Authentication lives in an external identity
// service; this row exists for joins (answer authorship) and admin listing,
// keyed by the same id the identity tokens carry.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nickname  string    `gorm:"size:64;not null" json:"nickname"`
	FamilyID  uint      `gorm:"index" json:"family_id"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
