package models

import "time"

// Family groups members who share daily topics and the closeness ranking.
type Family struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:64;not null" json:"name"`
	InviteCode string    `gorm:"size:8;uniqueIndex" json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
