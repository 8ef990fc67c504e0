package models

import "time"

// Answer is one member's reply to a topic. The (topic_id, user_id) pair is
// unique: resubmission mutates the row in place instead of duplicating it.
// FamilyID is denormalized from the answering user at write time so family
// scoped reads and participation counts never need a join through users.
type Answer struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	TopicID   uint       `gorm:"not null;uniqueIndex:idx_answers_topic_user,priority:1" json:"topic_id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_answers_topic_user,priority:2" json:"user_id"`
	FamilyID  uint       `gorm:"not null;index" json:"family_id"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	// Set only when an existing answer is edited, never on first submission.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
	User      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
