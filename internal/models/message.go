package models

import "time"

// Message roles. The tutor always opens, so a well-formed transcript
// strictly alternates assistant, user, assistant, ...
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Message is a single turn in a session transcript. Messages are
// append-only and never mutated; transcript order is insertion order,
// carried by the autoincrement ID rather than the wall clock.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:36;index;not null" json:"session_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
