package models

import "time"

// Assignment is a teacher-defined topic/objective pair shared with
// students through a short code. Rows are immutable once created and
// there is no deletion path.
type Assignment struct {
	Code        string    `gorm:"primaryKey;size:16" json:"code"`
	Topic       string    `gorm:"size:255;not null" json:"topic"`
	Goal        string    `gorm:"type:text;not null" json:"goal"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Sessions    []Session `gorm:"foreignKey:AssignmentCode;references:Code" json:"-"`
}
