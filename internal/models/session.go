package models

import "time"

// Session is one student's attempt at one assignment. A student who
// rejoins with the same name gets a fresh session; sessions are
// distinguished only by ID.
type Session struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	AssignmentCode string    `gorm:"size:16;index;not null" json:"assignment_code"`
	StudentName    string    `gorm:"size:255;not null" json:"student_name"`
	CreatedAt      time.Time `json:"created_at"`
}
