package models

import (
	"time"

	"gorm.io/datatypes"
)

// Understanding scores, in ascending order. The assessment model is
// instructed to return one of these exact strings and anything else is
// rejected as malformed.
const (
	ScoreUnfamiliar  = "Unfamiliar"
	ScoreRudimentary = "Rudimentary"
	ScoreCompetent   = "Competent"
	ScoreAdvanced    = "Advanced"
	ScoreMasterful   = "Masterful"
)

// Scores lists the recognized score labels.
var Scores = []string{ScoreUnfamiliar, ScoreRudimentary, ScoreCompetent, ScoreAdvanced, ScoreMasterful}

// ValidScore reports whether the label is one of the five recognized
// scores, verbatim — no synonyms, no casing variation.
func ValidScore(label string) bool {
	for _, s := range Scores {
		if label == s {
			return true
		}
	}
	return false
}

// Assessment is the cached per-session understanding snapshot. At most
// one row exists per session (primary key = session_id) and writes go
// through an atomic upsert. Raw keeps the unparsed model payload for
// auditing.
type Assessment struct {
	SessionID string         `gorm:"primaryKey;size:36" json:"session_id"`
	Summary   string         `gorm:"type:text" json:"summary"`
	Score     string         `gorm:"size:16;not null" json:"score"`
	Raw       datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
