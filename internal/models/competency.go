package models

import "time"

// Competency is one entry of the fixed skill catalog.
type Competency struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	DisplayOrder int       `db:"display_order" json:"order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CompetencyStatus is a catalog entry joined with one student's record.
// Achieved and Notes default to false/"" when no record exists.
type CompetencyStatus struct {
	Competency
	IsAchieved bool   `db:"is_achieved" json:"is_achieved"`
	Notes      string `db:"notes" json:"notes"`
}

// CompetencyUpdate is a single upsert instruction. A nil Notes keeps
// the stored notes.
type CompetencyUpdate struct {
	CompetencyID int64
	IsAchieved   bool
	Notes        *string
}
