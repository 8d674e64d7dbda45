package models

import (
	"time"

	"github.com/noah-isme/classroom-attendance/pkg/textutil"
)

// Student represents a learner on the classroom roster.
type Student struct {
	ID                 int64     `db:"id" json:"id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	Email              *string   `db:"email" json:"email,omitempty"`
	GithubUsername     *string   `db:"github_username" json:"github_username,omitempty"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	LastNameNormalized string    `db:"last_name_normalized" json:"-"`
}

// FullName renders "First Last".
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// SortName renders "Last, First" as used in roster listings.
func (s Student) SortName() string {
	return s.LastName + ", " + s.FirstName
}

// Normalize recomputes the derived sort key from LastName. Repositories
// call it before every insert or update.
func (s *Student) Normalize() {
	s.LastNameNormalized = textutil.SortKey(s.LastName)
}

// StudentSummary pairs a student with the derived metrics shown on the roster.
type StudentSummary struct {
	Student
	PresentCount         int `db:"present_count" json:"attendance_count"`
	AbsentCount          int `db:"absent_count" json:"absence_count"`
	CompetenciesAchieved int `db:"competencies_achieved" json:"competencies_achieved"`
	CompetenciesTotal    int `db:"competencies_total" json:"competencies_total"`
}

// AttendancePercentage is present/total*100 rounded to one decimal.
func (s StudentSummary) AttendancePercentage() float64 {
	return Percentage(s.PresentCount, s.PresentCount+s.AbsentCount)
}
