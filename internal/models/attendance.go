package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of session dates.
const DateLayout = "2006-01-02"

// AttendanceSession anchors attendance for one calendar date.
type AttendanceSession struct {
	ID          int64     `db:"id" json:"id"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DateKey returns the session date as YYYY-MM-DD.
func (s AttendanceSession) DateKey() string {
	return s.Date.Format(DateLayout)
}

// IsOn reports whether the session falls on the calendar day of t
// (compared in t's own location).
func (s AttendanceSession) IsOn(t time.Time) bool {
	return s.DateKey() == t.Format(DateLayout)
}

// DefaultSessionDescription is used when a session is created lazily.
func DefaultSessionDescription(day time.Time) string {
	return fmt.Sprintf("Clase del %s", day.Format("02/01/2006"))
}

// AttendanceRecord is one student's presence flag in one session.
type AttendanceRecord struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	SessionID int64     `db:"session_id" json:"session_id"`
	IsPresent bool      `db:"is_present" json:"is_present"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SessionRecord is a record joined with its student, used by session detail.
type SessionRecord struct {
	AttendanceRecord
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// SessionCounts holds present/absent tallies of one session.
type SessionCounts struct {
	Present int `db:"present_count" json:"present_count"`
	Absent  int `db:"absent_count" json:"absent_count"`
}

// Total is present + absent.
func (c SessionCounts) Total() int {
	return c.Present + c.Absent
}

// SessionStats is a history row.
type SessionStats struct {
	AttendanceSession
	SessionCounts
}

// Percentage of present records, one decimal.
func (s SessionStats) Percentage() float64 {
	return Percentage(s.Present, s.Total())
}
