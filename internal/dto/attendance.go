package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/classroom-attendance/internal/models"
)

// SaveAttendanceRequest is the body of POST /save and POST /session/:id/save.
type SaveAttendanceRequest struct {
	Attendance map[string]bool `json:"attendance"`
}

// Marks converts the keyed payload into student ids.
func (r SaveAttendanceRequest) Marks() (map[int64]bool, error) {
	return ParseIDKeys(r.Attendance)
}

// ParseIDKeys converts string keys into positive numeric ids.
func ParseIDKeys(in map[string]bool) (map[int64]bool, error) {
	out := make(map[int64]bool, len(in))
	for key, value := range in {
		id, err := parseID(key)
		if err != nil {
			return nil, err
		}
		out[id] = value
	}
	return out, nil
}

func parseID(key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", key)
	}
	return id, nil
}

// AttendanceMark is one row of the capture sheet.
type AttendanceMark struct {
	Student   models.Student
	IsPresent bool
}

// AttendanceSheet backs the capture and edit pages.
type AttendanceSheet struct {
	Session       models.AttendanceSession
	Today         string
	Marks         []AttendanceMark
	TotalStudents int
	PresentCount  int
	AbsentCount   int
	IsEditMode    bool
}

// SaveAttendanceResult is returned by the save endpoints.
type SaveAttendanceResult struct {
	PresentCount int `json:"present_count"`
	AbsentCount  int `json:"absent_count"`
}

// HistoryRow is one line of the history table.
type HistoryRow struct {
	Session    models.AttendanceSession
	Total      int
	Present    int
	Absent     int
	Percentage float64
}

// SessionDetail backs the read-only session page.
type SessionDetail struct {
	Session      models.AttendanceSession
	Records      []models.SessionRecord
	PresentCount int
	AbsentCount  int
	CanEdit      bool
	Error        string
}
