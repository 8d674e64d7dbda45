package dto

import "github.com/noah-isme/classroom-attendance/internal/models"

// StudentRequest carries the roster form fields for add and update.
type StudentRequest struct {
	FirstName      string `form:"first_name" validate:"required,max=100"`
	LastName       string `form:"last_name" validate:"required,max=100"`
	Email          string `form:"email" validate:"omitempty,email,max=254"`
	GithubUsername string `form:"github_username" validate:"omitempty,max=100"`
}

// ManageForm is the POST body of /students/manage.
type ManageForm struct {
	Action    string `form:"action"`
	StudentID string `form:"student_id"`
	StudentRequest
}

// StudentRow is one line of the roster listing.
type StudentRow struct {
	Student              models.Student
	AttendancePercentage float64
	PresentCount         int
	AbsentCount          int
	CompetenciesAchieved int
	CompetenciesTotal    int
	TotalCompetencies    int
}

// StudentList backs GET /students.
type StudentList struct {
	Rows          []StudentRow
	TotalStudents int
}

// ManageView backs GET /students/manage.
type ManageView struct {
	Active   []models.Student
	Inactive []models.Student
	Error    string
	Form     StudentRequest
}

// SeedResult summarises a roster import.
type SeedResult struct {
	Created int
	Skipped int
}
