package dto

import (
	"fmt"

	"github.com/noah-isme/classroom-attendance/internal/models"
)

// SaveCompetenciesRequest is the body of POST /student/:id/competencies/save.
// Notes are optional per competency.
type SaveCompetenciesRequest struct {
	Competencies map[string]bool   `json:"competencies"`
	Notes        map[string]string `json:"notes"`
}

// Updates validates keys and pairs achieved flags with supplied notes.
// A note for a competency absent from Competencies is rejected.
func (r SaveCompetenciesRequest) Updates() ([]models.CompetencyUpdate, error) {
	achieved, err := ParseIDKeys(r.Competencies)
	if err != nil {
		return nil, err
	}
	notes := make(map[int64]string, len(r.Notes))
	for key, note := range r.Notes {
		id, err := parseID(key)
		if err != nil {
			return nil, err
		}
		if _, ok := achieved[id]; !ok {
			return nil, fmt.Errorf("note for competency %s without achieved flag", key)
		}
		notes[id] = note
	}
	updates := make([]models.CompetencyUpdate, 0, len(achieved))
	for id, flag := range achieved {
		u := models.CompetencyUpdate{CompetencyID: id, IsAchieved: flag}
		if note, ok := notes[id]; ok {
			n := note
			u.Notes = &n
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// StudentDetail backs GET /student/:id.
type StudentDetail struct {
	Student              models.Student
	Competencies         []models.CompetencyStatus
	AttendanceCount      int
	AbsenceCount         int
	AttendancePercentage float64
	CompetenciesAchieved int
	TotalCompetencies    int
}

// SaveCompetenciesResult is returned by the competency save endpoint.
type SaveCompetenciesResult struct {
	CompetenciesAchieved int `json:"competencies_achieved"`
}
