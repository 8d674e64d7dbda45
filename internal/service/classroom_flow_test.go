package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-attendance/internal/dto"
	"github.com/noah-isme/classroom-attendance/internal/models"
	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
)

func TestClassroomDayFlow(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	svc := newServices(db, now, bogota(t))

	// Register the student; she starts absent on today's sheet.
	ana, err := svc.students.Add(ctx, dto.StudentRequest{FirstName: "Ana", LastName: "Martínez"})
	require.NoError(t, err)
	sheet, err := svc.attendance.TodayView(ctx)
	require.NoError(t, err)
	require.Len(t, sheet.Marks, 1)
	assert.False(t, sheet.Marks[0].IsPresent)
	presentBefore := sheet.PresentCount

	// Mark her present.
	res, err := svc.attendance.SaveToday(ctx, map[int64]bool{ana.ID: true})
	require.NoError(t, err)
	assert.Equal(t, presentBefore+1, res.PresentCount)
	sheet, err = svc.attendance.TodayView(ctx)
	require.NoError(t, err)
	assert.True(t, sheet.Marks[0].IsPresent)

	// Same payload again changes nothing.
	again, err := svc.attendance.SaveToday(ctx, map[int64]bool{ana.ID: true})
	require.NoError(t, err)
	assert.Equal(t, res, again)

	// One competency achieved.
	achieved, err := svc.competencies.SaveCompetencies(ctx, ana.ID, []models.CompetencyUpdate{{CompetencyID: db.competencies[0].ID, IsAchieved: true}})
	require.NoError(t, err)
	assert.Equal(t, 1, achieved.CompetenciesAchieved)

	// Yesterday's session is read-only.
	yesterday := db.addSession(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	db.records[[2]int64{ana.ID, yesterday.ID}] = false
	_, err = svc.attendance.SaveSession(ctx, yesterday.ID, map[int64]bool{ana.ID: true})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
	assert.False(t, db.records[[2]int64{ana.ID, yesterday.ID}])

	detail, err := svc.attendance.SessionDetail(ctx, yesterday.ID)
	require.NoError(t, err)
	assert.False(t, detail.CanEdit)
	assert.Equal(t, 1, detail.AbsentCount)
}
