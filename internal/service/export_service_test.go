package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
)

func TestExportHistoryCSV(t *testing.T) {
	db := newFakeDB()
	a := db.addStudent("Ana", "Martínez", true)
	b := db.addStudent("Luis", "Álvarez", true)
	session := db.addSession(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	db.records[[2]int64{a.ID, session.ID}] = true
	db.records[[2]int64{b.ID, session.ID}] = false
	svc := newServices(db, time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC), time.UTC).exports

	file, err := svc.ExportHistory(context.Background(), "CSV")
	require.NoError(t, err)
	assert.Equal(t, "attendance-history-20240306.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Fecha,Descripción,Presentes,Ausentes,Total,Porcentaje", lines[0])
	assert.Equal(t, "2024-03-05,Clase del 05/03/2024,1,1,2,50.0%", lines[1])
}

func TestExportHistoryPDF(t *testing.T) {
	db := newFakeDB()
	db.addSession(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	svc := newServices(db, time.Now(), time.UTC).exports

	file, err := svc.ExportHistory(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportHistoryRejectsUnknownFormat(t *testing.T) {
	svc := newServices(newFakeDB(), time.Now(), time.UTC).exports

	_, err := svc.ExportHistory(context.Background(), "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}
