package response

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
)

func TestOKMergesPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OK(c, "saved", gin.H{"present_count": 3})

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "saved", body["message"])
	assert.Equal(t, float64(3), body["present_count"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestErrorHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, sql.ErrConnDone)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, appErrors.ErrInternal.Message, body.Error)
	assert.NotContains(t, w.Body.String(), "connection")
	require.Len(t, c.Errors, 1)
}

func TestErrorUsesTypedStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.Clone(appErrors.ErrForbidden, "Solo puedes editar sesiones del día actual."))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Solo puedes editar sesiones del día actual.")
}
