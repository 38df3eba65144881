package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Error(c, err)
	return w
}

func TestErrorRendersAppError(t *testing.T) {
	sentinel := apperror.NewKind(http.StatusConflict, apperror.KindConflict, "dates unavailable")
	w := render(sentinel.WithDetails(map[string]string{"booking_id": "b1"}))

	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "dates unavailable", body["error"])
	assert.Equal(t, "conflict", body["kind"])
	assert.Equal(t, map[string]any{"booking_id": "b1"}, body["details"])
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	w := render(errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestNewPageResponseNeverNil(t *testing.T) {
	resp := NewPageResponse[int](nil, 1, 20, 0)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}
