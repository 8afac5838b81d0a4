package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorEnvelope struct {
	Status int        `json:"status"`
	Data   []AppError `json:"data"`
}

func writeAppError(t *testing.T, err error) (*httptest.ResponseRecorder, errorEnvelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, err))

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestAppErrorResponseKeepsStatus(t *testing.T) {
	rec, env := writeAppError(t, NotFoundErrorf("asset %s not tracked", "dogecoin"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "ERR_NOT_FOUND", env.Data[0].Code)
	assert.Equal(t, "asset dogecoin not tracked", env.Data[0].Message)
}

func TestAppErrorResponseHidesUnknownErrors(t *testing.T) {
	rec, env := writeAppError(t, errors.New("redis: connection refused on 10.0.0.7"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "ERR_INTERNAL", env.Data[0].Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.7")
}
