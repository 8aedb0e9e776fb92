package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycafe/seat-reservation/internal/repository"
	"github.com/studycafe/seat-reservation/internal/service"
)

func newTestContext(t *testing.T, header map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetUserID(t *testing.T) {
	c, _ := newTestContext(t, map[string]string{userIDHeader: "42"})
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for name, value := range map[string]string{
		"missing":     "",
		"non-numeric": "abc",
		"zero":        "0",
		"negative":    "-1",
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(t, map[string]string{userIDHeader: value})
			_, err := getUserID(c)
			assert.Error(t, err)
		})
	}
}

func TestParseIDParam(t *testing.T) {
	c, _ := newTestContext(t, nil)
	c.SetParamNames("id")
	c.SetParamValues("7")
	id, err := parseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	c.SetParamValues("nope")
	_, err = parseIDParam(c, "id")
	assert.Error(t, err)
}

func TestJSONErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{repository.ErrSeatNotFound, http.StatusNotFound},
		{repository.ErrZoneNotFound, http.StatusNotFound},
		{repository.ErrReservationNotFound, http.StatusNotFound},
		{service.ErrInvalidRange, http.StatusBadRequest},
		{service.ErrNotHoldOwner, http.StatusForbidden},
		{service.ErrOverlapConflict, http.StatusConflict},
		{service.ErrHoldConflict, http.StatusConflict},
		{repository.ErrAlreadyEntered, http.StatusConflict},
		{errors.New("anything else"), http.StatusInternalServerError},
		{fmt.Errorf("seat 3: %w", service.ErrOverlapConflict), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			c, rec := newTestContext(t, nil)
			require.NoError(t, jsonError(c, tt.err))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
