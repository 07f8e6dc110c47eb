package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{shared.ErrNotFound, http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{shared.ErrIdempotencyConflict, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrForbidden, http.StatusForbidden},
		{shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{shared.ErrAccountDisabled, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	err := DecodeJSON(httptest.NewRecorder(), req, &target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"drill"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &target))
	assert.Equal(t, "drill", target.Name)
}
