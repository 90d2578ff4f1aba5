package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"rolegate/internal/auth"
	"rolegate/internal/rbac"
	"rolegate/internal/store"
)

func TestRespondErr_TaxonomyMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{store.ErrDuplicateIdentity, http.StatusConflict},
		{rbac.ErrAlreadyAssigned, http.StatusConflict},
		{rbac.ErrNotAssigned, http.StatusConflict},
		{auth.ErrWeakPassword, http.StatusBadRequest},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{auth.ErrWrongTokenType, http.StatusUnauthorized},
		{auth.ErrUnauthenticated, http.StatusUnauthorized},
		{auth.ErrForbidden, http.StatusForbidden},
		{auth.ErrNotFound, http.StatusNotFound},
		{store.ErrNotFound, http.StatusNotFound},
		{rbac.ErrRoleNotFound, http.StatusNotFound},
		{rbac.ErrPermissionNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		respondErr(w, tc.err)
		assert.Equal(t, tc.want, w.Code, tc.err.Error())
	}
}

func TestRespondErr_UnknownErrorIsOpaque(t *testing.T) {
	w := httptest.NewRecorder()
	respondErr(w, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
