package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/splitledger/backend/src/utils"
)

func TestNotFoundHandlerRespondsJSONForAPIPaths(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/no/such/route", nil)
	w := httptest.NewRecorder()

	NotFoundHandler(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body utils.JSONErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Not found", body.Error)
}

func TestNotFoundHandlerPlainForNonAPIPaths(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/no/such/page", nil)
	w := httptest.NewRecorder()

	NotFoundHandler(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEqual(t, "application/json", w.Header().Get("Content-Type"))
}
