package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest(t *testing.T) {
	r := NewRequest(http.MethodPost, "/api/books", map[string]any{"title": "Dune"})
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

	r = NewRequest(http.MethodGet, "/api/books", nil)
	assert.Empty(t, r.Header.Get("Content-Type"))
	assert.Equal(t, int64(0), r.ContentLength)
}

func TestRecordHTTPResponse(t *testing.T) {
	w := httptest.NewRecorder()
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.WriteString(`{"message":"Book not found"}`)

	resp := RecordHTTPResponse(w)
	AssertResponseCode(t, resp.Code, http.StatusNotFound)
	AssertResponseBody(t, resp.Body, "message", "Book not found")
}

func TestRecordHTTPResponse_Array(t *testing.T) {
	w := httptest.NewRecorder()
	_, _ = w.WriteString(`[]`)

	resp := RecordHTTPResponse(w)
	assert.Nil(t, resp.Body)
	assert.Equal(t, "[]", string(resp.Raw))
}
