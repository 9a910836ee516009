package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/portico/internal/app/system/requestid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(req *http.Request) (seen string, rec *httptest.ResponseRecorder) {
	rec = httptest.NewRecorder()
	h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddleware_Generates(t *testing.T) {
	seen, rec := serve(httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(requestid.Header))
}

func TestMiddleware_KeepsInbound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestid.Header, "abc-123")

	seen, rec := serve(req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(requestid.Header))
}

func TestMiddleware_ReplacesOversized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestid.Header, strings.Repeat("x", 500))

	seen, _ := serve(req)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestFromContext_Empty(t *testing.T) {
	assert.Equal(t, "", requestid.FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
