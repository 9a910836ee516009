package session_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/portico/internal/app/features/session"
	"github.com/dalemusser/portico/internal/app/system/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type visits struct {
	Visits int  `json:"visits"`
	New    bool `json:"new"`
}

func call(t *testing.T, h *session.Handler, cookies []*http.Cookie) (visits, []*http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeVisits(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var v visits
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v, rec.Result().Cookies()
}

func newHandler(t *testing.T, secret string) *session.Handler {
	t.Helper()
	store, err := sessions.New([]byte(secret), "test-session", "", false, zap.NewNop())
	require.NoError(t, err)
	return session.NewHandler(store, zap.NewNop())
}

func TestServeVisits_Counts(t *testing.T) {
	h := newHandler(t, "0123456789ab")

	v, cookies := call(t, h, nil)
	assert.Equal(t, visits{Visits: 1, New: true}, v)

	v, cookies = call(t, h, cookies)
	assert.Equal(t, visits{Visits: 2, New: false}, v)

	v, _ = call(t, h, cookies)
	assert.Equal(t, 3, v.Visits)
}

func TestServeVisits_ResetAfterRestart(t *testing.T) {
	before := newHandler(t, "0123456789ab")
	after := newHandler(t, "ba9876543210")

	_, cookies := call(t, before, nil)
	_, cookies = call(t, before, cookies)

	v, _ := call(t, after, cookies)
	assert.Equal(t, visits{Visits: 1, New: true}, v)
}
