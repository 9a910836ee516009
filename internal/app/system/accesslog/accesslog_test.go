package accesslog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/portico/internal/app/system/accesslog"
	"github.com/dalemusser/portico/internal/app/system/requestid"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_LogsRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, accesslog.Middleware(zap.New(core)))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	ok := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/items/7", ok["path"])
	assert.Equal(t, "/items/{id}", ok["route"])
	assert.Equal(t, int64(200), ok["status"])
	assert.Equal(t, int64(5), ok["bytes"])
	assert.NotEmpty(t, ok["request_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
}
