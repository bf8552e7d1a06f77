package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(AccessLog(zap.New(core)))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/items/:id", "418"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "/items/42", entries[0].ContextMap()["path"])
	assert.EqualValues(t, 418, entries[0].ContextMap()["status"])

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/items/:id", "418"))
	assert.Equal(t, before+1, after)
}

func TestNamedNilLogger(t *testing.T) {
	assert.NotNil(t, Named(nil, "x"))
	assert.Nil(t, WithTrace(t.Context(), nil))
}
