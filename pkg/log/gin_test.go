package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "debug", ServiceName: "test"}, &buf)

	r := gin.New()
	r.Use(GinMiddleware(logger))
	r.GET("/streams/:id", func(c *gin.Context) {
		l := Ctx(c.Request.Context())
		l.Debug().Msg("inside handler")
		c.Set(FieldSubject, "door-controller")
		c.Status(http.StatusNoContent)
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	t.Run("propagates_request_id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/streams/door", nil)
		req.Header.Set("X-Request-ID", "req-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)

		var inner, done map[string]interface{}
		require.NoError(t, json.Unmarshal(lines[0], &inner))
		require.NoError(t, json.Unmarshal(lines[1], &done))

		assert.Equal(t, "req-1", inner[FieldRequestID])
		assert.Equal(t, "test", inner[FieldService])
		assert.Equal(t, "/streams/:id", done[FieldPath])
		assert.Equal(t, float64(http.StatusNoContent), done[FieldStatus])
		assert.Equal(t, "door-controller", done[FieldSubject])
		assert.Equal(t, "info", done["level"])
	})

	t.Run("generates_request_id", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

		var done map[string]interface{}
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &done))
		assert.Equal(t, "error", done["level"])
		assert.Equal(t, w.Header().Get("X-Request-ID"), done[FieldRequestID])
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "disabled", parseLevel("off").String())
	assert.Equal(t, "info", parseLevel("").String())
}
