package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/pin-service/internal/domain"
	"github.com/weiawesome/wes-io-live/pin-service/internal/fpe"
	"github.com/weiawesome/wes-io-live/pin-service/internal/pin"
	"github.com/weiawesome/wes-io-live/pin-service/internal/service"
	"github.com/weiawesome/wes-io-live/pin-service/internal/state"
	"github.com/weiawesome/wes-io-live/pkg/jwt"
	"github.com/weiawesome/wes-io-live/pkg/middleware"
)

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func newRouter(t *testing.T, auth *middleware.AuthMiddleware) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	space, err := pin.NewDefaultSpace(pin.DefaultCharset, pin.DefaultLength)
	require.NoError(t, err)
	svc := service.NewPinService(space, state.NewMemoryStore(), fpe.New(), nil, 50)
	t.Cleanup(func() { svc.Close() })

	r := gin.New()
	NewHandler(svc, auth).RegisterRoutes(r)
	return r
}

func serve(r *gin.Engine, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssuePins(t *testing.T) {
	t.Parallel()
	r := newRouter(t, nil)

	t.Run("default_count", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/api/v1/streams/door/pins", "", nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		env := decode[domain.IssuedPins](t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "door", env.Data.StreamID)
		assert.Len(t, env.Data.Pins, 1)
		assert.Len(t, env.Data.Pins[0], 4)
	})

	t.Run("batch", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/api/v1/streams/gate/pins?count=25", "", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Len(t, decode[domain.IssuedPins](t, w).Data.Pins, 25)
	})

	t.Run("count_too_large", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/api/v1/streams/gate/pins?count=51", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BAD_REQUEST", decode[any](t, w).Error.Code)
	})

	t.Run("count_not_a_number", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/api/v1/streams/gate/pins?count=lots", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad_stream_id", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/api/v1/streams/Front%20Door/pins", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetStream(t *testing.T) {
	t.Parallel()
	r := newRouter(t, nil)

	w := serve(r, http.MethodGet, "/api/v1/streams/lobby", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/streams/lobby/pins?count=3", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, http.MethodGet, "/api/v1/streams/lobby", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	st := decode[domain.StreamStatus](t, w).Data
	assert.Equal(t, "lobby", st.StreamID)
	assert.Equal(t, uint64(1), st.Generation)
	assert.Equal(t, uint64(10000), st.SpaceSize)
	assert.GreaterOrEqual(t, st.Index, uint64(3))
}

func TestValidatePin(t *testing.T) {
	t.Parallel()
	r := newRouter(t, nil)

	w := serve(r, http.MethodPost, "/api/v1/pins/validate", `{"pin":"1234"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[domain.ValidatePinResponse](t, w).Data
	assert.False(t, res.Valid)
	assert.Equal(t, domain.ReasonObvious, res.Reason)

	w = serve(r, http.MethodPost, "/api/v1/pins/validate", `{"pin":"8261"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[domain.ValidatePinResponse](t, w).Data.Valid)

	w = serve(r, http.MethodPost, "/api/v1/pins/validate", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth(t *testing.T) {
	t.Parallel()

	manager, err := jwt.NewManager("s3cret", "pin-service", time.Minute)
	require.NoError(t, err)
	r := newRouter(t, middleware.NewAuthMiddleware(manager))

	w := serve(r, http.MethodPost, "/api/v1/streams/door/pins", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bearer := func(scopes ...string) http.Header {
		token, err := manager.Issue("door-controller", scopes...)
		require.NoError(t, err)
		return http.Header{"Authorization": {"Bearer " + token}}
	}

	w = serve(r, http.MethodPost, "/api/v1/streams/door/pins", "", bearer())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/streams/door/pins", "", bearer(domain.ScopeIssuePins))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, http.MethodGet, "/api/v1/streams/door", "", bearer())
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
