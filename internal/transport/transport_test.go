package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shef088/Hospital-Management-System-sub001/internal/config"
	"github.com/shef088/Hospital-Management-System-sub001/internal/transport"
)

func newAPI(t *testing.T) (*gin.Engine, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return engine, srv
}

func newClient(srv *httptest.Server, tokens transport.TokenSource) *transport.Client {
	return transport.New(config.APIConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, tokens, zerolog.Nop())
}

func TestDo_AttachesBearerWhenTokenPresent(t *testing.T) {
	engine, srv := newAPI(t)
	var gotAuth, gotRequestID string
	engine.GET("/ping", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		gotRequestID = c.GetHeader("X-Request-Id")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	c := newClient(srv, func() string { return "tok-123" })
	var out map[string]bool
	require.NoError(t, c.Get(context.Background(), "/ping", nil, &out))
	require.True(t, out["ok"])
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.NotEmpty(t, gotRequestID)
}

func TestDo_OmitsBearerWhenAnonymous(t *testing.T) {
	engine, srv := newAPI(t)
	var gotAuth string
	engine.GET("/ping", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		c.JSON(http.StatusOK, gin.H{})
	})

	c := newClient(srv, func() string { return "" })
	require.NoError(t, c.Get(context.Background(), "/ping", nil, nil))
	require.Empty(t, gotAuth)
}

func TestDo_NormalizesServerMessage(t *testing.T) {
	engine, srv := newAPI(t)
	engine.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "shift overlaps an existing shift"})
	})

	c := newClient(srv, nil)
	err := c.Get(context.Background(), "/fail", nil, nil)
	require.Error(t, err)

	apiErr, ok := err.(*transport.APIError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "shift overlaps an existing shift", apiErr.Message)
}

func TestDo_FallsBackToStatusText(t *testing.T) {
	engine, srv := newAPI(t)
	engine.GET("/boom", func(c *gin.Context) {
		c.Data(http.StatusInternalServerError, "text/html", []byte("<html>oops</html>"))
	})

	c := newClient(srv, nil)
	err := c.Get(context.Background(), "/boom", nil, nil)
	require.Error(t, err)

	apiErr, ok := err.(*transport.APIError)
	require.True(t, ok)
	require.Equal(t, http.StatusText(http.StatusInternalServerError), apiErr.Message)
}

func TestDo_ValidationFieldsSurface(t *testing.T) {
	engine, srv := newAPI(t)
	engine.POST("/patients", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "validation failed",
			"errors":  gin.H{"email": "is required"},
		})
	})

	c := newClient(srv, nil)
	err := c.Post(context.Background(), "/patients", gin.H{}, nil)
	require.Error(t, err)
	require.True(t, transport.IsValidation(err))

	apiErr := err.(*transport.APIError)
	require.Equal(t, "is required", apiErr.Fields["email"])
}

func TestDo_FiresAuthHookOn401(t *testing.T) {
	engine, srv := newAPI(t)
	engine.GET("/secret", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
	})

	c := newClient(srv, func() string { return "expired" })
	fired := 0
	c.SetAuthFailureHook(func() { fired++ })

	err := c.Get(context.Background(), "/secret", nil, nil)
	require.Error(t, err)
	require.True(t, transport.IsAuth(err))
	require.Equal(t, 1, fired)

	apiErr := err.(*transport.APIError)
	require.Equal(t, "invalid_token", apiErr.Message)
}

func TestDo_WrapsTransportFailures(t *testing.T) {
	_, srv := newAPI(t)
	c := newClient(srv, nil)
	srv.Close()

	err := c.Get(context.Background(), "/ping", nil, nil)
	require.Error(t, err)
	require.True(t, transport.IsNetwork(err))
	require.False(t, transport.IsAuth(err))
}

func TestDo_Timeout(t *testing.T) {
	engine, srv := newAPI(t)
	engine.GET("/slow", func(c *gin.Context) {
		time.Sleep(200 * time.Millisecond)
		c.JSON(http.StatusOK, gin.H{})
	})

	c := transport.New(config.APIConfig{
		BaseURL: srv.URL,
		Timeout: 20 * time.Millisecond,
	}, nil, zerolog.Nop())

	err := c.Get(context.Background(), "/slow", nil, nil)
	require.Error(t, err)
	require.True(t, transport.IsNetwork(err), "timeouts are transport errors, retryable by the caller")
}
