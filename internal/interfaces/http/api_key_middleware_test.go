package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/inventory-ledger/internal/interfaces/http"
)

func TestChannelID_ClavesConPrefijoComun(t *testing.T) {
	a := apphttp.ChannelID("partner-key-aaaaaaaaaa")
	b := apphttp.ChannelID("partner-key-bbbbbbbbbb")

	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b, "claves con el mismo prefijo deben ser canales distintos")
	assert.Equal(t, a, apphttp.ChannelID("partner-key-aaaaaaaaaa"))
}

func TestAPIKeyMiddleware_CupoPorClave(t *testing.T) {
	keyA, keyB := "partner-key-aaaaaaaaaa", "partner-key-bbbbbbbbbb"
	limiter := &fakeLimiter{}
	app := fiber.New()
	app.Get("/ping",
		apphttp.APIKeyMiddleware([]string{keyA, keyB}, nil),
		apphttp.RateLimitMiddleware(limiter, nil),
		func(c *fiber.Ctx) error { return c.SendString(apphttp.GetChannel(c)) },
	)

	for _, key := range []string{keyA, keyB} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(apphttp.APIKeyHeader, key)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	require.Len(t, limiter.calls, 2)
	assert.NotEqual(t, limiter.calls[0], limiter.calls[1], "cada clave consume su propio cupo")
	assert.Equal(t, apphttp.ChannelID(keyA), limiter.calls[0])
}
