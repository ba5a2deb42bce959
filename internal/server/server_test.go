package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/bhuan/monad-plays-pokemon/internal/hub"
)

func testApp() *fiber.App {
	h := hub.New(160, 144, 100, 50, nil)
	return New(Options{Hub: h}, nil)
}

func TestHealthz(t *testing.T) {
	app := testApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStreamRequiresUpgrade(t *testing.T) {
	app := testApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/stream", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestRelayRoutesAbsentWhenDisabled(t *testing.T) {
	app := testApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/relay/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
