package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionTestApp wires a throwaway app around the session middleware: /seed
// opens a session with the given expiry, /private sits behind
// WebAuthMiddleware and /login behind GuestMiddleware.
func sessionTestApp(store *session.Store, expiresAt int64) *fiber.App {
	app := fiber.New()

	app.Post("/seed", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Set("user_id", 7)
		sess.Set("org_id", 3)
		sess.Set("username", "ana")
		sess.Set("role", "user")
		sess.Set("expires_at", expiresAt)
		return sess.Save()
	})

	app.Get("/private", WebAuthMiddleware(store), func(c *fiber.Ctx) error {
		return c.SendString(fmt.Sprintf("user=%v org=%v", c.Locals("user_id"), c.Locals("org_id")))
	})

	app.Get("/login", GuestMiddleware(store), func(c *fiber.Ctx) error {
		return c.SendString("login page")
	})

	return app
}

func openSession(t *testing.T, app *fiber.App) *http.Cookie {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/seed", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestWebAuthMiddlewareRedirectsAnonymous(t *testing.T) {
	app := sessionTestApp(session.New(), 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestWebAuthMiddlewareAllowsLiveSession(t *testing.T) {
	app := sessionTestApp(session.New(), time.Now().Add(time.Hour).Unix())
	cookie := openSession(t, app)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "user=7 org=3", string(body[:n]))
}

func TestWebAuthMiddlewareExpiredSession(t *testing.T) {
	app := sessionTestApp(session.New(), time.Now().Add(-time.Minute).Unix())
	cookie := openSession(t, app)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestGuestMiddlewareRedirectsLoggedIn(t *testing.T) {
	app := sessionTestApp(session.New(), time.Now().Add(time.Hour).Unix())
	cookie := openSession(t, app)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestGuestMiddlewareLetsAnonymousThrough(t *testing.T) {
	app := sessionTestApp(session.New(), 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
