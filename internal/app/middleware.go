package app

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zhanghaidi/nako-blog/internal/session"
)

// gateAllowList are the admin path prefixes reachable without a session
// identity: challenge issuance, login submission, and logout (which must
// stay a redirect for visitors whose session already expired).
var gateAllowList = []string{
	"/admin/auth/captcha",
	"/admin/auth/login",
	"/admin/auth/logout",
}

// AdminGate short-circuits requests to protected admin routes when the
// session carries no identity. Write-style (POST) requests receive a JSON
// error envelope; read-style requests receive a rendered error page with a
// login redirect.
func AdminGate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, allowed := range gateAllowList {
				if strings.HasPrefix(path, allowed) {
					return next(c)
				}
			}

			sess := session.FromContext(c)
			id, err := sess.LoginID(c.Request().Context())
			if err != nil || id == 0 {
				if c.Request().Method == http.MethodPost {
					return jsonFail(c, msgNeedLogin)
				}
				return c.Render(http.StatusOK, "error.html", map[string]any{
					"Message": msgNeedLogin,
					"URL":     loginPath,
				})
			}
			return next(c)
		}
	}
}
