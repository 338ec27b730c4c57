package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zhanghaidi/nako-blog/internal/session"
	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

// adminIndex renders the admin home page with the logged-in user.
func (h handler) adminIndex(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)

	var user db.User
	if id, err := sess.LoginID(ctx); err == nil && id > 0 {
		user, _ = h.store.GetUser(ctx, id)
	}

	return c.Render(http.StatusOK, "index.html", map[string]any{"LoginUser": user})
}

// console renders the admin dashboard with record counts.
func (h handler) console(c echo.Context) error {
	ctx := c.Request().Context()

	_, userCount, err := h.store.ListUsers(ctx, "", 1, 0)
	if err != nil {
		userCount = 0
	}
	_, guestbookCount, err := h.store.ListGuestbook(ctx, db.GuestbookFilter{}, 1, 0)
	if err != nil {
		guestbookCount = 0
	}
	attachCount, err := h.store.CountAttaches(ctx)
	if err != nil {
		attachCount = 0
	}

	return c.Render(http.StatusOK, "console.html", map[string]any{
		"UserCount":      userCount,
		"GuestbookCount": guestbookCount,
		"AttachCount":    attachCount,
	})
}
