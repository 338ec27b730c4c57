package app

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zhanghaidi/nako-blog/internal/content"
	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

// published is the guestbook status value for publicly visible entries.
const published int64 = 1

func (h handler) home(c echo.Context) error {
	ctx := c.Request().Context()

	status := published
	entries, _, err := h.store.ListGuestbook(ctx, db.GuestbookFilter{Status: &status}, 20, 0)
	if err != nil {
		h.logger.Error("listing guestbook entries", "error", err)
		entries = nil
	}

	views := make([]guestbookView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, toGuestbookView(entry))
	}
	return c.Render(http.StatusOK, "home.html", map[string]any{"Guestbook": views})
}

func (h handler) guestbookSubmit(c echo.Context) error {
	ctx := c.Request().Context()

	name := content.NormalizeVisitorText(c.FormValue("name"))
	message := content.NormalizeVisitorText(c.FormValue("message"))
	if name == "" {
		return jsonFail(c, "姓名不能为空")
	}
	if message == "" {
		return jsonFail(c, "留言内容不能为空")
	}

	// New entries stay hidden until an administrator publishes them.
	_, err := h.store.CreateGuestbook(ctx, db.Guestbook{
		Name:    name,
		Message: message,
		Phone:   content.NormalizeVisitorText(c.FormValue("phone")),
		Email:   content.NormalizeVisitorText(c.FormValue("email")),
		QQ:      content.NormalizeVisitorText(c.FormValue("qq")),
		Weixin:  content.NormalizeVisitorText(c.FormValue("weixin")),
		Status:  0,
		AddTime: time.Now().Unix(),
		AddIP:   c.RealIP(),
	})
	if err != nil {
		return jsonFail(c, "提交失败")
	}
	return jsonOK(c, "提交成功", "")
}
