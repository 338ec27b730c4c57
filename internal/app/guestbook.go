package app

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zhanghaidi/nako-blog/internal/pagination"
	"github.com/zhanghaidi/nako-blog/internal/storage"
	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

// guestbookView is a guestbook entry shaped for JSON responses. IDs travel as
// strings, like everywhere else in the admin API.
type guestbookView struct {
	ID      uint64 `json:"id,string"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	QQ      string `json:"qq"`
	Weixin  string `json:"weixin"`
	Status  int64  `json:"status"`
	AddTime int64  `json:"add_time"`
}

func toGuestbookView(g db.Guestbook) guestbookView {
	return guestbookView{
		ID:      g.ID,
		Name:    g.Name,
		Message: g.Message,
		Phone:   g.Phone,
		Email:   g.Email,
		QQ:      g.QQ,
		Weixin:  g.Weixin,
		Status:  g.Status,
		AddTime: g.AddTime,
	}
}

func (h handler) guestbookIndex(c echo.Context) error {
	return c.Render(http.StatusOK, "guestbook_index.html", nil)
}

func (h handler) guestbookList(c echo.Context) error {
	ctx := c.Request().Context()
	page := pagination.Parse(c.QueryParam("page"), c.QueryParam("limit"))

	filter := db.GuestbookFilter{
		Name:    c.QueryParam("name"),
		Message: c.QueryParam("message"),
		Phone:   c.QueryParam("phone"),
		Email:   c.QueryParam("email"),
		QQ:      c.QueryParam("qq"),
		Weixin:  c.QueryParam("weixin"),
	}
	if raw := c.QueryParam("status"); raw != "" {
		status, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && (status == 0 || status == 1) {
			filter.Status = &status
		}
	}

	entries, count, err := h.store.ListGuestbook(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return jsonFail(c, "获取失败")
	}

	views := make([]guestbookView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, toGuestbookView(entry))
	}
	return jsonOK(c, "获取成功", listData[guestbookView]{List: views, Count: count})
}

func (h handler) guestbookDetail(c echo.Context) error {
	ctx := c.Request().Context()

	id := parseID(c.QueryParam("id"))
	if id == 0 {
		return h.errorPage(c, "ID不能为空")
	}
	entry, err := h.store.GetGuestbook(ctx, id)
	if err != nil {
		return h.errorPage(c, "留言不存在")
	}
	return c.Render(http.StatusOK, "guestbook_detail.html", map[string]any{"Data": toGuestbookView(entry)})
}

func (h handler) guestbookDelete(c echo.Context) error {
	ctx := c.Request().Context()

	id := parseID(c.FormValue("id"))
	if id == 0 {
		return jsonFail(c, "ID不能为空")
	}
	if err := h.store.DeleteGuestbook(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return jsonFail(c, "留言不存在")
		}
		return jsonFail(c, "删除失败")
	}
	return jsonOK(c, "删除成功", "")
}

func (h handler) guestbookBatchDelete(c echo.Context) error {
	ctx := c.Request().Context()

	raw := strings.Split(c.FormValue("ids"), ",")
	var ids []uint64
	for _, part := range raw {
		if id := parseID(strings.TrimSpace(part)); id != 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return jsonFail(c, "ID不能为空")
	}

	for _, id := range ids {
		if err := h.store.DeleteGuestbook(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return jsonFail(c, "删除失败")
		}
	}
	return jsonOK(c, "批量删除成功", "")
}

func (h handler) guestbookUpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id := parseID(c.QueryParam("id"))
	if id == 0 {
		return jsonFail(c, "ID不能为空")
	}
	status, err := strconv.ParseInt(c.FormValue("status"), 10, 64)
	if err != nil || (status != 0 && status != 1) {
		return jsonFail(c, "状态不能为空")
	}

	if err := h.store.UpdateGuestbookStatus(ctx, id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return jsonFail(c, "留言不存在")
		}
		return jsonFail(c, "更新失败")
	}
	return jsonOK(c, "更新成功", "")
}
