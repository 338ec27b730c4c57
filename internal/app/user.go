package app

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zhanghaidi/nako-blog/internal/pagination"
	"github.com/zhanghaidi/nako-blog/internal/sec"
	"github.com/zhanghaidi/nako-blog/internal/session"
	"github.com/zhanghaidi/nako-blog/internal/storage"
	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

// listData is the payload for admin list endpoints.
type listData[T any] struct {
	List  []T   `json:"list"`
	Count int64 `json:"count"`
}

// userView is a user without credential material, safe for list/detail
// responses. Snowflake IDs travel as strings; they exceed the integer range
// a JSON consumer can read exactly.
type userView struct {
	ID       uint64 `json:"id,string"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Sign     string `json:"sign"`
	Status   int64  `json:"status"`
	AddTime  int64  `json:"add_time"`
}

func toUserView(u db.User) userView {
	return userView{
		ID:       u.ID,
		Name:     u.Name,
		Nickname: u.Nickname,
		Avatar:   u.Avatar,
		Sign:     u.Sign,
		Status:   u.Status,
		AddTime:  u.AddTime,
	}
}

func parseID(value string) uint64 {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func (h handler) userIndex(c echo.Context) error {
	return c.Render(http.StatusOK, "user_index.html", nil)
}

func (h handler) userList(c echo.Context) error {
	ctx := c.Request().Context()
	page := pagination.Parse(c.QueryParam("page"), c.QueryParam("limit"))

	users, count, err := h.store.ListUsers(ctx, c.QueryParam("name"), page.Limit, page.Offset())
	if err != nil {
		return jsonFail(c, "获取失败")
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return jsonOK(c, "获取成功", listData[userView]{List: views, Count: count})
}

func (h handler) userDetail(c echo.Context) error {
	ctx := c.Request().Context()

	id := parseID(c.QueryParam("id"))
	if id == 0 {
		return h.errorPage(c, "ID不能为空")
	}
	user, err := h.store.GetUser(ctx, id)
	if err != nil {
		return h.errorPage(c, "账号不存在")
	}
	return c.Render(http.StatusOK, "user_detail.html", map[string]any{"Data": toUserView(user)})
}

func (h handler) userCreate(c echo.Context) error {
	return c.Render(http.StatusOK, "user_create.html", nil)
}

func (h handler) userCreateSave(c echo.Context) error {
	ctx := c.Request().Context()

	name := strings.TrimSpace(c.FormValue("name"))
	password := c.FormValue("password")
	if name == "" {
		return jsonFail(c, msgNameRequired)
	}
	if password == "" {
		return jsonFail(c, msgPasswordRequired)
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return jsonFail(c, "创建失败")
	}
	user, err := h.store.CreateUser(ctx, db.User{
		Name:         name,
		Nickname:     c.FormValue("nickname"),
		Sign:         c.FormValue("sign"),
		PasswordHash: hash,
		Status:       1,
		AddTime:      time.Now().Unix(),
		AddIP:        c.RealIP(),
	})
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return jsonFail(c, "账号已经存在")
	case errors.Is(err, storage.ErrInvalidUsername):
		return jsonFail(c, "账号格式错误")
	case err != nil:
		return jsonFail(c, "创建失败")
	}
	return jsonOK(c, "创建成功", map[string]any{"id": formatID(user.ID)})
}

func (h handler) userUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	id := parseID(c.QueryParam("id"))
	if id == 0 {
		return h.errorPage(c, "ID不能为空")
	}
	user, err := h.store.GetUser(ctx, id)
	if err != nil {
		return h.errorPage(c, "账号不存在")
	}
	return c.Render(http.StatusOK, "user_update.html", map[string]any{"Data": toUserView(user)})
}

func (h handler) userUpdateSave(c echo.Context) error {
	ctx := c.Request().Context()

	id := parseID(c.QueryParam("id"))
	if id == 0 {
		return jsonFail(c, "ID不能为空")
	}
	user, err := h.store.GetUser(ctx, id)
	if err != nil {
		return jsonFail(c, "账号不存在")
	}

	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		user.Name = name
	}
	user.Nickname = c.FormValue("nickname")
	user.Sign = c.FormValue("sign")

	switch err := h.store.UpdateUser(ctx, user); {
	case errors.Is(err, storage.ErrInvalidUsername):
		return jsonFail(c, "账号格式错误")
	case err != nil:
		return jsonFail(c, "更新失败")
	}
	return jsonOK(c, "更新成功", "")
}

func (h handler) userUpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id := parseID(c.QueryParam("id"))
	if id == 0 {
		return jsonFail(c, "ID不能为空")
	}
	status, err := strconv.ParseInt(c.FormValue("status"), 10, 64)
	if err != nil || (status != 0 && status != 1) {
		return jsonFail(c, "状态不能为空")
	}

	if err := h.store.UpdateUserStatus(ctx, id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return jsonFail(c, "要更改的账号不存在")
		}
		return jsonFail(c, "更新失败")
	}
	return jsonOK(c, "更新成功", "")
}

func (h handler) userUpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()

	id := parseID(c.QueryParam("id"))
	if id == 0 {
		return h.errorPage(c, "ID不能为空")
	}
	user, err := h.store.GetUser(ctx, id)
	if err != nil {
		return h.errorPage(c, "账号不存在")
	}
	return c.Render(http.StatusOK, "user_password.html", map[string]any{"Data": toUserView(user)})
}

func (h handler) userUpdatePasswordSave(c echo.Context) error {
	ctx := c.Request().Context()

	id := parseID(c.QueryParam("id"))
	if id == 0 {
		return jsonFail(c, "ID不能为空")
	}
	password := c.FormValue("password")
	if password == "" {
		return jsonFail(c, msgPasswordRequired)
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return jsonFail(c, "更新失败")
	}
	if err := h.store.UpdateUserPassword(ctx, id, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return jsonFail(c, "要更改的账号不存在")
		}
		return jsonFail(c, "更新失败")
	}
	return jsonOK(c, "更新成功", "")
}

func (h handler) userDelete(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)

	id := parseID(c.FormValue("id"))
	if id == 0 {
		return jsonFail(c, "ID不能为空")
	}
	if loginID, err := sess.LoginID(ctx); err == nil && loginID == id {
		return jsonFail(c, "不能删除自己")
	}
	if _, err := h.store.GetUser(ctx, id); err != nil {
		return jsonFail(c, "要删除的账号不存在")
	}
	if err := h.store.DeleteUser(ctx, id); err != nil {
		return jsonFail(c, "删除失败")
	}
	return jsonOK(c, "删除成功", "")
}

// errorPage renders the admin HTML error page.
func (h handler) errorPage(c echo.Context, message string) error {
	return c.Render(http.StatusOK, "error.html", map[string]any{
		"Message": message,
		"URL":     "",
	})
}
