package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanghaidi/nako-blog/internal/session"
	"github.com/zhanghaidi/nako-blog/internal/storage"
	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

// loggedIn returns a session ID with an established admin identity.
func loggedIn(t *testing.T, app *testApp, name string) (string, *session.Session) {
	t.Helper()
	sid, sess := app.newSID(t)
	user := app.createUser(t, name, "s3cret", 1)
	require.NoError(t, sess.SetLoginID(t.Context(), user.ID))
	return sid, sess
}

func (a *testApp) createEntry(t *testing.T, name, message string, status int64) db.Guestbook {
	t.Helper()
	entry, err := a.store.CreateGuestbook(t.Context(), db.Guestbook{
		Name:    name,
		Message: message,
		Status:  status,
		AddTime: time.Now().Unix(),
	})
	require.NoError(t, err)
	return entry
}

func TestGuestbookSubmit(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	t.Run("markup is stripped and entries start unpublished", func(t *testing.T) {
		env := envelope(t, app.postForm(t, "/guestbook", "", url.Values{
			"name":    {"visitor"},
			"message": {`hello <script>alert(1)</script>world`},
		}))
		require.True(t, env.Success)
		assert.Equal(t, "提交成功", env.Message)

		entries, count, err := app.store.ListGuestbook(t.Context(), db.GuestbookFilter{Name: "visitor"}, 10, 0)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
		assert.Equal(t, "hello world", entries[0].Message)
		assert.Zero(t, entries[0].Status)
	})

	t.Run("empty fields are rejected", func(t *testing.T) {
		env := envelope(t, app.postForm(t, "/guestbook", "", url.Values{"message": {"hi"}}))
		assert.False(t, env.Success)
		assert.Equal(t, "姓名不能为空", env.Message)

		env = envelope(t, app.postForm(t, "/guestbook", "", url.Values{"name": {"x"}}))
		assert.False(t, env.Success)
		assert.Equal(t, "留言内容不能为空", env.Message)

		// markup-only content counts as empty
		env = envelope(t, app.postForm(t, "/guestbook", "", url.Values{
			"name":    {"x"},
			"message": {"<img src=x>"},
		}))
		assert.False(t, env.Success)
		assert.Equal(t, "留言内容不能为空", env.Message)
	})
}

func TestHome(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.createEntry(t, "alice", "published words", 1)
	app.createEntry(t, "bob", "pending words", 0)

	rec := app.get(t, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "published words")
	assert.NotContains(t, rec.Body.String(), "pending words")
}

func TestListIDsSurviveJSON(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	sid, _ := loggedIn(t, app, "auditor")

	// an ID just past the largest integer float64 can hold exactly
	const bigID uint64 = 1<<53 + 1
	_, err := app.store.CreateGuestbook(t.Context(), db.Guestbook{
		ID:      bigID,
		Name:    "big",
		Message: "id fidelity",
	})
	require.NoError(t, err)

	rec := app.get(t, "/admin/guestbook/list?name=big", sid)
	assert.Contains(t, rec.Body.String(), `"id":"`+itoa(bigID)+`"`)

	env := envelope(t, rec)
	require.True(t, env.Success)
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var data listData[guestbookView]
	require.NoError(t, json.Unmarshal(raw, &data))
	require.Len(t, data.List, 1)
	assert.Equal(t, bigID, data.List[0].ID)
}

func TestGuestbookAdmin(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	sid, _ := loggedIn(t, app, "curator")

	first := app.createEntry(t, "alice", "first", 0)
	second := app.createEntry(t, "bob", "second", 1)
	third := app.createEntry(t, "carol", "third", 0)

	t.Run("list with filters", func(t *testing.T) {
		env := envelope(t, app.get(t, "/admin/guestbook/list?status=0", sid))
		require.True(t, env.Success)
		assert.Equal(t, "获取成功", env.Message)

		raw, err := json.Marshal(env.Data)
		require.NoError(t, err)
		var data listData[guestbookView]
		require.NoError(t, json.Unmarshal(raw, &data))
		assert.EqualValues(t, 2, data.Count)

		env = envelope(t, app.get(t, "/admin/guestbook/list?name=bob", sid))
		require.True(t, env.Success)
		raw, err = json.Marshal(env.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &data))
		require.Len(t, data.List, 1)
		assert.Equal(t, second.ID, data.List[0].ID)
	})

	t.Run("detail", func(t *testing.T) {
		rec := app.get(t, "/admin/guestbook/detail?id="+itoa(first.ID), sid)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "alice")

		rec = app.get(t, "/admin/guestbook/detail?id=99999", sid)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "留言不存在")
	})

	t.Run("status update", func(t *testing.T) {
		env := envelope(t, app.postForm(t, "/admin/guestbook/status?id="+itoa(first.ID), sid, url.Values{"status": {"1"}}))
		require.True(t, env.Success)

		entry, err := app.store.GetGuestbook(t.Context(), first.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, entry.Status)

		env = envelope(t, app.postForm(t, "/admin/guestbook/status?id="+itoa(first.ID), sid, url.Values{"status": {"7"}}))
		assert.False(t, env.Success)
		assert.Equal(t, "状态不能为空", env.Message)
	})

	t.Run("delete", func(t *testing.T) {
		env := envelope(t, app.postForm(t, "/admin/guestbook/delete", sid, url.Values{"id": {itoa(first.ID)}}))
		require.True(t, env.Success)
		assert.Equal(t, "删除成功", env.Message)

		_, err := app.store.GetGuestbook(t.Context(), first.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		env = envelope(t, app.postForm(t, "/admin/guestbook/delete", sid, url.Values{"id": {itoa(first.ID)}}))
		assert.False(t, env.Success)
		assert.Equal(t, "留言不存在", env.Message)
	})

	t.Run("batch delete", func(t *testing.T) {
		env := envelope(t, app.postForm(t, "/admin/guestbook/batch-delete", sid, url.Values{
			"ids": {itoa(second.ID) + "," + itoa(third.ID)},
		}))
		require.True(t, env.Success)
		assert.Equal(t, "批量删除成功", env.Message)

		_, count, err := app.store.ListGuestbook(t.Context(), db.GuestbookFilter{}, 10, 0)
		require.NoError(t, err)
		assert.Zero(t, count)

		env = envelope(t, app.postForm(t, "/admin/guestbook/batch-delete", sid, url.Values{"ids": {""}}))
		assert.False(t, env.Success)
		assert.Equal(t, "ID不能为空", env.Message)
	})
}
