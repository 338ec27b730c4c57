package app

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanghaidi/nako-blog/internal/session"
)

func TestCaptcha(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	sid, sess := app.newSID(t)

	rec := app.get(t, "/admin/auth/captcha", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])

	answer, err := sess.Challenge(t.Context())
	require.NoError(t, err)
	assert.Len(t, answer, 4)

	t.Run("reissue replaces the bound answer", func(t *testing.T) {
		rec := app.get(t, "/admin/auth/captcha", sid)
		require.Equal(t, http.StatusOK, rec.Code)

		next, err := sess.Challenge(t.Context())
		require.NoError(t, err)
		assert.Len(t, next, 4)
		assert.NotEqual(t, answer, next)
	})
}

func TestLoginPage(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	sid, sess := app.newSID(t)

	rec := app.get(t, "/admin/auth/login", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="pubkey"`)

	// the page view binds a fresh private key to the session
	first, err := sess.AuthKey(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, first)

	t.Run("each view replaces the key", func(t *testing.T) {
		rec := app.get(t, "/admin/auth/login", sid)
		require.Equal(t, http.StatusOK, rec.Code)

		second, err := sess.AuthKey(t.Context())
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("redirects when logged in", func(t *testing.T) {
		sid, sess := app.newSID(t)
		require.NoError(t, sess.SetLoginID(t.Context(), 42))

		rec := app.get(t, "/admin/auth/login", sid)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/index", rec.Header().Get("Location"))
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	user := app.createUser(t, "admin", "s3cret", 1)
	app.createUser(t, "frozen", "s3cret", 0)

	t.Run("success", func(t *testing.T) {
		sid, sess := app.newSID(t)

		env := app.login(t, sid, sess, "admin", "s3cret")
		assert.True(t, env.Success)
		assert.Equal(t, "登陆成功", env.Message)

		id, err := sess.LoginID(t.Context())
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)

		// the ephemeral private key is gone once identity is established
		_, err = app.sessions.GetSecret(t.Context(), sid)
		assert.True(t, errors.Is(err, session.ErrNoValue))
	})

	t.Run("challenge answer is case-insensitive", func(t *testing.T) {
		sid, sess := app.newSID(t)
		ctx := t.Context()

		rec := app.get(t, "/admin/auth/login", sid)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, sess.SetChallenge(ctx, "a1b2"))

		env := envelope(t, app.postForm(t, "/admin/auth/login", sid, url.Values{
			"name":     {"admin"},
			"password": {app.encryptPassword(t, ctx, sid, "s3cret")},
			"captcha":  {"A1B2"},
		}))
		assert.True(t, env.Success)
	})

	t.Run("wrong challenge answer", func(t *testing.T) {
		sid, sess := app.newSID(t)
		ctx := t.Context()

		rec := app.get(t, "/admin/auth/login", sid)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, sess.SetChallenge(ctx, "a1b2"))

		form := url.Values{
			"name":     {"admin"},
			"password": {app.encryptPassword(t, ctx, sid, "s3cret")},
			"captcha":  {"wxyz"},
		}
		env := envelope(t, app.postForm(t, "/admin/auth/login", sid, form))
		assert.False(t, env.Success)
		assert.Equal(t, "验证码错误", env.Message)

		// the attempt consumed the challenge; the right answer no longer works
		form.Set("captcha", "a1b2")
		env = envelope(t, app.postForm(t, "/admin/auth/login", sid, form))
		assert.False(t, env.Success)
		assert.Equal(t, "验证码错误", env.Message)
	})

	t.Run("already logged in wins over everything", func(t *testing.T) {
		sid, sess := app.newSID(t)
		require.NoError(t, sess.SetLoginID(t.Context(), user.ID))

		env := envelope(t, app.postForm(t, "/admin/auth/login", sid, url.Values{}))
		assert.False(t, env.Success)
		assert.Equal(t, "你已经登陆了", env.Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		sid, _ := app.newSID(t)

		for _, tc := range []struct {
			form    url.Values
			message string
		}{
			{url.Values{}, "账号不能为空"},
			{url.Values{"name": {"admin"}}, "密码不能为空"},
			{url.Values{"name": {"admin"}, "password": {"x"}}, "验证码不能为空"},
			{url.Values{"name": {"admin"}, "password": {"x"}, "captcha": {"ab"}}, "验证码位数错误"},
		} {
			env := envelope(t, app.postForm(t, "/admin/auth/login", sid, tc.form))
			assert.False(t, env.Success)
			assert.Equal(t, tc.message, env.Message)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		sid, sess := app.newSID(t)
		env := app.login(t, sid, sess, "nobody", "s3cret")
		assert.False(t, env.Success)
		assert.Equal(t, "账号或者密码错误", env.Message)
	})

	t.Run("undecryptable password", func(t *testing.T) {
		sid, sess := app.newSID(t)
		ctx := t.Context()

		rec := app.get(t, "/admin/auth/login", sid)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, sess.SetChallenge(ctx, "a1b2"))

		env := envelope(t, app.postForm(t, "/admin/auth/login", sid, url.Values{
			"name":     {"admin"},
			"password": {"bm90LWEtY2lwaGVydGV4dA=="},
			"captcha":  {"a1b2"},
		}))
		assert.False(t, env.Success)
		assert.Equal(t, "账号或者密码错误", env.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		sid, sess := app.newSID(t)
		env := app.login(t, sid, sess, "admin", "wrong")
		assert.False(t, env.Success)
		assert.Equal(t, "账号或者密码错误", env.Message)
	})

	t.Run("disabled account", func(t *testing.T) {
		sid, sess := app.newSID(t)
		env := app.login(t, sid, sess, "frozen", "s3cret")
		assert.False(t, env.Success)
		assert.Equal(t, "账号不存在或者已被禁用", env.Message)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	sid, sess := app.newSID(t)
	require.NoError(t, sess.SetLoginID(t.Context(), 7))

	rec := app.get(t, "/admin/auth/logout", sid)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/auth/login", rec.Header().Get("Location"))

	id, err := sess.LoginID(t.Context())
	require.NoError(t, err)
	assert.Zero(t, id)

	t.Run("second logout is a no-op", func(t *testing.T) {
		rec := app.get(t, "/admin/auth/logout", sid)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/auth/login", rec.Header().Get("Location"))
	})

	t.Run("logout without a session still redirects", func(t *testing.T) {
		sid, _ := app.newSID(t)
		rec := app.get(t, "/admin/auth/logout", sid)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/auth/login", rec.Header().Get("Location"))
	})
}
