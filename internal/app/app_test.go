package app

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/zhanghaidi/nako-blog/internal/config"
	"github.com/zhanghaidi/nako-blog/internal/sec"
	"github.com/zhanghaidi/nako-blog/internal/session"
	"github.com/zhanghaidi/nako-blog/internal/storage"
	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

type testApp struct {
	srv      *echo.Echo
	cfg      *config.Config
	store    storage.Store
	sessions *session.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := config.Default()
	cfg.DBFilepath = filepath.Join(t.TempDir(), "db.sqlite")
	cfg.UploadDir = t.TempDir()

	logger := slog.New(slog.DiscardHandler)
	store, err := storage.NewDB(t.Context(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sessions := session.NewMemoryStore()
	return &testApp{
		srv:      New(cfg, logger, store, sessions),
		cfg:      cfg,
		store:    store,
		sessions: sessions,
	}
}

// newSID returns a fresh session ID plus its typed session view.
func (a *testApp) newSID(t *testing.T) (string, *session.Session) {
	t.Helper()
	sid := uuid.NewString()
	return sid, session.New(sid, a.sessions)
}

func (a *testApp) get(t *testing.T, target, sid string) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, http.MethodGet, target, sid, "", "")
}

func (a *testApp) postForm(t *testing.T, target, sid string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, http.MethodPost, target, sid, echo.MIMEApplicationForm, form.Encode())
}

func (a *testApp) do(t *testing.T, method, target, sid, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
	}
	rec := httptest.NewRecorder()
	a.srv.ServeHTTP(rec, req)
	return rec
}

// envelope decodes the JSON response body.
func envelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// createUser stores an account with a bcrypt-hashed password.
func (a *testApp) createUser(t *testing.T, name, password string, status int64) db.User {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	user, err := a.store.CreateUser(t.Context(), db.User{
		Name:         name,
		Nickname:     name,
		PasswordHash: hash,
		Status:       status,
	})
	require.NoError(t, err)
	return user
}

// encryptPassword mimics the login form: it reads the session-bound private
// key, derives the public key and returns the base64 ciphertext a browser
// would submit.
func (a *testApp) encryptPassword(t *testing.T, ctx context.Context, sid, password string) string {
	t.Helper()

	privPEM, err := a.sessions.GetSecret(ctx, sid)
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(privPEM))
	require.NotNil(t, block)
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	require.NoError(t, err)

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, &key.PublicKey, []byte(password))
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(ciphertext)
}

// login drives the full flow: page view for the keypair, a planted challenge
// answer, then the form submission.
func (a *testApp) login(t *testing.T, sid string, sess *session.Session, name, password string) Envelope {
	t.Helper()
	ctx := t.Context()

	rec := a.get(t, "/admin/auth/login", sid)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, sess.SetChallenge(ctx, "a1b2"))
	rec = a.postForm(t, "/admin/auth/login", sid, url.Values{
		"name":     {name},
		"password": {a.encryptPassword(t, ctx, sid, password)},
		"captcha":  {"a1b2"},
	})
	return envelope(t, rec)
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
