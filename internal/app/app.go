// Package app contains the web front-end: the admin panel and the public
// blog/guestbook surface.
package app

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/zhanghaidi/nako-blog/internal/config"
	"github.com/zhanghaidi/nako-blog/internal/session"
	"github.com/zhanghaidi/nako-blog/internal/storage"
)

// New creates the web server with all routes and middleware bound.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	store storage.Store,
	sessions session.Store,
) *echo.Echo {
	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)
	srv.Renderer = newRenderer()

	if cfg.DevMode {
		srv.Debug = true
		srv.Use(logRequests(logger))
	} else {
		srv.Use(middleware.Recover())
	}

	srv.Use(
		middleware.Decompress(),
		middleware.Gzip(),
		middleware.Secure(),
		middleware.RequestID(),
		session.Middleware(sessions),
	)

	handler{cfg: cfg, logger: logger, store: store}.register(srv)
	srv.Static(cfg.UploadBaseURL, cfg.UploadDir)
	return srv
}

type handler struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.Store
}

func (h handler) register(e *echo.Echo) {
	e.GET("/", h.home)
	e.POST("/guestbook", h.guestbookSubmit)

	admin := e.Group("/admin", AdminGate())

	admin.GET("/auth/captcha", h.captcha)
	admin.GET("/auth/login", h.loginPage)
	admin.POST("/auth/login", h.loginSubmit)
	admin.GET("/auth/logout", h.logout)

	admin.GET("/index", h.adminIndex)
	admin.GET("/index/console", h.console)

	admin.GET("/user/index", h.userIndex)
	admin.GET("/user/list", h.userList)
	admin.GET("/user/detail", h.userDetail)
	admin.GET("/user/create", h.userCreate)
	admin.POST("/user/create", h.userCreateSave)
	admin.GET("/user/update", h.userUpdate)
	admin.POST("/user/update", h.userUpdateSave)
	admin.POST("/user/status", h.userUpdateStatus)
	admin.GET("/user/update-password", h.userUpdatePassword)
	admin.POST("/user/update-password", h.userUpdatePasswordSave)
	admin.POST("/user/delete", h.userDelete)

	admin.GET("/guestbook/index", h.guestbookIndex)
	admin.GET("/guestbook/list", h.guestbookList)
	admin.GET("/guestbook/detail", h.guestbookDetail)
	admin.POST("/guestbook/delete", h.guestbookDelete)
	admin.POST("/guestbook/batch-delete", h.guestbookBatchDelete)
	admin.POST("/guestbook/status", h.guestbookUpdateStatus)

	admin.POST("/upload/file", h.uploadFile)
	admin.POST("/upload/avatar", h.uploadAvatar)
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(
				req.Context(),
				slog.LevelDebug,
				"request handled",
				attrs...,
			)
			return err
		}
	}
}
