package app

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zhanghaidi/nako-blog/internal/session"
	"github.com/zhanghaidi/nako-blog/internal/storage"
	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

// uploadView describes one stored file in an upload response. IDs travel as
// strings, like everywhere else in the admin API.
type uploadView struct {
	ID  uint64 `json:"id,string"`
	URL string `json:"url"`
}

// maxUploadBytes caps a single uploaded file at 16 MiB.
const maxUploadBytes = 16 << 20

func (h handler) uploadFile(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := c.MultipartForm()
	if err != nil {
		return jsonFail(c, "上传失败")
	}
	files := form.File["file"]
	if len(files) == 0 {
		return jsonFail(c, "上传文件不能为空")
	}

	var views []uploadView
	for _, header := range files {
		if header.Size > maxUploadBytes {
			return jsonFail(c, "上传文件过大")
		}
		src, err := header.Open()
		if err != nil {
			return jsonFail(c, "上传失败")
		}
		data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
		src.Close()
		if err != nil || len(data) > maxUploadBytes {
			return jsonFail(c, "上传失败")
		}

		sum := md5.Sum(data)
		checksum := hex.EncodeToString(sum[:])

		// Identical content is stored once; re-uploads return the
		// existing record.
		if existing, err := h.store.GetAttachByMD5(ctx, checksum); err == nil {
			views = append(views, uploadView{ID: existing.ID, URL: h.uploadURL(existing.Path)})
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return jsonFail(c, "上传失败")
		}

		ext := filepath.Ext(header.Filename)
		name := uuid.NewString() + ext
		if err := h.writeUpload(name, data); err != nil {
			h.logger.Error("upload write failed", "error", err)
			return jsonFail(c, "上传失败")
		}

		attach, err := h.store.CreateAttach(ctx, db.Attach{
			Name:    header.Filename,
			Path:    name,
			Ext:     ext,
			Size:    header.Size,
			MD5:     checksum,
			Status:  1,
			AddTime: time.Now().Unix(),
			AddIP:   c.RealIP(),
		})
		if err != nil {
			return jsonFail(c, "上传失败")
		}
		views = append(views, uploadView{ID: attach.ID, URL: h.uploadURL(attach.Path)})
	}
	return jsonOK(c, "上传成功", views)
}

func (h handler) uploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)

	loginID, err := sess.LoginID(ctx)
	if err != nil || loginID == 0 {
		return jsonFail(c, msgNeedLogin)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return jsonFail(c, "上传文件不能为空")
	}
	if header.Size > maxUploadBytes {
		return jsonFail(c, "上传文件过大")
	}
	src, err := header.Open()
	if err != nil {
		return jsonFail(c, "上传失败")
	}
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	src.Close()
	if err != nil || len(data) > maxUploadBytes {
		return jsonFail(c, "上传失败")
	}

	// The avatar filename is derived from the account ID so a new upload
	// replaces the old one.
	sum := sha1.Sum([]byte(strconv.FormatUint(loginID, 10)))
	name := path.Join("avatar", hex.EncodeToString(sum[:])+filepath.Ext(header.Filename))
	if err := h.writeUpload(name, data); err != nil {
		h.logger.Error("avatar write failed", "error", err, "user_id", loginID)
		return jsonFail(c, "上传失败")
	}

	url := h.uploadURL(name)
	if err := h.store.UpdateUserAvatar(ctx, loginID, url); err != nil {
		return jsonFail(c, "上传失败")
	}
	return jsonOK(c, "上传成功", map[string]any{"url": url})
}

func (h handler) writeUpload(name string, data []byte) error {
	dst := filepath.Join(h.cfg.UploadDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("writing upload: %w", err)
	}
	return nil
}

func (h handler) uploadURL(name string) string {
	return path.Join(h.cfg.UploadBaseURL, name)
}
