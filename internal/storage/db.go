package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand/v2"
	"regexp"

	"github.com/influxdata/influxdb/pkg/snowflake"

	"github.com/zhanghaidi/nako-blog/internal/config"
	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

// Username validation constraints.
const (
	minUsernameLen = 3
	maxUsernameLen = 64
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validateUsername validates that a username meets the requirements:
// 3-64 characters, alphanumeric and underscores only.
func validateUsername(name string) bool {
	return len(name) >= minUsernameLen &&
		len(name) <= maxUsernameLen &&
		usernameRegex.MatchString(name)
}

// DB is a [Store] backed by a SQLite database.
type DB struct {
	ids     *snowflake.Generator
	db      *sql.DB
	queries *db.Queries
}

// NewDB initializes a DB with the given config and logger.
func NewDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	handle, err := db.Open(ctx, logger, cfg.DBFilepath)
	if err != nil {
		return nil, err
	}
	return &DB{
		ids:     snowflake.New(rand.IntN(1023)), //nolint:gosec,mnd // this isn't for crypto
		db:      handle,
		queries: db.New(handle),
	}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

// ListUsers satisfies the [Users] interface.
func (d *DB) ListUsers(ctx context.Context, name string, limit, offset int64) ([]db.User, int64, error) {
	users, err := d.queries.ListUsers(ctx, db.ListUsersParams{
		Name:   name,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, err
	}
	count, err := d.queries.CountUsers(ctx, name)
	return users, count, err
}

// GetUser satisfies the [Users] interface.
func (d *DB) GetUser(ctx context.Context, userID uint64) (db.User, error) {
	user, err := d.queries.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// GetUserByName satisfies the [Users] interface.
func (d *DB) GetUserByName(ctx context.Context, name string) (db.User, error) {
	user, err := d.queries.GetUserByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// CreateUser satisfies the [Users] interface.
func (d *DB) CreateUser(ctx context.Context, user db.User) (db.User, error) {
	if !validateUsername(user.Name) {
		return user, ErrInvalidUsername
	}
	switch _, err := d.queries.GetUserByName(ctx, user.Name); {
	case err == nil:
		return user, ErrAlreadyExists
	case !errors.Is(err, sql.ErrNoRows):
		return user, err
	}
	if user.ID == 0 {
		user.ID = d.ids.Next()
	}
	return user, d.queries.InsertUser(ctx, user)
}

// UpdateUser satisfies the [Users] interface.
func (d *DB) UpdateUser(ctx context.Context, user db.User) error {
	if !validateUsername(user.Name) {
		return ErrInvalidUsername
	}
	return changedRows(d.queries.UpdateUser(ctx, user))
}

// UpdateUserStatus satisfies the [Users] interface.
func (d *DB) UpdateUserStatus(ctx context.Context, userID uint64, status int64) error {
	return changedRows(d.queries.UpdateUserStatus(ctx, userID, status))
}

// UpdateUserPassword satisfies the [Users] interface.
func (d *DB) UpdateUserPassword(ctx context.Context, userID uint64, hash []byte) error {
	return changedRows(d.queries.UpdateUserPassword(ctx, userID, hash))
}

// UpdateUserAvatar satisfies the [Users] interface.
func (d *DB) UpdateUserAvatar(ctx context.Context, userID uint64, avatar string) error {
	return changedRows(d.queries.UpdateUserAvatar(ctx, userID, avatar))
}

// DeleteUser satisfies the [Users] interface.
func (d *DB) DeleteUser(ctx context.Context, userID uint64) error {
	return changedRows(d.queries.DeleteUser(ctx, userID))
}

// ListGuestbook satisfies the [Guestbooks] interface.
func (d *DB) ListGuestbook(
	ctx context.Context,
	filter db.GuestbookFilter,
	limit, offset int64,
) ([]db.Guestbook, int64, error) {
	entries, err := d.queries.ListGuestbook(ctx, db.ListGuestbookParams{
		Filter: filter,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, err
	}
	count, err := d.queries.CountGuestbook(ctx, filter)
	return entries, count, err
}

// GetGuestbook satisfies the [Guestbooks] interface.
func (d *DB) GetGuestbook(ctx context.Context, id uint64) (db.Guestbook, error) {
	entry, err := d.queries.GetGuestbook(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return entry, ErrNotFound
	}
	return entry, err
}

// CreateGuestbook satisfies the [Guestbooks] interface.
func (d *DB) CreateGuestbook(ctx context.Context, entry db.Guestbook) (db.Guestbook, error) {
	if entry.ID == 0 {
		entry.ID = d.ids.Next()
	}
	return entry, d.queries.InsertGuestbook(ctx, entry)
}

// UpdateGuestbookStatus satisfies the [Guestbooks] interface.
func (d *DB) UpdateGuestbookStatus(ctx context.Context, id uint64, status int64) error {
	return changedRows(d.queries.UpdateGuestbookStatus(ctx, id, status))
}

// DeleteGuestbook satisfies the [Guestbooks] interface.
func (d *DB) DeleteGuestbook(ctx context.Context, id uint64) error {
	return changedRows(d.queries.DeleteGuestbook(ctx, id))
}

// GetAttachByMD5 satisfies the [Attachments] interface.
func (d *DB) GetAttachByMD5(ctx context.Context, md5 string) (db.Attach, error) {
	attach, err := d.queries.GetAttachByMD5(ctx, md5)
	if errors.Is(err, sql.ErrNoRows) {
		return attach, ErrNotFound
	}
	return attach, err
}

// CreateAttach satisfies the [Attachments] interface.
func (d *DB) CreateAttach(ctx context.Context, attach db.Attach) (db.Attach, error) {
	if attach.ID == 0 {
		attach.ID = d.ids.Next()
	}
	return attach, d.queries.InsertAttach(ctx, attach)
}

// CountAttaches satisfies the [Attachments] interface.
func (d *DB) CountAttaches(ctx context.Context) (int64, error) {
	return d.queries.CountAttaches(ctx)
}

// changedRows maps an update that touched no rows to [ErrNotFound].
func changedRows(affected int64, err error) error {
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*DB)(nil)
