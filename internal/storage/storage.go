// Package storage provides the state management for users, guestbook entries
// and uploaded attachments.
package storage

import (
	"context"

	"github.com/zhanghaidi/nako-blog/internal/storage/db"
)

const (
	// ErrNotFound is returned when a record cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique record already exists.
	ErrAlreadyExists Error = "already exists"
	// ErrInvalidUsername is returned when a username fails validation.
	ErrInvalidUsername Error = "username must be 3-64 characters, alphanumeric and underscores only"
	// ErrInternal is returned for any other type of error.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods on a storage implementation that are responsible for
// accessing and modifying administrator accounts.
type Users interface {
	// ListUsers returns a page of users plus the total count matching the
	// optional name filter.
	ListUsers(ctx context.Context, name string, limit, offset int64) ([]db.User, int64, error)
	// GetUser returns a single user with the specified ID. An [ErrNotFound] is
	// returned if the user ID does not exist.
	GetUser(ctx context.Context, userID uint64) (db.User, error)
	// GetUserByName returns a single user with the specified name. An
	// [ErrNotFound] is returned if the user name does not exist.
	GetUserByName(ctx context.Context, name string) (db.User, error)
	// CreateUser creates the user, assigning an ID if unset. An
	// [ErrAlreadyExists] error is returned if the username is already in use.
	CreateUser(ctx context.Context, user db.User) (db.User, error)
	// UpdateUser updates the profile fields of an existing user.
	UpdateUser(ctx context.Context, user db.User) error
	// UpdateUserStatus toggles the active flag of a user.
	UpdateUserStatus(ctx context.Context, userID uint64, status int64) error
	// UpdateUserPassword replaces the stored password hash of a user.
	UpdateUserPassword(ctx context.Context, userID uint64, hash []byte) error
	// UpdateUserAvatar replaces the avatar URL of a user.
	UpdateUserAvatar(ctx context.Context, userID uint64, avatar string) error
	// DeleteUser removes a user. Note that this is a hard delete; data is not
	// recoverable.
	DeleteUser(ctx context.Context, userID uint64) error
}

// Guestbooks are the methods responsible for visitor messages.
type Guestbooks interface {
	// ListGuestbook returns a page of entries plus the total count matching
	// the filter.
	ListGuestbook(ctx context.Context, filter db.GuestbookFilter, limit, offset int64) ([]db.Guestbook, int64, error)
	// GetGuestbook returns a single entry. An [ErrNotFound] is returned if the
	// ID does not exist.
	GetGuestbook(ctx context.Context, id uint64) (db.Guestbook, error)
	// CreateGuestbook creates the entry, assigning an ID if unset.
	CreateGuestbook(ctx context.Context, entry db.Guestbook) (db.Guestbook, error)
	// UpdateGuestbookStatus toggles the published flag of an entry.
	UpdateGuestbookStatus(ctx context.Context, id uint64, status int64) error
	// DeleteGuestbook removes an entry.
	DeleteGuestbook(ctx context.Context, id uint64) error
}

// Attachments are the methods responsible for uploaded files.
type Attachments interface {
	// GetAttachByMD5 returns the attachment matching the content checksum. An
	// [ErrNotFound] is returned if no upload with that checksum exists.
	GetAttachByMD5(ctx context.Context, md5 string) (db.Attach, error)
	// CreateAttach creates the attachment record, assigning an ID if unset.
	CreateAttach(ctx context.Context, attach db.Attach) (db.Attach, error)
	// CountAttaches returns the total number of attachments.
	CountAttaches(ctx context.Context) (int64, error)
}

// Store is the combination interface for [Users], [Guestbooks] and
// [Attachments].
type Store interface {
	Users
	Guestbooks
	Attachments
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}
