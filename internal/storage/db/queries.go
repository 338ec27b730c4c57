package db

import (
	"context"
	"database/sql"
	"strings"
)

// Queries wraps a database handle with the prepared query methods used by the
// storage layer. All methods operate on the handle directly; SQLite with a
// single connection serializes access.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance over the given handle.
func New(handle *sql.DB) *Queries {
	return &Queries{db: handle}
}

const userColumns = "id, name, nickname, avatar, sign, password_hash, status, add_time, add_ip"

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Nickname, &u.Avatar, &u.Sign,
		&u.PasswordHash, &u.Status, &u.AddTime, &u.AddIP,
	)
	return u, err
}

// GetUser returns the user with the given ID.
func (q *Queries) GetUser(ctx context.Context, id uint64) (User, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE id = ?", int64(id)) //nolint:gosec // snowflake IDs fit in int64
	return scanUser(row)
}

// GetUserByName returns the user with the given name.
func (q *Queries) GetUserByName(ctx context.Context, name string) (User, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE name = ?", name)
	return scanUser(row)
}

// ListUsersParams are the filters for ListUsers.
type ListUsersParams struct {
	Name   string // optional substring match
	Limit  int64
	Offset int64
}

// ListUsers returns a page of users ordered by name.
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	query := "SELECT " + userColumns + " FROM user"
	args := []any{}
	if arg.Name != "" {
		query += " WHERE name LIKE ?"
		args = append(args, "%"+arg.Name+"%")
	}
	query += " ORDER BY name LIMIT ? OFFSET ?"
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the number of users matching the optional name filter.
func (q *Queries) CountUsers(ctx context.Context, name string) (int64, error) {
	query := "SELECT count(*) FROM user"
	args := []any{}
	if name != "" {
		query += " WHERE name LIKE ?"
		args = append(args, "%"+name+"%")
	}
	var count int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// InsertUser inserts a new user row.
func (q *Queries) InsertUser(ctx context.Context, u User) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO user (id, name, nickname, avatar, sign, password_hash, status, add_time, add_ip)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(u.ID), u.Name, u.Nickname, u.Avatar, u.Sign, //nolint:gosec // snowflake IDs fit in int64
		u.PasswordHash, u.Status, u.AddTime, u.AddIP,
	)
	return err
}

// UpdateUser updates the mutable profile fields of a user.
func (q *Queries) UpdateUser(ctx context.Context, u User) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE user SET name = ?, nickname = ?, sign = ?, status = ? WHERE id = ?`,
		u.Name, u.Nickname, u.Sign, u.Status, int64(u.ID)) //nolint:gosec // snowflake IDs fit in int64
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateUserStatus sets the status flag of a user.
func (q *Queries) UpdateUserStatus(ctx context.Context, id uint64, status int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE user SET status = ? WHERE id = ?", status, int64(id)) //nolint:gosec // snowflake IDs fit in int64
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateUserPassword replaces the password hash of a user.
func (q *Queries) UpdateUserPassword(ctx context.Context, id uint64, hash []byte) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE user SET password_hash = ? WHERE id = ?", hash, int64(id)) //nolint:gosec // snowflake IDs fit in int64
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateUserAvatar replaces the avatar URL of a user.
func (q *Queries) UpdateUserAvatar(ctx context.Context, id uint64, avatar string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE user SET avatar = ? WHERE id = ?", avatar, int64(id)) //nolint:gosec // snowflake IDs fit in int64
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteUser removes a user row.
func (q *Queries) DeleteUser(ctx context.Context, id uint64) (int64, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM user WHERE id = ?", int64(id)) //nolint:gosec // snowflake IDs fit in int64
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const guestbookColumns = "id, name, message, phone, email, qq, weixin, status, add_time, add_ip"

func scanGuestbook(row interface{ Scan(...any) error }) (Guestbook, error) {
	var g Guestbook
	err := row.Scan(
		&g.ID, &g.Name, &g.Message, &g.Phone, &g.Email,
		&g.QQ, &g.Weixin, &g.Status, &g.AddTime, &g.AddIP,
	)
	return g, err
}

// GuestbookFilter narrows guestbook list and count queries. String fields are
// substring matches; Status is exact when non-nil.
type GuestbookFilter struct {
	Name    string
	Message string
	Phone   string
	Email   string
	QQ      string
	Weixin  string
	Status  *int64
}

func (f GuestbookFilter) where() (string, []any) {
	var conds []string
	var args []any
	like := func(column, value string) {
		if value != "" {
			conds = append(conds, column+" LIKE ?")
			args = append(args, "%"+value+"%")
		}
	}
	like("name", f.Name)
	like("message", f.Message)
	like("phone", f.Phone)
	like("email", f.Email)
	like("qq", f.QQ)
	like("weixin", f.Weixin)
	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *f.Status)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListGuestbookParams are the filters plus page bounds for ListGuestbook.
type ListGuestbookParams struct {
	Filter GuestbookFilter
	Limit  int64
	Offset int64
}

// ListGuestbook returns a page of guestbook entries, newest first.
func (q *Queries) ListGuestbook(ctx context.Context, arg ListGuestbookParams) ([]Guestbook, error) {
	where, args := arg.Filter.where()
	query := "SELECT " + guestbookColumns + " FROM guestbook" + where +
		" ORDER BY add_time DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Guestbook
	for rows.Next() {
		g, err := scanGuestbook(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, g)
	}
	return entries, rows.Err()
}

// CountGuestbook returns the number of guestbook entries matching the filter.
func (q *Queries) CountGuestbook(ctx context.Context, filter GuestbookFilter) (int64, error) {
	where, args := filter.where()
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT count(*) FROM guestbook"+where, args...).Scan(&count)
	return count, err
}

// GetGuestbook returns the guestbook entry with the given ID.
func (q *Queries) GetGuestbook(ctx context.Context, id uint64) (Guestbook, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+guestbookColumns+" FROM guestbook WHERE id = ?", int64(id)) //nolint:gosec // snowflake IDs fit in int64
	return scanGuestbook(row)
}

// InsertGuestbook inserts a new guestbook entry.
func (q *Queries) InsertGuestbook(ctx context.Context, g Guestbook) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO guestbook (id, name, message, phone, email, qq, weixin, status, add_time, add_ip)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(g.ID), g.Name, g.Message, g.Phone, g.Email, //nolint:gosec // snowflake IDs fit in int64
		g.QQ, g.Weixin, g.Status, g.AddTime, g.AddIP,
	)
	return err
}

// UpdateGuestbookStatus sets the status flag of a guestbook entry.
func (q *Queries) UpdateGuestbookStatus(ctx context.Context, id uint64, status int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE guestbook SET status = ? WHERE id = ?", status, int64(id)) //nolint:gosec // snowflake IDs fit in int64
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteGuestbook removes a guestbook entry.
func (q *Queries) DeleteGuestbook(ctx context.Context, id uint64) (int64, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM guestbook WHERE id = ?", int64(id)) //nolint:gosec // snowflake IDs fit in int64
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const attachColumns = "id, name, path, ext, size, md5, status, add_time, add_ip"

func scanAttach(row interface{ Scan(...any) error }) (Attach, error) {
	var a Attach
	err := row.Scan(
		&a.ID, &a.Name, &a.Path, &a.Ext, &a.Size,
		&a.MD5, &a.Status, &a.AddTime, &a.AddIP,
	)
	return a, err
}

// GetAttachByMD5 returns the attachment with the given content checksum.
func (q *Queries) GetAttachByMD5(ctx context.Context, md5 string) (Attach, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+attachColumns+" FROM attach WHERE md5 = ?", md5)
	return scanAttach(row)
}

// InsertAttach inserts a new attachment row.
func (q *Queries) InsertAttach(ctx context.Context, a Attach) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO attach (id, name, path, ext, size, md5, status, add_time, add_ip)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(a.ID), a.Name, a.Path, a.Ext, a.Size, //nolint:gosec // snowflake IDs fit in int64
		a.MD5, a.Status, a.AddTime, a.AddIP,
	)
	return err
}

// CountAttaches returns the number of attachment rows.
func (q *Queries) CountAttaches(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT count(*) FROM attach").Scan(&count)
	return count, err
}
