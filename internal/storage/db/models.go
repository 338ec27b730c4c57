package db

// User is an administrator account row.
type User struct {
	ID           uint64
	Name         string
	Nickname     string
	Avatar       string
	Sign         string
	PasswordHash []byte
	Status       int64
	AddTime      int64
	AddIP        string
}

// Active reports whether the account may log in.
func (u User) Active() bool { return u.Status != 0 }

// Guestbook is a visitor message row.
type Guestbook struct {
	ID      uint64
	Name    string
	Message string
	Phone   string
	Email   string
	QQ      string
	Weixin  string
	Status  int64
	AddTime int64
	AddIP   string
}

// Attach is an uploaded file row, deduplicated by content checksum.
type Attach struct {
	ID      uint64
	Name    string
	Path    string
	Ext     string
	Size    int64
	MD5     string
	Status  int64
	AddTime int64
	AddIP   string
}
