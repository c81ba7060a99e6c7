package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Hash  string `db:"password_hash" json:"-"`
	Role  string `db:"role" json:"role"`
}

// Session is an issued bearer token. UserID is empty for admin sessions.
type Session struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Role      string `db:"role"`
	ExpiresAt int64  `db:"expires_at"`
}
