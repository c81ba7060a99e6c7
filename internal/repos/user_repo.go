package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type UserRepo struct{ db sqlx.ExtContext }

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, email, name, password_hash, role`

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u, r.db.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER(?)`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.GetContext(ctx, r.db, &u, r.db.Rebind(`SELECT `+userCols+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u. A duplicate email (any case) yields ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, err := r.ByEmail(ctx, u.Email); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users(id, email, name, password_hash, role, created_at)
		VALUES(?,?,?,?,?,?)
	`), u.ID, u.Email, u.Name, u.Hash, u.Role, time.Now().UnixMilli())
	return err
}

// Delete drops the account; sessions and cart lines cascade, orders stay.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE user_id = ?`), id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE user_id = ?`), id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return mustAffect(res, domain.ErrUserNotFound)
}

func (r *UserRepo) CreateSession(ctx context.Context, s domain.Session) error {
	var uid any
	if s.UserID != "" {
		uid = s.UserID
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO sessions(id, user_id, role, expires_at) VALUES(?,?,?,?)
	`), s.ID, uid, s.Role, s.ExpiresAt)
	return err
}

// Session returns a live session; expired ones are reported as missing.
func (r *UserRepo) Session(ctx context.Context, id string, now time.Time) (domain.Session, error) {
	var s domain.Session
	err := sqlx.GetContext(ctx, r.db, &s, r.db.Rebind(`
		SELECT id, COALESCE(user_id, '') AS user_id, role, expires_at
		FROM sessions WHERE id = ? AND expires_at > ?
	`), id, now.UnixMilli())
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s, err
}

func (r *UserRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id)
	return err
}

// PurgeSessions removes expired sessions and reports how many went.
func (r *UserRepo) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
