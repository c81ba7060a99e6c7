package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

// AdminPolicy is the configured admin identity.
type AdminPolicy struct {
	Email    string
	Password string
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminAllowed reports whether c matches the configured admin. An unset
// policy admits nobody.
func AdminAllowed(c Credentials, p AdminPolicy) bool {
	if p.Email == "" || p.Password == "" {
		return false
	}
	email := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(c.Email))),
		[]byte(strings.ToLower(strings.TrimSpace(p.Email))))
	pass := subtle.ConstantTimeCompare([]byte(c.Password), []byte(p.Password))
	return email&pass == 1
}

type AuthService struct {
	Users      *repos.UserRepo
	Admin      AdminPolicy
	SessionTTL time.Duration
	Now        func() time.Time
}

func NewAuthService(users *repos.UserRepo, admin AdminPolicy, ttl time.Duration) *AuthService {
	return &AuthService{Users: users, Admin: admin, SessionTTL: ttl, Now: time.Now}
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name, ok := validate.Name(name)
	if !ok {
		return nil, "", invalid("name", "is required")
	}
	email, ok = validate.Email(email)
	if !ok {
		return nil, "", invalid("email", "please enter a valid email")
	}
	if !validate.Password(password) {
		return nil, "", invalid("password", "must be 8 to 72 characters")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u := &domain.User{ID: uuid.NewString(), Email: email, Name: name, Hash: string(h), Role: domain.RoleUser}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	tok, err := s.issue(ctx, u.ID, domain.RoleUser)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", ErrBadCreds
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	tok, err := s.issue(ctx, u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// AdminLogin issues an admin session when c passes the admin policy.
func (s *AuthService) AdminLogin(ctx context.Context, c Credentials) (string, error) {
	if !AdminAllowed(c, s.Admin) {
		return "", ErrBadCreds
	}
	return s.issue(ctx, "", domain.RoleAdmin)
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Users.DeleteSession(ctx, token)
}

// Authenticate resolves a bearer token. Admin sessions carry no user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Session, *domain.User, error) {
	if token == "" {
		return domain.Session{}, nil, domain.ErrSessionNotFound
	}
	sess, err := s.Users.Session(ctx, token, s.now())
	if err != nil {
		return domain.Session{}, nil, err
	}
	if sess.UserID == "" {
		return sess, nil, nil
	}
	u, err := s.Users.ByID(ctx, sess.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Session{}, nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, nil, err
	}
	return sess, u, nil
}

func (s *AuthService) issue(ctx context.Context, userID, role string) (string, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	sess := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: s.now().Add(ttl).UnixMilli(),
	}
	if err := s.Users.CreateSession(ctx, sess); err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
