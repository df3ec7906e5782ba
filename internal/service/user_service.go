package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Cheertaboi/shop-microservices/internal/auth"
	"github.com/Cheertaboi/shop-microservices/internal/models"
	"github.com/Cheertaboi/shop-microservices/internal/repository"
)

// TokenIssuer mints bearer credentials for a principal.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, time.Time, error)
}

type UserService struct {
	users  UserRepo
	hasher auth.Hasher
	tokens TokenIssuer
	log    *slog.Logger
	now    func() time.Time
}

func NewUserService(users UserRepo, hasher auth.Hasher, tokens TokenIssuer, log *slog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens, log: log, now: time.Now}
}

type RegisterInput struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Address  *models.Address `json:"address,omitempty"`
}

// Register creates a user with role "user" and returns a token for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := models.NormalizeEmail(in.Email)

	existing, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", persistence("lookup user", err)
	}
	if existing != nil {
		return "", ErrUserExists
	}

	cred, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	u := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: cred,
		Address:      in.Address,
		Role:         models.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration for the same email
		if errors.Is(err, repository.ErrDuplicateKey) {
			return "", ErrUserExists
		}
		return "", persistence("create user", err)
	}
	s.log.Info("user registered", "user_id", u.ID)

	tok, _, err := s.tokens.Issue(auth.Principal{ID: u.ID, Role: u.Role})
	return tok, err
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.ByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return "", persistence("lookup user", err)
	}
	if u == nil || !s.hasher.Verify(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	tok, _, err := s.tokens.Issue(auth.Principal{ID: u.ID, Role: u.Role})
	return tok, err
}

func (s *UserService) Me(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, persistence("get user", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type ProfileUpdate struct {
	Name    *string         `json:"name,omitempty"`
	Address *models.Address `json:"address,omitempty"`
}

// UpdateProfile changes only the provided fields; blank names are ignored.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*models.User, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		in.Name = nil
	}
	u, err := s.users.UpdateProfile(ctx, id, in.Name, in.Address)
	if err != nil {
		return nil, persistence("update user", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, persistence("list users", err)
	}
	return users, nil
}
