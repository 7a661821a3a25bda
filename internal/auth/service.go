package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrlokans/conduit/internal/apperrors"
	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrAuthRequired       = apperrors.Unauthorized("authentication required")
	ErrInvalidCredentials = apperrors.Unauthorized("email or password is invalid")
	ErrUserExists         = apperrors.Conflict("username or email already taken")
)

// UserStore is the slice of the users repository authentication needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *entities.User) error
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
}

// UserView is the authenticated user's own JSON shape, including a fresh token.
type UserView struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Image    string `json:"image"`
}

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Service handles registration, login and credential validation.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
	config config.Auth
}

// NewService creates a new authentication service. cfg.JWTSecret must be set.
func NewService(users UserStore, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		tokens: NewTokenIssuer(cfg.JWTSecret, cfg.TokenExpiry),
		config: cfg,
	}
}

// Register validates the input, stores the user and returns its view with a token.
func (s *Service) Register(ctx context.Context, input RegisterInput) (UserView, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	details := map[string]string{}
	switch {
	case input.Username == "":
		details["username"] = "can't be blank"
	case !usernamePattern.MatchString(input.Username):
		details["username"] = "must be 3-64 characters: letters, digits, underscore or hyphen"
	}
	switch {
	case input.Email == "":
		details["email"] = "can't be blank"
	case len(input.Email) > 254 || !emailPattern.MatchString(input.Email):
		details["email"] = "is invalid"
	}
	switch {
	case input.Password == "":
		details["password"] = "can't be blank"
	case len(input.Password) < MinPasswordLength:
		details["password"] = ErrPasswordTooShort.Error()
	case len(input.Password) > maxPasswordBytes:
		details["password"] = ErrPasswordTooLong.Error()
	}
	if len(details) > 0 {
		return UserView{}, apperrors.Validation("invalid user", details)
	}

	taken, err := s.users.UsernameOrEmailTaken(ctx, input.Username, input.Email)
	if err != nil {
		return UserView{}, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		return UserView{}, ErrUserExists
	}

	passwordHash, err := HashPassword(input.Password, s.config.BcryptCost)
	if err != nil {
		return UserView{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if apperrors.KindOf(err) == apperrors.KindConflict {
			return UserView{}, ErrUserExists
		}
		return UserView{}, fmt.Errorf("failed to create user: %w", err)
	}

	return s.viewWithToken(user)
}

// Login checks the credentials and returns the user's view with a fresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*entities.User, UserView, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, UserView{}, ErrInvalidCredentials
		}
		return nil, UserView{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, UserView{}, ErrInvalidCredentials
	}

	view, err := s.viewWithToken(user)
	if err != nil {
		return nil, UserView{}, err
	}
	return user, view, nil
}

// Current returns the view of the authenticated user with a refreshed token.
func (s *Service) Current(ctx context.Context, userID uint) (UserView, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return s.viewWithToken(user)
}

// GetUserByID resolves a user; a missing user is reported as ErrAuthRequired.
func (s *Service) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	if id == 0 {
		return nil, ErrAuthRequired
	}
	user, err := s.users.GetUserByID(ctx, id)
	if apperrors.IsNotFound(err) {
		return nil, ErrAuthRequired
	}
	return user, err
}

// ValidateToken parses a token and returns the user it belongs to.
func (s *Service) ValidateToken(ctx context.Context, token string) (*entities.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) viewWithToken(user *entities.User) (UserView, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return UserView{}, err
	}
	return UserView{
		Email:    user.Email,
		Token:    token,
		Username: user.Username,
		Bio:      user.Bio,
		Image:    user.Image,
	}, nil
}
