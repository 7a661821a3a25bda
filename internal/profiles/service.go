// Package profiles exposes public user profiles and the follow/unfollow
// operations on the follow graph.
package profiles

import (
	"context"
	"fmt"

	"github.com/mrlokans/conduit/internal/apperrors"
	"github.com/mrlokans/conduit/internal/entities"
)

// ErrFollowSelf is returned when a user tries to follow themselves.
var ErrFollowSelf = apperrors.Validation("cannot follow yourself", map[string]string{"username": "cannot follow yourself"})

// ProfileView is the public shape of a user.
type ProfileView struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Image     string `json:"image"`
	Following bool   `json:"following"`
}

// NewView shapes a user as seen by someone whose follow state is known.
func NewView(user *entities.User, following bool) ProfileView {
	return ProfileView{
		Username:  user.Username,
		Bio:       user.Bio,
		Image:     user.Image,
		Following: following,
	}
}

// UserStore is the slice of the users repository this package needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
	Follow(ctx context.Context, followerID, followedID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
}

// FollowAuditor records follow graph changes.
type FollowAuditor interface {
	LogFollow(followerID, followedID uint, username string, added bool)
}

type Service struct {
	users   UserStore
	auditor FollowAuditor
}

// NewService creates a profile service. auditor may be nil.
func NewService(users UserStore, auditor FollowAuditor) *Service {
	return &Service{users: users, auditor: auditor}
}

// Get returns the profile of username as seen by viewerID (0 for anonymous).
func (s *Service) Get(ctx context.Context, username string, viewerID uint) (ProfileView, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return ProfileView{}, err
	}

	following, err := s.users.IsFollowing(ctx, viewerID, user.ID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("failed to check follow state: %w", err)
	}
	return NewView(user, following), nil
}

// Follow makes followerID follow username. Repeating it is a no-op.
func (s *Service) Follow(ctx context.Context, username string, followerID uint) (ProfileView, error) {
	return s.setFollow(ctx, username, followerID, true)
}

// Unfollow removes the follow edge. Repeating it is a no-op.
func (s *Service) Unfollow(ctx context.Context, username string, followerID uint) (ProfileView, error) {
	return s.setFollow(ctx, username, followerID, false)
}

func (s *Service) setFollow(ctx context.Context, username string, followerID uint, follow bool) (ProfileView, error) {
	if _, err := s.requireUser(ctx, followerID); err != nil {
		return ProfileView{}, err
	}

	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return ProfileView{}, err
	}
	if target.ID == followerID {
		return ProfileView{}, ErrFollowSelf
	}

	var changed bool
	if follow {
		changed, err = s.users.Follow(ctx, followerID, target.ID)
	} else {
		changed, err = s.users.Unfollow(ctx, followerID, target.ID)
	}
	if err != nil {
		return ProfileView{}, fmt.Errorf("failed to update follow: %w", err)
	}

	if changed && s.auditor != nil {
		s.auditor.LogFollow(followerID, target.ID, target.Username, follow)
	}
	return NewView(target, follow), nil
}

func (s *Service) requireUser(ctx context.Context, id uint) (*entities.User, error) {
	if id == 0 {
		return nil, apperrors.Unauthorized("authentication required")
	}
	user, err := s.users.GetUserByID(ctx, id)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.Unauthorized("user not found")
	}
	return user, err
}
