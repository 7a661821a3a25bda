// Package users provides database operations for users and the follow graph.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByUsername(ctx, "jake")
//	inserted, err := repo.Follow(ctx, followerID, user.ID)
package users

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/conduit/internal/apperrors"
	"github.com/mrlokans/conduit/internal/entities"
)

var (
	ErrUserNotFound  = apperrors.NotFound("user not found")
	ErrDuplicateUser = apperrors.Conflict("username or email already taken")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user. Unique violations on username or email map to ErrDuplicateUser.
func (r *Repository) CreateUser(ctx context.Context, user *entities.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateUser
	}
	return err
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return found(&user, err)
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return found(&user, err)
}

// GetUserByEmail retrieves a user by email (case-insensitive).
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	return found(&user, err)
}

// UsernameOrEmailTaken reports whether either value is already registered.
func (r *Repository) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("username = ? OR LOWER(email) = LOWER(?)", username, email).
		Count(&count).Error
	return count > 0, err
}

// Follow records that followerID follows followedID. It returns false when
// the edge already existed.
func (r *Repository) Follow(ctx context.Context, followerID, followedID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.Follow{FollowerID: followerID, FollowedID: followedID})
	return result.RowsAffected > 0, result.Error
}

// Unfollow removes the edge. It returns false when there was nothing to remove.
func (r *Repository) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&entities.Follow{})
	return result.RowsAffected > 0, result.Error
}

// IsFollowing reports whether followerID follows followedID.
func (r *Repository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == 0 || followedID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

// FollowedIDs returns the ids of every user followerID follows.
func (r *Repository) FollowedIDs(ctx context.Context, followerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.Follow{}).
		Where("follower_id = ?", followerID).
		Order("followed_id").
		Pluck("followed_id", &ids).Error
	return ids, err
}

func found(user *entities.User, err error) (*entities.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
