package users

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/conduit/internal/apperrors"
	"github.com/mrlokans/conduit/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "users.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{}, &entities.Follow{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}

	return repo, cleanup
}

func createUser(t *testing.T, repo *Repository, username string) *entities.User {
	t.Helper()
	user := &entities.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestRepository_CreateUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := createUser(t, repo, "jake")
	assert.NotZero(t, user.ID)

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		err := repo.CreateUser(ctx, &entities.User{Username: "jake", Email: "other@example.com"})
		assert.ErrorIs(t, err, ErrDuplicateUser)
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})

	t.Run("taken check is case-insensitive on email", func(t *testing.T) {
		taken, err := repo.UsernameOrEmailTaken(ctx, "someone", "JAKE@example.com")
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.UsernameOrEmailTaken(ctx, "someone", "someone@example.com")
		require.NoError(t, err)
		assert.False(t, taken)
	})
}

func TestRepository_Lookups(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := createUser(t, repo, "jake")

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jake", byID.Username)

	byName, err := repo.GetUserByUsername(ctx, "jake")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetUserByEmail(ctx, "Jake@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_FollowGraph(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	jake := createUser(t, repo, "jake")
	anna := createUser(t, repo, "anna")
	bob := createUser(t, repo, "bob")

	inserted, err := repo.Follow(ctx, jake.ID, anna.ID)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Follow(ctx, jake.ID, anna.ID)
	require.NoError(t, err)
	assert.False(t, inserted, "second follow is a no-op")

	_, err = repo.Follow(ctx, jake.ID, bob.ID)
	require.NoError(t, err)

	ids, err := repo.FollowedIDs(ctx, jake.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{anna.ID, bob.ID}, ids)

	following, err := repo.IsFollowing(ctx, jake.ID, anna.ID)
	require.NoError(t, err)
	assert.True(t, following)

	following, err = repo.IsFollowing(ctx, anna.ID, jake.ID)
	require.NoError(t, err)
	assert.False(t, following, "follows are directed")

	following, err = repo.IsFollowing(ctx, 0, anna.ID)
	require.NoError(t, err)
	assert.False(t, following)

	removed, err := repo.Unfollow(ctx, jake.ID, anna.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Unfollow(ctx, jake.ID, anna.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	ids, err = repo.FollowedIDs(ctx, jake.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)
}
