package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/database"
	"github.com/mrlokans/conduit/internal/entities"
	"github.com/mrlokans/conduit/internal/logging"
)

func TestSeed(t *testing.T) {
	log := logging.Nop()
	db, err := database.NewDatabase(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "seed.db"),
	}, log)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, seed(context.Background(), db, "password123", log))

	var users, follows, articles, favorites int64
	db.DB.Model(&entities.User{}).Count(&users)
	db.DB.Model(&entities.Follow{}).Count(&follows)
	db.DB.Model(&entities.Article{}).Count(&articles)
	db.DB.Model(&entities.Favorite{}).Count(&favorites)

	assert.Equal(t, int64(len(seedUsers)), users)
	assert.Equal(t, int64(len(seedFollows)), follows)
	assert.Equal(t, int64(len(seedArticles)), articles)

	expectedFavorites := 0
	for _, a := range seedArticles {
		expectedFavorites += len(a.FavoritedBy)
	}
	assert.Equal(t, int64(expectedFavorites), favorites)

	var top entities.Article
	require.NoError(t, db.DB.Order("favorites_count DESC").First(&top).Error)
	assert.Equal(t, "Notes on the Analytical Engine", top.Title)
	assert.Equal(t, int64(3), top.FavoritesCount)
}
