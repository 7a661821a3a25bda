package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/entities"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database: config.Database{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "conduit.db")},
		Auth:     config.Auth{BcryptCost: bcrypt.MinCost},
	}
}

func TestCreateUserCommand_ParseFlags(t *testing.T) {
	cfg := testConfig(t)

	cmd := NewCreateUserCommand(cfg)
	err := cmd.ParseFlags([]string{"-username", "jake"})
	assert.ErrorContains(t, err, "-email")
	assert.ErrorContains(t, err, "-password")

	cmd = NewCreateUserCommand(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"-username", "jake", "-email", "jake@jake.jake", "-password", "jakejake", "-db", "other.db"}))
	assert.Equal(t, "other.db", cmd.database.Path)
	assert.Equal(t, config.DriverSQLite, cmd.database.Driver)
}

func TestCreateUserCommand_Run(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	cmd := NewCreateUserCommand(cfg)
	cmd.out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-username", "jake", "-email", "jake@jake.jake", "-password", "jakejake"}))
	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), "Created user jake <jake@jake.jake>")

	// Same account again is a conflict.
	cmd = NewCreateUserCommand(cfg)
	cmd.out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-username", "jake", "-email", "jake@jake.jake", "-password", "jakejake"}))
	assert.Error(t, cmd.Run())
}

func TestCreateUserCommand_ValidationDetails(t *testing.T) {
	cmd := NewCreateUserCommand(testConfig(t))
	cmd.out = &bytes.Buffer{}
	require.NoError(t, cmd.ParseFlags([]string{"-username", "jake", "-email", "not-an-email", "-password", "short"}))

	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is invalid")
	assert.Contains(t, err.Error(), "password")
}

func TestReconcileFavoritesCommand_Run(t *testing.T) {
	cfg := testConfig(t)

	flags := newDatabaseFlags(cfg.Database)
	db, err := flags.open()
	require.NoError(t, err)

	author := &entities.User{Username: "jake", Email: "jake@jake.jake"}
	require.NoError(t, db.DB.Create(author).Error)
	article := &entities.Article{Slug: "drift", Title: "Drift", AuthorID: author.ID, FavoritesCount: 7}
	require.NoError(t, db.DB.Create(article).Error)
	require.NoError(t, db.DB.Create(&entities.Favorite{UserID: author.ID, ArticleID: article.ID}).Error)
	require.NoError(t, db.Close())

	var out bytes.Buffer
	cmd := NewReconcileFavoritesCommand(cfg)
	cmd.out = &out
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), "1 article(s) corrected")

	db, err = flags.open()
	require.NoError(t, err)
	defer db.Close()

	var stored entities.Article
	require.NoError(t, db.DB.First(&stored, article.ID).Error)
	assert.Equal(t, int64(1), stored.FavoritesCount)

	var events int64
	require.NoError(t, db.DB.Model(&entities.AuditEvent{}).Where("event_type = ?", entities.AuditEventReconcile).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestReconcileFavoritesCommand_Defaults(t *testing.T) {
	cmd := NewReconcileFavoritesCommand(testConfig(t))
	require.NoError(t, cmd.ParseFlags(nil))
	assert.Greater(t, cmd.Timeout.Minutes(), 0.0)
}
