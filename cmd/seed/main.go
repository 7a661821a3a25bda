// Command seed fills a database with demo users, follows, articles and favorites.
// Usage: go run ./cmd/seed [-db path/to/conduit.db] [-password secret]
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/conduit/internal/articles"
	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/cache"
	"github.com/mrlokans/conduit/internal/config"
	"github.com/mrlokans/conduit/internal/database"
	articlesRepo "github.com/mrlokans/conduit/internal/database/articles"
	"github.com/mrlokans/conduit/internal/database/tags"
	"github.com/mrlokans/conduit/internal/database/users"
	"github.com/mrlokans/conduit/internal/logging"
	"github.com/mrlokans/conduit/internal/profiles"
)

const defaultSeedDatabasePath = "./demo/conduit.db"

type seedArticle struct {
	Author      string
	Title       string
	Description string
	Body        string
	Tags        []string
	FavoritedBy []string
}

var seedUsers = []string{"jake", "ada", "grace", "linus"}

// follower -> followed
var seedFollows = [][2]string{
	{"jake", "ada"},
	{"jake", "grace"},
	{"ada", "grace"},
	{"linus", "jake"},
}

var seedArticles = []seedArticle{
	{
		Author:      "ada",
		Title:       "Notes on the Analytical Engine",
		Description: "What a general purpose machine could compute",
		Body:        "The engine weaves algebraic patterns just as the Jacquard loom weaves flowers and leaves.",
		Tags:        []string{"history", "computing"},
		FavoritedBy: []string{"jake", "grace", "linus"},
	},
	{
		Author:      "grace",
		Title:       "Why Compilers Matter",
		Description: "Letting people write programs in something closer to English",
		Body:        "It is much easier for most people to write an English statement than to use symbols.",
		Tags:        []string{"compilers", "computing"},
		FavoritedBy: []string{"jake", "ada"},
	},
	{
		Author:      "linus",
		Title:       "Release Early, Release Often",
		Description: "Many eyes on a small kernel",
		Body:        "Given enough eyeballs, all bugs are shallow.",
		Tags:        []string{"opensource", "kernels"},
		FavoritedBy: []string{"jake"},
	},
	{
		Author:      "jake",
		Title:       "How to Train Your Dragon",
		Description: "Ever wonder how?",
		Body:        "You have to believe.",
		Tags:        []string{"dragons", "training"},
	},
	{
		Author:      "grace",
		Title:       "A Nanosecond Is Eleven Inches",
		Description: "Making latency visible",
		Body:        "Hand out pieces of wire so people can see how far a signal travels in a nanosecond.",
		Tags:        []string{"hardware", "history"},
		FavoritedBy: []string{"ada"},
	},
}

func main() {
	dbPath := flag.String("db", defaultSeedDatabasePath, "path to the sqlite database file")
	password := flag.String("password", "password123", "password for every seeded user")
	fresh := flag.Bool("fresh", true, "remove an existing database first")
	flag.Parse()

	log, err := logging.New(config.Log{Development: true, Level: "info"})
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	log.Infow("Seeding database", "path", *dbPath)

	if *fresh {
		if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
			log.Fatalw("Failed to remove existing database", "error", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatalw("Failed to create database directory", "error", err)
	}

	db, err := database.NewDatabase(config.Database{Driver: config.DriverSQLite, Path: *dbPath}, log)
	if err != nil {
		log.Fatalw("Failed to open database", "error", err)
	}
	defer db.Close()

	if err := seed(context.Background(), db, *password, log); err != nil {
		log.Fatalw("Seeding failed", "error", err)
	}
	log.Info("Demo database generated successfully")
}

func seed(ctx context.Context, db *database.Database, password string, log *zap.SugaredLogger) error {
	secret, err := auth.GenerateSecret()
	if err != nil {
		return err
	}

	usersRepository := users.NewRepository(db.DB)
	accounts := auth.NewService(usersRepository, config.Auth{JWTSecret: secret, BcryptCost: bcrypt.DefaultCost})
	tagsCache := cache.NewTagsCache(tags.NewRepository(db.DB), nil, 0, log)
	articleService := articles.NewService(articlesRepo.NewRepository(db.DB), usersRepository, tagsCache, nil)
	profileService := profiles.NewService(usersRepository, nil)

	ids := make(map[string]uint, len(seedUsers))
	for _, username := range seedUsers {
		if _, err := accounts.Register(ctx, auth.RegisterInput{
			Username: username,
			Email:    username + "@conduit.test",
			Password: password,
		}); err != nil {
			return err
		}
		user, err := usersRepository.GetUserByUsername(ctx, username)
		if err != nil {
			return err
		}
		ids[username] = user.ID
		log.Infow("Created user", "username", username)
	}

	for _, edge := range seedFollows {
		if _, err := profileService.Follow(ctx, edge[1], ids[edge[0]]); err != nil {
			return err
		}
	}

	for _, a := range seedArticles {
		view, err := articleService.Create(ctx, ids[a.Author], articles.CreateInput{
			Title:       a.Title,
			Description: a.Description,
			Body:        a.Body,
			TagList:     a.Tags,
		})
		if err != nil {
			return err
		}
		for _, username := range a.FavoritedBy {
			if _, err := articleService.Favorite(ctx, view.Slug, ids[username]); err != nil {
				return err
			}
		}
		log.Infow("Created article", "slug", view.Slug, "tags", len(a.Tags), "favorites", len(a.FavoritedBy))
	}

	popular, err := tagsCache.PopularTags(ctx)
	if err != nil {
		return err
	}
	log.Infow("Seeded tags", "tags", popular)
	return nil
}
