// Package articles implements the article use cases: listing, the personal
// feed, lookup by slug, creation and favorites. Results are shaped for the
// requesting user by Builder.
package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/conduit/internal/apperrors"
	"github.com/mrlokans/conduit/internal/config"
	articlesRepo "github.com/mrlokans/conduit/internal/database/articles"
	"github.com/mrlokans/conduit/internal/entities"
)

const maxSlugAttempts = 3

// Column widths of the articles and tags tables, in characters.
const (
	maxTitleLength       = 255
	maxDescriptionLength = 1024
	maxTagLength         = 100
)

// Store is the slice of the articles repository the service needs.
type Store interface {
	FavoriteChecker
	List(ctx context.Context, filter articlesRepo.Filter) ([]entities.Article, error)
	GetBySlug(ctx context.Context, slug string) (*entities.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, article *entities.Article, tagNames []string) error
	Favorite(ctx context.Context, userID, articleID uint) (bool, error)
	Unfavorite(ctx context.Context, userID, articleID uint) (bool, error)
	ReconcileFavoriteCounts(ctx context.Context) (int64, error)
}

// UserStore resolves requesters and their follow graph.
type UserStore interface {
	FollowChecker
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
	FollowedIDs(ctx context.Context, followerID uint) ([]uint, error)
}

// TagsInvalidator drops cached tag listings after new tags may have appeared.
type TagsInvalidator interface {
	InvalidateTags(ctx context.Context) error
}

// Auditor records article mutations.
type Auditor interface {
	LogArticleCreate(userID, articleID uint, slug string, tagCount int)
	LogFavorite(userID, articleID uint, slug string, added, changed bool)
}

// ListParams are the listing filters. Empty strings are ignored.
type ListParams struct {
	Tag       string
	Author    string
	Favorited string
	Offset    int
	Limit     int
}

// CreateInput is the payload of a new article.
type CreateInput struct {
	Title       string
	Description string
	Body        string
	TagList     []string
}

type Service struct {
	articles Store
	users    UserStore
	builder  *Builder
	tags     TagsInvalidator
	auditor  Auditor
}

// NewService wires the article service. tags and auditor may be nil.
func NewService(articles Store, users UserStore, tags TagsInvalidator, auditor Auditor) *Service {
	return &Service{
		articles: articles,
		users:    users,
		builder:  NewBuilder(users, articles),
		tags:     tags,
		auditor:  auditor,
	}
}

// List returns articles matching the filters, newest first.
func (s *Service) List(ctx context.Context, params ListParams, viewerID uint) (ArticleList, error) {
	list, err := s.articles.List(ctx, articlesRepo.Filter{
		Tag:         params.Tag,
		Author:      params.Author,
		FavoritedBy: params.Favorited,
		Offset:      params.Offset,
		Limit:       limitOrDefault(params.Limit),
	})
	if err != nil {
		return ArticleList{}, fmt.Errorf("failed to list articles: %w", err)
	}
	return s.builder.BuildList(ctx, list, viewerID)
}

// Feed returns articles written by the users viewerID follows, newest first.
func (s *Service) Feed(ctx context.Context, viewerID uint, offset, limit int) (ArticleList, error) {
	if _, err := s.requireUser(ctx, viewerID); err != nil {
		return ArticleList{}, err
	}

	followed, err := s.users.FollowedIDs(ctx, viewerID)
	if err != nil {
		return ArticleList{}, fmt.Errorf("failed to load followed users: %w", err)
	}
	if len(followed) == 0 {
		return ArticleList{Articles: []ArticleView{}}, nil
	}

	list, err := s.articles.List(ctx, articlesRepo.Filter{
		AuthorIDs: followed,
		Offset:    offset,
		Limit:     limitOrDefault(limit),
	})
	if err != nil {
		return ArticleList{}, fmt.Errorf("failed to load feed: %w", err)
	}
	return s.builder.BuildList(ctx, list, viewerID)
}

// Get returns one article by slug.
func (s *Service) Get(ctx context.Context, slug string, viewerID uint) (ArticleView, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return ArticleView{}, err
	}
	return s.builder.Build(ctx, article, viewerID)
}

// Create validates the input and stores the article with its tags in one
// transaction. The returned view is built the same way reads are.
func (s *Service) Create(ctx context.Context, authorID uint, input CreateInput) (ArticleView, error) {
	input, err := validateCreate(input)
	if err != nil {
		return ArticleView{}, err
	}

	author, err := s.requireUser(ctx, authorID)
	if err != nil {
		return ArticleView{}, err
	}

	slug, err := s.availableSlug(ctx, Slugify(input.Title))
	if err != nil {
		return ArticleView{}, err
	}

	article := &entities.Article{
		Title:       input.Title,
		Description: input.Description,
		Body:        input.Body,
		AuthorID:    author.ID,
	}
	for attempt := 1; ; attempt++ {
		article.Slug = slug
		err = s.articles.Create(ctx, article, input.TagList)
		if !errors.Is(err, articlesRepo.ErrSlugTaken) || attempt == maxSlugAttempts {
			break
		}
		slug = withSuffix(Slugify(input.Title))
	}
	if err != nil {
		return ArticleView{}, fmt.Errorf("failed to create article: %w", err)
	}

	if s.tags != nil && len(input.TagList) > 0 {
		// Entries also expire by TTL.
		_ = s.tags.InvalidateTags(ctx)
	}
	if s.auditor != nil {
		s.auditor.LogArticleCreate(author.ID, article.ID, article.Slug, len(input.TagList))
	}

	return s.Get(ctx, article.Slug, author.ID)
}

// Favorite marks the article as favorited by userID. Repeating it changes nothing.
func (s *Service) Favorite(ctx context.Context, slug string, userID uint) (ArticleView, error) {
	return s.setFavorite(ctx, slug, userID, true)
}

// Unfavorite removes userID's favorite. Repeating it changes nothing.
func (s *Service) Unfavorite(ctx context.Context, slug string, userID uint) (ArticleView, error) {
	return s.setFavorite(ctx, slug, userID, false)
}

func (s *Service) setFavorite(ctx context.Context, slug string, userID uint, favorite bool) (ArticleView, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return ArticleView{}, err
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return ArticleView{}, err
	}

	var changed bool
	if favorite {
		changed, err = s.articles.Favorite(ctx, userID, article.ID)
	} else {
		changed, err = s.articles.Unfavorite(ctx, userID, article.ID)
	}
	if err != nil {
		return ArticleView{}, fmt.Errorf("failed to update favorite: %w", err)
	}

	if s.auditor != nil {
		s.auditor.LogFavorite(userID, article.ID, article.Slug, favorite, changed)
	}

	return s.Get(ctx, slug, userID)
}

// ReconcileFavoriteCounts recomputes drifted counters and returns how many were fixed.
func (s *Service) ReconcileFavoriteCounts(ctx context.Context) (int64, error) {
	return s.articles.ReconcileFavoriteCounts(ctx)
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

func (s *Service) availableSlug(ctx context.Context, base string) (string, error) {
	taken, err := s.articles.SlugExists(ctx, base)
	if err != nil {
		return "", fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return withSuffix(base), nil
	}
	return base, nil
}

func validateCreate(input CreateInput) (CreateInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Body = strings.TrimSpace(input.Body)

	input.TagList = normalizeTags(input.TagList)

	details := map[string]string{}
	switch {
	case input.Title == "":
		details["title"] = "can't be blank"
	case utf8.RuneCountInString(input.Title) > maxTitleLength:
		details["title"] = fmt.Sprintf("is too long (maximum is %d characters)", maxTitleLength)
	}
	switch {
	case input.Description == "":
		details["description"] = "can't be blank"
	case utf8.RuneCountInString(input.Description) > maxDescriptionLength:
		details["description"] = fmt.Sprintf("is too long (maximum is %d characters)", maxDescriptionLength)
	}
	if input.Body == "" {
		details["body"] = "can't be blank"
	}
	for _, name := range input.TagList {
		if utf8.RuneCountInString(name) > maxTagLength {
			details["tagList"] = fmt.Sprintf("tag is too long (maximum is %d characters)", maxTagLength)
			break
		}
	}
	if len(details) > 0 {
		return input, apperrors.Validation("invalid article", details)
	}
	return input, nil
}

// normalizeTags trims names, drops empties and collapses duplicates, keeping first-seen order.
func normalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return config.DefaultPageLimit
	}
	if limit > config.MaxPageLimit {
		return config.MaxPageLimit
	}
	return limit
}
