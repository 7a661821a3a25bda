package articles

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mrlokans/conduit/internal/entities"
	"github.com/mrlokans/conduit/internal/profiles"
)

// ArticleView is the public JSON shape of an article.
type ArticleView struct {
	Slug           string               `json:"slug"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Body           string               `json:"body"`
	TagList        []string             `json:"tagList"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	Favorited      bool                 `json:"favorited"`
	FavoritesCount int64                `json:"favoritesCount"`
	Author         profiles.ProfileView `json:"author"`
}

// ArticleList is the response body of the listing endpoints. ArticlesCount is
// the number of articles in this page.
type ArticleList struct {
	Articles      []ArticleView `json:"articles"`
	ArticlesCount int           `json:"articlesCount"`
}

type FollowChecker interface {
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
}

type FavoriteChecker interface {
	IsFavorited(ctx context.Context, userID, articleID uint) (bool, error)
}

// Builder turns stored articles into views for a particular viewer.
type Builder struct {
	follows   FollowChecker
	favorites FavoriteChecker
}

func NewBuilder(follows FollowChecker, favorites FavoriteChecker) *Builder {
	return &Builder{follows: follows, favorites: favorites}
}

// Build shapes one article. The article must have Author and Tags loaded.
// viewerID 0 is an anonymous viewer: following and favorited are false and
// no relation lookups are made.
func (b *Builder) Build(ctx context.Context, article *entities.Article, viewerID uint) (ArticleView, error) {
	view := ArticleView{
		Slug:           article.Slug,
		Title:          article.Title,
		Description:    article.Description,
		Body:           article.Body,
		TagList:        tagNames(article.Tags),
		CreatedAt:      article.CreatedAt,
		UpdatedAt:      article.UpdatedAt,
		FavoritesCount: article.FavoritesCount,
		Author:         profiles.NewView(&article.Author, false),
	}

	if viewerID == 0 {
		return view, nil
	}

	following, err := b.follows.IsFollowing(ctx, viewerID, article.AuthorID)
	if err != nil {
		return ArticleView{}, fmt.Errorf("failed to resolve following for %s: %w", article.Slug, err)
	}
	view.Author.Following = following

	favorited, err := b.favorites.IsFavorited(ctx, viewerID, article.ID)
	if err != nil {
		return ArticleView{}, fmt.Errorf("failed to resolve favorited for %s: %w", article.Slug, err)
	}
	view.Favorited = favorited

	return view, nil
}

// BuildList shapes articles in order.
func (b *Builder) BuildList(ctx context.Context, list []entities.Article, viewerID uint) (ArticleList, error) {
	views := make([]ArticleView, 0, len(list))
	for i := range list {
		view, err := b.Build(ctx, &list[i], viewerID)
		if err != nil {
			return ArticleList{}, err
		}
		views = append(views, view)
	}
	return ArticleList{Articles: views, ArticlesCount: len(views)}, nil
}

func tagNames(tags []entities.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}
