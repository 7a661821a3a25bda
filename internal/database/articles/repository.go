// Package articles provides database operations for articles and favorites.
//
// # Usage
//
//	repo := articles.NewRepository(db)
//	list, err := repo.List(ctx, articles.Filter{Tag: "golang", Limit: 20})
//	article, err := repo.GetBySlug(ctx, "how-to-train-your-dragon")
//	changed, err := repo.Favorite(ctx, userID, article.ID)
package articles

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/conduit/internal/apperrors"
	"github.com/mrlokans/conduit/internal/database/tags"
	"github.com/mrlokans/conduit/internal/entities"
)

var (
	ErrArticleNotFound = apperrors.NotFound("article not found")
	ErrSlugTaken       = apperrors.Conflict("slug already taken")
)

// Filter narrows a listing. Empty fields are ignored; set fields intersect.
type Filter struct {
	Tag         string
	Author      string
	FavoritedBy string
	// AuthorIDs restricts to the given authors when non-nil. An empty,
	// non-nil slice matches nothing.
	AuthorIDs []uint
	Offset    int
	Limit     int
}

// Repository handles all article database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new articles repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns articles matching the filter, newest first, with author and
// tags loaded.
func (r *Repository) List(ctx context.Context, filter Filter) ([]entities.Article, error) {
	if filter.AuthorIDs != nil && len(filter.AuthorIDs) == 0 {
		return []entities.Article{}, nil
	}

	query := r.db.WithContext(ctx).Model(&entities.Article{})
	if filter.Tag != "" {
		query = query.Scopes(withTag(filter.Tag))
	}
	if filter.Author != "" {
		query = query.Scopes(withAuthor(filter.Author))
	}
	if filter.FavoritedBy != "" {
		query = query.Scopes(favoritedBy(filter.FavoritedBy))
	}
	if filter.AuthorIDs != nil {
		query = query.Scopes(byAuthors(filter.AuthorIDs))
	}

	articles := []entities.Article{}
	err := query.
		Scopes(withRelations, newestFirst, paginate(filter.Offset, filter.Limit)).
		Find(&articles).Error
	return articles, err
}

// GetBySlug loads one article with author and tags.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*entities.Article, error) {
	var article entities.Article
	err := r.db.WithContext(ctx).Scopes(withRelations).Where("slug = ?", slug).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// SlugExists reports whether an article already uses the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Article{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// Create inserts the article and attaches the named tags in one transaction.
// Tag names are resolved with find-or-create. A slug collision returns
// ErrSlugTaken and nothing is written.
func (r *Repository) Create(ctx context.Context, article *entities.Article, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, err := tags.NewRepository(tx).GetOrCreateTags(ctx, tagNames)
		if err != nil {
			return err
		}

		article.Tags = resolved
		err = tx.Omit("Author").Create(article).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return err
	})
}

// Favorite records that userID favorited articleID and bumps the counter
// only when a new row was written. It reports whether anything changed.
func (r *Repository) Favorite(ctx context.Context, userID, articleID uint) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&entities.Favorite{UserID: userID, ArticleID: articleID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&entities.Article{}).
			Where("id = ?", articleID).
			UpdateColumn("favorites_count", gorm.Expr("favorites_count + ?", 1)).Error
	})
	return changed, err
}

// Unfavorite removes the favorite and decrements the counter only when a row
// was deleted. It reports whether anything changed.
func (r *Repository) Unfavorite(ctx context.Context, userID, articleID uint) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND article_id = ?", userID, articleID).
			Delete(&entities.Favorite{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&entities.Article{}).
			Where("id = ? AND favorites_count > 0", articleID).
			UpdateColumn("favorites_count", gorm.Expr("favorites_count - ?", 1)).Error
	})
	return changed, err
}

// IsFavorited reports whether userID has favorited articleID.
func (r *Repository) IsFavorited(ctx context.Context, userID, articleID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Favorite{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error
	return count > 0, err
}

// ReconcileFavoriteCounts recomputes every drifted favorites_count from the
// favorites table and returns the number of corrected articles.
func (r *Repository) ReconcileFavoriteCounts(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE articles
		SET favorites_count = (SELECT COUNT(*) FROM favorites WHERE favorites.article_id = articles.id)
		WHERE favorites_count <> (SELECT COUNT(*) FROM favorites WHERE favorites.article_id = articles.id)
	`)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
