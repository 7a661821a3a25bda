// Package tags provides database operations for article tags.
//
// # Usage
//
//	repo := tags.NewRepository(db)
//	tag, err := repo.WithTx(tx).GetOrCreateTag(ctx, "golang")
//	names, err := repo.PopularTags(ctx, 20)
package tags

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/conduit/internal/entities"
)

// Repository handles all tag database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tags repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetOrCreateTag returns the tag with the given name, creating it when missing.
// A concurrent insert of the same name is absorbed by the unique index and the
// row is read back, so N distinct names always map to N rows.
func (r *Repository) GetOrCreateTag(ctx context.Context, name string) (*entities.Tag, error) {
	db := r.db.WithContext(ctx)

	var tag entities.Tag
	err := db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = entities.Tag{Name: name}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || tag.ID == 0 {
		tag = entities.Tag{}
		if err := db.Where("name = ?", name).First(&tag).Error; err != nil {
			return nil, err
		}
	}
	return &tag, nil
}

// GetOrCreateTags resolves every name in order.
func (r *Repository) GetOrCreateTags(ctx context.Context, names []string) ([]entities.Tag, error) {
	tags := make([]entities.Tag, 0, len(names))
	for _, name := range names {
		tag, err := r.GetOrCreateTag(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// PopularTags returns tag names ordered by the number of articles using them,
// then alphabetically. A limit of zero or less returns every tag.
func (r *Repository) PopularTags(ctx context.Context, limit int) ([]string, error) {
	query := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.name").
		Joins("LEFT JOIN article_tags ON article_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("COUNT(article_tags.article_id) DESC").
		Order("tags.name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var names []string
	err := query.Pluck("tags.name", &names).Error
	return names, err
}
