package articles

import "gorm.io/gorm"

// Scopes compose the list filters. Each one narrows the article set, so
// applying several yields their intersection.

func withTag(name string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("articles.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("article_tags").
				Select("article_tags.article_id").
				Joins("JOIN tags ON tags.id = article_tags.tag_id").
				Where("tags.name = ?", name))
	}
}

func withAuthor(username string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("articles.author_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("users").
				Select("users.id").
				Where("users.username = ?", username))
	}
}

func favoritedBy(username string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("articles.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("favorites").
				Select("favorites.article_id").
				Joins("JOIN users ON users.id = favorites.user_id").
				Where("users.username = ?", username))
	}
}

func byAuthors(ids []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("articles.author_id IN ?", ids)
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("articles.created_at DESC").Order("articles.id DESC")
}

func paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if offset > 0 {
			db = db.Offset(offset)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name ASC")
	})
}
