package entities

import "time"

type Article struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Slug           string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"size:1024" json:"description"`
	Body           string    `gorm:"type:text" json:"body"`
	FavoritesCount int64     `gorm:"not null;default:0" json:"favorites_count"`
	AuthorID       uint      `gorm:"index;not null" json:"author_id"`
	Author         User      `gorm:"foreignKey:AuthorID" json:"author"`
	Tags           []Tag     `gorm:"many2many:article_tags;" json:"tags"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite marks that UserID has favorited ArticleID. The composite key makes
// repeated favorites a no-op.
type Favorite struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ArticleID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"article_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}
