package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/conduit/internal/articles"
	"github.com/mrlokans/conduit/internal/auth"
)

type ArticlesController struct {
	service ArticleService
}

func NewArticlesController(service ArticleService) *ArticlesController {
	return &ArticlesController{service: service}
}

type createArticleRequest struct {
	Article struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Body        string   `json:"body"`
		TagList     []string `json:"tagList"`
		// Older clients send tags as objects.
		Tags []struct {
			Name string `json:"name"`
		} `json:"tags"`
	} `json:"article"`
}

func (r createArticleRequest) input() articles.CreateInput {
	tags := append([]string(nil), r.Article.TagList...)
	for _, tag := range r.Article.Tags {
		tags = append(tags, tag.Name)
	}
	return articles.CreateInput{
		Title:       r.Article.Title,
		Description: r.Article.Description,
		Body:        r.Article.Body,
		TagList:     tags,
	}
}

// List returns articles filtered by tag, author and favoriting user
// GET /api/articles
func (ac *ArticlesController) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	list, err := ac.service.List(c.Request.Context(), articles.ListParams{
		Tag:       c.Query("tag"),
		Author:    c.Query("author"),
		Favorited: c.Query("favorited"),
		Offset:    offset,
		Limit:     limit,
	}, auth.GetUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Feed returns articles by the authors the requester follows
// GET /api/articles/feed
func (ac *ArticlesController) Feed(c *gin.Context) {
	offset, limit := parsePagination(c)
	list, err := ac.service.Feed(c.Request.Context(), auth.GetUserID(c), offset, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get returns one article
// GET /api/articles/:slug
func (ac *ArticlesController) Get(c *gin.Context) {
	article, err := ac.service.Get(c.Request.Context(), c.Param("slug"), auth.GetUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// Create stores a new article authored by the requester
// POST /api/articles
func (ac *ArticlesController) Create(c *gin.Context) {
	var req createArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := ac.service.Create(c.Request.Context(), auth.GetUserID(c), req.input())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": article})
}

// Favorite adds the article to the requester's favorites
// POST /api/articles/:slug/favorite
func (ac *ArticlesController) Favorite(c *gin.Context) {
	article, err := ac.service.Favorite(c.Request.Context(), c.Param("slug"), auth.GetUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// Unfavorite removes the article from the requester's favorites
// DELETE /api/articles/:slug/favorite
func (ac *ArticlesController) Unfavorite(c *gin.Context) {
	article, err := ac.service.Unfavorite(c.Request.Context(), c.Param("slug"), auth.GetUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}
