package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TagsController struct {
	tags TagLister
}

func NewTagsController(tags TagLister) *TagsController {
	return &TagsController{tags: tags}
}

// List returns tag names, most used first
// GET /api/tags
func (tc *TagsController) List(c *gin.Context) {
	tags, err := tc.tags.PopularTags(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
