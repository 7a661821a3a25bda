package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/conduit/internal/auth"
	"github.com/mrlokans/conduit/internal/profiles"
)

type ProfilesController struct {
	service ProfileService
}

func NewProfilesController(service ProfileService) *ProfilesController {
	return &ProfilesController{service: service}
}

// Get returns a public profile
// GET /api/profiles/:username
func (pc *ProfilesController) Get(c *gin.Context) {
	profile, err := pc.service.Get(c.Request.Context(), c.Param("username"), auth.GetUserID(c))
	pc.respond(c, profile, err)
}

// Follow makes the requester follow the user
// POST /api/profiles/:username/follow
func (pc *ProfilesController) Follow(c *gin.Context) {
	profile, err := pc.service.Follow(c.Request.Context(), c.Param("username"), auth.GetUserID(c))
	pc.respond(c, profile, err)
}

// Unfollow removes the follow edge
// DELETE /api/profiles/:username/follow
func (pc *ProfilesController) Unfollow(c *gin.Context) {
	profile, err := pc.service.Unfollow(c.Request.Context(), c.Param("username"), auth.GetUserID(c))
	pc.respond(c, profile, err)
}

func (pc *ProfilesController) respond(c *gin.Context, profile profiles.ProfileView, err error) {
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
