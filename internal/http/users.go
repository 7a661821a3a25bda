package http

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/conduit/internal/apperrors"
	"github.com/mrlokans/conduit/internal/auth"
)

type UsersController struct {
	accounts AccountService
	limiter  *auth.RateLimiter
	sessions *auth.SessionManager
	auditor  AuthAuditor
}

// NewUsersController creates the account controller. limiter, sessions and
// auditor may be nil.
func NewUsersController(accounts AccountService, limiter *auth.RateLimiter, sessions *auth.SessionManager, auditor AuthAuditor) *UsersController {
	return &UsersController{
		accounts: accounts,
		limiter:  limiter,
		sessions: sessions,
		auditor:  auditor,
	}
}

type registerRequest struct {
	User struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

type loginRequest struct {
	User struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

// Register creates an account and returns it with a token
// POST /api/users
func (uc *UsersController) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.accounts.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login checks credentials and returns the user with a fresh token
// POST /api/users/login
func (uc *UsersController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	email := strings.TrimSpace(req.User.Email)
	details := map[string]string{}
	if email == "" {
		details["email"] = "can't be blank"
	}
	if req.User.Password == "" {
		details["password"] = "can't be blank"
	}
	if len(details) > 0 {
		respondErr(c, apperrors.Validation("invalid credentials", details))
		return
	}

	ip := c.ClientIP()
	if uc.limiter != nil {
		if allowed, retryAfter := uc.limiter.Allow(ip, email); !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retryAfter.Seconds()))))
			respondErr(c, apperrors.TooManyRequests("too many login attempts, try again later"))
			return
		}
	}

	user, view, err := uc.accounts.Login(c.Request.Context(), email, req.User.Password)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnauthorized {
			if uc.limiter != nil {
				uc.limiter.RecordFailure(ip, email)
			}
			uc.logAuth(c, 0, false)
		}
		respondErr(c, err)
		return
	}

	if uc.limiter != nil {
		uc.limiter.RecordSuccess(ip, email)
	}
	if uc.sessions != nil {
		if err := uc.sessions.CreateSession(c.Request, user); err != nil {
			respondErr(c, fmt.Errorf("failed to create session: %w", err))
			return
		}
	}
	uc.logAuth(c, user.ID, true)

	c.JSON(http.StatusOK, gin.H{"user": view})
}

// Current returns the authenticated user with a refreshed token
// GET /api/user
func (uc *UsersController) Current(c *gin.Context) {
	user, err := uc.accounts.Current(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout ends the cookie session. Tokens are stateless and expire on their own.
// POST /api/users/logout
func (uc *UsersController) Logout(c *gin.Context) {
	if uc.sessions != nil {
		if err := uc.sessions.DestroySession(c.Request); err != nil {
			respondErr(c, fmt.Errorf("failed to destroy session: %w", err))
			return
		}
	}
	respondSuccess(c, "logged out")
}

func (uc *UsersController) logAuth(c *gin.Context, userID uint, success bool) {
	if uc.auditor == nil {
		return
	}
	uc.auditor.LogAuth(userID, "login", c.ClientIP(), c.Request.UserAgent(), success)
}
