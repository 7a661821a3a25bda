// Package auth provides user registration, login and request authentication.
//
// API clients authenticate with a signed token in the Authorization header,
// using either scheme:
//
//	Authorization: Token <jwt>
//	Authorization: Bearer <jwt>
//
// Browser clients may additionally use cookie sessions (scs). Cookie-based
// unsafe requests are protected by gorilla/csrf.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<random>        # Auto-generated per process if empty
//	AUTH_TOKEN_EXPIRY=720h          # Token lifetime
//	AUTH_BCRYPT_COST=12             # bcrypt cost factor
//	AUTH_SESSIONS_ENABLED=false     # Cookie sessions
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_SECURE_COOKIES=true        # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5       # Failed logins per IP+email before lockout
//
// # Usage
//
//	authService := auth.NewService(userRepo, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager)
//	api.Use(authMiddleware.Authenticate())
//	api.POST("/articles", authMiddleware.RequireAuth(), ctrl.CreateArticle)
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c) // AnonymousUserID (0) when unauthenticated
package auth
