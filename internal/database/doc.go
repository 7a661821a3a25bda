// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or mysql), migrations
//	├── articles/        # Articles, listing scopes, favorites, counter reconciliation
//	├── tags/            # Find-or-create tags, popular tags
//	├── users/           # Users and the follow graph
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database, log)
//
//	articleRepo := articles.NewRepository(db.DB)
//	userRepo := users.NewRepository(db.DB)
//
//	list, err := articleRepo.List(ctx, articles.Filter{Tag: "golang", Limit: 20})
//	ids, err := userRepo.FollowedIDs(ctx, userID)
//
// Repositories translate gorm.ErrRecordNotFound into apperrors NotFound
// values so services never see gorm sentinels.
//
// # Transactions
//
// Multi-step writes (article creation, favorite, unfavorite) run inside
// db.Transaction. Repositories that participate in someone else's
// transaction expose WithTx.
package database
