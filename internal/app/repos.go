package app

import (
	"gorm.io/gorm"

	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
	"github.com/AltKhyin/reviewcanvas/internal/repos"
)

type Repos struct {
	Review repos.ReviewRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Review: repos.NewReviewRepo(db, log),
	}
}
