// Package router provides season module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	divisionRepository "github.com/jarruego/tiktok-league/internal/division/repository"
	playoffRepository "github.com/jarruego/tiktok-league/internal/playoff/repository"
	playoffService "github.com/jarruego/tiktok-league/internal/playoff/service"
	"github.com/jarruego/tiktok-league/internal/season/handler"
	"github.com/jarruego/tiktok-league/internal/season/repository"
	"github.com/jarruego/tiktok-league/internal/season/service"
	teamRepository "github.com/jarruego/tiktok-league/internal/team/repository"
	teamService "github.com/jarruego/tiktok-league/internal/team/service"
)

// RegisterRoutes registers season module routes. The season service sits
// on top of the playoff and team modules, so their services are built here
// as collaborators.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, logger *zap.SugaredLogger) {
	teamRepo := teamRepository.New(db)
	playoffs := playoffService.New(playoffRepository.New(db), db, logger)
	assigner := teamService.New(teamRepo, db, logger)
	svc := service.New(
		repository.New(db),
		divisionRepository.New(db),
		teamRepo,
		playoffs,
		assigner,
		db,
		logger,
	)
	h := handler.New(svc, logger)

	r.GET("/seasons/closure-report", h.ClosureReport)
	r.GET("/seasons/active", h.GetActiveSeason)
	r.POST("/seasons/transition", h.Transition)
}
