// Package router provides match module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jarruego/tiktok-league/internal/match/handler"
	"github.com/jarruego/tiktok-league/internal/match/repository"
	"github.com/jarruego/tiktok-league/internal/match/service"
	standingsRepository "github.com/jarruego/tiktok-league/internal/standings/repository"
	standingsService "github.com/jarruego/tiktok-league/internal/standings/service"
)

// RegisterRoutes registers match module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, logger *zap.SugaredLogger) {
	standings := standingsService.New(standingsRepository.New(db), db, logger)
	svc := service.New(repository.New(db), standings, db, logger)
	h := handler.New(svc, logger)

	r.POST("/schedule/generate", h.GenerateSchedule)
	r.POST("/matches/result", h.RecordResult)
	r.POST("/matches/simulate", h.SimulateMatchday)
	r.GET("/matches", h.GetMatches)
}
