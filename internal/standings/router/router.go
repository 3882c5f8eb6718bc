// Package router provides standings module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jarruego/tiktok-league/internal/standings/handler"
	"github.com/jarruego/tiktok-league/internal/standings/repository"
	"github.com/jarruego/tiktok-league/internal/standings/service"
)

// RegisterRoutes registers standings module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, logger *zap.SugaredLogger) {
	svc := service.New(repository.New(db), db, logger)
	h := handler.New(svc, logger)

	r.GET("/standings", h.GetStandings)
}
