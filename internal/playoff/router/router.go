// Package router provides playoff module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jarruego/tiktok-league/internal/playoff/handler"
	"github.com/jarruego/tiktok-league/internal/playoff/repository"
	"github.com/jarruego/tiktok-league/internal/playoff/service"
)

// RegisterRoutes registers playoff module routes.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, logger *zap.SugaredLogger) {
	svc := service.New(repository.New(db), db, logger)
	h := handler.New(svc, logger)

	r.POST("/playoffs/organize", h.Organize)
	r.POST("/playoffs/result", h.RecordResult)
	r.GET("/playoffs/stage", h.GetStage)
}
