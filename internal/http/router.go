package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/config"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/http/handlers"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/http/middleware"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/service"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/session"

	_ "github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/docs"
)

func Router(cfg config.Config, store *session.Store, settings *session.Settings, chat *service.ChatService, approvals *service.ApprovalService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Settings:  settings,
		Chat:      chat,
		Approvals: approvals,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.POST("/chat/messages", h.ChatSend)
		api.GET("/chat/messages", h.ChatMessages)
		api.GET("/tickets", h.TicketsList)
		api.GET("/tickets/:id", h.TicketDetails)
		api.GET("/approvals/pending", h.ApprovalsPending)
		api.GET("/approvals/resolved", h.ApprovalsResolved)
		api.GET("/revenue", h.RevenueList)
		api.GET("/dashboard", h.Dashboard)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/approvals/resolve", h.ApprovalResolve)
		admin.GET("/settings", h.SettingsGet)
		admin.PUT("/settings", h.SettingsUpdate)
		admin.POST("/sample-data", h.SampleData)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
