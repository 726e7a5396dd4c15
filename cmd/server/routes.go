package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"observer-console.backend/internal/config"
	"observer-console.backend/internal/interfaces/http/handlers"
	"observer-console.backend/internal/interfaces/http/middleware"
	"observer-console.backend/pkg/jwt"
)

const (
	serviceName    = "observer-console-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	verificationHandler *handlers.VerificationHandler
	webhookHandler      *handlers.WebhookHandler
	authMiddleware      gin.HandlerFunc
}

var authMiddlewareFor = func(jwtService *jwt.JWTService) gin.HandlerFunc {
	return middleware.AuthMiddleware(jwtService)
}

func newRouter(cfg *config.Config, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))

	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, d)
	return r
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Vendor callbacks (signed, no bearer token)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/verification", d.webhookHandler.HandleVerificationWebhook)
		}

		// Verification actions (protected)
		v1.POST("/verifications", d.authMiddleware, middleware.IdempotencyMiddleware(), d.verificationHandler.HandleAction)

		// Admin review (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/verifications", d.verificationHandler.ListVerifications)
			admin.GET("/verification-config", d.verificationHandler.GetConfig)
			admin.POST("/verification-config/refresh", d.verificationHandler.RefreshConfig)
		}
	}
}
