package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/payneu/gateway/internal/server/http/handlers"
	"github.com/payneu/gateway/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.GatewayFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade, facade)
	adminHandler := handlers.NewAdminHandler(facade, facade, facade)

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	api.GET("/wallet", paymentHandler.Wallet)

	invoices := api.Group("/invoices")
	invoices.GET("/:id", paymentHandler.Invoice)
	invoices.GET("/:id/eligibility", paymentHandler.Eligibility)
	invoices.POST("/:id/pay", paymentHandler.Pay)
	invoices.GET("/:id/payment", paymentHandler.PaymentStatus)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(facade))
	admin.GET("/invoices", adminHandler.Invoices)
	admin.POST("/invoices", adminHandler.CreateInvoice)
	admin.GET("/tokens", adminHandler.Tokens)
	admin.POST("/tokens", adminHandler.RegisterToken)
	admin.POST("/faucet", adminHandler.Mint)
	admin.GET("/payments", adminHandler.Payments)

	return engine
}
