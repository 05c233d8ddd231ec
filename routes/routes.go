package routes

import (
	"swapcash/internal/handlers"
	"swapcash/internal/middleware"
	"swapcash/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Transaction *handlers.TransactionHandler
	Withdrawal  *handlers.WithdrawalHandler
	Rate        *handlers.RateHandler
	KYC         *handlers.KYCHandler
}

// Setup mounts all API routes under /api/v1.
func Setup(r *gin.Engine, h *Handlers, auth services.AuthService) {
	api := r.Group("/api/v1")

	SetupAuthRoutes(api, h.Auth)
	SetupPublicRoutes(api, h.Rate, h.Transaction)
	SetupUserRoutes(api, h, auth)
	SetupAdminRoutes(api, h, auth)
}

// SetupAuthRoutes mounts the unauthenticated login endpoints.
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		auth.POST("/telegram", authHandler.TelegramAuth)
		auth.POST("/admin/login", authHandler.AdminLogin)
	}
}

// SetupPublicRoutes mounts read-only endpoints usable without a session.
func SetupPublicRoutes(r *gin.RouterGroup, rateHandler *handlers.RateHandler, txHandler *handlers.TransactionHandler) {
	rates := r.Group("/rates")
	{
		rates.GET("", rateHandler.ListRates)
		rates.GET("/:currency", rateHandler.GetRate)
	}

	r.POST("/quote", txHandler.Quote)
}

// SetupUserRoutes mounts the authenticated user surface.
func SetupUserRoutes(r *gin.RouterGroup, h *Handlers, auth services.AuthService) {
	me := r.Group("/me")
	me.Use(middleware.AuthRequired(auth))
	{
		me.GET("", h.User.Me)
		me.GET("/volume", h.User.MyVolume)
		me.GET("/referrals", h.User.MyReferrals)
		me.GET("/transactions", h.Transaction.MyTransactions)
		me.GET("/withdrawals", h.Withdrawal.MyWithdrawals)
		me.GET("/kyc", h.KYC.MyDocuments)
	}

	transactions := r.Group("/transactions")
	transactions.Use(middleware.AuthRequired(auth))
	{
		transactions.POST("", h.Transaction.Create)
	}

	withdrawals := r.Group("/withdrawals")
	withdrawals.Use(middleware.AuthRequired(auth))
	{
		withdrawals.POST("", h.Withdrawal.Request)
	}

	kyc := r.Group("/kyc")
	kyc.Use(middleware.AuthRequired(auth))
	{
		kyc.POST("/documents", h.KYC.Upload)
	}
}

// SetupAdminRoutes mounts the operator surface.
func SetupAdminRoutes(r *gin.RouterGroup, h *Handlers, auth services.AuthService) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(auth), middleware.AdminRequired())
	{
		admin.GET("/users", h.User.ListUsers)

		admin.GET("/transactions/pending", h.Transaction.ListPending)
		admin.PUT("/transactions/:id/complete", h.Transaction.Complete)
		admin.PUT("/transactions/:id/cancel", h.Transaction.Cancel)

		admin.GET("/withdrawals/pending", h.Withdrawal.ListPending)
		admin.PUT("/withdrawals/:id/resolve", h.Withdrawal.Resolve)
		admin.POST("/withdrawals/reconcile", h.Withdrawal.Reconcile)

		admin.PUT("/rates", h.Rate.UpdateRate)

		admin.GET("/kyc/pending", h.KYC.ListPending)
		admin.GET("/kyc/:id/url", h.KYC.DocumentURL)
		admin.PUT("/kyc/:id/review", h.KYC.Review)
	}
}
