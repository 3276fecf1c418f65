package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ledger_app_echo/internal/middleware"
	"ledger_app_echo/internal/services"
)

// Services bundles what the HTTP layer depends on
type Services struct {
	Billing       *services.BillingService
	Ledger        *services.LedgerService
	Plans         *services.PlanService
	Subscriptions *services.SubscriptionService
}

// Register mounts the JSON API under /api and public lookups under /p.
// verifier may be nil, in which case the X-Actor-ID header names the actor.
func Register(e *echo.Echo, svc Services, verifier middleware.TokenVerifier) {
	authHandler := NewAuthHandler(verifier != nil)
	instanceHandler := NewInstanceHandler(svc.Billing)
	ledgerHandler := NewLedgerHandler(svc.Ledger)
	planHandler := NewPlanHandler(svc.Plans)
	customerHandler := NewCustomerHandler(svc.Plans)
	subscriptionHandler := NewSubscriptionHandler(svc.Subscriptions)
	publicHandler := NewPublicHandler(svc.Billing)

	// Public routes
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/p/:uuid", publicHandler.ShowInstance)

	// Protected routes
	api := e.Group("/api")
	api.Use(middleware.ResolveActor(verifier))
	api.GET("/me", authHandler.WhoAmI)

	// Instance routes
	api.POST("/instances/ensure", instanceHandler.EnsureInstances)
	api.GET("/instances", instanceHandler.ListInstances)
	api.GET("/instances/alerts", instanceHandler.Alerts)
	api.POST("/instances/:id/collect", instanceHandler.Collect)

	// Ledger routes
	api.POST("/ledger/split", ledgerHandler.Split)
	api.POST("/transactions", ledgerHandler.PostTransaction)
	api.GET("/transactions", ledgerHandler.ListTransactions)
	api.POST("/transactions/:id/archive", ledgerHandler.ArchiveTransaction)
	api.GET("/balances", ledgerHandler.ListBalances)

	// Plan routes
	api.POST("/plans", planHandler.StorePlan)
	api.POST("/plans/:id/amount", planHandler.UpdatePlanAmount)
	api.POST("/plans/:id/archive", planHandler.ArchivePlan)
	api.GET("/plans/:id/schedule", planHandler.Schedule)

	// Customer routes
	api.GET("/customers", customerHandler.ListCustomers)
	api.POST("/customers", customerHandler.StoreCustomer)
	api.GET("/customers/:id", customerHandler.ShowCustomer)

	// Subscription routes
	api.POST("/subscriptions", subscriptionHandler.StoreSubscription)
	api.POST("/subscriptions/:id/partial", subscriptionHandler.RecordPartialPayment)
	api.POST("/subscriptions/:id/collect", subscriptionHandler.CollectSubscription)
}
