package main

import (
	"net/http"

	"github.com/rs/zerolog"

	httphandlers "finanzas/internal/interfaces/http"
	"finanzas/internal/shared/config"
	"finanzas/internal/shared/middleware"
	"finanzas/internal/shared/telemetry"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, tel *telemetry.Provider, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("/health", httphandlers.HandleHealth(deps.DB))
	if tel != nil {
		mux.Handle("/metrics", tel.Handler())
	}

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// External scheduler
	cron := middleware.CronSecret(cfg.Cron.Secret)
	mux.Handle("/api/cron/recurring", cron(http.HandlerFunc(deps.CronHandler.HandleRecurring)))

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protect := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authMiddleware(h))
	}

	protect("/api/users/me", deps.UserHandler.HandleMe)

	protect("/api/accounts/", deps.AccountHandler.HandleAccounts)
	protect("/api/accounts/recalculate-balances", deps.AccountHandler.HandleRecalculateBalances)
	protect("/api/accounts/{id}", deps.AccountHandler.HandleAccountByID)

	protect("/api/categories/", deps.CategoryHandler.HandleCategories)
	protect("/api/categories/{id}", deps.CategoryHandler.HandleCategoryByID)

	protect("/api/transactions/", deps.TransactionHandler.HandleTransactions)
	protect("/api/transactions/recent", deps.TransactionHandler.HandleRecent)
	protect("/api/transactions/{id}", deps.TransactionHandler.HandleTransactionByID)

	protect("/api/recurring/", deps.RecurringHandler.HandleRules)
	protect("/api/recurring/generate", deps.RecurringHandler.HandleGenerate)
	protect("/api/recurring/{id}", deps.RecurringHandler.HandleRuleByID)

	protect("/api/transfers/", deps.TransferHandler.HandleTransfers)
	protect("/api/transfers/{id}", deps.TransferHandler.HandleTransferByID)

	protect("/api/dashboard", deps.SummaryHandler.HandleDashboard)
	protect("/api/budgets", deps.SummaryHandler.HandleBudgets)
	protect("/api/overview", deps.SummaryHandler.HandleOverview)

	protect("/api/notifications/", deps.NotificationHandler.HandleNotifications)
	protect("/api/notifications/devices", deps.NotificationHandler.HandleDevices)
	protect("/api/notifications/preferences", deps.NotificationHandler.HandlePreferences)
	protect("/api/notifications/{id}/open", deps.NotificationHandler.HandleOpen)

	// Apply global middleware
	var handler http.Handler = middleware.RouteMetrics(mux)
	handler = middleware.CORS(cfg.Server.AllowedHosts)(handler)
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.Recovery(log)(handler)

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Info().Msg("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	if tel != nil {
		handler = middleware.Telemetry(handler)
	}
	return handler
}
