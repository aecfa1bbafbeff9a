package main

import (
	"context"

	"github.com/rs/zerolog"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/category"
	"finanzas/internal/domain/ledger"
	"finanzas/internal/domain/notification"
	"finanzas/internal/domain/recurring"
	"finanzas/internal/domain/summary"
	"finanzas/internal/domain/user"
	"finanzas/internal/infrastructure/firebase"
	"finanzas/internal/infrastructure/postgres"
	"finanzas/internal/infrastructure/postgres/listener"
	httphandlers "finanzas/internal/interfaces/http"
	"finanzas/internal/shared/auth"
	"finanzas/internal/shared/config"
	"finanzas/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler         *httphandlers.AuthHandler
	UserHandler         *httphandlers.UserHandler
	AccountHandler      *httphandlers.AccountHandler
	CategoryHandler     *httphandlers.CategoryHandler
	TransactionHandler  *httphandlers.TransactionHandler
	RecurringHandler    *httphandlers.RecurringHandler
	TransferHandler     *httphandlers.TransferHandler
	SummaryHandler      *httphandlers.SummaryHandler
	NotificationHandler *httphandlers.NotificationHandler
	CronHandler         *httphandlers.CronHandler

	// Auth
	JWT *auth.JWT

	// Ledger drives the scheduler jobs and the balance listener.
	Ledger          *ledger.Service
	BalanceListener *listener.BalanceListener
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("connected to database")

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	texts, err := messages.Load(cfg.Messages.Path)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Repositories
	store := postgres.NewStore(db)
	repos := store.Repos()
	userRepo := postgres.NewUserRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Push notifications are optional; without credentials they are only stored.
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, notificationRepo.DeactivateToken, log)
		if err != nil {
			log.Warn().Err(err).Msg("firebase unavailable, push notifications disabled")
		} else {
			messenger = fcm
		}
	}

	// Domain services
	notificationService := notification.NewService(notificationRepo, messenger, texts, log)
	ledgerService := ledger.NewService(store, log, ledger.WithNotifier(notificationService))
	userService := user.NewService(userRepo)
	accountService := account.NewService(repos.Accounts)
	categoryService := category.NewService(repos.Categories)
	recurringService := recurring.NewService(repos.Recurring, repos.Accounts, repos.Categories)
	summaryService := summary.NewService(ledgerService, repos.Transactions, repos.Categories, repos.Recurring)

	jwt := auth.NewJWT(cfg.JWT.Secret)

	return &Dependencies{
		DB:                  db,
		AuthHandler:         httphandlers.NewAuthHandler(userService, jwt),
		UserHandler:         httphandlers.NewUserHandler(userService),
		AccountHandler:      httphandlers.NewAccountHandler(accountService, ledgerService),
		CategoryHandler:     httphandlers.NewCategoryHandler(categoryService),
		TransactionHandler:  httphandlers.NewTransactionHandler(ledgerService),
		RecurringHandler:    httphandlers.NewRecurringHandler(recurringService, ledgerService),
		TransferHandler:     httphandlers.NewTransferHandler(ledgerService),
		SummaryHandler:      httphandlers.NewSummaryHandler(summaryService),
		NotificationHandler: httphandlers.NewNotificationHandler(notificationService),
		CronHandler:         httphandlers.NewCronHandler(ledgerService),
		JWT:                 jwt,
		Ledger:              ledgerService,
		BalanceListener:     listener.NewBalanceListener(cfg.Database.ConnectionString(), ledgerService, log),
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
