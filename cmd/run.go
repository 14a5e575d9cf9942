package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/MuhammadaminPy/gifts/config"
	"github.com/MuhammadaminPy/gifts/database"
	"github.com/MuhammadaminPy/gifts/events"
	"github.com/MuhammadaminPy/gifts/repository"
	"github.com/MuhammadaminPy/gifts/service"
)

// Services bundles the settlement core's public services for embedding
// callers (request handlers, admin tooling, bots).
type Services struct {
	User       service.UserService
	Ledger     service.LedgerService
	Game       service.GameService
	Withdrawal service.WithdrawalService
	Inventory  service.InventoryService
	FreeCase   service.FreeCaseService
	Stats      service.StatsService
}

// Run initializes the settlement core and blocks until the context is
// cancelled.
func Run(ctx context.Context) error {
	log.Info("Starting gifts settlement core...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	registerAuditHandlers(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	services := BuildServices(uowFactory, cfg)

	// Reading the dashboard counters at startup both proves the service
	// graph is wired end to end and gives operators a boot-time snapshot.
	stats, err := services.Stats.GetAdminStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read ledger state: %w", err)
	}
	log.WithFields(log.Fields{
		"users":    stats.TotalUsers,
		"deposits": stats.TotalDeposits,
	}).Info("Ledger state loaded")

	log.Infof("Settlement core is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}

// BuildServices wires the full service layer over a unit of work factory
func BuildServices(uowFactory service.UnitOfWorkFactory, cfg *config.Config) *Services {
	return &Services{
		User:       service.NewUserService(uowFactory, cfg),
		Ledger:     service.NewLedgerService(uowFactory, cfg),
		Game:       service.NewGameService(uowFactory),
		Withdrawal: service.NewWithdrawalService(uowFactory),
		Inventory:  service.NewInventoryService(uowFactory),
		FreeCase:   service.NewFreeCaseService(uowFactory, cfg),
		Stats:      service.NewStatsService(uowFactory, cfg),
	}
}

// registerAuditHandlers logs every committed ledger event. These run after
// commit, so the log is an audit trail of applied changes only.
func registerAuditHandlers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		ev := e.(events.BalanceChangeEvent)
		log.WithFields(log.Fields{
			"userID": ev.UserID,
			"type":   ev.TransactionType,
			"change": ev.ChangeAmount,
			"after":  ev.NewBalance,
		}).Info("Balance changed")
	})

	bus.Subscribe(events.EventTypeUserRegistered, func(ctx context.Context, e events.Event) {
		ev := e.(events.UserRegisteredEvent)
		log.WithFields(log.Fields{
			"userID":     ev.UserID,
			"referredBy": ev.ReferredBy,
		}).Info("User registered")
	})

	bus.Subscribe(events.EventTypeDepositReceived, func(ctx context.Context, e events.Event) {
		ev := e.(events.DepositReceivedEvent)
		log.WithFields(log.Fields{
			"userID":     ev.UserID,
			"amount":     ev.Amount,
			"method":     ev.Method,
			"commission": ev.Commission,
		}).Info("Deposit received")
	})

	bus.Subscribe(events.EventTypeWithdrawalRequested, func(ctx context.Context, e events.Event) {
		ev := e.(events.WithdrawalRequestedEvent)
		log.WithFields(log.Fields{
			"requestID": ev.RequestID,
			"userID":    ev.UserID,
			"amount":    ev.Amount,
		}).Info("Withdrawal requested")
	})

	bus.Subscribe(events.EventTypeWithdrawalResolved, func(ctx context.Context, e events.Event) {
		ev := e.(events.WithdrawalResolvedEvent)
		log.WithFields(log.Fields{
			"requestID": ev.RequestID,
			"userID":    ev.UserID,
			"status":    ev.Status,
		}).Info("Withdrawal resolved")
	})
}
