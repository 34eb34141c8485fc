package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"swappay-be/internal/config"
	"swappay-be/internal/pkg/keymutex"
	"swappay-be/internal/pkg/logger"
	"swappay-be/internal/pkg/metrics"
	"swappay-be/internal/repository/unitofwork"
	"swappay-be/internal/service"
	"swappay-be/pkg/database"
	mpEvents "swappay-be/pkg/marketplace/events"

	"gorm.io/gorm"
)

// openDB is swapped out in tests.
var openDB = func(cfg *config.Config) (*gorm.DB, error) {
	return database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
}

// echoBroadcaster prints room events instead of pushing them to sockets.
type echoBroadcaster struct {
	out io.Writer
}

func (b echoBroadcaster) Publish(_ context.Context, channel, event string, payload map[string]interface{}) {
	warnColor.Fprintf(b.out, "  -> %s %s %v\n", channel, event, payload)
}

type services struct {
	cfg        *config.Config
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory
	metrics    *metrics.Metrics
	ledger     service.ILedgerService
	trade      service.ITradeAgreementService
}

func loadServices(out io.Writer) (*services, error) {
	cfg := config.Load()
	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	log := logger.NewNopLogger()
	m := metrics.New()
	ledger := service.NewLedgerService(uowFactory, m, log)

	return &services{
		cfg:        cfg,
		db:         db,
		uowFactory: uowFactory,
		metrics:    m,
		ledger:     ledger,
		trade: service.NewTradeAgreementService(
			uowFactory,
			ledger,
			keymutex.New(),
			echoBroadcaster{out: out},
			mpEvents.NewNatsPublisher(nil, log),
			m,
			log,
		),
	}, nil
}

// sweeper reads the retention window at call time so flags can override it.
func (s *services) sweeper() service.IJanitorService {
	return service.NewJanitorService(s.uowFactory, s.cfg.Janitor.Schedule, s.cfg.Janitor.MessageRetention, s.metrics, logger.NewNopLogger())
}

func commandContext(cmd interface{ Context() context.Context }) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, time.Minute)
}
