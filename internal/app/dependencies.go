package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/houseit/internal/catalog"
	"github.com/vladislavdragonenkov/houseit/internal/domain"
	"github.com/vladislavdragonenkov/houseit/internal/storage/memory"
	mongostore "github.com/vladislavdragonenkov/houseit/internal/storage/mongo"
	"github.com/vladislavdragonenkov/houseit/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Catalog  *catalog.Catalog
	Carts    domain.CartStore
	Requests domain.RequestStore
	Outbox   domain.OutboxRepository
	IdemRepo domain.IdempotencyRepository
	Logger   *log.Entry

	closers []func() error
}

// Close освобождает ресурсы хранилищ.
func (d *Dependencies) Close() {
	for _, closer := range d.closers {
		if err := closer(); err != nil {
			d.Logger.WithError(err).Warn("failed to close storage")
		}
	}
}

// NewDependencies собирает каталог и хранилища согласно конфигурации.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	deps := &Dependencies{Catalog: cat, Logger: logger}

	switch cfg.StorageDriver {
	case StorageMemory:
		deps.Carts = memory.NewCartStore()
		deps.Requests = memory.NewRequestStore()
		deps.Outbox = memory.NewOutboxRepository()
		deps.IdemRepo = memory.NewIdempotencyRepository()
		logger.Info("using in-memory storage")

	case StoragePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		deps.Carts = postgres.NewCartStore(store)
		deps.Requests = postgres.NewRequestStore(store)
		deps.Outbox = postgres.NewOutboxRepository(store)
		deps.IdemRepo = postgres.NewIdempotencyRepository(store)
		deps.closers = append(deps.closers, store.Close)
		logger.Info("using postgres storage")

	case StorageMongo:
		db, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		carts := mongostore.NewCartStore(db)
		requests := mongostore.NewRequestStore(db)
		if err := carts.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		if err := requests.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		deps.Carts = carts
		deps.Requests = requests
		// outbox и idempotency живут в памяти: заявки и корзина
		// документные, событийный хвост не требует mongo-дубликата
		deps.Outbox = memory.NewOutboxRepository()
		deps.IdemRepo = memory.NewIdempotencyRepository()
		deps.closers = append(deps.closers, func() error {
			return db.Client().Disconnect(context.Background())
		})
		logger.Info("using mongo storage")

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	return deps, nil
}
