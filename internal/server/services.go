package server

import (
	"context"
	"fmt"

	"starpos-backend/internal/audit"
	"starpos-backend/internal/auth"
	"starpos-backend/internal/checkout"
	"starpos-backend/internal/clock"
	"starpos-backend/internal/config"
	"starpos-backend/internal/database"
	"starpos-backend/internal/idgen"
	"starpos-backend/internal/inventory"
	"starpos-backend/internal/ledger"
	"starpos-backend/internal/metrics"
	"starpos-backend/internal/notification"
	"starpos-backend/internal/product"
	"starpos-backend/internal/profile"
	"starpos-backend/internal/storage"
	"starpos-backend/internal/storage/redisstore"
	"starpos-backend/internal/storage/sqlstore"

	"go.uber.org/zap"
)

// Services holds every store and engine of one running instance.
type Services struct {
	KV            storage.Store
	Clock         clock.Clock
	Metrics       *metrics.Collectors
	Journal       *audit.Journal
	Notifications *notification.Store
	Evaluator     *inventory.Evaluator
	Ingredients   *inventory.Store
	Products      *product.Store
	Ledger        *ledger.Ledger
	Profile       *profile.Store
	Auth          *auth.Service
	Checkout      *checkout.Engine
}

// OpenStorage returns the key-value backend selected by STARPOS_STORAGE_DRIVER.
func OpenStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemory(), nil
	case config.DriverRedis:
		return redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	case config.DriverSQLite, config.DriverPostgres:
		db, err := database.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		return sqlstore.New(db), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// NewServices wires the stores on top of kv and loads their documents.
// m may be nil when metrics are disabled.
func NewServices(ctx context.Context, cfg *config.Config, kv storage.Store, clk clock.Clock, ids idgen.Generator, m *metrics.Collectors, log *zap.Logger) (*Services, error) {
	policy, err := inventory.ParseStockPolicy(cfg.StockPolicy)
	if err != nil {
		return nil, err
	}

	kv = metrics.InstrumentStore(kv, m, log.Named("storage"))

	s := &Services{KV: kv, Clock: clk, Metrics: m}
	s.Journal = audit.NewJournal(kv, log.Named("audit"), audit.DefaultLimit)
	s.Notifications = notification.NewStore(kv, ids, clk, log.Named("notification"))
	s.Evaluator = inventory.NewEvaluator(kv, s.Notifications, cfg.LowStockRatio, m, log.Named("lowstock"))
	s.Ingredients = inventory.NewStore(kv, ids, clk, log.Named("inventory"),
		inventory.WithObserver(s.Evaluator),
		inventory.WithJournal(s.Journal))
	s.Products = product.NewStore(kv, ids, clk, s.Ingredients, log.Named("product"))
	s.Ledger = ledger.New(kv, ids, clk, log.Named("ledger"))
	s.Profile = profile.NewStore(kv, cfg.BusinessName, log.Named("profile"))
	s.Auth = auth.NewService(kv, clk, cfg.JWTSecret, s.Profile, log.Named("auth"))
	s.Checkout = checkout.NewEngine(s.Products, s.Ingredients, s.Ledger, policy, m, log.Named("checkout"))

	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{"stock movements", s.Journal.Load},
		{"notifications", s.Notifications.Load},
		{"low stock markers", s.Evaluator.Load},
		{"ingredients", s.Ingredients.Load},
		{"products", s.Products.Load},
		{"ledger", s.Ledger.Load},
		{"profile", s.Profile.Load},
		{"account", s.Auth.Load},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			return nil, fmt.Errorf("load %s: %w", l.name, err)
		}
	}

	if _, err := s.Evaluator.Scan(ctx, s.Ingredients.List()); err != nil {
		log.Warn("startup low stock scan incomplete", zap.Error(err))
	}
	return s, nil
}
