package app

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/calshare/server/internal/domain"
	"github.com/calshare/server/internal/domain/calendar"
	"github.com/calshare/server/internal/domain/relation"

	// Inbound adapters
	activityhttp "github.com/calshare/server/internal/adapter/inbound/http/activity"
	calendarhttp "github.com/calshare/server/internal/adapter/inbound/http/calendar"
	identityhttp "github.com/calshare/server/internal/adapter/inbound/http/identity"
	invitationhttp "github.com/calshare/server/internal/adapter/inbound/http/invitation"

	// Ports
	"github.com/calshare/server/internal/port/outbound"

	// Outbound adapters
	authadapter "github.com/calshare/server/internal/adapter/outbound/auth"
	"github.com/calshare/server/internal/adapter/outbound/memory"
	"github.com/calshare/server/internal/adapter/outbound/postgres"
	redisadapter "github.com/calshare/server/internal/adapter/outbound/redis"

	// Infrastructure
	"github.com/calshare/server/internal/infra/config"
	"github.com/calshare/server/internal/infra/migrate"
	"github.com/calshare/server/internal/shared/cache"
	"github.com/calshare/server/internal/shared/database"
	"github.com/calshare/server/internal/shared/events"
	"github.com/calshare/server/internal/shared/logger"

	// Utils
	"github.com/calshare/server/internal/utils/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideZapLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideEventBus,
	ProvideRedisClient,
	ProvideRateLimiter,
	ProvideLock,
)

// ProvideZapLogger creates a zap logger instance.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideRegistry creates the prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New("calshare", reg)
}

// ProvideEventBus creates the post-commit event bus and counts every event.
func ProvideEventBus(m *metrics.Metrics, log *zap.Logger) *events.Bus {
	bus := events.NewBus(log.Named("events"))
	bus.Register(metrics.NewEventCounter(m))
	return bus
}

// ProvideRedisClient creates a Redis client. Redis is optional: a missing
// address or a failed ping yields nil.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, func()) {
	if !cfg.Redis.Enabled() {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		log.Warn("redis connection failed, continuing without redis", zap.Error(err))
		return nil, func() {}
	}
	return client, func() {
		if err := client.Close(); err != nil {
			log.Warn("close redis", zap.Error(err))
		}
	}
}

// ProvideRateLimiter creates a rate limiter, in-process when Redis is absent.
func ProvideRateLimiter(redis goredis.UniversalClient) outbound.RateLimiterPort {
	if redis == nil {
		return memory.NewRateLimiter()
	}
	return redisadapter.NewRateLimiter(redis)
}

// ProvideLock creates the aggregate lock. Without Redis units of work run
// unlocked and rely on version checks alone.
func ProvideLock(cfg *config.Config, redis goredis.UniversalClient, log *zap.Logger) outbound.LockPort {
	if redis == nil {
		return nil
	}
	lockCfg := redisadapter.DefaultLockConfig()
	if cfg.Redis.LockFailureThreshold > 0 {
		lockCfg.FailureThreshold = cfg.Redis.LockFailureThreshold
	}
	if cfg.Redis.LockOpenTimeout > 0 {
		lockCfg.OpenTimeout = cfg.Redis.LockOpenTimeout
	}
	return redisadapter.NewLock(redis, lockCfg, log.Named("lock"))
}

// ===== Storage Providers =====

// StorageSet provides the persistence backend.
var StorageSet = wire.NewSet(
	ProvideStorage,
	ProvideOutboundPorts,
)

// Storage is the selected persistence backend. DB is nil for the memory driver.
type Storage struct {
	DB           *gorm.DB
	UserDB       outbound.UserDatabasePort
	CalendarDB   outbound.CalendarDatabasePort
	TaskDB       outbound.TaskDatabasePort
	InvitationDB outbound.InvitationDatabasePort
	ActivityDB   outbound.ActivityDatabasePort
	TodoDB       outbound.TodoDatabasePort
	Tx           outbound.TransactionPort
}

// Ping checks the backing database, if any.
func (s *Storage) Ping(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ProvideStorage opens the configured storage driver.
func ProvideStorage(cfg *config.Config, log *zap.Logger) (*Storage, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		return NewMemoryStorage(memory.NewStore()), func() {}, nil
	case config.StoragePostgres:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := database.Close(db); err != nil {
				log.Warn("close database", zap.Error(err))
			}
		}
		if cfg.Database.AutoMigrate {
			if err := migrateUp(cfg.Database.DSN(), log); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
		return NewPostgresStorage(db), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewMemoryStorage exposes an in-memory store as a Storage.
func NewMemoryStorage(store *memory.Store) *Storage {
	return &Storage{
		UserDB:       store.Users(),
		CalendarDB:   store.Calendars(),
		TaskDB:       store.Tasks(),
		InvitationDB: store.Invitations(),
		ActivityDB:   store.Activities(),
		TodoDB:       store.Todos(),
		Tx:           store,
	}
}

// NewPostgresStorage builds the gorm adapters over db.
func NewPostgresStorage(db *gorm.DB) *Storage {
	return &Storage{
		DB:           db,
		UserDB:       postgres.NewUserAdapter(db),
		CalendarDB:   postgres.NewCalendarAdapter(db),
		TaskDB:       postgres.NewTaskAdapter(db),
		InvitationDB: postgres.NewInvitationAdapter(db),
		ActivityDB:   postgres.NewActivityAdapter(db),
		TodoDB:       postgres.NewTodoAdapter(db),
		Tx:           postgres.NewTransactionAdapter(db),
	}
}

func migrateUp(dsn string, log *zap.Logger) error {
	m, err := migrate.Open(dsn, log.Named("migrate"))
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// ProvideOutboundPorts assembles the ports the domains depend on.
func ProvideOutboundPorts(cfg *config.Config, s *Storage, lock outbound.LockPort) *domain.OutboundPorts {
	return &domain.OutboundPorts{
		UserDB:       s.UserDB,
		CalendarDB:   s.CalendarDB,
		TaskDB:       s.TaskDB,
		InvitationDB: s.InvitationDB,
		ActivityDB:   s.ActivityDB,
		TodoDB:       s.TodoDB,
		Tx:           s.Tx,
		Lock:         lock,
		Hasher:       authadapter.NewBcryptHasher(cfg.Auth.BcryptCost),
		JWT: authadapter.NewJWTManager(&authadapter.JWTConfig{
			Secret:            cfg.Auth.JWTSecret,
			Issuer:            cfg.Auth.Issuer,
			AccessTokenExpiry: cfg.Auth.AccessTokenExpiry,
		}),
	}
}

// ===== Domain Providers =====

// DomainSet provides the domain registry.
var DomainSet = wire.NewSet(
	ProvideDomain,
)

// ProvideDomain creates all domain services.
func ProvideDomain(
	cfg *config.Config,
	ports *domain.OutboundPorts,
	bus *events.Bus,
	m *metrics.Metrics,
	log *zap.Logger,
) *domain.Domain {
	return domain.NewDomain(
		ports,
		domain.Observers{Publisher: bus, Unit: m, Auth: m},
		&relation.Config{
			MaxAttempts: cfg.Coordinator.MaxAttempts,
			BaseBackoff: cfg.Coordinator.BaseBackoff,
			MaxBackoff:  cfg.Coordinator.MaxBackoff,
			LockTTL:     cfg.Coordinator.LockTTL,
		},
		&calendar.Config{MaxTasksPerCalendar: cfg.Calendar.MaxTasksPerCalendar},
		log,
	)
}

// ===== HTTP Providers =====

// HandlerSet provides the HTTP handlers.
var HandlerSet = wire.NewSet(
	ProvideHandlers,
	ProvideRouter,
)

// Handlers groups the inbound HTTP adapters.
type Handlers struct {
	Identity   *identityhttp.Handler
	Calendar   *calendarhttp.Handler
	Invitation *invitationhttp.Handler
	Activity   *activityhttp.Handler
}

// ProvideHandlers creates the HTTP handlers.
func ProvideHandlers(d *domain.Domain) *Handlers {
	return &Handlers{
		Identity:   identityhttp.NewHandler(d.Identity),
		Calendar:   calendarhttp.NewHandler(d.Calendar),
		Invitation: invitationhttp.NewHandler(d.Invitation),
		Activity:   activityhttp.NewHandler(d.Activity),
	}
}
