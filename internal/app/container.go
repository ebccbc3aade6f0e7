package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/strogmv/blogadmin/internal/adapter/cache/redis"
	"github.com/strogmv/blogadmin/internal/adapter/events"
	"github.com/strogmv/blogadmin/internal/adapter/events/kafka"
	"github.com/strogmv/blogadmin/internal/adapter/events/nats"
	"github.com/strogmv/blogadmin/internal/adapter/repository/memory"
	"github.com/strogmv/blogadmin/internal/adapter/repository/orm"
	"github.com/strogmv/blogadmin/internal/adapter/storage/s3"
	"github.com/strogmv/blogadmin/internal/config"
	"github.com/strogmv/blogadmin/internal/pkg/circuitbreaker"
	"github.com/strogmv/blogadmin/internal/pkg/logger"
	"github.com/strogmv/blogadmin/internal/port"
	"github.com/strogmv/blogadmin/internal/service"
	transport "github.com/strogmv/blogadmin/internal/transport/http"
)

type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *goredis.Client

	RepoPost     port.PostRepository
	RepoCategory port.CategoryRepository
	RepoTag      port.TagRepository
	TxManager    port.TxManager
	Publisher    port.Publisher
	Storage      port.FileStorage

	SvcPosts   port.Posts
	SvcReports port.Reports

	closers []func() error
}

// NewContainer connects every configured backend and builds the services.
// On error everything opened so far is closed.
func NewContainer(ctx context.Context, cfg *config.Config) (_ *Container, err error) {
	c := &Container{Config: cfg}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()
	l := logger.From(ctx)

	if err := c.initStorage(ctx); err != nil {
		return nil, err
	}

	if cfg.RedisAddr != "" {
		client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		c.Redis = client
		c.closers = append(c.closers, client.Close)
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return nil, err
	}
	c.Publisher = publisher
	c.closers = append(c.closers, publisher.Close)

	if cfg.S3Bucket != "" {
		store, err := s3.New(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		c.Storage = store
	}

	posts := service.NewPostsImpl(c.RepoPost, c.RepoCategory, c.RepoTag, c.TxManager,
		service.WithPublisher(c.Publisher),
		service.WithPublishTimeout(cfg.PublishTimeout),
	)
	c.SvcPosts = posts
	if c.Redis != nil {
		c.SvcPosts = service.NewPostsCached(posts, redis.NewPostCache(c.Redis, cfg.CacheTTL))
	}
	c.SvcReports = service.NewReportsImpl(c.SvcPosts, c.Storage)

	l.Info("container ready",
		slog.String("db", cfg.DBDriver),
		slog.String("events", cfg.EventsDriver),
		slog.Bool("cache", c.Redis != nil),
		slog.Bool("archive", c.Storage != nil),
	)
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	cfg := c.Config
	if cfg.DBDriver == "memory" {
		c.RepoPost = memory.NewPostRepositoryStub()
		c.RepoCategory = memory.NewCategoryRepositoryStub()
		c.RepoTag = memory.NewTagRepositoryStub()
		c.TxManager = memory.NewTxManager()
		return nil
	}

	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	c.DB = db
	c.closers = append(c.closers, func() error { return orm.Close(db) })

	if cfg.AutoMigrate {
		if err := orm.Migrate(ctx, db); err != nil {
			return err
		}
	}
	c.RepoPost = orm.NewPostRepository(db)
	c.RepoCategory = orm.NewCategoryRepository(db)
	c.RepoTag = orm.NewTagRepository(db)
	c.TxManager = orm.NewTxManager(db)
	return nil
}

// OpenDB opens the configured SQL database. The migrate and seed commands
// use it without building the rest of the container.
func OpenDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	return orm.Open(ctx, orm.Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DBDSN,
		ReplicaDSNs:  cfg.DBReplicaDSNs,
		MaxOpenConns: cfg.DBMaxOpen,
		MaxIdleConns: cfg.DBMaxIdle,
		Tracing:      cfg.OTELEndpoint != "",
	})
}

func newPublisher(cfg *config.Config) (port.Publisher, error) {
	var bus port.Publisher
	switch cfg.EventsDriver {
	case "nats":
		p, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return nil, err
		}
		bus = p
	case "kafka":
		bus = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaAcks)
	case "none", "":
		return events.Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.EventsDriver)
	}
	breaker := circuitbreaker.NewBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown, 1)
	return events.NewGuarded(bus, breaker), nil
}

// Router builds the HTTP handler over the container's services.
func (c *Container) Router() http.Handler {
	health := map[string]transport.HealthCheck{}
	if c.DB != nil {
		health["db"] = func(ctx context.Context) error { return orm.Ping(ctx, c.DB) }
	}
	if c.Redis != nil {
		health["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}

	rc := transport.RouterConfig{
		Posts:          c.SvcPosts,
		Reports:        c.SvcReports,
		Health:         health,
		CORSOrigins:    c.Config.CORSOrigins,
		RateLimitRPS:   c.Config.RateLimitRPS,
		RateLimitBurst: c.Config.RateLimitBurst,
		RequestTimeout: c.Config.RequestTimeout,
		MaxBodyBytes:   c.Config.MaxBodyBytes,
	}
	if c.Redis != nil {
		rc.Redis = c.Redis
	}
	return transport.NewRouter(rc)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return stderrors.Join(errs...)
}
