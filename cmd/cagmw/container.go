// Container is the composition root: it owns every infrastructure
// collaborator (file storage, key-value store, semantic provider, metrics
// store) and wires the pipeline components on top of them. It is the only
// place that knows about every package under pkg/cag.
package main

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/trigoo007/cagcore/pkg/cag/cache"
	"github.com/trigoo007/cagcore/pkg/cag/collab"
	"github.com/trigoo007/cagcore/pkg/cag/contextanalyzer"
	"github.com/trigoo007/cagcore/pkg/cag/contextmanager"
	"github.com/trigoo007/cagcore/pkg/cag/entities"
	"github.com/trigoo007/cagcore/pkg/cag/globalmemory"
	"github.com/trigoo007/cagcore/pkg/cag/kvstore"
	"github.com/trigoo007/cagcore/pkg/cag/memory"
	"github.com/trigoo007/cagcore/pkg/cag/scheduler"
	"github.com/trigoo007/cagcore/pkg/config"
	"github.com/trigoo007/cagcore/pkg/fsx"
	"github.com/trigoo007/cagcore/pkg/fsx/fsxlocal"
	"github.com/trigoo007/cagcore/pkg/fsx/fsxs3"
	"github.com/trigoo007/cagcore/pkg/logx"
	"github.com/trigoo007/cagcore/pkg/metricsx"
	"github.com/trigoo007/cagcore/pkg/semanticx"
)

// Container holds every wired collaborator needed to drive the pipeline
// from the CLI.
type Container struct {
	Config *config.Config

	FileSystem fsx.FileSystem
	Redis      *redis.Client
	DB         *sqlx.DB

	Semantic   semanticx.Service
	Cache      *cache.Cache
	Entities   *entities.Extractor
	Memory     *memory.Store
	Global     *globalmemory.GlobalMemory
	Metrics    *metricsx.Metrics
	Analyzer   *contextanalyzer.Analyzer
	Manager    *contextmanager.Manager
	Scheduler  *scheduler.Scheduler

	Conversations *collab.FSConversationStore
	Documents     *collab.FSDocumentProcessor
}

// NewContainer builds and wires the full pipeline. It blocks on catalog
// loading and, for s3/redis/postgres backends, on connecting to the
// remote service.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logx.Info("initializing container")

	c := &Container{Config: cfg}

	if err := c.initFileSystem(); err != nil {
		return nil, fmt.Errorf("file system: %w", err)
	}

	c.Semantic = c.initSemantic()

	c.Cache = cache.New(c.FileSystem, cfg.Cache.DiskDir, cfg.Cache.MaxEntries, cfg.Cache.Expiry)

	c.Entities = entities.NewExtractor(c.FileSystem, "entities")
	if err := c.Entities.Load(ctx); err != nil {
		return nil, fmt.Errorf("entity catalogs: %w", err)
	}

	c.Memory = memory.New(c.FileSystem, cfg.Memory)

	store, err := c.initGlobalMemoryStore()
	if err != nil {
		return nil, fmt.Errorf("global memory store: %w", err)
	}

	metricsStore, err := c.initMetricsStore()
	if err != nil {
		return nil, fmt.Errorf("metrics store: %w", err)
	}
	c.Metrics = metricsx.New(metricsStore, cfg.Metrics.PrometheusNamespace)

	c.Global = globalmemory.New(store, c.Semantic, c.Metrics, cfg.GlobalMemory)

	c.Conversations = collab.NewFSConversationStore(c.FileSystem, "collab/conversations")
	c.Documents = collab.NewFSDocumentProcessor(c.FileSystem, "collab/documents")

	c.Analyzer = contextanalyzer.New(
		c.Entities,
		c.Cache,
		c.Conversations,
		c.Documents,
		c.Memory,
		c.Semantic,
		cfg.Semantic.SimilarityThreshold,
	)

	c.Manager = contextmanager.New(ctx, c.FileSystem, cfg.ContextManager, c.Analyzer, c.Global, c.Memory, c.Entities, c.Documents)

	c.Scheduler = scheduler.New(cfg.Scheduler, c.Cache, c.Memory, c.Global, c.Metrics)

	logx.Info("container initialized")
	return c, nil
}

func (c *Container) initFileSystem() error {
	switch c.Config.Storage.Mode {
	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(c.Config.Storage.S3Region))
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)
		c.FileSystem = fsxs3.NewS3FileSystem(client, c.Config.Storage.S3Bucket, c.Config.Storage.S3Prefix)
		logx.Infof("file system: s3 bucket=%s region=%s", c.Config.Storage.S3Bucket, c.Config.Storage.S3Region)
		return nil

	case "local":
		local, err := fsxlocal.NewLocalFileSystem(c.Config.Storage.LocalDir)
		if err != nil {
			return err
		}
		c.FileSystem = local
		logx.Infof("file system: local path=%s", local.GetBasePath())
		return nil

	default:
		return fmt.Errorf("unknown storage mode %q (use \"local\" or \"s3\")", c.Config.Storage.Mode)
	}
}

func (c *Container) initSemantic() semanticx.Service {
	if c.Config.Semantic.Provider != "openai" || c.Config.Semantic.OpenAIAPIKey == "" {
		logx.Info("semantic provider: tfidf")
		return semanticx.NewTFIDFProvider()
	}

	interval, err := time.ParseDuration(c.Config.Semantic.BreakerInterval)
	if err != nil {
		interval = time.Minute
	}
	logx.Infof("semantic provider: openai model=%s", c.Config.Semantic.OpenAIModel)
	return semanticx.NewOpenAIProvider(semanticx.OpenAIProviderConfig{
		APIKey:      c.Config.Semantic.OpenAIAPIKey,
		Model:       c.Config.Semantic.OpenAIModel,
		MaxRequests: c.Config.Semantic.BreakerMaxRequests,
		Interval:    interval,
	})
}

func (c *Container) initGlobalMemoryStore() (kvstore.Store, error) {
	switch c.Config.GlobalMemory.Backend {
	case "redis":
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.GlobalMemory.RedisAddr,
			Password: c.Config.GlobalMemory.RedisPassword,
			DB:       c.Config.GlobalMemory.RedisDB,
		})
		if err := c.Redis.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logx.Infof("global memory store: redis addr=%s", c.Config.GlobalMemory.RedisAddr)
		return kvstore.NewRedisStore(c.Redis, "cagcore:"), nil

	default:
		logx.Info("global memory store: filesystem")
		return kvstore.NewFSStore(c.FileSystem, "global_memory"), nil
	}
}

func (c *Container) initMetricsStore() (metricsx.Store, error) {
	switch c.Config.Metrics.Backend {
	case "postgres":
		db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
		db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
		db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
		c.DB = db
		logx.Info("metrics store: postgres")
		return metricsx.NewPostgresStore(db), nil

	default:
		logx.Info("metrics store: in-memory")
		return metricsx.NewMemoryStore(), nil
	}
}

// Cleanup releases every connection the container opened. Safe to call on
// a partially-initialized container.
func (c *Container) Cleanup() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("closing database: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("closing redis: %v", err)
		}
	}
}
