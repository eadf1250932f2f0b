// Package bootstrap assembles the services from environment configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/contentmesh/internal/api"
	"github.com/Harshitk-cp/contentmesh/internal/config"
	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/Harshitk-cp/contentmesh/internal/embedding"
	"github.com/Harshitk-cp/contentmesh/internal/ingest"
	"github.com/Harshitk-cp/contentmesh/internal/llm"
	"github.com/Harshitk-cp/contentmesh/internal/service"
	"github.com/Harshitk-cp/contentmesh/internal/source"
	"github.com/Harshitk-cp/contentmesh/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	MemorySourceID = "memory"
	WebSourceID    = "web"
)

// Components are the wired services. Close releases every connection
// Build opened.
type Components struct {
	Content   *service.ContentService
	Scorer    *service.QualityScorer
	Documents *service.DocumentService
	Expirer   *service.DocumentExpirer
	Watcher   *ingest.Watcher
	WebSearch domain.SourceHandler

	pool    *pgxpool.Pool
	redis   goredis.UniversalClient
	closers []func()
}

// Build connects to the configured backends and wires the pipeline.
// config.Load must have been called.
func Build(ctx context.Context, logger *zap.Logger) (*Components, error) {
	defaultStrategy := config.DefaultRoutingStrategy()
	if !domain.ValidStrategy(defaultStrategy) {
		return nil, fmt.Errorf("DEFAULT_ROUTING_STRATEGY: %w: %q", service.ErrUnknownStrategy, defaultStrategy)
	}

	c := &Components{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	docStore, err := c.openDocumentStore(ctx, logger)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.NewClient(embedding.Config{
		Provider: config.EmbeddingProvider(),
		APIKey:   config.EmbeddingAPIKey(),
		BaseURL:  config.EmbeddingBaseURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}

	var llmClient domain.LLMClient
	if config.SearchProvider() != "mock" || config.ContradictionDetector() == "llm" {
		llmClient, err = llm.NewClient(ctx, llm.Config{
			Provider: config.LLMProvider(),
			APIKey:   config.LLMAPIKey(),
			Model:    config.LLMModel(),
		})
		if err != nil {
			return nil, fmt.Errorf("llm client: %w", err)
		}
	}

	resilience := source.DefaultResilienceConfig()
	resilience.MaxRetries = config.SourceMaxRetries()

	var searchClient domain.LLMClient
	if config.SearchProvider() != "mock" {
		searchClient = llmClient
	}
	var web domain.SourceHandler = source.NewResilient(WebSourceID,
		source.NewWebSearch(searchClient, logger), resilience, logger)

	if url := config.RedisURL(); url != "" {
		opts, err := goredis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		c.redis = goredis.NewClient(opts)
		if err := c.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, results will not be cached", zap.Error(err))
		} else {
			web = source.NewCached(WebSourceID, web, source.NewRedisCache(c.redis), config.CacheTTL(), logger,
				source.WithCallTimeout(config.SourceQueryTimeout()))
			logger.Info("web search results cached in redis", zap.Duration("ttl", config.CacheTTL()))
		}
	}
	c.WebSearch = web

	memory := source.NewResilient(MemorySourceID, source.NewMemory(docStore, embedder, logger), resilience, logger)

	registry := service.NewSourceRegistry(logger)
	if err := registry.Register(MemorySourceID, domain.SourceTypeMemory, memory, config.MemorySourcePriority()); err != nil {
		return nil, err
	}
	if err := registry.Register(WebSourceID, domain.SourceTypeWebSearch, web, config.WebSourcePriority()); err != nil {
		return nil, err
	}

	router := service.NewRouter(registry, logger,
		service.WithDefaultStrategy(domain.RoutingStrategy(defaultStrategy)),
		service.WithDecisionLogCapacity(config.DecisionLogCapacity()),
	)

	var detector service.ContradictionDetector
	if config.ContradictionDetector() == "llm" {
		detector = service.NewLLMContradictionDetector(llmClient)
	}

	c.Content = service.NewContentService(router, service.NewSynthesizer(detector, logger), logger,
		service.WithQueryConcurrency(config.QueryConcurrency()),
		service.WithSourceTimeout(config.SourceQueryTimeout()),
		service.WithMemoryHitThreshold(config.MemoryHitThreshold()),
		service.WithDefaultLimit(config.QueryDefaultLimit()),
	)

	c.Scorer = service.NewQualityScorer(logger)
	if path := config.ScoringProfilePath(); path != "" {
		profile, err := config.LoadScoringProfile(path)
		if err != nil {
			return nil, err
		}
		if err := profile.Apply(c.Scorer); err != nil {
			return nil, fmt.Errorf("apply scoring profile: %w", err)
		}
		logger.Info("scoring profile applied", zap.String("path", path))
	}

	c.Documents = service.NewDocumentService(docStore, embedder, logger)
	if retention := config.DocumentRetention(); retention > 0 {
		c.Expirer = service.NewDocumentExpirer(docStore, retention, logger)
	}
	if dir := config.WatchDir(); dir != "" {
		c.Watcher = ingest.NewWatcher(dir, config.WatchExtensions(), ingest.NewIngester(c.Documents, logger), logger)
	}

	ok = true
	return c, nil
}

func (c *Components) openDocumentStore(ctx context.Context, logger *zap.Logger) (domain.DocumentStore, error) {
	switch backend := config.MemoryBackend(); backend {
	case "postgres":
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres memory backend")
		}
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		c.pool = pool
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		logger.Info("connected to database")
		return store.NewDocumentStore(pool), nil

	case "keyword":
		ks, err := store.NewKeywordStore()
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { _ = ks.Close() })
		logger.Info("using in-memory keyword index for documents")
		return ks, nil

	default:
		return nil, fmt.Errorf("unknown memory backend: %s (valid options: postgres, keyword)", backend)
	}
}

// Ping reports database health when the postgres backend is in use.
func (c *Components) Ping(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	return c.pool.Ping(ctx)
}

// Deps returns the HTTP dependencies for these components.
func (c *Components) Deps() api.Deps {
	return api.Deps{
		Content:        c.Content,
		Scorer:         c.Scorer,
		Documents:      c.Documents,
		WebSearch:      c.WebSearch,
		Ping:           c.Ping,
		APIKey:         config.APIKey(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}
}

func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	if c.redis != nil {
		_ = c.redis.Close()
		c.redis = nil
	}
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

// NewLogger builds a production logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg.Level = lvl
	return cfg.Build()
}
