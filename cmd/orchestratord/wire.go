package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cogniflow/orchestrator/pkg/catalog"
	"github.com/cogniflow/orchestrator/pkg/config"
	"github.com/cogniflow/orchestrator/pkg/engine"
	"github.com/cogniflow/orchestrator/pkg/eventbus"
	"github.com/cogniflow/orchestrator/pkg/executor"
	"github.com/cogniflow/orchestrator/pkg/health"
	"github.com/cogniflow/orchestrator/pkg/httpclient"
	"github.com/cogniflow/orchestrator/pkg/intent"
	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/logging"
	"github.com/cogniflow/orchestrator/pkg/mapping"
	"github.com/cogniflow/orchestrator/pkg/middleware"
	"github.com/cogniflow/orchestrator/pkg/orchestrator"
	"github.com/cogniflow/orchestrator/pkg/portadapter"
	"github.com/cogniflow/orchestrator/pkg/registry"
	"github.com/cogniflow/orchestrator/pkg/routing"
	"github.com/cogniflow/orchestrator/pkg/search"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// app bundles every wired collaborator the HTTP handlers and the
// background revalidation job need, plus what Shutdown must release.
type app struct {
	orch    *orchestrator.Orchestrator
	nodes   *catalog.NodeStore
	intents *catalog.IntentStore
	flows   *catalog.WorkflowStore
	revalid *catalog.Revalidator
	health  *health.Checker
	log     *logging.Logger

	pool *pgxpool.Pool
	rdb  *redis.Client
}

// embedderAdapter binds a fixed model name to an llm.EmbeddingBridge,
// satisfying catalog.Embedder's two-argument Embed.
type embedderAdapter struct {
	bridge llm.EmbeddingBridge
	model  string
}

func (e embedderAdapter) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.bridge.Embed(ctx, e.model, text)
}

func buildApp(ctx context.Context, cfg *serviceConfig) (*app, error) {
	log := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	pool, err := pgxpool.New(ctx, cfg.dbDSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, catalog.Schema); err != nil {
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	var cache catalog.Cache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		cache = catalog.NewRedisCache(rdb)
	} else {
		cache = catalog.NewMemoryCache()
	}

	completionBridge, err := buildCompletionBridge(cfg)
	if err != nil {
		return nil, err
	}
	embeddingBridge, err := buildEmbeddingBridge(cfg)
	if err != nil {
		return nil, err
	}
	embedder := embedderAdapter{bridge: embeddingBridge, model: cfg.EmbeddingModel}

	nodes, err := catalog.NewNodeStore(ctx, pool, cache, embedder, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("build node store: %w", err)
	}
	intents := catalog.NewIntentStore(pool, cache, embedder, cfg.CacheTTL)
	flows := catalog.NewWorkflowStore(pool, cache, nodes, cfg.CacheTTL)

	for _, m := range mustAll(nodes.FindAll(ctx)) {
		if err := m.Validate(); err != nil {
			log.WithField("node_id", m.ID).WithError(err).Warn("node metamodel failed startup validation")
		}
	}

	retryingBridge := llm.NewRetryingBridge(completionBridge, cfg.RequestTimeout)

	bus := eventbus.New()
	nodeLookup := registry.NodeLookup(func(id string) (types.NodeMetamodel, error) {
		m, err := nodes.FindByID(context.Background(), id)
		if err != nil {
			return types.NodeMetamodel{}, err
		}
		if m == nil {
			return types.NodeMetamodel{}, fmt.Errorf("node metamodel %q not found", id)
		}
		return *m, nil
	})
	workflowLookup := registry.WorkflowLookup(func(id string) (types.WorkflowMetamodel, error) {
		m, err := flows.FindByID(context.Background(), id)
		if err != nil {
			return types.WorkflowMetamodel{}, err
		}
		if m == nil {
			return types.WorkflowMetamodel{}, fmt.Errorf("workflow metamodel %q not found", id)
		}
		return *m, nil
	})

	nodePool := registry.NewNodePool(bus, nodeLookup)
	wfPool := registry.NewWorkflowPool(bus, workflowLookup, nodeLookup, nodePool)

	procRegistry := executor.NewRegistry()
	procRegistry.MustRegister(executor.NewLLMProcessor(retryingBridge))
	procRegistry.MustRegister(executor.NewEmbeddingsProcessor(embeddingBridge))
	procRegistry.MustRegister(executor.NewGatewayProcessor())

	restCfg := executor.DefaultRESTProcessorConfig()
	restCfg.AllowHTTP = cfg.AllowHTTP
	restCfg.BlockPrivateIPs = !cfg.AllowPrivateIPs
	restCfg.BlockLocalhost = !cfg.AllowLocalhost
	restProcessor := executor.NewRESTProcessor(restCfg)

	httpClients, err := cfg.httpClients()
	if err != nil {
		return nil, err
	}
	if len(httpClients) > 0 {
		engineCfg := config.Default()
		engineCfg.AllowPrivateIPs = cfg.AllowPrivateIPs
		engineCfg.AllowLocalhost = cfg.AllowLocalhost
		engineCfg.HTTPClients = httpClients

		builder := httpclient.NewBuilder(*engineCfg)
		clientRegistry := httpclient.NewRegistry()
		for _, cc := range httpClients {
			client, err := builder.Build(httpclient.FromConfigHTTPClient(cc))
			if err != nil {
				return nil, fmt.Errorf("build named HTTP client %q: %w", cc.Name, err)
			}
			if err := clientRegistry.Register(cc.Name, client); err != nil {
				return nil, fmt.Errorf("register named HTTP client %q: %w", cc.Name, err)
			}
		}
		restProcessor.SetHTTPClientRegistry(clientRegistry)
	}
	procRegistry.MustRegister(restProcessor)

	procRegistry.MustRegister(executor.NewVectorDBProcessor(map[string]search.VectorIndex{}))

	adapter := portadapter.New(retryingBridge, cfg.LLMModel)
	nodeChain := middleware.NewChain().
		Use(middleware.NewValidationMiddleware()).
		Use(middleware.NewSizeLimitMiddleware()).
		Use(middleware.NewRateLimitMiddleware()).
		Use(middleware.NewTimeoutMiddleware(cfg.NodeTimeout)).
		Use(middleware.NewLoggingMiddleware(log)).
		Use(middleware.NewMetricsMiddleware(middleware.NewInMemoryMetricsCollector()))

	eng := engine.New(procRegistry, nodePool,
		engine.WithAdapter(adapter),
		engine.WithPersister(flows),
		engine.WithLogger(log),
		engine.WithMiddleware(nodeChain),
	)

	vecIndex := search.NewMemoryVectorIndex()
	for _, m := range mustAll(intents.FindAll(ctx)) {
		vecIndex.Upsert(m.ID, m.Embedding)
	}
	detector := intent.New(vecIndex, intents, embeddingBridge, retryingBridge, cfg.LLMModel)
	router := routing.New(wfPool, flows)
	mapper := mapping.New(retryingBridge, cfg.LLMModel)

	orch := orchestrator.New(detector, router, mapper, eng,
		orchestrator.WithTimeout(cfg.RequestTimeout),
		orchestrator.WithIntentDeletion(intents, flows),
	)

	revalid := catalog.NewRevalidator(nodes, log)

	checker := health.NewChecker("orchestratord", "0.1.0")
	checker.RegisterCheck("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	}, cfg.RequestTimeout, true)
	if rdb != nil {
		checker.RegisterCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}, cfg.RequestTimeout, false)
	}

	return &app{
		orch: orch, nodes: nodes, intents: intents, flows: flows,
		revalid: revalid, health: checker, log: log, pool: pool, rdb: rdb,
	}, nil
}

func (a *app) Shutdown(ctx context.Context) {
	a.revalid.Stop()
	a.pool.Close()
	if a.rdb != nil {
		a.rdb.Close()
	}
}

func buildCompletionBridge(cfg *serviceConfig) (llm.Bridge, error) {
	switch cfg.LLMProvider {
	case "openai":
		return llm.NewOpenAIBridge(cfg.LLMAPIKey, cfg.LLMModel)
	default:
		return llm.NewAnthropicBridge(cfg.LLMAPIKey, cfg.LLMModel)
	}
}

func buildEmbeddingBridge(cfg *serviceConfig) (llm.EmbeddingBridge, error) {
	key := cfg.EmbeddingAPIKey
	if key == "" {
		key = cfg.LLMAPIKey
	}
	return llm.NewOpenAIBridge(key, cfg.EmbeddingModel)
}

func mustAll[T any](items []T, err error) []T {
	if err != nil {
		return nil
	}
	return items
}
