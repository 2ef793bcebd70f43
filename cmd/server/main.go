// Command server wires the research agent core's dependency graph
// (config, memory, cache, toolhub, LLM provider, agents, workflow engine,
// orchestrator) and serves it over HTTP.
//
// Grounded on goadesign-goa-ai/example/cmd/assistant/main.go's errc-channel
// signal handling (signal.Notify into a channel, cancel + wg.Wait on
// shutdown) and http.go's http.Server/Shutdown pairing, adapted from that
// generated service's multi-transport wiring to this core's single HTTP
// surface and hand-assembled (not codegen-assembled) component graph.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/zolawuzhigang/Research-Agent/agents/execution"
	"github.com/zolawuzhigang/Research-Agent/agents/planning"
	"github.com/zolawuzhigang/Research-Agent/cache"
	"github.com/zolawuzhigang/Research-Agent/cache/rediscache"
	"github.com/zolawuzhigang/Research-Agent/config"
	"github.com/zolawuzhigang/Research-Agent/httpapi"
	"github.com/zolawuzhigang/Research-Agent/llm"
	"github.com/zolawuzhigang/Research-Agent/llm/anthropic"
	"github.com/zolawuzhigang/Research-Agent/llm/bedrock"
	"github.com/zolawuzhigang/Research-Agent/llm/openai"
	"github.com/zolawuzhigang/Research-Agent/memory"
	"github.com/zolawuzhigang/Research-Agent/orchestrator"
	"github.com/zolawuzhigang/Research-Agent/prompts"
	"github.com/zolawuzhigang/Research-Agent/router"
	"github.com/zolawuzhigang/Research-Agent/telemetry"
	"github.com/zolawuzhigang/Research-Agent/telemetry/otel"
	"github.com/zolawuzhigang/Research-Agent/toolhub"
	"github.com/zolawuzhigang/Research-Agent/tools/calculator"
	"github.com/zolawuzhigang/Research-Agent/tools/clock"
	"github.com/zolawuzhigang/Research-Agent/tools/filelist"
	"github.com/zolawuzhigang/Research-Agent/tools/history"
	"github.com/zolawuzhigang/Research-Agent/tools/websearch"
	"github.com/zolawuzhigang/Research-Agent/trace/mongoexport"
	"github.com/zolawuzhigang/Research-Agent/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := telemetry.NewNoopLogger()
	metrics := telemetry.NewNoopMetrics()

	tp := sdktrace.NewTracerProvider()
	tracer := otel.New(tp, "research-agent")
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	llmClient, err := buildLLMClient(cfg.LLM)
	if err != nil {
		log.Fatalf("llm client: %v", err)
	}

	mem := memory.New(cfg.Memory.ShortTermSize)

	var orchCache orchestrator.Cache
	if cfg.Redis.Enabled {
		rc, err := rediscache.New(rediscache.Config{
			Addr:                  cfg.Redis.Addr,
			Password:              cfg.Redis.Password,
			DB:                    cfg.Redis.DB,
			TLSInsecureSkipVerify: cfg.Redis.TLSInsecureSkipVerify,
		}, cfg.Performance.CacheTTL, logger)
		if err != nil {
			log.Fatalf("redis cache: %v", err)
		}
		orchCache = boundRedisCache{ctx: context.Background(), c: rc}
	} else {
		orchCache = cache.New(cache.WithTTL(cfg.Performance.CacheTTL))
	}

	reg := toolhub.NewRegistry()
	reg.Register("calculator", toolhub.SourceLocal, calculator.New())
	reg.Register("clock", toolhub.SourceLocal, clock.New())
	reg.Register("history", toolhub.SourceLocal, history.New(mem))
	reg.Register("filelist", toolhub.SourceLocal, filelist.New("."))
	if cfg.Search.Enabled {
		reg.Register("websearch", toolhub.SourceLocal, websearch.New(websearch.NewBraveSearcher(cfg.Search.APIKey, nil)))
	}

	hub := toolhub.New(reg,
		toolhub.WithToolTimeout(cfg.Tools.Timeout),
		toolhub.WithSynthesisLLM(llmClient),
		toolhub.WithLogger(logger),
	)

	var taskRtr *router.Router
	if cfg.Tools.UseTaskRouter {
		taskRtr = router.New(llmClient, prompts.Default(), logger)
	}

	table := prompts.Default()
	planner := planning.New(llmClient, table, logger)
	executor := execution.New(hub, llmClient, table, logger, execution.WithMaxRetries(cfg.Tools.MaxRetries))
	engine := workflow.New(planner, executor, llmClient, table, logger)

	var exporter orchestrator.Exporter
	if cfg.Mongo.Enabled {
		mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		exp, err := mongoexport.New(mongoexport.Options{
			Client:     mongoClient,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		if err != nil {
			log.Fatalf("mongoexport: %v", err)
		}
		exporter = exp
	}

	orch := orchestrator.New(mem, orchCache, reg, taskRtr, engine, llmClient, table, logger, metrics, orchestrator.Config{
		CacheEnabled:           cfg.Performance.CacheEnabled,
		UseTaskRouter:          cfg.Tools.UseTaskRouter,
		ObservabilityEnabled:   cfg.Observability.Enabled,
		MaxEvents:              cfg.Observability.MaxEvents,
		MaxPreview:             cfg.Observability.MaxPreview,
		IncludeTraceInResponse: cfg.Observability.IncludeInResponse,
		TaskTimeout:            cfg.Task.Timeout,
		Tracer:                 tracer,
		Exporter:               exporter,
	})

	srv := httpapi.New(orch)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("listening on %s", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	log.Printf("exiting (%v)", <-errc)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	wg.Wait()
	log.Printf("exited")
}

func buildLLMClient(cfg config.LLMConfig) (llm.Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.New(anthropic.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model}, nil), nil
	case "openai":
		return openai.New(openai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model}), nil
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		runtime := bedrockruntime.NewFromConfig(awsCfg)
		return bedrock.New(runtime, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// boundRedisCache adapts rediscache.Cache's context-taking Get/Set to the
// orchestrator.Cache interface, which is context-free because the
// Orchestrator's own per-request context already carries the deadline that
// matters; the cache lookup itself is not expected to outlive the process.
type boundRedisCache struct {
	ctx context.Context
	c   *rediscache.Cache
}

func (b boundRedisCache) Get(key string) (string, bool) { return b.c.Get(b.ctx, key) }
func (b boundRedisCache) Set(key, value string)          { b.c.Set(b.ctx, key, value) }
