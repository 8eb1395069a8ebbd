package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ai-match-go/internal/api/handler"
	"ai-match-go/internal/api/router"
	"ai-match-go/internal/config"
	appCoreLogger "ai-match-go/internal/logger"
	"ai-match-go/internal/matcher"
	"ai-match-go/internal/parser"
	"ai-match-go/internal/skills"
	"ai-match-go/internal/storage"
	"ai-match-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/spf13/pflag"

	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
)

var (
	version     = "1.0.0"       //nolint:gochecknoglobals
	serviceName = "ai-match-go" //nolint:gochecknoglobals
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appCoreLogger.Fatal().Err(err).Msg("加载配置失败")
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 链路追踪（可选）
	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.InitTracerProvider(ctx, serviceName, cfg.Tracing.Endpoint)
		if err != nil {
			glog.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelFlush()
			if err := shutdownTracing(flushCtx); err != nil {
				glog.Warnf("关闭链路追踪失败: %v", err)
			}
		}()
		glog.Info("链路追踪初始化成功")
	}

	// 嵌入客户端
	var embedder parser.TextEmbedder
	openaiEmbedder, err := parser.NewOpenAIEmbedder(cfg.Embedding, appCoreLogger.Logger)
	if err != nil {
		glog.Fatalf("初始化嵌入客户端失败: %v", err)
	}
	embedder = openaiEmbedder
	glog.Info("嵌入客户端初始化成功")

	// Redis嵌入缓存（可选），同一连接也用于词表缓存
	var redisAdapter *storage.Redis
	if cfg.Embedding.CacheEnabled {
		redisAdapter, err = storage.NewRedisAdapter(&cfg.Redis)
		if err != nil {
			glog.Fatalf("初始化Redis失败: %v", err)
		}
		defer redisAdapter.Close()
		embedder = parser.NewCachedEmbedder(embedder, redisAdapter, cfg.Embedding.Model, appCoreLogger.Logger)
		glog.Info("嵌入缓存初始化成功")
	}

	// 技能词表：来源可为JSON文件或MySQL表
	var vocabDB *storage.MySQL
	if needsMySQL(cfg.Vocabulary.Source) {
		vocabDB, err = storage.NewMySQL(&cfg.MySQL)
		if err != nil {
			glog.Fatalf("初始化MySQL失败: %v", err)
		}
		defer vocabDB.Close()
		glog.Info("MySQL连接初始化成功")
	}

	src, err := buildVocabularySource(cfg, vocabDB)
	if err != nil {
		glog.Fatalf("构建词表来源失败: %v", err)
	}
	if redisAdapter != nil {
		src = &skills.CachedSource{Inner: src, Redis: redisAdapter, Logger: appCoreLogger.Logger}
	}
	vocab := skills.LoadVocabulary(ctx, src, appCoreLogger.Logger)
	extractor := skills.NewExtractor(cfg.Vocabulary.ExtractorStrategy, vocab)
	glog.Infof("技能提取器初始化成功, 策略: %s, 词表大小: %d", cfg.Vocabulary.ExtractorStrategy, vocab.Size())

	// 排序编排器及预热
	ranker := matcher.NewRanker(embedder, vocab, extractor, cfg.Matching.EmbedConcurrency, appCoreLogger.Logger)
	warmupCtx, cancelWarmup := context.WithTimeout(ctx, 30*time.Second)
	if err := ranker.Initialize(warmupCtx); err != nil {
		glog.Warnf("嵌入后端预热失败（服务继续启动，首次请求可能变慢）: %v", err)
	}
	cancelWarmup()

	matchHandler := handler.NewMatchHandler(cfg, ranker, appCoreLogger.Logger)
	glog.Info("MatchHandler初始化成功")

	// HTTP服务器
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, matchHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中, 版本: %s, 监听地址: %s", version, cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog并把Hertz的hlog接到同一个输出上
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	appCoreLogger.Logger = appCoreLogger.Logger.With().
		Str("app", serviceName).
		Str("version", version).
		Logger()

	hertzCompatibleLogger := hertzadapter.From(appCoreLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
}

// needsMySQL 词表来源是否需要MySQL连接
func needsMySQL(source string) bool {
	return strings.HasPrefix(source, "mysql")
}

// buildVocabularySource 根据配置构建词表来源
func buildVocabularySource(cfg *config.Config, db *storage.MySQL) (skills.Source, error) {
	if db != nil {
		return skills.NewSource(cfg.Vocabulary.Source, db.DB())
	}
	return skills.NewSource(cfg.Vocabulary.Source, nil)
}
