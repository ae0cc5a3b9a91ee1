package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/folio/portfolio/backend/go-services/handlers"
	"github.com/folio/portfolio/backend/go-services/internal/admins"
	"github.com/folio/portfolio/backend/go-services/internal/chatsession"
	"github.com/folio/portfolio/backend/go-services/internal/completion"
	"github.com/folio/portfolio/backend/go-services/internal/config"
	"github.com/folio/portfolio/backend/go-services/internal/content"
	"github.com/folio/portfolio/backend/go-services/internal/database"
	"github.com/folio/portfolio/backend/go-services/internal/oidc"
	"github.com/folio/portfolio/backend/go-services/internal/storage"
	"github.com/folio/portfolio/backend/go-services/internal/tokens"
	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/folio/portfolio/backend/go-services/pkg/metrics"
	"github.com/folio/portfolio/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s provider=%s mongo=%v redis=%v oidc=%v",
		cfg.Server.Environment, cfg.LLM.Provider, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Auth.OIDCIssuer != "")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors())

	ctx := context.Background()

	// Redis backs the chat rate limiter and admin token revocation.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	var chatLimit []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			chatLimit = append(chatLimit, middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			chatLimit = append(chatLimit, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Document store. Without Mongo the service still runs on in-memory repositories.
	var (
		sessionRepo chatsession.Repository = chatsession.NewMemoryRepo()
		contentRepo content.Repository     = content.NewMemoryRepo()
		adminRepo   admins.Repository      = admins.NewMemoryRepository()
		mongoOK     bool
	)
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			logger.Warnf("using in-memory repositories: %v", err)
		} else {
			defer func() { _ = client.Disconnect(context.Background()) }()
			db := client.Database(cfg.MongoDB.Database)
			sessionRepo = chatsession.NewMongoRepo(db)
			contentRepo = content.NewMongoRepo(db)
			adminRepo = admins.NewMongoRepository(db.Collection(admins.Collection))
			mongoOK = true
		}
	} else {
		logger.Warnf("MONGODB_URI not set; using in-memory repositories")
	}

	// Object storage for profile and project images.
	var images storage.ImageStore
	var minioStore *storage.MinIOStorage
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		s, err := storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("image uploads disabled: %v", err)
		} else {
			minioStore, images = s, s
			logger.Infof("MinIO storage ready: endpoint=%s bucket=%s", mcfg.Endpoint, mcfg.Bucket)
		}
	}

	gateway := newGateway(cfg)
	manager := chatsession.NewManager(sessionRepo)
	contentSvc := content.NewService(contentRepo, images)

	var verifiers middleware.AnyVerifier
	oidcWanted := cfg.Auth.OIDCIssuer != "" && cfg.Auth.OIDCClientID != ""
	oidcOK := false
	if oidcWanted {
		ver, err := oidc.NewVerifier(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID, cfg.Auth.AdminEmails)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifiers = append(verifiers, ver)
			oidcOK = true
		}
	}
	if cfg.Auth.AdminJWTSecret != "" {
		verifiers = append(verifiers, tokens.NewHMACVerifier(cfg.Auth.AdminJWTSecret))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// ready only when every configured dependency is reachable
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongo":   cfg.MongoDB.URI == "" || mongoOK,
			"storage": true,
			"redis":   cfg.Redis.Host == "" || rdb != nil,
			"oidc":    !oidcWanted || oidcOK,
		}
		if minioStore != nil {
			pctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			deps["storage"] = minioStore.Ping(pctx) == nil
			cancel()
		}
		status, code := "ready", http.StatusOK
		for _, ok := range deps {
			if !ok {
				status, code = "not_ready", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	chatH := handlers.NewChatHandler(gateway)
	chatH.Register(r, chatLimit...)
	sessionsH := handlers.NewSessionsHandler(manager)
	sessionsH.Register(r)
	contentH := handlers.NewContentHandler(contentSvc)
	contentH.RegisterPublic(r)

	var verifier middleware.Verifier
	if len(verifiers) > 0 {
		verifier = verifiers
	}
	var revocations tokens.Revocations = tokens.NewMemoryRevocations()
	if rdb != nil {
		revocations = tokens.NewRedisRevocations(rdb)
	}
	admin := &handlers.AdminRoutes{
		Verifier:    verifier,
		Admins:      admins.NewService(adminRepo),
		Content:     contentH,
		Sessions:    sessionsH,
		Revocations: revocations,
	}
	if !admin.Register(r) {
		logger.Warnf("admin routes not registered: set OIDC_ISSUER/OIDC_CLIENT_ID or ADMIN_JWT_SECRET")
	}

	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("portfolio API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
}

func newGateway(cfg *config.Config) *completion.Gateway {
	var (
		provider completion.Provider
		model    string
		allowed  []string
	)
	switch cfg.LLM.Provider {
	case "gemini":
		provider = completion.NewGeminiProvider(config.APIKey)
		model, allowed = completion.DefaultGeminiModel, completion.GeminiModels
	default:
		provider = completion.NewOpenAIProvider(cfg.LLM.BaseURL, config.APIKey, cfg.LLM.HTTPTimeout)
		model, allowed = completion.DefaultOpenAIModel, completion.OpenAIModels
	}
	if cfg.LLM.DefaultModel != "" {
		model = cfg.LLM.DefaultModel
	}
	if len(cfg.LLM.AllowedModels) > 0 {
		allowed = cfg.LLM.AllowedModels
	}
	if config.APIKey() == "" {
		logger.Warnf("LLM_API_KEY is not set; /api/chat will answer 500 until it is")
	}
	logger.Infof("completion provider=%s default model=%s", cfg.LLM.Provider, model)
	return completion.NewGateway(provider, model, allowed)
}

// cors is permissive: the portfolio frontend may be served from another origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		h.Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
