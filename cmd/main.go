package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/savitara/dharma-assistant/api"
	"github.com/savitara/dharma-assistant/api/handler"
	appconfig "github.com/savitara/dharma-assistant/config"
	"github.com/savitara/dharma-assistant/internal/cache"
	"github.com/savitara/dharma-assistant/internal/corpus"
	"github.com/savitara/dharma-assistant/internal/database"
	"github.com/savitara/dharma-assistant/internal/document"
	"github.com/savitara/dharma-assistant/internal/embedding"
	"github.com/savitara/dharma-assistant/internal/knowledge"
	"github.com/savitara/dharma-assistant/internal/locale"
	"github.com/savitara/dharma-assistant/internal/repository"
	"github.com/savitara/dharma-assistant/internal/services"
	"github.com/savitara/dharma-assistant/pkg/storage"
)

func main() {
	// local development secrets, missing file is fine
	_ = godotenv.Load()

	configFile := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	mode := flag.String("mode", "", "Run mode: debug or release (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")
	storagePath := flag.String("storage", "", "File storage path (overrides config)")
	cacheType := flag.String("cache", "", "Cache type: memory or redis (overrides config)")
	flag.Parse()

	cfg, err := appconfig.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// explicit flags win over the config file
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *mode != "" {
		cfg.Server.Mode = *mode
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *storagePath != "" {
		cfg.Storage.Path = *storagePath
	}
	if *cacheType != "" {
		cfg.Cache.Type = *cacheType
	}

	gin.SetMode(cfg.Server.Mode)

	logger := setupLogger(cfg.Log)
	logger.Info("Starting Dharma Assistant...")

	dbConfig := database.DefaultConfig()
	dbConfig.Type = cfg.Database.Type
	dbConfig.DSN = cfg.Database.DSN
	if err := database.Setup(dbConfig, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	fileStorage, err := setupStorage(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	answerCache, err := cache.NewCache(cache.Config{
		Type:          cfg.Cache.Type,
		RedisAddr:     cfg.Cache.Address,
		RedisPassword: cfg.Cache.Password,
		RedisDB:       cfg.Cache.DB,
		DefaultTTL:    time.Duration(cfg.Cache.TTL) * time.Second,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	bundle, err := locale.Load(cfg.Locale.OverrideDir)
	if err != nil {
		logger.Fatalf("Failed to load locale assets: %v", err)
	}

	splitter := document.NewSentenceSplitter(document.SplitterConfig{
		ChunkSize: cfg.Document.ChunkSize,
		MaxChunks: cfg.Document.MaxChunks,
	})

	repo := repository.NewDocumentRepository(database.DB)
	docCorpus := corpus.New()

	docOptions := []services.DocumentOption{
		services.WithDocumentLogger(logger),
	}
	if cfg.Embedding.Enable {
		embedder, err := setupEmbedding(cfg.Embedding)
		if err != nil {
			// Lexical retrieval works without embeddings.
			logger.WithError(err).Warn("Embedding client unavailable, continuing without vectors")
		} else {
			docOptions = append(docOptions, services.WithEmbedder(embedder))
		}
	}

	documentService := services.NewDocumentService(fileStorage, splitter, repo, docCorpus, docOptions...)

	assistantOptions := []services.AssistantOption{
		services.WithAssistantLogger(logger),
		services.WithCacheTTL(time.Duration(cfg.Cache.TTL) * time.Second),
		services.WithTopK(cfg.Retrieval.TopK),
		services.WithPassageFragments(cfg.Retrieval.PassageFragments),
		services.WithMinPassageLength(cfg.Retrieval.MinPassageLength),
	}
	if cfg.Knowledge.Enable {
		lookupClient, err := setupKnowledge(cfg.Knowledge)
		if err != nil {
			logger.WithError(err).Warn("Knowledge client unavailable, falling back to canned templates")
		} else {
			assistantOptions = append(assistantOptions, services.WithKnowledgeClient(lookupClient))
		}
	}

	assistantService := services.NewAssistantService(docCorpus, bundle, answerCache, assistantOptions...)

	// restore the corpus from previously ingested documents
	if fragments, err := documentService.ReloadCorpus(context.Background(), "default"); err != nil {
		logger.WithError(err).Warn("Failed to restore corpus from database")
	} else {
		logger.Infof("Corpus restored with %d fragments", fragments)
	}

	router := api.SetupRouter(
		handler.NewDocumentHandler(documentService),
		handler.NewChatHandler(assistantService),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger builds the application logger, with file rotation when a
// log file is configured.
func setupLogger(cfg appconfig.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// setupStorage builds the configured file storage backend.
func setupStorage(cfg appconfig.StorageConfig) (storage.Storage, error) {
	switch cfg.Type {
	case "minio":
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		})
	case "local", "":
		return storage.NewLocalStorage(storage.LocalConfig{
			Path: cfg.Path,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// setupKnowledge builds the external knowledge lookup client.
func setupKnowledge(cfg appconfig.KnowledgeConfig) (knowledge.Client, error) {
	opts := []knowledge.Option{
		knowledge.WithAPIKey(cfg.APIKey),
		knowledge.WithMaxTokens(cfg.MaxTokens),
		knowledge.WithTemperature(cfg.Temperature),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, knowledge.WithBaseURL(cfg.Endpoint))
	}
	if len(cfg.Models) > 0 {
		opts = append(opts, knowledge.WithModels(cfg.Models))
	}
	return knowledge.NewClient(cfg.Provider, opts...)
}

// setupEmbedding builds the optional embedding client.
func setupEmbedding(cfg appconfig.EmbeddingConfig) (embedding.Client, error) {
	opts := []embedding.Option{
		embedding.WithAPIKey(cfg.APIKey),
		embedding.WithBatchSize(cfg.BatchSize),
	}
	if cfg.Model != "" {
		opts = append(opts, embedding.WithModel(cfg.Model))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, embedding.WithBaseURL(cfg.Endpoint))
	}
	return embedding.NewClient(cfg.Provider, opts...)
}
