package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"docqa/internal/config"
	"docqa/internal/database/kafka"
	milvusdb "docqa/internal/database/milvus"
	miniodb "docqa/internal/database/minio"
	mongodb "docqa/internal/database/mongo"
	"docqa/internal/database/mysql"
	redisdb "docqa/internal/database/redis"
	"docqa/internal/ingestion_service/api"
	"docqa/internal/ingestion_service/service"
	"docqa/internal/rag/dal"
	"docqa/internal/rag/embedders"
	"docqa/internal/rag/extractors"
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/pipeline"
	"docqa/internal/rag/splitters"
	"docqa/internal/rag/storages/docstore"
	"docqa/internal/rag/storages/vectorstore"
	"docqa/pkg/logger"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	logger.Init(logrus.InfoLevel)
	appLogger := logger.New("IngestionService", "")
	appLogger.Info("Starting ingestion service...")

	configPath := os.Getenv("DOCQA_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	milvusClient, err := milvusdb.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	defer milvusClient.Close()

	objects, err := miniodb.GetStore(ctx, &cfg.Databases.MinIO)
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	registry := dal.NewDocumentDAL(db)
	if err := registry.Migrate(); err != nil {
		log.Fatalf("Failed to migrate document registry: %v", err)
	}

	mongoClient, err := mongodb.GetClient(&cfg.Databases.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	chunkStore := docstore.NewMongoDocStore(mongoClient, cfg.Databases.Mongo.Database)

	embedder, err := newEmbedder(&cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	if cfg.Databases.Redis.Enabled {
		rdb, err := redisdb.GetClient(&cfg.Databases.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		ttl := time.Duration(cfg.Databases.Redis.TTL) * time.Second
		embedder = embedders.NewCachedEmbedder(embedder, rdb, ttl, appLogger)
		appLogger.Info("Embedding cache enabled")
	}

	vectorStore, err := vectorstore.NewMilvusStore(milvusClient, embedder.Version(), appLogger)
	if err != nil {
		log.Fatalf("Failed to create vector store: %v", err)
	}

	splitter, err := splitters.NewPageSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		log.Fatalf("Failed to create splitter: %v", err)
	}

	var events interfaces.EventPublisher
	if cfg.Events.Enabled {
		publisher := kafka.NewEventPublisher(&cfg.Events)
		defer publisher.Close()
		events = publisher
		appLogger.Info("Ingestion event publishing enabled")
	}

	indexer := pipeline.NewIndexingPipeline(
		extractors.NewPDFExtractor(appLogger),
		splitter,
		embedder,
		chunkStore,
		vectorStore,
		appLogger,
	)

	checks := map[string]service.HealthCheck{
		"milvus": milvusClient.HealthCheck,
		"minio":  objects.HealthCheck,
		"mysql":  mysql.HealthCheck,
		"mongo":  mongodb.HealthCheck,
	}

	svc := service.NewService(appLogger, indexer, vectorStore, chunkStore, objects,
		registry, events, embedder.Version(), checks)

	router := api.SetupRouter(api.NewHandler(svc))
	srv := &http.Server{
		Addr:    cfg.Ingestion.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Ingestion.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down ingestion service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("HTTP server shutdown failed: %v", err))
	}
	appLogger.Info("Ingestion service stopped")
}

// newEmbedder builds the configured embedding client.
func newEmbedder(cfg *config.EmbeddingConfig) (interfaces.EmbeddingModel, error) {
	switch cfg.Provider {
	case "", "ollama":
		return embedders.NewOllamaEmbedder(cfg.Model, cfg.BaseURL)
	case "openai":
		return embedders.NewOpenAIEmbedder(cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
