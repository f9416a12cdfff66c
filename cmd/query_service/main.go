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
	milvusdb "docqa/internal/database/milvus"
	miniodb "docqa/internal/database/minio"
	mongodb "docqa/internal/database/mongo"
	"docqa/internal/database/mysql"
	redisdb "docqa/internal/database/redis"
	"docqa/internal/query_service/api"
	"docqa/internal/query_service/service"
	"docqa/internal/rag/dal"
	"docqa/internal/rag/embedders"
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/llms"
	"docqa/internal/rag/pipeline"
	"docqa/internal/rag/storages/docstore"
	"docqa/internal/rag/storages/vectorstore"
	"docqa/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	logger.Init(logrus.InfoLevel)
	appLogger := logger.New("QueryService", "")
	appLogger.Info("Starting query service...")

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

	llm, err := newLLM(&cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create language model: %v", err)
	}

	retriever := pipeline.NewRetrievalPipeline(embedder, vectorStore, chunkStore,
		cfg.Retrieval.MinScore, cfg.Retrieval.MaxParallel, appLogger)
	composer := pipeline.NewQAPipeline(llm, appLogger)

	checks := map[string]service.HealthCheck{
		"milvus": milvusClient.HealthCheck,
		"minio":  objects.HealthCheck,
		"mysql":  mysql.HealthCheck,
		"mongo":  mongodb.HealthCheck,
	}

	svc := service.NewService(appLogger, retriever, composer, vectorStore,
		registry, objects, cfg.Retrieval.TopK, checks)

	router := api.SetupRouter(api.NewHandler(svc))
	srv := &http.Server{
		Addr:    cfg.Query.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Query.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down query service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("HTTP server shutdown failed: %v", err))
	}
	appLogger.Info("Query service stopped")
}

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

func newLLM(cfg *config.LLMConfig) (interfaces.LLM, error) {
	switch cfg.Provider {
	case "", "ollama":
		return llms.NewOllamaLLM(cfg.Model, cfg.BaseURL)
	case "openai":
		return llms.NewOpenAILLM(cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
