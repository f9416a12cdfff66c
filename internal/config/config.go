package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MilvusConfig holds the vector database connection settings.
type MilvusConfig struct {
	Address string `yaml:"address"` // Milvus endpoint, e.g. "localhost:19530"
}

// MinIOConfig holds the object storage connection settings. Raw uploaded
// documents are persisted here.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// MySQLConfig holds the document registry database settings.
type MySQLConfig struct {
	Address         string `yaml:"address"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// MongoConfig holds the chunk text store settings.
type MongoConfig struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RedisConfig holds the optional embedding cache settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      int    `yaml:"ttl"` // cache entry lifetime in seconds, 0 = no expiry
}

// DatabasesConfig groups all storage backends.
type DatabasesConfig struct {
	Milvus MilvusConfig `yaml:"milvus"`
	MinIO  MinIOConfig  `yaml:"minio"`
	MySQL  MySQLConfig  `yaml:"mysql"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Redis  RedisConfig  `yaml:"redis"`
}

// EmbeddingConfig selects and configures the embedding model. The model
// identifier is stamped onto every collection; changing it requires
// re-embedding, never in-place mixing.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "ollama" | "openai"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"baseURL"`   // optional; openai-compatible endpoints (e.g. Groq)
	APIKey    string `yaml:"apiKey"`    // overridden by EMBEDDING_API_KEY when set
	Dimension int    `yaml:"dimension"` // vector dimension of the model
}

// LLMConfig selects and configures the answer-generation model.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "ollama" | "openai"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"baseURL"`
	APIKey   string `yaml:"apiKey"` // overridden by LLM_API_KEY when set
}

// ChunkingConfig sets the splitter policy.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunkSize"`    // max chunk size in characters
	ChunkOverlap int `yaml:"chunkOverlap"` // trailing/leading overlap in characters
}

// RetrievalConfig sets the retriever defaults.
type RetrievalConfig struct {
	TopK        int     `yaml:"topK"`        // global top-k after the multi-collection merge
	MinScore    float32 `yaml:"minScore"`    // similarity floor; weaker matches are dropped
	MaxParallel int     `yaml:"maxParallel"` // bound on concurrent per-collection queries
}

// EventsConfig configures the optional Kafka ingestion event stream.
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ServerConfig holds the listen address of one HTTP service.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// AppConfig is the root configuration shared by both services.
type AppConfig struct {
	Ingestion ServerConfig    `yaml:"ingestion"`
	Query     ServerConfig    `yaml:"query"`
	Databases DatabasesConfig `yaml:"databases"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Events    EventsConfig    `yaml:"events"`
}

// LoadConfig reads and parses the yaml configuration file at path. Secrets
// present in the environment (EMBEDDING_API_KEY, LLM_API_KEY) override the
// file values.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if key := os.Getenv("EMBEDDING_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	}
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Ingestion.Address == "" {
		c.Ingestion.Address = ":8080"
	}
	if c.Query.Address == "" {
		c.Query.Address = ":8081"
	}
	if c.Chunking.ChunkSize == 0 {
		c.Chunking.ChunkSize = 1200
	}
	if c.Chunking.ChunkOverlap == 0 {
		c.Chunking.ChunkOverlap = 200
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 8
	}
	if c.Retrieval.MaxParallel == 0 {
		c.Retrieval.MaxParallel = 4
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "docqa_ingestion_events"
	}
}
