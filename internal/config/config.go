package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"docbot/internal/rag/schema"
)

// AppInfo holds basic application metadata.
type AppInfo struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// GeminiConfig holds credentials for the Google GenAI APIs.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// OpenAIConfig holds credentials for OpenAI-compatible APIs.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL,omitempty"`
}

// OllamaConfig points at a local Ollama server.
type OllamaConfig struct {
	Address string `yaml:"address"`
	Model   string `yaml:"model"`
}

// EmbeddingConfig selects and configures the embedding provider. The model
// identifier and dimension are fixed per deployment; changing either
// invalidates every vector already stored in the index.
type EmbeddingConfig struct {
	Provider  string       `yaml:"provider"` // "gemini", "openai" or "ollama"
	Dimension int          `yaml:"dimension"`
	Gemini    GeminiConfig `yaml:"gemini"`
	OpenAI    OpenAIConfig `yaml:"openai"`
	Ollama    OllamaConfig `yaml:"ollama"`
}

// LLMConfig selects and configures the generation provider.
type LLMConfig struct {
	Provider string       `yaml:"provider"` // "gemini" or "openai"
	Gemini   GeminiConfig `yaml:"gemini"`
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// MilvusConfig defines the vector index connection.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
}

// MongoConfig defines the document registry connection.
type MongoConfig struct {
	Address    string `yaml:"address"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// MinIOConfig defines the raw upload blob store connection. Leaving the
// endpoint empty disables blob storage.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// DatabaseConfigs groups all storage backends.
type DatabaseConfigs struct {
	Milvus  MilvusConfig `yaml:"milvus"`
	MongoDB MongoConfig  `yaml:"mongodb"`
	MinIO   MinIOConfig  `yaml:"minio"`
}

// RetryConfig bounds the backoff applied to transient provider failures on
// embedding and vector index calls. Generation calls are never retried.
type RetryConfig struct {
	MaxAttempts    int    `yaml:"maxAttempts"`
	InitialBackoff string `yaml:"initialBackoff"` // e.g. "200ms"
	MaxBackoff     string `yaml:"maxBackoff"`     // e.g. "5s"
}

// RagConfig holds the tunable parameters of the ingestion and query
// pipelines.
type RagConfig struct {
	ChunkSize       int         `yaml:"chunkSize"`
	ChunkOverlap    int         `yaml:"chunkOverlap"`
	TopK            int         `yaml:"topK"`
	MinScore        float32     `yaml:"minScore"`
	MaxContextChars int         `yaml:"maxContextChars"`
	Temperatures    []float32   `yaml:"temperatures"`
	EmbedBatchSize  int         `yaml:"embedBatchSize"`
	IngestWorkers   int         `yaml:"ingestWorkers"`
	RequestTimeout  string      `yaml:"requestTimeout"` // per external call, e.g. "30s"
	Retry           RetryConfig `yaml:"retry"`
}

// AppConfig is the root of the yaml configuration file.
type AppConfig struct {
	App       AppInfo         `yaml:"app"`
	Logger    LoggerConfig    `yaml:"logger"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Rag       RagConfig       `yaml:"rag"`
	Databases DatabaseConfigs `yaml:"databases"`
}

// LoadConfig reads, parses, defaults and validates the configuration file.
// Invalid chunk parameters are a deployment error and fail the load.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	r := &c.Rag
	if r.ChunkSize == 0 {
		r.ChunkSize = 1000
	}
	if r.ChunkOverlap == 0 {
		r.ChunkOverlap = 200
	}
	if r.TopK == 0 {
		r.TopK = 5
	}
	if r.MaxContextChars == 0 {
		r.MaxContextChars = 8000
	}
	if len(r.Temperatures) == 0 {
		r.Temperatures = []float32{0.2, 0.7, 1.0}
	}
	if r.EmbedBatchSize == 0 {
		r.EmbedBatchSize = 100
	}
	if r.IngestWorkers == 0 {
		r.IngestWorkers = 4
	}
	if r.RequestTimeout == "" {
		r.RequestTimeout = "30s"
	}
	if r.Retry.MaxAttempts == 0 {
		r.Retry.MaxAttempts = 3
	}
	if r.Retry.InitialBackoff == "" {
		r.Retry.InitialBackoff = "200ms"
	}
	if r.Retry.MaxBackoff == "" {
		r.Retry.MaxBackoff = "5s"
	}
}

// Validate checks the settings that would otherwise only fail deep inside a
// request.
func (c *AppConfig) Validate() error {
	r := c.Rag
	if r.ChunkSize <= 0 || r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return &schema.InvalidChunkConfigError{MaxChars: r.ChunkSize, OverlapChars: r.ChunkOverlap}
	}
	switch c.Embedding.Provider {
	case "gemini", "openai", "ollama":
	default:
		return fmt.Errorf("unsupported embedding provider: %q", c.Embedding.Provider)
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if _, err := time.ParseDuration(r.RequestTimeout); err != nil {
		return fmt.Errorf("invalid requestTimeout: %w", err)
	}
	if _, err := time.ParseDuration(r.Retry.InitialBackoff); err != nil {
		return fmt.Errorf("invalid retry initialBackoff: %w", err)
	}
	if _, err := time.ParseDuration(r.Retry.MaxBackoff); err != nil {
		return fmt.Errorf("invalid retry maxBackoff: %w", err)
	}
	return nil
}

// RequestTimeoutDuration returns the parsed per-call timeout.
func (r RagConfig) RequestTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.RequestTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// InitialBackoffDuration returns the parsed initial retry backoff.
func (r RetryConfig) InitialBackoffDuration() time.Duration {
	d, err := time.ParseDuration(r.InitialBackoff)
	if err != nil {
		return 200 * time.Millisecond
	}
	return d
}

// MaxBackoffDuration returns the parsed retry backoff cap.
func (r RetryConfig) MaxBackoffDuration() time.Duration {
	d, err := time.ParseDuration(r.MaxBackoff)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
