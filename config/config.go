package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Document  DocumentConfig  `mapstructure:"document"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Locale    LocaleConfig    `mapstructure:"locale"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug or release
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StorageConfig holds uploaded file storage settings.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // local or minio
	Path      string `mapstructure:"path"` // local base directory
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// DatabaseConfig holds the metadata database settings.
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // sqlite
	DSN  string `mapstructure:"dsn"`
}

// CacheConfig holds answer cache settings.
type CacheConfig struct {
	Type     string `mapstructure:"type"` // memory or redis
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

// KnowledgeConfig holds external knowledge lookup settings.
type KnowledgeConfig struct {
	Enable      bool     `mapstructure:"enable"`
	Provider    string   `mapstructure:"provider"` // perplexity
	APIKey      string   `mapstructure:"api_key"`
	Endpoint    string   `mapstructure:"endpoint"`
	Models      []string `mapstructure:"models"` // ordered fallback list
	MaxTokens   int      `mapstructure:"max_tokens"`
	Temperature float32  `mapstructure:"temperature"`
}

// EmbeddingConfig holds the optional embedding backend settings.
type EmbeddingConfig struct {
	Enable    bool   `mapstructure:"enable"`
	Provider  string `mapstructure:"provider"` // huggingface
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	Endpoint  string `mapstructure:"endpoint"`
	BatchSize int    `mapstructure:"batch_size"`
}

// DocumentConfig holds document splitting settings.
type DocumentConfig struct {
	ChunkSize int `mapstructure:"chunk_size"` // max fragment length
	MaxChunks int `mapstructure:"max_chunks"` // 0 means unlimited
}

// RetrievalConfig holds answer retrieval settings.
type RetrievalConfig struct {
	TopK             int `mapstructure:"top_k"`              // fragments kept after ranking
	PassageFragments int `mapstructure:"passage_fragments"`  // fragments in a synthesized passage
	MinPassageLength int `mapstructure:"min_passage_length"` // shorter passages count as no-answer
}

// LocaleConfig holds language asset settings.
type LocaleConfig struct {
	OverrideDir string `mapstructure:"override_dir"` // extra asset files merged over the defaults
}

// LogConfig holds logging and rotation settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty logs to stdout only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads configuration from a file and the environment.
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			setDefaults(v)
			if dir := filepath.Dir(configPath); dir != "" {
				if err := os.MkdirAll(dir, 0755); err == nil {
					if err := v.WriteConfigAs(configPath); err != nil {
						log.Printf("Warning: Could not write default config to %s: %v", configPath, err)
					}
				}
			}
		} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			setDefaults(v)
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	return expandEnvironment(&config), nil
}

// expandEnvironment resolves ${VAR} placeholders in secret settings.
func expandEnvironment(cfg *Config) *Config {
	cfg.Knowledge.APIKey = expandVar(cfg.Knowledge.APIKey)
	cfg.Embedding.APIKey = expandVar(cfg.Embedding.APIKey)
	cfg.Storage.AccessKey = expandVar(cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = expandVar(cfg.Storage.SecretKey)
	cfg.Cache.Password = expandVar(cfg.Cache.Password)
	return cfg
}

func expandVar(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
			return envVal
		}
	}
	return value
}

// setDefaults sets every configuration default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./data/uploads")
	v.SetDefault("storage.bucket", "dharma-documents")
	v.SetDefault("storage.use_ssl", false)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "./data/assistant.db")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 86400)

	v.SetDefault("knowledge.enable", false)
	v.SetDefault("knowledge.provider", "perplexity")
	v.SetDefault("knowledge.api_key", "${PERPLEXITY_API_KEY}")
	v.SetDefault("knowledge.max_tokens", 1024)
	v.SetDefault("knowledge.temperature", 0.3)

	v.SetDefault("embedding.enable", false)
	v.SetDefault("embedding.provider", "huggingface")
	v.SetDefault("embedding.api_key", "${HUGGINGFACE_API_KEY}")
	v.SetDefault("embedding.batch_size", 16)

	v.SetDefault("document.chunk_size", 500)
	v.SetDefault("document.max_chunks", 0)

	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.passage_fragments", 3)
	v.SetDefault("retrieval.min_passage_length", 50)

	v.SetDefault("locale.override_dir", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}
