package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env       string
	Server    ServerConfig
	DB        DBConfig
	Ollama    OllamaConfig
	RAG       RAGConfig
	Cache     CacheConfig
	Session   SessionConfig
	Scheduler SchedulerConfig
	Feed      FeedConfig
}

type ServerConfig struct {
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int32
	MinConns int32
}

// DSN renders the pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type OllamaConfig struct {
	URL        string
	ChatModel  string
	EmbedModel string
}

type RAGConfig struct {
	DefaultLimit     int
	CondenseMaxTurns int
	CondenseTimeout  time.Duration
	RetrieveTimeout  time.Duration
	GenerateTimeout  time.Duration
}

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

type SessionConfig struct {
	MaxTurns int
}

type SchedulerConfig struct {
	Enabled     bool
	Interval    time.Duration
	Concurrency int
}

type FeedConfig struct {
	Sources          []Source
	HostRateInterval time.Duration
}

// Source names one RSS feed to poll.
type Source struct {
	Identifier string
	URL        string
}

func Load() *Config {
	return &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			Port: getEnv("PORT", "9010"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "rag-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "rag_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "rag_password"),
			Name:     getEnv("DB_NAME", "rag_db"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		Ollama: OllamaConfig{
			URL:        getEnv("OLLAMA_URL", "http://ollama:11434"),
			ChatModel:  getEnv("OLLAMA_CHAT_MODEL", "gemma3:4b"),
			EmbedModel: getEnv("OLLAMA_EMBED_MODEL", "embeddinggemma"),
		},
		RAG: RAGConfig{
			DefaultLimit:     getEnvInt("RAG_DEFAULT_LIMIT", 5),
			CondenseMaxTurns: getEnvInt("RAG_CONDENSE_MAX_TURNS", 6),
			CondenseTimeout:  getEnvDuration("RAG_CONDENSE_TIMEOUT", 15*time.Second),
			RetrieveTimeout:  getEnvDuration("RAG_RETRIEVE_TIMEOUT", 10*time.Second),
			GenerateTimeout:  getEnvDuration("RAG_GENERATE_TIMEOUT", 120*time.Second),
		},
		Cache: CacheConfig{
			Size: getEnvInt("RAG_CACHE_SIZE", 256),
			TTL:  getEnvDuration("RAG_CACHE_TTL", 10*time.Minute),
		},
		Session: SessionConfig{
			MaxTurns: getEnvInt("SESSION_MAX_TURNS", 0),
		},
		Scheduler: SchedulerConfig{
			Enabled:     getEnvBool("SCHEDULER_ENABLED", true),
			Interval:    getEnvDuration("SCHEDULER_INTERVAL", time.Hour),
			Concurrency: getEnvInt("SCHEDULER_CONCURRENCY", 4),
		},
		Feed: FeedConfig{
			Sources:          parseSources(getEnv("RSS_SOURCES", "")),
			HostRateInterval: getEnvDuration("RSS_HOST_RATE_INTERVAL", 5*time.Second),
		},
	}
}

// parseSources parses "identifier=url,identifier=url" into feed sources.
// Malformed entries are skipped.
func parseSources(raw string) []Source {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	sources := make([]Source, 0)
	for _, pair := range strings.Split(raw, ",") {
		identifier, url, found := strings.Cut(strings.TrimSpace(pair), "=")
		identifier = strings.TrimSpace(identifier)
		url = strings.TrimSpace(url)
		if !found || identifier == "" || url == "" {
			continue
		}
		sources = append(sources, Source{Identifier: identifier, URL: url})
	}
	return sources
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
