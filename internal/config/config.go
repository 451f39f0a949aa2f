package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	OpenAI  OpenAIConfig
	Data    DataConfig
	Search  SearchConfig
	Session SessionConfig
}

type AppConfig struct {
	Port                string
	BaseURL             string
	Environment         string
	LogFilePath         string
	CorsAllowedOrigins  string
	NatsURL             string
	CatalogUpgradeTopic string
	EnableCompleteLook  bool
}

type OpenAIConfig struct {
	ApiKey         string
	GptModel       string
	EmbeddingModel string
	EmbeddingDim   int
	ImageModel     string
}

type DataConfig struct {
	StylesCSVPath     string
	EmbeddingsCSVPath string
	IndexPath         string
	MetadataPath      string
	ImagesBaseURL     string
}

type SearchConfig struct {
	MaxSearchResults int
	DefaultTopK      int
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "3000"),
			BaseURL:             getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:             getEnv("NATS_URL", "nats://localhost:4222"),
			CatalogUpgradeTopic: getEnv("CATALOG_UPGRADE_TOPIC_NAME", "CATALOG_UPGRADE"),
			EnableCompleteLook:  getEnvAsBool("ENABLE_COMPLETE_THE_LOOK", false),
		},
		OpenAI: OpenAIConfig{
			ApiKey:         getEnv("OPENAI_API_KEY", ""),
			GptModel:       getEnv("GPT_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-large"),
			EmbeddingDim:   getEnvAsInt("EMBEDDING_DIM", 1536),
			ImageModel:     getEnv("IMAGE_MODEL", "dall-e-3"),
		},
		Data: DataConfig{
			StylesCSVPath:     getEnv("STYLES_CSV_PATH", "data/sample_styles.csv"),
			EmbeddingsCSVPath: getEnv("EMBEDDINGS_CSV_PATH", "data/sample_styles_with_embeddings.csv"),
			IndexPath:         getEnv("INDEX_PATH", "data/clothing.index"),
			MetadataPath:      getEnv("METADATA_PATH", "data/metadata.json"),
			ImagesBaseURL:     getEnv("IMAGES_BASE_URL", "https://raw.githubusercontent.com/openai/openai-cookbook/main/examples/data/sample_clothes/sample_images"),
		},
		Search: SearchConfig{
			MaxSearchResults: getEnvAsInt("MAX_SEARCH_RESULTS", 100),
			DefaultTopK:      getEnvAsInt("DEFAULT_TOP_K", 20),
		},
		Session: SessionConfig{
			TTL:           getEnvAsDuration("SESSION_TTL", time.Hour),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
