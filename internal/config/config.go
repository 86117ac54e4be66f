package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	LLM      LLMConfig
	Convert  ConvertConfig
	Artifact ArtifactConfig

	// GitHubToken is the fallback access token for requests that carry
	// no bearer of their own. Single-user local deployments set this.
	GitHubToken string

	// DatabaseURL enables the Postgres run store when set.
	DatabaseURL string

	// PolicyFile optionally overrides the built-in file selection policy.
	PolicyFile string
}

type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
}

type ConvertConfig struct {
	MaxFiles       int
	MaxFileSize    int
	BatchSizeLimit int
	BatchDelay     time.Duration
	FetchWindow    int
	FetchDelay     time.Duration
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port: *port,
		Env:  env,
		LLM: LLMConfig{
			Provider: strings.TrimSpace(os.Getenv("LLM_PROVIDER")),
			APIKey:   firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GROQ_API_KEY")),
			Model:    strings.TrimSpace(os.Getenv("LLM_MODEL")),
		},
		Convert: ConvertConfig{
			MaxFiles:       envInt("CONVERT_MAX_FILES", 200),
			MaxFileSize:    envInt("CONVERT_MAX_FILE_SIZE", 100_000),
			BatchSizeLimit: envInt("CONVERT_BATCH_SIZE_LIMIT", 40_000),
			BatchDelay:     envMillis("CONVERT_BATCH_DELAY_MS", 1000),
			FetchWindow:    envInt("FETCH_WINDOW", 5),
			FetchDelay:     envMillis("FETCH_DELAY_MS", 200),
		},
		Artifact:    loadArtifactConfig(env),
		GitHubToken: strings.TrimSpace(os.Getenv("GITHUB_TOKEN")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		PolicyFile:  strings.TrimSpace(os.Getenv("SELECT_POLICY_FILE")),
	}, nil
}

func loadArtifactConfig(env string) ArtifactConfig {
	endpoint := resolveArtifactEndpoint(env)
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(os.Getenv("ARTIFACT_S3_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(os.Getenv("ARTIFACT_S3_ACCESS_KEY"), os.Getenv("MINIO_ROOT_USER")),
		SecretKey: firstNonEmpty(os.Getenv("ARTIFACT_S3_SECRET_KEY"), os.Getenv("MINIO_ROOT_PASSWORD")),
		Bucket:    firstNonEmpty(os.Getenv("ARTIFACT_S3_BUCKET"), "restack-artifacts"),
		UseSSL:    resolveArtifactUseSSL(env),
	}
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envMillis(key string, def int) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(def) * time.Millisecond
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return time.Duration(def) * time.Millisecond
	}
	return time.Duration(n) * time.Millisecond
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
