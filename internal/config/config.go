package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host           string   `yaml:"host"`
		Port           int      `yaml:"port"`
		Env            string   `yaml:"env"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // access token lifetime, minutes
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		VerifyURL    string `yaml:"verify_url"` // base URL embedded in verification mails
	} `yaml:"email"`

	Storage struct {
		Type      string `yaml:"type"`       // local, s3
		BasePath  string `yaml:"base_path"`  // for local storage
		BaseURL   string `yaml:"base_url"`   // public URL base
		Bucket    string `yaml:"bucket"`     // for S3
		Region    string `yaml:"region"`     // for S3
		AccessKey string `yaml:"access_key"` // for S3
		SecretKey string `yaml:"secret_key"` // for S3
		Endpoint  string `yaml:"endpoint"`   // for S3-compatible stores
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"storage"`

	Ingest struct {
		MaxFileSize    int64 `yaml:"max_file_size"`    // hard cap, bytes
		MaxUserStorage int64 `yaml:"max_user_storage"` // per-user quota, bytes
		MaxDocuments   int   `yaml:"max_documents"`    // active documents per user
		Workers        int   `yaml:"workers"`          // background ingest workers
	} `yaml:"ingest"`

	Model struct {
		TimeoutSeconds int `yaml:"timeout_seconds"` // per-request inference deadline
		MaxConcurrent  int `yaml:"max_concurrent"`  // inference slots
	} `yaml:"model"`

	LLM struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		Model          string  `yaml:"model"`
		Temperature    float64 `yaml:"temperature"`
		MaxTokens      int     `yaml:"max_tokens"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		MaxRetries     int     `yaml:"max_retries"`
		GlobalPerMin   int     `yaml:"global_per_minute"` // shared completion budget
	} `yaml:"llm"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, or builds the config from environment
// variables when DATABASE_URL is set (the test/deploy path).
func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("Loading configuration from environment variables")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/v1/files"

	cfg.LLM.BaseURL = os.Getenv("LLM_BASE_URL")
	cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	cfg.LLM.Model = os.Getenv("LLM_MODEL")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	if cfg.Ingest.MaxFileSize == 0 {
		cfg.Ingest.MaxFileSize = 5 * 1024 * 1024
	}
	if cfg.Ingest.MaxUserStorage == 0 {
		cfg.Ingest.MaxUserStorage = 100 * 1024 * 1024
	}
	if cfg.Ingest.MaxDocuments == 0 {
		cfg.Ingest.MaxDocuments = 5
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 2
	}
	if cfg.Model.TimeoutSeconds == 0 {
		cfg.Model.TimeoutSeconds = 30
	}
	if cfg.Model.MaxConcurrent == 0 {
		cfg.Model.MaxConcurrent = 4
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.1
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 30
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 2
	}
	if cfg.LLM.GlobalPerMin == 0 {
		cfg.LLM.GlobalPerMin = 30
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
