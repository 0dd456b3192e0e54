package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Loan     LoanConfig
	Phrasing PhrasingConfig
	Nats     NatsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	LetterOutputDir    string
}

// LoanConfig carries the underwriting thresholds. These are policy inputs,
// not product constants; defaults mirror the current credit policy.
type LoanConfig struct {
	MinMonthlyIncome int64
	MaxFOIR          float64
	LowRiskFOIR      float64
	InterestRate     float64
}

type PhrasingConfig struct {
	Provider      string // "template" or "ollama"
	OllamaBaseURL string
	OllamaModel   string
}

type NatsConfig struct {
	URL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			LetterOutputDir:    getEnv("LETTER_OUTPUT_DIR", "generated_letters"),
		},
		Loan: LoanConfig{
			MinMonthlyIncome: getEnvAsInt64("LOAN_MIN_MONTHLY_INCOME", 25000),
			MaxFOIR:          getEnvAsFloat("LOAN_MAX_FOIR", 0.45),
			LowRiskFOIR:      getEnvAsFloat("LOAN_LOW_RISK_FOIR", 0.30),
			InterestRate:     getEnvAsFloat("LOAN_INTEREST_RATE", 12.0),
		},
		Phrasing: PhrasingConfig{
			Provider:      getEnv("PHRASING_PROVIDER", "template"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),
		},
		Nats: NatsConfig{
			URL: getEnv("NATS_URL", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
