package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the bot.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol)
	// All providers (zai, deepseek, openai, siliconflow, ollama) use the same config
	LLMProvider string // Provider identifier: zai, deepseek, openai, siliconflow, dashscope, openrouter, ollama
	LLMAPIKey   string // Unified LLM API key
	LLMBaseURL  string // Unified LLM base URL (optional, has default per provider)
	LLMModel    string // Model name: glm-4.7, deepseek-chat, gpt-4o, etc.
	LLMTimeout  int    // LLM request timeout in seconds (default: 120)

	// Embedding configuration
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingDimensions int

	// Telegram configuration
	BotToken string

	// Retrieval configuration
	TriggerPhrases []string // case-insensitive trigger phrase set
	TopK           int      // nearest neighbors fetched per question
	MinConfidence  float64  // normalized confidence threshold in [0,1]
	MaxResults     int      // cap on context messages per answer, 0 = uncapped

	// Other configurations
	Mode        string
	Data        string
	Driver      string
	DSN         string
	MetricsAddr string // promhttp listen address, empty disables metrics
	Version     string
}

// Provider default configurations for LLM.
// Used when RECALL_AI_LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"zai": {
		BaseURL: "https://open.bigmodel.cn/api/paas/v4",
		Model:   "glm-4.7",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-72B-Instruct",
	},
	"dashscope": {
		BaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Model:   "qwen-max-latest",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	},
}

// DefaultTriggerPhrases is the phrase set used when none is configured.
// Matching is case-insensitive, so casing variants need not be listed.
var DefaultTriggerPhrases = []string{"rtfm", "read the f***ing manual"}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float64 or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	// Unified LLM configuration
	p.LLMProvider = getEnvOrDefault("RECALL_AI_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("RECALL_AI_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("RECALL_AI_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("RECALL_AI_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("RECALL_AI_LLM_TIMEOUT_SECONDS", 120)

	// Validate and apply provider defaults if not explicitly set
	if p.LLMProvider != "" {
		if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
			slog.Warn("unknown LLM provider, using default: openai", "provider", p.LLMProvider)
			p.LLMProvider = "openai"
		}
	}
	if p.LLMBaseURL == "" || p.LLMModel == "" {
		if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
			if p.LLMBaseURL == "" {
				p.LLMBaseURL = defaults.BaseURL
			}
			if p.LLMModel == "" {
				p.LLMModel = defaults.Model
			}
		}
	}

	// Embedding configuration
	p.EmbeddingProvider = getEnvOrDefault("RECALL_AI_EMBEDDING_PROVIDER", "siliconflow")
	p.EmbeddingModel = getEnvOrDefault("RECALL_AI_EMBEDDING_MODEL", "BAAI/bge-m3")
	p.EmbeddingAPIKey = getEnvOrDefault("RECALL_AI_EMBEDDING_API_KEY", "")
	p.EmbeddingBaseURL = getEnvOrDefault("RECALL_AI_EMBEDDING_BASE_URL", "https://api.siliconflow.cn/v1")
	p.EmbeddingDimensions = getEnvOrDefaultInt("RECALL_AI_EMBEDDING_DIMENSIONS", 1024)

	// Telegram configuration
	p.BotToken = getEnvOrDefault("RECALL_BOT_TOKEN", "")

	// Retrieval configuration
	if phrases := os.Getenv("RECALL_TRIGGER_PHRASES"); phrases != "" {
		p.TriggerPhrases = splitPhrases(phrases)
	}
	p.TopK = getEnvOrDefaultInt("RECALL_RETRIEVAL_TOP_K", 50)
	p.MinConfidence = getEnvOrDefaultFloat("RECALL_RETRIEVAL_MIN_CONFIDENCE", 0.7)
	p.MaxResults = getEnvOrDefaultInt("RECALL_RETRIEVAL_MAX_RESULTS", 0)
}

// splitPhrases parses a comma-separated phrase list, dropping empty entries.
func splitPhrases(value string) []string {
	parts := strings.Split(value, ",")
	phrases := make([]string, 0, len(parts))
	for _, part := range parts {
		if phrase := strings.TrimSpace(part); phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.BotToken == "" {
		return errors.New("bot token required (RECALL_BOT_TOKEN)")
	}

	if len(p.TriggerPhrases) == 0 {
		p.TriggerPhrases = DefaultTriggerPhrases
	}
	if p.TopK < 1 {
		return errors.Errorf("retrieval top-k must be >= 1: %d", p.TopK)
	}
	if p.MinConfidence < 0 || p.MinConfidence > 1 {
		return errors.Errorf("min confidence must be in [0,1]: %f", p.MinConfidence)
	}
	if p.MaxResults < 0 {
		return errors.Errorf("max results cannot be negative: %d", p.MaxResults)
	}
	if p.EmbeddingDimensions <= 0 {
		return errors.Errorf("embedding dimensions must be positive: %d", p.EmbeddingDimensions)
	}

	if p.Driver == "sqlite" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			dbFile := fmt.Sprintf("recall_%s.db", p.Mode)
			p.DSN = filepath.Join(dataDir, dbFile)
		}
	} else if p.DSN == "" {
		return errors.New("dsn required for postgres driver")
	}

	return nil
}
