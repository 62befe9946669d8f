package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Validate when LLM stages are enabled but no
// credential is configured. Raised before any batch work begins.
var ErrMissingAPIKey = errors.New("llm api key not configured")

type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	Rules    RulesConfig
	Pipeline PipelineConfig
	Cache    CacheConfig
	SQLite   SQLiteConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type LLMConfig struct {
	BaseURL            string
	Model              string
	APIKey             string
	Temperature        float32
	MaxTokens          int
	TimeoutSec         int
	BatchSize          int
	MaxRetries         int
	RetryDelaySec      int
	BreakerFailures    int
	BreakerCooldownSec int
}

// RulesConfig selects the pipeline version and optionally overrides the
// audited threshold defaults for that mode. Zero values mean "use the mode
// default".
type RulesConfig struct {
	Mode              string
	MinFollowers      int
	MaxFollowers      int
	BigBrandFollowers int
	NoThreshold       float64
	YesThreshold      float64
	FinalInclusion    float64
	LLMYesThreshold   float64
}

type PipelineConfig struct {
	OutputDir          string
	TaggerBatchSize    int
	InterBatchDelaySec int
	GateEnabled        bool
}

type CacheConfig struct {
	Backend string // "file" or "redis"
	Path    string
	Redis   RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type SQLiteConfig struct {
	Path string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/vendor-curator")

	viper.SetEnvPrefix("CURATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ValidateLLM checks the credential requirement for runs that will call the
// language model. Kept separate from Load so --skip-llm runs work offline.
func (c *Config) ValidateLLM() error {
	if c.LLM.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("llm.baseURL", "https://api.deepseek.com/v1")
	viper.SetDefault("llm.model", "deepseek-chat")
	viper.SetDefault("llm.temperature", 0.05)
	viper.SetDefault("llm.maxTokens", 2000)
	viper.SetDefault("llm.timeoutSec", 60)
	viper.SetDefault("llm.batchSize", 5)
	viper.SetDefault("llm.maxRetries", 3)
	viper.SetDefault("llm.retryDelaySec", 5)
	viper.SetDefault("llm.breakerFailures", 5)
	viper.SetDefault("llm.breakerCooldownSec", 30)

	viper.SetDefault("rules.mode", "v2")

	viper.SetDefault("pipeline.outputDir", "output")
	viper.SetDefault("pipeline.taggerBatchSize", 10)
	viper.SetDefault("pipeline.interBatchDelaySec", 1)
	viper.SetDefault("pipeline.gateEnabled", true)

	viper.SetDefault("cache.backend", "file")
	viper.SetDefault("cache.path", "output/verdict_cache.json")
	viper.SetDefault("cache.redis.host", "localhost")
	viper.SetDefault("cache.redis.port", 6379)
	viper.SetDefault("cache.redis.db", 0)

	viper.SetDefault("sqlite.path", "./data/curator.db")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
