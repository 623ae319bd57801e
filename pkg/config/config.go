package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"4000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		RateLimit       struct {
			Capacity     float64       `yaml:"capacity" default:"30"`
			RefillPerSec float64       `yaml:"refill_per_sec" default:"10"`
			IdleTTL      time.Duration `yaml:"idle_ttl" default:"10m"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Path          string        `yaml:"path" default:"/metrics"`
		SlowThreshold time.Duration `yaml:"slow_threshold" default:"2s"`
	} `yaml:"metrics"`
	Exchange struct {
		RestEndpoint string        `yaml:"rest_endpoint" default:"https://api.binance.com"`
		DepthLimit   int           `yaml:"depth_limit" default:"50"`
		Timeout      time.Duration `yaml:"timeout" default:"8s"`
		RateLimit    float64       `yaml:"rate_limit" default:"10"`
		Burst        int           `yaml:"burst" default:"20"`
	} `yaml:"exchange"`
	Indicators struct {
		CacheTTL time.Duration `yaml:"cache_ttl" default:"30s"`
		Interval string        `yaml:"interval" default:"1h"`
		Limit    int           `yaml:"limit" default:"200"`
	} `yaml:"indicators"`
	Prediction struct {
		Interval       string        `yaml:"interval" default:"1h"`
		Limit          int           `yaml:"limit" default:"100"`
		MinCandles     int           `yaml:"min_candles" default:"50"`
		Horizon        int           `yaml:"horizon" default:"24"`
		Alpha          float64       `yaml:"alpha" default:"0.5"`
		Beta           float64       `yaml:"beta" default:"0.3"`
		Confidence     float64       `yaml:"confidence" default:"0.85"`
		CacheTTL       time.Duration `yaml:"cache_ttl"`
		PublishTimeout time.Duration `yaml:"publish_timeout" default:"3s"`
	} `yaml:"prediction"`
	Sentiment struct {
		Provider       string        `yaml:"provider" default:"gemini"`
		Model          string        `yaml:"model"`
		GeminiAPIKey   string        `yaml:"gemini_api_key"`
		ClaudeAPIKey   string        `yaml:"claude_api_key"`
		GeminiEndpoint string        `yaml:"gemini_endpoint" default:"https://generativelanguage.googleapis.com"`
		ClaudeEndpoint string        `yaml:"claude_endpoint" default:"https://api.anthropic.com"`
		Timeout        time.Duration `yaml:"timeout" default:"8s"`
		MaxTokens      int           `yaml:"max_tokens" default:"512"`
	} `yaml:"sentiment"`
	Redis struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"6379"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		Prefix       string        `yaml:"prefix" default:"marketpulse"`
		SnapshotTTL  time.Duration `yaml:"snapshot_ttl" default:"5m"`
		PoolSize     int           `yaml:"pool_size" default:"10"`
		MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
		PoolTimeout  time.Duration `yaml:"pool_timeout" default:"30s"`
		PingTimeout  time.Duration `yaml:"ping_timeout" default:"5s"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"marketpulse.snapshots"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Warmup struct {
		Enabled bool          `yaml:"enabled"`
		Cron    string        `yaml:"cron" default:"*/30 * * * * *"`
		Symbols []string      `yaml:"symbols"`
		Timeout time.Duration `yaml:"timeout" default:"20s"`
	} `yaml:"warmup"`
	Stream struct {
		LatencyInterval   time.Duration `yaml:"latency_interval" default:"5s"`
		IndicatorInterval time.Duration `yaml:"indicator_interval" default:"10s"`
		WriteTimeout      time.Duration `yaml:"write_timeout" default:"5s"`
	} `yaml:"stream"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads an optional .env file, then config from YAML, and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, fmt.Errorf("env override: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MARKET_REST_ENDPOINT"); v != "" {
		c.Exchange.RestEndpoint = v
	}
	if v := os.Getenv("MARKET_DEPTH_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MARKET_DEPTH_LIMIT: %w", err)
		}
		c.Exchange.DepthLimit = n
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.Sentiment.Provider = v
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		c.Sentiment.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Sentiment.GeminiAPIKey = v
	}
	if v := os.Getenv("CLAUDE_API_KEY"); v != "" {
		c.Sentiment.ClaudeAPIKey = v
	}
	if v := os.Getenv("AI_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AI_TIMEOUT_MS: %w", err)
		}
		c.Sentiment.Timeout = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("FRONTEND_ORIGIN"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			p, err := strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("REDIS_ADDR: %w", err)
			}
			c.Redis.Port = p
		}
		c.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("WARMUP_SYMBOLS"); v != "" {
		c.Warmup.Symbols = splitList(v)
		c.Warmup.Enabled = true
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Exchange.RestEndpoint == "" {
		return fmt.Errorf("exchange.rest_endpoint is required")
	}
	if c.Exchange.DepthLimit < 5 || c.Exchange.DepthLimit > 500 {
		return fmt.Errorf("exchange.depth_limit must be within [5,500], got %d", c.Exchange.DepthLimit)
	}
	if c.Sentiment.Provider != "gemini" && c.Sentiment.Provider != "claude" {
		return fmt.Errorf("sentiment.provider must be 'gemini' or 'claude', got '%s'", c.Sentiment.Provider)
	}
	if c.Prediction.MinCandles < 2 {
		return fmt.Errorf("prediction.min_candles must be at least 2, got %d", c.Prediction.MinCandles)
	}
	if c.Prediction.Limit < c.Prediction.MinCandles {
		return fmt.Errorf("prediction.limit (%d) must be >= prediction.min_candles (%d)", c.Prediction.Limit, c.Prediction.MinCandles)
	}
	if c.Prediction.Horizon <= 0 {
		return fmt.Errorf("prediction.horizon must be positive")
	}
	if c.Prediction.Confidence < 0 || c.Prediction.Confidence > 1 {
		return fmt.Errorf("prediction.confidence must be within [0,1]")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Warmup.Enabled && len(c.Warmup.Symbols) == 0 {
		return fmt.Errorf("warmup.symbols cannot be empty when warmup is enabled")
	}
	return nil
}
