package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full service configuration
type Config struct {
	Server ServerConfig `koanf:"server"`
	Mongo  MongoConfig  `koanf:"mongo"`
	Redis  RedisConfig  `koanf:"redis"`
	Auth   AuthConfig   `koanf:"auth"`
	LLM    LLMConfig    `koanf:"llm"`
	Agent  AgentConfig  `koanf:"agent"`
	CORS   CORSConfig   `koanf:"cors"`
	Log    LogConfig    `koanf:"log"`
}

type ServerConfig struct {
	Port            string        `koanf:"port" validate:"required,numeric"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type MongoConfig struct {
	URI            string        `koanf:"uri" validate:"required"`
	Database       string        `koanf:"database" validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gt=0"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins string `koanf:"allowed_origins"`
	AllowedMethods string `koanf:"allowed_methods"`
	AllowedHeaders string `koanf:"allowed_headers"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error disabled"`
	JSON  bool   `koanf:"json"`
}

// envKeys maps environment variables onto config paths
var envKeys = map[string]string{
	"PORT":                  "server.port",
	"SHUTDOWN_TIMEOUT":      "server.shutdown_timeout",
	"MONGO_URI":             "mongo.uri",
	"MONGO_DATABASE":        "mongo.database",
	"MONGO_CONNECT_TIMEOUT": "mongo.connect_timeout",
	"REDIS_URI":             "redis.addr",
	"REDIS_PASSWORD":        "redis.password",
	"REDIS_DB":              "redis.db",
	"JWT_SECRET":            "auth.jwt_secret",
	"TOKEN_TTL":             "auth.token_ttl",
	"LLM_API_KEY":           "llm.api_key",
	"OPENAI_API_KEY":        "llm.api_key",
	"LLM_BASE_URL":          "llm.base_url",
	"LLM_MODEL":             "llm.model",
	"LLM_TIMEOUT":           "llm.timeout",
	"LLM_MAX_RETRIES":       "llm.max_retries",
	"AGENT_API_URL":         "agent.api_url",
	"AGENT_TIMEOUT":         "agent.timeout",
	"CORS_ALLOWED_ORIGINS":  "cors.allowed_origins",
	"CORS_ALLOWED_METHODS":  "cors.allowed_methods",
	"CORS_ALLOWED_HEADERS":  "cors.allowed_headers",
	"LOG_LEVEL":             "log.level",
	"LOG_JSON":              "log.json",
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 30 * time.Second,
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "formalyze",
			ConnectTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{
			JWTSecret: "change-me-in-production-please",
			TokenTTL:  7 * 24 * time.Hour,
		},
		LLM: DefaultLLMConfig(),
		Agent: AgentConfig{
			Timeout: 30 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET, POST, PUT, DELETE, OPTIONS",
			AllowedHeaders: "Content-Type, Authorization",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads defaults, an optional .env file and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(os.Environ())
}

// LoadFrom builds a configuration from defaults and the given KEY=VALUE pairs
func LoadFrom(environ []string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, val, ok := strings.Cut(kv, "="); ok {
			vars[key] = val
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		EnvironFunc: func() []string { return environ },
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envKeys[key]
			if !ok || value == "" {
				return "", nil
			}
			// LLM_API_KEY wins over OPENAI_API_KEY
			if key == "OPENAI_API_KEY" && vars["LLM_API_KEY"] != "" {
				return "", nil
			}
			if key == "REDIS_URI" {
				value = strings.TrimPrefix(value, "redis://")
			}
			return path, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
