package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
	Interview InterviewConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled       bool
	Host          string
	Port          int
	Password      string
	DB            int
	KeywordTTLSec int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type RateLimitConfig struct {
	Enabled              bool
	MaxRequestsPerMinute int
}

type SecurityConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
}

// InterviewConfig holds the tunable knobs of the heuristic engine. Zero values
// leave the engine defaults in place.
type InterviewConfig struct {
	MinQuestions       int
	ResumeKeywordLimit int
	AnswerKeywordLimit int
	MinAnswerWords     int
	MaxResumeLength    int
	MaxAnswerLength    int
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/interview-sim")

	return load(v)
}

// LoadFile reads configuration from an explicit path instead of the search paths.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("INTERVIEW_SIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 1048576)

	v.SetDefault("sqlite.path", "./data/interviews.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keywordTTLSec", 86400)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.maxRequestsPerMinute", 120)

	v.SetDefault("security.allowedOrigins", []string{})
	v.SetDefault("security.isDevelopment", false)

	v.SetDefault("interview.minQuestions", 25)
	v.SetDefault("interview.resumeKeywordLimit", 12)
	v.SetDefault("interview.answerKeywordLimit", 5)
	v.SetDefault("interview.minAnswerWords", 20)
	v.SetDefault("interview.maxResumeLength", 100000)
	v.SetDefault("interview.maxAnswerLength", 20000)
}
