package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Upstream     UpstreamConfig     `mapstructure:"upstream"`
	ChatTemplate ChatTemplateConfig `mapstructure:"chat_template"`
	Security     SecurityConfig     `mapstructure:"security"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Storage      StorageConfig      `mapstructure:"storage"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// UpstreamConfig points at the native generate server.
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ChatTemplateConfig supplies the per-role prefix/suffix pairs used to
// linearize chat messages into a single prompt. All six default to the empty
// string; each can be overridden via its TGICHAT_* environment variable.
type ChatTemplateConfig struct {
	UserPre       string `mapstructure:"user_pre"`
	UserPost      string `mapstructure:"user_post"`
	AssistantPre  string `mapstructure:"assistant_pre"`
	AssistantPost string `mapstructure:"assistant_post"`
	SystemPre     string `mapstructure:"system_pre"`
	SystemPost    string `mapstructure:"system_post"`
}

type SecurityConfig struct {
	APIKey         string   `mapstructure:"api_key"`
	EnableCORS     bool     `mapstructure:"enable_cors"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Output        string `mapstructure:"output"`
	ConsoleOutput bool   `mapstructure:"console_output"`
	MaxSize       int    `mapstructure:"max_size"`
	MaxBackups    int    `mapstructure:"max_backups"`
	MaxAge        int    `mapstructure:"max_age"`
	Compress      bool   `mapstructure:"compress"`
}

type StorageConfig struct {
	DataDir  string `mapstructure:"data_dir"`
	UsageDir string `mapstructure:"usage_dir"`
	LogsDir  string `mapstructure:"logs_dir"`
}

// chatTemplateEnv maps template keys to the environment variables the
// chat formatter has always been configured through.
var chatTemplateEnv = map[string]string{
	"chat_template.user_pre":       "TGICHAT_USER_PRE",
	"chat_template.user_post":      "TGICHAT_USER_POST",
	"chat_template.assistant_pre":  "TGICHAT_ASS_PRE",
	"chat_template.assistant_post": "TGICHAT_ASS_POST",
	"chat_template.system_pre":     "TGICHAT_SYS_PRE",
	"chat_template.system_post":    "TGICHAT_SYS_POST",
}

// Load loads the configuration from file and environment
func Load() (*Config, error) {
	for key, env := range chatTemplateEnv {
		viper.BindEnv(key, env)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	// Streamed generations can run for minutes, so the write timeout has to
	// cover the full upstream timeout.
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 5 * time.Minute
	}

	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "http://127.0.0.1:3000"
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = 120 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "logs/textgate.log"
	}
	cfg.Logging.ConsoleOutput = true
	if cfg.Logging.MaxSize == 0 {
		cfg.Logging.MaxSize = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 10
	}
	if cfg.Logging.MaxAge == 0 {
		cfg.Logging.MaxAge = 30
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Storage.UsageDir == "" {
		cfg.Storage.UsageDir = "./data/usage"
	}
	if cfg.Storage.LogsDir == "" {
		cfg.Storage.LogsDir = "./logs"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base_url must not be empty")
	}
	return nil
}
