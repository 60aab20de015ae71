package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/samvad-hq/profile-fetcher/internal/domain"
)

// Config holds the application configuration loaded from files, environment variables and flags.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ProxyHost string `mapstructure:"proxy_host"`
	ProxyPort int    `mapstructure:"proxy_port"`

	// EndpointURL may embed a credential token; log domain.EndpointHost of it instead.
	EndpointURL           string        `mapstructure:"endpoint_url" json:"-"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	UserAgent             string        `mapstructure:"user_agent"`

	SinksFile string `mapstructure:"sinks_file"`
}

// Proxy returns the configured forward proxy endpoint. It is validated by the HTTP client.
func (c *Config) Proxy() domain.ProxyEndpoint {
	return domain.ProxyEndpoint{Host: c.ProxyHost, Port: c.ProxyPort}
}

// Load reads configuration from .env, environment variables and command-line args (flags win).
func Load(args []string) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "profile-fetcher")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("proxy_host", "127.0.0.1")
	v.SetDefault("proxy_port", 8888)
	v.SetDefault("endpoint_url", "")
	v.SetDefault("request_timeout_seconds", int64(15))
	v.SetDefault("user_agent", "")
	v.SetDefault("sinks_file", "")

	v.AutomaticEnv()

	fs := pflag.NewFlagSet("profilefetch", pflag.ContinueOnError)
	fs.String("proxy_host", v.GetString("proxy_host"), "forward proxy host")
	fs.Int("proxy_port", v.GetInt("proxy_port"), "forward proxy port")
	fs.String("endpoint_url", v.GetString("endpoint_url"), "user info endpoint url")
	fs.Int64("request_timeout_seconds", v.GetInt64("request_timeout_seconds"), "request timeout in seconds")
	fs.String("user_agent", v.GetString("user_agent"), "User-Agent header sent with the request")
	fs.String("sinks_file", v.GetString("sinks_file"), "YAML/JSON file declaring publish sinks")
	fs.String("log_level", v.GetString("log_level"), "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := bindChangedFlags(v, fs); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ProxyHost = strings.TrimSpace(cfg.ProxyHost)
	cfg.EndpointURL = strings.TrimSpace(cfg.EndpointURL)
	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	cfg.SinksFile = strings.TrimSpace(cfg.SinksFile)

	if cfg.EndpointURL == "" {
		return nil, errors.New("endpoint_url is required")
	}
	if _, err := url.ParseRequestURI(cfg.EndpointURL); err != nil {
		return nil, errors.New("invalid endpoint_url (must be an absolute url)")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	return &cfg, nil
}

// bindChangedFlags binds only flags set on the command line so unset flags do
// not shadow environment values.
func bindChangedFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}
