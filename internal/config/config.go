package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	defaultConfigPath = "config/config.yaml"
	minSecretLength   = 32
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Admin    AdminConfig    `yaml:"admin"`
	Workers  WorkersConfig  `yaml:"workers"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Env             string        `yaml:"env"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // postgres, mysql, sqlite
	DSN             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	LogQueries      bool          `yaml:"log_queries"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

type AuthConfig struct {
	BcryptCost      int           `yaml:"bcrypt_cost"`
	VerificationTTL time.Duration `yaml:"verification_ttl"`
	ResetTTL        time.Duration `yaml:"reset_ttl"`
	CookieSecure    *bool         `yaml:"cookie_secure"`
	CookieDomain    string        `yaml:"cookie_domain"`
	// ExposeTokens returns single-use secrets in API responses. Refused in production.
	ExposeTokens    bool            `yaml:"expose_tokens"`
	PermissionsFile string          `yaml:"permissions_file"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxAttempts int           `yaml:"max_attempts"`
}

type EmailConfig struct {
	Enabled      bool   `yaml:"enabled"`
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	FromName     string `yaml:"from_name"`
	UseTLS       bool   `yaml:"use_tls"`
	BaseURL      string `yaml:"base_url"`
	// TemplatesDir holds *.html files that override the built-in templates by name.
	TemplatesDir string        `yaml:"templates_dir"`
	SendTimeout  time.Duration `yaml:"send_timeout"`
}

type AdminConfig struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

type WorkersConfig struct {
	TokenCleanupInterval time.Duration `yaml:"token_cleanup_interval"`
	// TokenRetention keeps expired single-use hashes around so callers still get "expired".
	TokenRetention time.Duration `yaml:"token_retention"`
}

// Default returns a configuration usable for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Env:             EnvDevelopment,
			ShutdownTimeout: 10 * time.Second,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000"},
		},
		Log: LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		JWT: JWTConfig{
			Issuer:     "edujobs",
			AccessTTL:  7 * 24 * time.Hour,
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Auth: AuthConfig{
			BcryptCost:      12,
			VerificationTTL: 24 * time.Hour,
			ResetTTL:        time.Hour,
			RateLimit: RateLimitConfig{
				Window:      15 * time.Minute,
				MaxAttempts: 10,
			},
		},
		Email: EmailConfig{
			SMTPPort: 587,
			UseTLS:   true,
			FromName: "EduJobs",
			BaseURL:     "http://localhost:3000",
			SendTimeout: 30 * time.Second,
		},
		Admin: AdminConfig{FirstName: "Admin", LastName: "User"},
		Workers: WorkersConfig{
			TokenCleanupInterval: time.Hour,
			TokenRetention:       7 * 24 * time.Hour,
		},
	}
}

// Load reads CONFIG_PATH (default config/config.yaml) over the defaults,
// then applies environment overrides and validates the result.
// A missing file is not an error.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("SERVER_ENV", &c.Server.Env)
	str("SERVER_HOST", &c.Server.Host)
	integer("SERVER_PORT", &c.Server.Port)
	duration("SERVER_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	str("LOG_LEVEL", &c.Log.Level)

	str("DATABASE_DRIVER", &c.Database.Driver)
	str("DATABASE_URL", &c.Database.DSN)

	str("JWT_SECRET", &c.JWT.Secret)
	duration("JWT_ACCESS_TTL", &c.JWT.AccessTTL)
	duration("JWT_REFRESH_TTL", &c.JWT.RefreshTTL)

	integer("BCRYPT_COST", &c.Auth.BcryptCost)
	boolean("AUTH_EXPOSE_TOKENS", &c.Auth.ExposeTokens)
	if v, ok := lookup("COOKIE_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("COOKIE_SECURE: %w", err))
		} else {
			c.Auth.CookieSecure = &b
		}
	}
	str("PERMISSIONS_FILE", &c.Auth.PermissionsFile)
	duration("RATE_LIMIT_WINDOW", &c.Auth.RateLimit.Window)
	integer("RATE_LIMIT_MAX", &c.Auth.RateLimit.MaxAttempts)

	boolean("SMTP_ENABLED", &c.Email.Enabled)
	str("SMTP_HOST", &c.Email.SMTPHost)
	integer("SMTP_PORT", &c.Email.SMTPPort)
	str("SMTP_USER", &c.Email.SMTPUsername)
	str("SMTP_PASSWORD", &c.Email.SMTPPassword)
	str("SMTP_FROM", &c.Email.FromEmail)
	str("EMAIL_TEMPLATES_DIR", &c.Email.TemplatesDir)
	str("APP_BASE_URL", &c.Email.BaseURL)

	str("ADMIN_EMAIL", &c.Admin.Email)
	str("ADMIN_PASSWORD", &c.Admin.Password)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Server.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("server.env: unknown environment %q", c.Server.Env))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: out of range: %d", c.Server.Port))
	}

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.url: required"))
	}

	if c.Server.Env != EnvDevelopment && len(c.JWT.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("jwt.secret: must be at least %d bytes", minSecretLength))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("jwt: token lifetimes must be positive"))
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		errs = append(errs, errors.New("jwt.refresh_ttl: must not be shorter than access_ttl"))
	}

	if c.IsProduction() && c.Auth.ExposeTokens {
		errs = append(errs, errors.New("auth.expose_tokens: not allowed in production"))
	}
	if c.Auth.VerificationTTL <= 0 || c.Auth.ResetTTL <= 0 {
		errs = append(errs, errors.New("auth: single-use token lifetimes must be positive"))
	}
	if c.Auth.RateLimit.Window <= 0 || c.Auth.RateLimit.MaxAttempts <= 0 {
		errs = append(errs, errors.New("auth.rate_limit: window and max_attempts must be positive"))
	}

	if c.Workers.TokenRetention < 0 {
		errs = append(errs, errors.New("workers.token_retention: must not be negative"))
	}

	if c.Email.Enabled && c.Email.SMTPHost == "" {
		errs = append(errs, errors.New("email.smtp_host: required when email is enabled"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool  { return c.Server.Env == EnvProduction }
func (c *Config) IsDevelopment() bool { return c.Server.Env == EnvDevelopment }

// SecureCookies is auth.cookie_secure when set, otherwise true only in production.
func (c *Config) SecureCookies() bool {
	if c.Auth.CookieSecure != nil {
		return *c.Auth.CookieSecure
	}
	return c.IsProduction()
}

// JWTSecret returns the signing secret. Development falls back to a fixed value.
func (c *Config) JWTSecret() string {
	if c.JWT.Secret == "" && c.IsDevelopment() {
		return "development-only-secret-change-me!"
	}
	return c.JWT.Secret
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
