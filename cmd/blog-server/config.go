package main

import (
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-blog-auth"
)

const (
	RefreshStoreSQL   = "sql"
	RefreshStoreRedis = "redis"
)

type Config struct {
	Debug       bool   `env:"DEBUG"`
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	Auth     AuthConfig
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	CORS     CORSConfig     `envPrefix:"CORS_"`

	// AdminUsernames are granted the admin role when they sign up
	AdminUsernames []string `env:"ADMIN_USERNAMES" envSeparator:","`

	RefreshStore     string        `env:"REFRESH_STORE"    envDefault:"sql"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MetricsNamespace string        `env:"METRICS_NAMESPACE" envDefault:"blog"`
}

// AuthConfig implements auth.Config
type AuthConfig struct {
	SigningKey             string        `env:"SIGNING_KEY,required"`
	SigningKeyID           string        `env:"SIGNING_KEY_ID"           envDefault:"primary"`
	TokenExpiration        time.Duration `env:"TOKEN_EXPIRATION"         envDefault:"1h"`
	RefreshTokenExpiration time.Duration `env:"REFRESH_TOKEN_EXPIRATION" envDefault:"720h"`
	Issuer                 string        `env:"ISSUER"                   envDefault:"blog"`
	ContextKey             string        `env:"CONTEXT_KEY"              envDefault:"user"`
	AuthScheme             string        `env:"AUTH_SCHEME"              envDefault:"Bearer"`
}

var _ auth.Config = AuthConfig{}

func (c AuthConfig) GetSigningKey() string                    { return c.SigningKey }
func (c AuthConfig) GetSigningKeyID() string                  { return c.SigningKeyID }
func (c AuthConfig) GetTokenExpiration() time.Duration        { return c.TokenExpiration }
func (c AuthConfig) GetRefreshTokenExpiration() time.Duration { return c.RefreshTokenExpiration }
func (c AuthConfig) GetIssuer() string                        { return c.Issuer }
func (c AuthConfig) GetContextKey() string                    { return c.ContextKey }
func (c AuthConfig) GetAuthScheme() string                    { return c.AuthScheme }

type DatabaseConfig struct {
	Dialect string `env:"DIALECT" envDefault:"sqlite"`
	DSN     string `env:"DSN"     envDefault:"file:blog.db?cache=shared"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"       envDefault:"0"`
	Prefix   string `env:"PREFIX"   envDefault:"blog:refresh"`
}

type CORSConfig struct {
	AllowOrigins     []string `env:"ALLOW_ORIGINS"     envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	AllowMethods     []string `env:"ALLOW_METHODS"     envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowHeaders     []string `env:"ALLOW_HEADERS"     envSeparator:"," envDefault:"Authorization,Content-Type"`
	AllowCredentials bool     `env:"ALLOW_CREDENTIALS" envDefault:"true"`
}

// LoadConfig reads BLOG_ prefixed environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "BLOG_"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.RefreshStore, validation.In(RefreshStoreSQL, RefreshStoreRedis)),
		validation.Field(&c.Auth),
		validation.Field(&c.Database),
		validation.Field(&c.CORS),
	)
}

func (c AuthConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.TokenExpiration, validation.Required),
		validation.Field(&c.RefreshTokenExpiration, validation.Required),
	)
}

func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dialect, validation.In(auth.DialectSQLite, auth.DialectPostgres)),
		validation.Field(&c.DSN, validation.Required),
	)
}

func (c CORSConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AllowOrigins, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.AllowMethods, validation.Required),
	)
}
