package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server      ServerConfig      `env:",prefix=SERVER_"`
	Postgres    PostgresConfig    `env:",prefix=POSTGRES_"`
	Redis       RedisConfig       `env:",prefix=REDIS_"`
	JWT         JWTConfig         `env:",prefix=JWT_"`
	Security    SecurityConfig    `env:",prefix="`
	Maintenance MaintenanceConfig `env:",prefix=MAINTENANCE_"`
	CORS        CORSConfig        `env:",prefix=CORS_"`
	Env         string            `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host           string `env:"HOST,default=localhost"`
	Port           string `env:"PORT,default=5432"`
	User           string `env:"USER,default=lingualearn"`
	Password       string `env:"PASSWORD,default=lingualearn_password"`
	DBName         string `env:"DB,default=lingualearn_auth"`
	SSLMode        string `env:"SSLMODE,default=disable"`
	MigrationsPath string `env:"MIGRATIONS_PATH,default=migrations"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// JWTConfig carries the two signing secrets. Access and refresh tokens are
// signed with distinct secrets so a leaked access token cannot be replayed
// against the refresh endpoint.
type JWTConfig struct {
	AccessSecret       string   `env:"ACCESS_SECRET,required"`
	RefreshSecret      string   `env:"REFRESH_SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
}

type SecurityConfig struct {
	BCryptCost            int      `env:"BCRYPT_COST,default=12"`
	LockoutMaxFailures    int      `env:"LOCKOUT_MAX_FAILURES,default=5"`
	LockoutWindow         Duration `env:"LOCKOUT_WINDOW,default=15m"`
	LoginAttemptRetention Duration `env:"LOGIN_ATTEMPT_RETENTION,default=24h"`
	RateLimitRequests     int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow       Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

// MaintenanceConfig controls the scheduled cleanup sweeps for expired or
// revoked refresh tokens and aged login attempts.
type MaintenanceConfig struct {
	Schedule string `env:"SCHEDULE,default=0 3 * * *"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the PostgreSQL connection URL used by the migration runner
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.JWT.AccessSecret) < 32 {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET must be at least 32 characters long")
	}
	if len(config.JWT.RefreshSecret) < 32 {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET must be at least 32 characters long")
	}
	if config.JWT.AccessSecret == config.JWT.RefreshSecret {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if config.Security.BCryptCost < 12 {
		return nil, fmt.Errorf("BCRYPT_COST must be at least 12")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
