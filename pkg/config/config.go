package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	Metrics       MetricsConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.PubSub.validate(cfg.GCP); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BUZDEALZ_APP_ENV" required:"true"`
	Port         string `envconfig:"BUZDEALZ_APP_PORT" default:"3001"`
	LogLevel     string `envconfig:"BUZDEALZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BUZDEALZ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BUZDEALZ_DB_DSN"`
	Driver string `envconfig:"BUZDEALZ_DB_DRIVER" default:"postgres"`
	// Path is the SQLite database file used when Driver is sqlite.
	Path string `envconfig:"BUZDEALZ_DB_PATH" default:"./data/buzdealz.db"`

	LegacyHost     string `envconfig:"BUZDEALZ_DB_HOST"`
	LegacyPort     int    `envconfig:"BUZDEALZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BUZDEALZ_DB_USER"`
	LegacyPassword string `envconfig:"BUZDEALZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"BUZDEALZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"BUZDEALZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BUZDEALZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BUZDEALZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BUZDEALZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BUZDEALZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the store runs on the embedded SQLite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// RedisConfig is optional; an empty URL and address disables rate limiting.
type RedisConfig struct {
	URL          string        `envconfig:"BUZDEALZ_REDIS_URL"`
	Address      string        `envconfig:"BUZDEALZ_REDIS_ADDR"`
	Password     string        `envconfig:"BUZDEALZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"BUZDEALZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BUZDEALZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BUZDEALZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BUZDEALZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BUZDEALZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BUZDEALZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"BUZDEALZ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BUZDEALZ_JWT_ISSUER" default:"buzdealz"`
	ExpirationMinutes int    `envconfig:"BUZDEALZ_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BUZDEALZ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BUZDEALZ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BUZDEALZ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BUZDEALZ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BUZDEALZ_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BUZDEALZ_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"BUZDEALZ_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BUZDEALZ_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BUZDEALZ_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BUZDEALZ_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BUZDEALZ_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BUZDEALZ_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"BUZDEALZ_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"BUZDEALZ_METRICS_PATH" default:"/metrics"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BUZDEALZ_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"BUZDEALZ_GCP_PROJECT_ID"`
}

// PubSubConfig configures the optional analytics fan-out topic.
type PubSubConfig struct {
	AnalyticsTopic string `envconfig:"BUZDEALZ_PUBSUB_ANALYTICS_TOPIC"`
}

// Enabled reports whether analytics events should also be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.AnalyticsTopic) != ""
}

func (p PubSubConfig) validate(gcp GCPConfig) error {
	if p.Enabled() && strings.TrimSpace(gcp.ProjectID) == "" {
		return fmt.Errorf("%s is required when %s is set", EnvGCPProjectID, EnvPubSubAnalyticsTopic)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() {
		if strings.TrimSpace(db.DSN) == "" {
			db.DSN = db.Path
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
