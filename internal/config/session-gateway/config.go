package session_gateway_config

import (
	"time"

	"github.com/NordCoder/session-gateway/internal/obs"
	pg "github.com/NordCoder/session-gateway/internal/repository/postgres"
)

const EnvProduction = "production"

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

func (a App) IsProduction() bool { return a.Env == EnvProduction }

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Kafka struct {
	Enable  bool     `mapstructure:"enable"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Auth holds the signing material and session lifetimes. Both secrets are
// read once at startup and never change afterwards.
type Auth struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
	Leeway        time.Duration `mapstructure:"leeway"`
	Issuer        string        `mapstructure:"issuer"`
	HashCost      int           `mapstructure:"hash_cost"`
	HashWorkers   int           `mapstructure:"hash_workers"`
	Revocation    bool          `mapstructure:"revocation"`
	CookiePath    string        `mapstructure:"cookie_path"`
	CookieDomain  string        `mapstructure:"cookie_domain"`
}

type Config struct {
	App    App       `mapstructure:"app"`
	Server Server    `mapstructure:"server"`
	DB     pg.Config `mapstructure:"db"`
	Redis  Redis     `mapstructure:"redis"`
	Kafka  Kafka     `mapstructure:"kafka"`
	OTEL   OTEL      `mapstructure:"otel"`
	Log    Log       `mapstructure:"log"`
	Auth   Auth      `mapstructure:"auth"`
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }

const (
	ErrNoDatabase       ErrConfig = "db.url is required"
	ErrNoAccessSecret   ErrConfig = "auth.access_secret is required"
	ErrNoRefreshSecret  ErrConfig = "auth.refresh_secret is required"
	ErrSharedSecret     ErrConfig = "auth.access_secret and auth.refresh_secret must differ"
	ErrTTLOrder         ErrConfig = "auth.access_ttl must be positive and shorter than auth.refresh_ttl"
	ErrHashCost         ErrConfig = "auth.hash_cost must be between 4 and 31"
	ErrNoRedis          ErrConfig = "redis.addr is required when auth.revocation is enabled"
	ErrNoKafkaBrokers   ErrConfig = "kafka.brokers is required when kafka.enable is set"
	ErrNegativeLeeway   ErrConfig = "auth.leeway must not be negative"
	ErrNegativeHashPool ErrConfig = "auth.hash_workers must not be negative"
)

// Validate rejects configurations the process must not start with.
func (c *Config) Validate() error {
	switch {
	case c.DB.URL == "":
		return ErrNoDatabase
	case c.Auth.AccessSecret == "":
		return ErrNoAccessSecret
	case c.Auth.RefreshSecret == "":
		return ErrNoRefreshSecret
	case c.Auth.AccessSecret == c.Auth.RefreshSecret:
		return ErrSharedSecret
	case c.Auth.AccessTTL <= 0 || c.Auth.AccessTTL >= c.Auth.RefreshTTL:
		return ErrTTLOrder
	case c.Auth.HashCost < 4 || c.Auth.HashCost > 31:
		return ErrHashCost
	case c.Auth.Leeway < 0:
		return ErrNegativeLeeway
	case c.Auth.HashWorkers < 0:
		return ErrNegativeHashPool
	case c.Auth.Revocation && c.Redis.Addr == "":
		return ErrNoRedis
	case c.Kafka.Enable && len(c.Kafka.Brokers) == 0:
		return ErrNoKafkaBrokers
	}
	return nil
}
