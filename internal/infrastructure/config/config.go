package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/feedlot/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Lock      LockConfig
	Scheduler SchedulerConfig
	Storage   StorageConfig
	Engine    EngineConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level     string        // debug, info, warn, error
	Format    string        // json, console
	Output    string        // stdout, stderr, or file path
	SQLLevel  string        // silent, error, warn, info; empty follows Level
	SlowQuery time.Duration // statements slower than this are logged at warn
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file, ":memory:" for tests
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// LockConfig selects the mutual exclusion backend for pens and statements
type LockConfig struct {
	Backend string // memory, redis
	TTL     time.Duration
	Retry   time.Duration
}

// SchedulerConfig holds the nightly reconciliation batch settings
type SchedulerConfig struct {
	Enabled          bool
	ReconcileCron    string
	BatchTimeout     time.Duration
	BatchConcurrency int
	BankAccountRef   string // empty: every bank account
}

// StorageConfig selects where aggregates live
type StorageConfig struct {
	Backend string // memory, database
}

// EngineConfig holds the allocation, matching and income statement tunables
type EngineConfig struct {
	RoundingPlaces int32
	Epsilon        float64
	Match          MatchConfig
	DRE            DREConfig
}

// MatchConfig holds the reconciliation thresholds
type MatchConfig struct {
	MinScore        int
	AutoAcceptScore int
}

// DREConfig holds the income statement policy
type DREConfig struct {
	OverheadRate           float64
	AdministrativeShare    float64
	SalesShare             float64
	FinancialShare         float64
	OtherShare             float64
	IncomeTaxRate          float64
	SocialContributionRate float64
	CarcassYieldPercent    float64
	KgPerArroba            float64
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with FEEDLOT_ prefix (e.g., FEEDLOT_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("FEEDLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:     v.GetString("log.level"),
			Format:    v.GetString("log.format"),
			Output:    v.GetString("log.output"),
			SQLLevel:  v.GetString("log.sql_level"),
			SlowQuery: v.GetDuration("log.slow_query"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Lock: LockConfig{
			Backend: v.GetString("lock.backend"),
			TTL:     v.GetDuration("lock.ttl"),
			Retry:   v.GetDuration("lock.retry"),
		},
		Scheduler: SchedulerConfig{
			Enabled:          v.GetBool("scheduler.enabled"),
			ReconcileCron:    v.GetString("scheduler.reconcile_cron"),
			BatchTimeout:     v.GetDuration("scheduler.batch_timeout"),
			BatchConcurrency: v.GetInt("scheduler.batch_concurrency"),
			BankAccountRef:   v.GetString("scheduler.bank_account_ref"),
		},
		Storage: StorageConfig{
			Backend: v.GetString("storage.backend"),
		},
		Engine: EngineConfig{
			RoundingPlaces: v.GetInt32("engine.rounding_places"),
			Epsilon:        v.GetFloat64("engine.epsilon"),
			Match: MatchConfig{
				MinScore:        v.GetInt("engine.match.min_score"),
				AutoAcceptScore: v.GetInt("engine.match.auto_accept_score"),
			},
			DRE: DREConfig{
				OverheadRate:           v.GetFloat64("engine.dre.overhead_rate"),
				AdministrativeShare:    v.GetFloat64("engine.dre.administrative_share"),
				SalesShare:             v.GetFloat64("engine.dre.sales_share"),
				FinancialShare:         v.GetFloat64("engine.dre.financial_share"),
				OtherShare:             v.GetFloat64("engine.dre.other_share"),
				IncomeTaxRate:          v.GetFloat64("engine.dre.income_tax_rate"),
				SocialContributionRate: v.GetFloat64("engine.dre.social_contribution_rate"),
				CarcassYieldPercent:    v.GetFloat64("engine.dre.carcass_yield_percent"),
				KgPerArroba:            v.GetFloat64("engine.dre.kg_per_arroba"),
			},
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "feedlot-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "feedlot"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "feedlot.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Log.SQLLevel == "" {
		cfg.Log.SQLLevel = cfg.Log.Level
	}
	if cfg.Log.SlowQuery == 0 {
		cfg.Log.SlowQuery = 200 * time.Millisecond
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	// Empty CORS origins means no cross-origin requests until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Lock.Backend == "" {
		cfg.Lock.Backend = "memory"
	}
	if cfg.Lock.TTL == 0 {
		cfg.Lock.TTL = 30 * time.Second
	}
	if cfg.Lock.Retry == 0 {
		cfg.Lock.Retry = 50 * time.Millisecond
	}
	if cfg.Scheduler.ReconcileCron == "" {
		cfg.Scheduler.ReconcileCron = "0 2 * * *"
	}
	if cfg.Scheduler.BatchTimeout == 0 {
		cfg.Scheduler.BatchTimeout = 30 * time.Minute
	}
	if cfg.Scheduler.BatchConcurrency == 0 {
		cfg.Scheduler.BatchConcurrency = 4
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Engine.RoundingPlaces == 0 {
		cfg.Engine.RoundingPlaces = 2
	}
	if cfg.Engine.Epsilon == 0 {
		cfg.Engine.Epsilon = 0.01
	}
	if cfg.Engine.Match.MinScore == 0 {
		cfg.Engine.Match.MinScore = 30
	}
	if cfg.Engine.Match.AutoAcceptScore == 0 {
		cfg.Engine.Match.AutoAcceptScore = 80
	}
	dre := &cfg.Engine.DRE
	if dre.OverheadRate == 0 {
		dre.OverheadRate = 0.05
	}
	if dre.AdministrativeShare == 0 && dre.SalesShare == 0 && dre.FinancialShare == 0 && dre.OtherShare == 0 {
		dre.AdministrativeShare = 0.4
		dre.SalesShare = 0.2
		dre.FinancialShare = 0.2
		dre.OtherShare = 0.2
	}
	if dre.IncomeTaxRate == 0 {
		dre.IncomeTaxRate = 0.15
	}
	if dre.SocialContributionRate == 0 {
		dre.SocialContributionRate = 0.09
	}
	if dre.CarcassYieldPercent == 0 {
		dre.CarcassYieldPercent = 50
	}
	if dre.KgPerArroba == 0 {
		dre.KgPerArroba = 15
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	switch c.Lock.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("lock.backend must be memory or redis, got %q", c.Lock.Backend)
	}
	switch c.Storage.Backend {
	case "memory", "database":
	default:
		return fmt.Errorf("storage.backend must be memory or database, got %q", c.Storage.Backend)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Scheduler.BatchConcurrency < 1 {
		return fmt.Errorf("scheduler.batch_concurrency must be positive")
	}

	if c.Engine.RoundingPlaces < 0 {
		return fmt.Errorf("engine.rounding_places cannot be negative")
	}
	if c.Engine.Match.MinScore < 0 || c.Engine.Match.AutoAcceptScore > 100 {
		return fmt.Errorf("engine.match scores must be within 0..100")
	}
	if c.Engine.Match.MinScore > c.Engine.Match.AutoAcceptScore {
		return fmt.Errorf("engine.match.min_score (%d) cannot exceed engine.match.auto_accept_score (%d)",
			c.Engine.Match.MinScore, c.Engine.Match.AutoAcceptScore)
	}
	if err := c.Engine.ReportPolicy().Validate(); err != nil {
		return fmt.Errorf("engine.dre: %w", err)
	}

	if c.App.Env == "production" {
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.Driver == "postgres" && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Storage.Backend == "memory" {
			return fmt.Errorf("storage.backend cannot be 'memory' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// ReportPolicy converts the DRE settings into the generator policy
func (e EngineConfig) ReportPolicy() report.Policy {
	d := e.DRE
	return report.Policy{
		Opex: report.OpexPolicy{
			OverheadRate:        decimal.NewFromFloat(d.OverheadRate),
			AdministrativeShare: decimal.NewFromFloat(d.AdministrativeShare),
			SalesShare:          decimal.NewFromFloat(d.SalesShare),
			FinancialShare:      decimal.NewFromFloat(d.FinancialShare),
			OtherShare:          decimal.NewFromFloat(d.OtherShare),
		},
		Tax: report.TaxPolicy{
			IncomeTaxRate:          decimal.NewFromFloat(d.IncomeTaxRate),
			SocialContributionRate: decimal.NewFromFloat(d.SocialContributionRate),
		},
		CarcassYieldPercent: decimal.NewFromFloat(d.CarcassYieldPercent),
		KgPerArroba:         decimal.NewFromFloat(d.KgPerArroba),
		RoundingPlaces:      e.RoundingPlaces,
	}
}

// EpsilonDecimal returns the amount tolerance as a decimal
func (e EngineConfig) EpsilonDecimal() decimal.Decimal {
	return decimal.NewFromFloat(e.Epsilon)
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
