package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/bank-server/internal/domain"
	"github.com/carson-networks/bank-server/internal/limits"
)

const (
	EnvPrefix = "BANK_"

	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Postgres PostgresConfig `koanf:"postgres"`
	Store    string         `koanf:"store"`
	Operator OperatorConfig `koanf:"operator"`
	Limits   LimitsConfig   `koanf:"limits"`
	Amounts  AmountsConfig  `koanf:"amounts"`
	Clock    ClockConfig    `koanf:"clock"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type PostgresConfig struct {
	Address  string `koanf:"address"`
	Port     string `koanf:"port"`
	DB       string `koanf:"db"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	SSLMode  string `koanf:"ssl_mode"`
}

// DSN returns the lib/pq connection URL.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.Username, p.Password),
		Host:     p.Address + ":" + p.Port,
		Path:     "/" + p.DB,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

type OperatorConfig struct {
	Workers int `koanf:"workers"`
}

// LimitsConfig holds the ceilings given to counters on creation.
type LimitsConfig struct {
	DailyWithdrawal   string `koanf:"daily_withdrawal"`
	MonthlyWithdrawal string `koanf:"monthly_withdrawal"`
	DailyTransfer     string `koanf:"daily_transfer"`
	MonthlyTransfer   string `koanf:"monthly_transfer"`
}

func (l LimitsConfig) Ceilings() (limits.Ceilings, error) {
	var c limits.Ceilings
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"limits.daily_withdrawal", l.DailyWithdrawal, &c.DailyWithdrawal},
		{"limits.monthly_withdrawal", l.MonthlyWithdrawal, &c.MonthlyWithdrawal},
		{"limits.daily_transfer", l.DailyTransfer, &c.DailyTransfer},
		{"limits.monthly_transfer", l.MonthlyTransfer, &c.MonthlyTransfer},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return limits.Ceilings{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	if err := c.Validate(); err != nil {
		return limits.Ceilings{}, fmt.Errorf("limits: %w", err)
	}
	return c, nil
}

// AmountsConfig bounds every single money movement.
type AmountsConfig struct {
	Min string `koanf:"min"`
	Max string `koanf:"max"`
}

func (a AmountsConfig) Range() (decimal.Decimal, decimal.Decimal, error) {
	lo, err := decimal.NewFromString(a.Min)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amounts.min: %w", err)
	}
	hi, err := decimal.NewFromString(a.Max)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amounts.max: %w", err)
	}
	if domain.CheckMoney(lo) != nil || domain.CheckMoney(hi) != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amounts: min and max need at most two decimal places, got %s and %s", a.Min, a.Max)
	}
	if !lo.IsPositive() || hi.LessThan(lo) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amounts: need 0 < min <= max, got %s and %s", lo, hi)
	}
	return lo, hi, nil
}

type ClockConfig struct {
	Timezone string `koanf:"timezone"`
}

// Location resolves the timezone that limit windows follow.
func (c ClockConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

type AuthConfig struct {
	Secret string `koanf:"secret"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// In all cases the default behavior should be for the docker compose setup.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.port":               "9446",
		"server.read_timeout":       "10s",
		"server.write_timeout":      "10s",
		"server.shutdown_timeout":   "15s",
		"postgres.address":          "localhost",
		"postgres.port":             "5433",
		"postgres.db":               "postgres",
		"postgres.username":         "postgres",
		"postgres.password":         "testpassword",
		"postgres.ssl_mode":         "disable",
		"store":                     StorePostgres,
		"operator.workers":          4,
		"limits.daily_withdrawal":   "50000",
		"limits.monthly_withdrawal": "500000",
		"limits.daily_transfer":     "100000",
		"limits.monthly_transfer":   "1000000",
		"amounts.min":               "1",
		"amounts.max":               "1000000",
		"clock.timezone":            "Local",
		"auth.secret":               "",
		"log.level":                 "info",
	}
}

// Load layers defaults, the optional YAML file at path, and BANK_*
// environment variables, in that order. BANK_LIMITS_DAILY_WITHDRAWAL sets
// limits.daily_withdrawal: only the first underscore separates the section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func (c *Config) Validate() error {
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("store: must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.Operator.Workers < 1 {
		return fmt.Errorf("operator.workers: must be at least 1, got %d", c.Operator.Workers)
	}
	if _, err := c.Limits.Ceilings(); err != nil {
		return err
	}
	if _, _, err := c.Amounts.Range(); err != nil {
		return err
	}
	if _, err := c.Clock.Location(); err != nil {
		return fmt.Errorf("clock.timezone: %w", err)
	}
	return nil
}
