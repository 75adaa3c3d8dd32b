package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	WritePolicyOptimistic  = "optimistic"
	WritePolicyAfterCommit = "after-commit"
)

type Postgres struct {
	Host     string `env:"PG_HOST"`
	Port     string `env:"PG_PORT" envDefault:"5432"`
	DB       string `env:"PG_DB"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	SSLMode  string `env:"PG_SSLMODE" envDefault:"disable"`
	Table    string `env:"DATABASE_TABLE" envDefault:"orders"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"1"`
}

type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"orders"`
	Group   string   `env:"KAFKA_GROUP" envDefault:"order-lookup"`
	// Workers is the number of partition lanes in the consumer.
	Workers int `env:"KAFKA_WORKERS" envDefault:"4"`
	// Partitions is used only when the topic has to be created.
	Partitions int `env:"KAFKA_PARTITIONS" envDefault:"4"`
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

type Breaker struct {
	Threshold   uint32        `env:"BREAKER_THRESHOLD" envDefault:"5"`
	OpenTimeout time.Duration `env:"BREAKER_OPENTIMEOUT" envDefault:"10s"`
	MaxHalfOpen uint32        `env:"BREAKER_MAXHALFOPEN" envDefault:"3"`
}

type Retry struct {
	Attempts     int           `env:"RETRY_ATTEMPTS" envDefault:"5"`
	Base         time.Duration `env:"RETRY_BASE" envDefault:"100ms"`
	Max          time.Duration `env:"RETRY_MAX" envDefault:"5s"`
	JitterFactor float64       `env:"RETRY_JITTERFACTOR" envDefault:"0.3"`
}

type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8081"`
	CacheCap       int           `env:"CACHE_CAP" envDefault:"1000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"3s"`
	WritePolicy    string        `env:"CACHE_WRITE_POLICY" envDefault:"optimistic"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	OtelEndpoint   string        `env:"OTEL_ENDPOINT"`

	Pg      Postgres
	Kafka   Kafka
	Breaker Breaker
	Retry   Retry
}

// Load reads env/.env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load("env/.env")

	var cfg Config
	opts := env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): parseDuration,
		},
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.trim()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

// LoadKafka reads only the Kafka settings, for tools that do not talk to
// Postgres.
func LoadKafka() (Kafka, error) {
	_ = godotenv.Load("env/.env")

	var k Kafka
	if err := env.Parse(&k); err != nil {
		return Kafka{}, fmt.Errorf("parse env: %w", err)
	}
	k.Brokers = splitCSV(strings.Join(k.Brokers, ","))
	k.Topic = strings.TrimSpace(k.Topic)
	if k.Enabled() && k.Topic == "" {
		return Kafka{}, &missingEnvError{Keys: []string{"KAFKA_TOPIC"}}
	}
	return k, nil
}

func (c *Config) trim() {
	c.Pg.Host = strings.TrimSpace(c.Pg.Host)
	c.Pg.DB = strings.TrimSpace(c.Pg.DB)
	c.Pg.User = strings.TrimSpace(c.Pg.User)
	c.Pg.Table = strings.TrimSpace(c.Pg.Table)
	c.WritePolicy = strings.ToLower(strings.TrimSpace(c.WritePolicy))
	c.Kafka.Brokers = splitCSV(strings.Join(c.Kafka.Brokers, ","))
}

func (c Config) Validate() error {
	var missing []string
	req := map[string]string{
		"PG_HOST":        c.Pg.Host,
		"PG_DB":          c.Pg.DB,
		"PG_USER":        c.Pg.User,
		"PG_PASSWORD":    c.Pg.Password,
		"DATABASE_TABLE": c.Pg.Table,
	}
	if c.Kafka.Enabled() {
		req["KAFKA_TOPIC"] = c.Kafka.Topic
		req["KAFKA_GROUP"] = c.Kafka.Group
	}
	for k, v := range req {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &missingEnvError{Keys: missing}
	}

	if c.CacheCap <= 0 {
		return &invalidEnvError{Key: "CACHE_CAP", Reason: "must be positive"}
	}
	if c.RequestTimeout <= 0 {
		return &invalidEnvError{Key: "REQUEST_TIMEOUT", Reason: "must be positive"}
	}
	if c.Pg.MaxConns <= 0 {
		return &invalidEnvError{Key: "DB_MAX_CONNS", Reason: "must be positive"}
	}
	switch c.WritePolicy {
	case WritePolicyOptimistic, WritePolicyAfterCommit:
	default:
		return &invalidEnvError{Key: "CACHE_WRITE_POLICY", Reason: "must be optimistic or after-commit"}
	}
	return nil
}

func (c *Config) normalize() {
	if c.Kafka.Workers < 1 {
		log.Printf("KAFKA_WORKERS is %d, adjusting to 1", c.Kafka.Workers)
		c.Kafka.Workers = 1
	}
	if c.Kafka.Partitions < 1 {
		log.Printf("KAFKA_PARTITIONS is %d, adjusting to 1", c.Kafka.Partitions)
		c.Kafka.Partitions = 1
	}
	if c.Retry.Attempts < 1 {
		log.Printf("RETRY_ATTEMPTS is %d, adjusting to 1", c.Retry.Attempts)
		c.Retry.Attempts = 1
	}
	if c.Retry.Base <= 0 {
		log.Printf("RETRY_BASE is %v, adjusting to 100ms", c.Retry.Base)
		c.Retry.Base = 100 * time.Millisecond
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
		c.Retry.Max = c.Retry.Base
	}
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

type invalidEnvError struct {
	Key    string
	Reason string
}

func (e *invalidEnvError) Error() string {
	return "invalid " + e.Key + ": " + e.Reason
}

// DSN builds a proper Postgres URL, safely escaping user/pass and query.
func (c Config) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Pg.User, c.Pg.Password),
		Host:   net.JoinHostPort(c.Pg.Host, c.Pg.Port),
		Path:   "/" + c.Pg.DB,
	}
	q := url.Values{}
	if c.Pg.SSLMode != "" {
		q.Set("sslmode", c.Pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// parseDuration supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "2m").
func parseDuration(v string) (any, error) {
	v = strings.TrimSpace(v)
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		return time.ParseDuration(v)
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
