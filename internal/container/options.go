package container

import (
	"errors"
	"fmt"
	"time"

	"github.com/serroba/link-shortener/internal/ratelimit"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMySQL    = "mysql"

	AlgorithmFixedWindow = "fixed-window"
	AlgorithmTokenBucket = "token-bucket"
)

var errInvalidOptions = errors.New("invalid options")

// Options is the server configuration. Every field is also settable through SERVICE_<FLAG>.
type Options struct {
	Port                   int    `default:"8888"           help:"Port to listen on"                                          short:"p"`
	BaseURL                string `default:""               help:"Public base URL of short links (default http://localhost:<port>)"`
	Storage                string `default:"memory"         help:"Link storage: memory, postgres or mysql"                    short:"s"`
	DatabaseURL            string `default:""               help:"Connection string for postgres or mysql storage"`
	RedisAddr              string `default:"localhost:6379" help:"Redis server address"                                       short:"r"`
	CacheTTL               int    `default:"0"              help:"Seconds links stay cached in Redis, 0 disables the cache"`
	Events                 bool   `default:"false"          help:"Publish link events to Redis streams for the consumer"`
	MaxIDLength            int    `default:"255"            help:"Maximum length of a custom link ID"`
	MaxAutoIDLength        int    `default:"12"             help:"Length of generated link IDs"`
	BcryptCost             int    `default:"10"             help:"bcrypt cost for control keys"`
	MaxRequests            int    `default:"100"            help:"Requests allowed per client and window"`
	RateLimitWindow        int    `default:"60"             help:"Rate limit window in seconds"`
	RateLimitAlgorithm     string `default:"fixed-window"   help:"Rate limit algorithm: fixed-window or token-bucket"`
	RateLimitRetention     int    `default:"2"              help:"Windows an idle client is remembered"`
	RateLimitSweepInterval int    `default:"60"             help:"Seconds between sweeps of idle clients, 0 disables"`
	TrustProxyHeaders      bool   `default:"false"          help:"Identify clients by X-Forwarded-For and X-Real-IP"`
	LogFormat              string `default:"console"        help:"Log format: console or json"`
	LogLevel               string `default:"info"           help:"Log level"`
}

// DefaultOptions returns the options a flagless server starts with.
func DefaultOptions() *Options {
	return &Options{
		Port:                   8888,
		Storage:                StorageMemory,
		RedisAddr:              "localhost:6379",
		MaxIDLength:            255,
		MaxAutoIDLength:        12,
		BcryptCost:             10,
		MaxRequests:            100,
		RateLimitWindow:        60,
		RateLimitAlgorithm:     AlgorithmFixedWindow,
		RateLimitRetention:     2,
		RateLimitSweepInterval: 60,
		LogFormat:              "console",
		LogLevel:               "info",
	}
}

// RateLimitConfig returns the per-client request budget.
func (o *Options) RateLimitConfig() ratelimit.Config {
	return ratelimit.Config{
		MaxRequests:   int64(o.MaxRequests),
		WindowSeconds: int64(o.RateLimitWindow),
	}
}

// PublicBaseURL returns the base of generated short links.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// CacheDuration returns how long links stay cached, zero when caching is off.
func (o *Options) CacheDuration() time.Duration {
	return time.Duration(o.CacheTTL) * time.Second
}

// Validate checks the options that are not validated by the components themselves.
func (o *Options) Validate() error {
	switch o.Storage {
	case StorageMemory:
	case StoragePostgres, StorageMySQL:
		if o.DatabaseURL == "" {
			return fmt.Errorf("%w: %s storage needs a database url", errInvalidOptions, o.Storage)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", errInvalidOptions, o.Storage)
	}

	switch o.RateLimitAlgorithm {
	case AlgorithmFixedWindow, AlgorithmTokenBucket:
	default:
		return fmt.Errorf("%w: unknown rate limit algorithm %q", errInvalidOptions, o.RateLimitAlgorithm)
	}

	if o.CacheTTL < 0 {
		return fmt.Errorf("%w: cache ttl must not be negative", errInvalidOptions)
	}

	return o.RateLimitConfig().Validate()
}
