package config

import (
	"errors"
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	DSN       string          `yaml:"dsn" env:"DATABASE_URL" env-required:"true"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Hasher    HasherConfig    `yaml:"hasher"`
	Redis     RedisConf       `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

// AuthConfig carries the signing material and lifetimes of both token kinds.
type AuthConfig struct {
	AccessSecret  string        `yaml:"access_secret" env:"SECRET_KEY" env-required:"true"`
	RefreshSecret string        `yaml:"refresh_secret" env:"REFRESH_SECRET_KEY" env-required:"true"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	CookieSecure  bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`
}

// HasherConfig holds Argon2id cost parameters. Memory is in KiB.
type HasherConfig struct {
	Memory      uint32 `yaml:"memory" env-default:"19456"`
	Iterations  uint32 `yaml:"iterations" env-default:"2"`
	Parallelism uint8  `yaml:"parallelism" env-default:"1"`
	SaltLength  uint32 `yaml:"salt_length" env-default:"16"`
	KeyLength   uint32 `yaml:"key_length" env-default:"32"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

type RateLimitConfig struct {
	// Requests per second allowed per client IP on credential endpoints.
	Rate      float64       `yaml:"rate" env-default:"0.2"`
	Burst     int           `yaml:"burst" env-default:"5"`
	ExpiresIn time.Duration `yaml:"expires_in" env-default:"3m"`
}

var ErrSharedSecret = errors.New("access and refresh secrets must differ")

// Validate checks invariants cleanenv tags cannot express.
func (c *Config) Validate() error {
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return ErrSharedSecret
	}

	return nil
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		return MustLoadEnv()
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	return &cfg
}

// MustLoadEnv builds the config from environment variables only.
func MustLoadEnv() *Config {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from env: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
