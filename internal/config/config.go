package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"log"
	"os"
	"strings"
	"time"
)

const (
	envPrefix      = "STOREFRONT_"
	defaultEnvFile = ".env"
	configFile     = "config.yaml"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Storage  StorageConfig  `koanf:"storage"`
	Cart     CartConfig     `koanf:"cart"`
	Checkout CheckoutConfig `koanf:"checkout"`
	Log      LogConfig      `koanf:"log"`
	Shutdown ShutdownConfig `koanf:"shutdown"`
}

type HTTPConfig struct {
	Port    int `koanf:"port"`
	Timeout struct {
		Read  time.Duration `koanf:"read"`
		Write time.Duration `koanf:"write"`
		Idle  time.Duration `koanf:"idle"`
	} `koanf:"timeout"`
}

type CatalogConfig struct {
	// Source is a file path or an http(s) URL serving the product JSON array.
	Source  string        `koanf:"source"`
	Timeout time.Duration `koanf:"timeout"`
}

type StorageConfig struct {
	Driver string `koanf:"driver"`
	Dir    string `koanf:"dir"`
	URL    string `koanf:"url"`
	Key    string `koanf:"key"`
}

type CartConfig struct {
	Countdown int           `koanf:"countdown"`
	Tick      time.Duration `koanf:"tick"`
}

type CheckoutConfig struct {
	Phone      string        `koanf:"phone"`
	BaseURL    string        `koanf:"baseurl"`
	ClearDelay time.Duration `koanf:"cleardelay"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.HTTP.Port)
	}
	if c.HTTP.Timeout.Read <= 0 || c.HTTP.Timeout.Write <= 0 || c.HTTP.Timeout.Idle <= 0 {
		return fmt.Errorf("HTTP server timeouts must be greater than zero")
	}
	if c.Catalog.Source == "" {
		return fmt.Errorf("catalog source is not configured")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog timeout must be greater than zero")
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Cart.Countdown <= 0 {
		return fmt.Errorf("cart countdown must be greater than zero")
	}
	if c.Cart.Tick <= 0 {
		return fmt.Errorf("cart tick must be greater than zero")
	}
	if c.Checkout.Phone == "" {
		return fmt.Errorf("checkout phone is not configured")
	}
	if c.Checkout.ClearDelay <= 0 {
		return fmt.Errorf("checkout clear delay must be greater than zero")
	}
	if c.Shutdown.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout is not configured")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("storage key is not configured")
	}

	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverFile:
		if c.Dir == "" {
			return fmt.Errorf("storage dir is not configured")
		}
		return nil
	case DriverPostgres:
		if !strings.HasPrefix(c.URL, "postgres://") && !strings.HasPrefix(c.URL, "postgresql://") {
			return fmt.Errorf("storage URL must start with 'postgres://': %s", maskURL(c.URL))
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Driver)
	}
}

func (c Config) String() string {
	return fmt.Sprintf("http.port=%d, catalog.source=%s, storage.driver=%s, storage.url=%s, storage.key=%s, cart.countdown=%d, cart.tick=%v, checkout.cleardelay=%v, log.level=%s",
		c.HTTP.Port,
		c.Catalog.Source,
		c.Storage.Driver,
		maskURL(c.Storage.URL),
		c.Storage.Key,
		c.Cart.Countdown,
		c.Cart.Tick,
		c.Checkout.ClearDelay,
		c.Log.Level)
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}

func defaults() map[string]any {
	return map[string]any{
		"http.port":           8080,
		"http.timeout.read":   "5s",
		"http.timeout.write":  "10s",
		"http.timeout.idle":   "60s",
		"catalog.source":      "data.json",
		"catalog.timeout":     "10s",
		"storage.driver":      DriverFile,
		"storage.dir":         ".storefront",
		"storage.key":         "meuCarrinho",
		"cart.countdown":      5,
		"cart.tick":           "1s",
		"checkout.baseurl":    "https://api.whatsapp.com/send",
		"checkout.cleardelay": "5s",
		"log.level":           "info",
		"shutdown.timeout":    "10s",
	}
}

// Load reads the configuration from defaults, a yaml file, a .env file and environment variables,
// each layer overriding the previous one.
func Load() (*Config, error) {
	return load(configFile, defaultEnvFile)
}

func load(yamlFile, envFile string) (*Config, error) {
	var k = koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// 2. Load configuration from yaml file
	if err := k.Load(file.Provider(yamlFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config: %v", err)
		}
	}

	// 3. Load environment variables from .env file
	if envFileMap, err := godotenv.Read(envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if strings.HasPrefix(key, envPrefix) {
				envMap[envKey(key)] = value
			}
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 4. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envKey maps STOREFRONT_CHECKOUT_CLEARDELAY to checkout.cleardelay.
func envKey(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", ".")
}
