package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMongo    = "mongo"
	DriverEmbedded = "embedded"
)

// Config holds all runtime settings for the blog service
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Embedded EmbeddedConfig `yaml:"embedded"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// StoreConfig selects and configures the post store
type StoreConfig struct {
	Driver           string        `yaml:"driver"` // "mongo" or "embedded"
	MongoURI         string        `yaml:"mongo_uri"`
	Database         string        `yaml:"database"`
	Collection       string        `yaml:"collection"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	OperationTimeout time.Duration `yaml:"operation_timeout"`
}

type EmbeddedConfig struct {
	DataFile        string        `yaml:"data_file"`
	TransactionSave bool          `yaml:"transaction_save"`
	SaveInterval    time.Duration `yaml:"save_interval"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a configuration with every field populated
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "3003",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Store: StoreConfig{
			Driver:           DriverMongo,
			Database:         "Blog",
			Collection:       "Blog",
			ConnectTimeout:   10 * time.Second,
			OperationTimeout: 5 * time.Second,
		},
		Embedded: EmbeddedConfig{
			DataFile:        "blog_data.blog",
			TransactionSave: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path (if any) over the defaults and then
// applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("BLOG_PORT"); ok && v != "" {
		c.Server.Port = v
	}
	if v, ok := lookup("MONGODB_URI"); ok && v != "" {
		c.Store.MongoURI = v
	}
	if v, ok := lookup("BLOG_DB_NAME"); ok && v != "" {
		c.Store.Database = v
	}
	if v, ok := lookup("BLOG_COLLECTION"); ok && v != "" {
		c.Store.Collection = v
	}
	if v, ok := lookup("BLOG_STORE_DRIVER"); ok && v != "" {
		c.Store.Driver = strings.ToLower(v)
	}
	if v, ok := lookup("BLOG_DATA_FILE"); ok {
		c.Embedded.DataFile = v
	}
	if v, ok := lookup("BLOG_TRANSACTION_SAVE"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BLOG_TRANSACTION_SAVE: %w", err)
		}
		c.Embedded.TransactionSave = enabled
	}
	if v, ok := lookup("BLOG_LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("BLOG_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	return nil
}

// Validate reports configuration that cannot produce a working server
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must be set")
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri (or MONGODB_URI) must be set for the mongo driver")
		}
		if c.Store.Database == "" || c.Store.Collection == "" {
			return fmt.Errorf("store.database and store.collection must be set")
		}
	case DriverEmbedded:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.OperationTimeout <= 0 {
		return fmt.Errorf("store.operation_timeout must be positive")
	}
	if c.Embedded.SaveInterval < 0 {
		return fmt.Errorf("embedded.save_interval cannot be negative")
	}
	return nil
}
