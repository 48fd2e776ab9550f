package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lk2023060901/prospect-finder/internal/pkg/database"
	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
	"github.com/lk2023060901/prospect-finder/internal/pkg/redis"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           logger.Config       `mapstructure:"log"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Search        SearchConfig        `mapstructure:"search"`
	Crawler       CrawlerConfig       `mapstructure:"crawler"`
	Extraction    ExtractionConfig    `mapstructure:"extraction"`
	Enrich        EnrichConfig        `mapstructure:"enrich"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
	Sink          SinkConfig          `mapstructure:"sink"`
	Database      database.Config     `mapstructure:"database"`
	Redis         redis.Config        `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LLMConfig struct {
	Provider            string        `mapstructure:"provider"` // anthropic, openai
	APIKey              string        `mapstructure:"api_key"`
	APIHost             string        `mapstructure:"api_host"`
	Model               string        `mapstructure:"model"`
	Temperature         float32       `mapstructure:"temperature"`
	QueryMaxTokens      int           `mapstructure:"query_max_tokens"`
	ExtractionMaxTokens int           `mapstructure:"extraction_max_tokens"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ExtractionInterval  time.Duration `mapstructure:"extraction_interval"`
	MaxRetries          int           `mapstructure:"max_retries"`
}

type SearchConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"` // comma separated keys rotate
	APIHost     string        `mapstructure:"api_host"`
	Workers     int           `mapstructure:"workers"`
	MaxResults  int           `mapstructure:"max_results"`
	SearchDepth string        `mapstructure:"search_depth"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type CrawlerConfig struct {
	UserAgent   string        `mapstructure:"user_agent"`
	MaxBodySize int           `mapstructure:"max_body_size"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	RobotsTTL   time.Duration `mapstructure:"robots_ttl"`
}

type ExtractionConfig struct {
	MaxContentTokens    int    `mapstructure:"max_content_tokens"`
	Encoding            string `mapstructure:"encoding"`
	NearbyPostcodeRange int    `mapstructure:"nearby_postcode_range"`
}

type EnrichConfig struct {
	ContactPaths []string `mapstructure:"contact_paths"`
}

type PipelineConfig struct {
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"` // 0 = none
}

type SinkConfig struct {
	Driver  string   `mapstructure:"driver"`  // log, postgres, elasticsearch, multi
	Drivers []string `mapstructure:"drivers"` // members when driver is multi
}

// Members returns the concrete drivers selected: Drivers for "multi",
// otherwise Driver alone.
func (c SinkConfig) Members() []string {
	if c.Driver == "multi" {
		return c.Drivers
	}
	return []string{c.Driver}
}

// Uses reports whether driver is one of the selected sinks.
func (c SinkConfig) Uses(driver string) bool {
	for _, d := range c.Members() {
		if d == driver {
			return true
		}
	}
	return false
}

type ElasticsearchConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	IndexPrefix string   `mapstructure:"index_prefix"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// envAliases binds the legacy variable names onto config keys.
var envAliases = map[string][]string{
	"llm.api_key":    {"LLM_API_KEY", "ANTHROPIC"},
	"search.api_key": {"SEARCH_API_KEY", "TAVILY"},
}

// LoadConfig reads .env (if present), the YAML file at path (if non-empty)
// and environment overrides, on top of the built-in defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	logDefaults := logger.DefaultConfig()
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.format", logDefaults.Format)
	v.SetDefault("log.output", logDefaults.Output)
	v.SetDefault("log.enablecaller", logDefaults.EnableCaller)
	v.SetDefault("log.enablestacktrace", logDefaults.EnableStacktrace)
	v.SetDefault("log.file.filename", logDefaults.File.Filename)
	v.SetDefault("log.file.maxsize", logDefaults.File.MaxSize)
	v.SetDefault("log.file.maxage", logDefaults.File.MaxAge)
	v.SetDefault("log.file.maxbackups", logDefaults.File.MaxBackups)
	v.SetDefault("log.file.compress", logDefaults.File.Compress)

	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.api_host", "")
	v.SetDefault("llm.model", "claude-3-haiku-20240307")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.query_max_tokens", 1024)
	v.SetDefault("llm.extraction_max_tokens", 4000)
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("llm.extraction_interval", 15*time.Second)
	v.SetDefault("llm.max_retries", 2)

	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.api_host", "https://api.tavily.com")
	v.SetDefault("search.workers", 12)
	v.SetDefault("search.max_results", 2)
	v.SetDefault("search.search_depth", "basic")
	v.SetDefault("search.timeout", 30*time.Second)

	v.SetDefault("crawler.user_agent", DefaultUserAgent)
	v.SetDefault("crawler.max_body_size", 10*1024*1024)
	v.SetDefault("crawler.cache_ttl", 24*time.Hour)
	v.SetDefault("crawler.robots_ttl", time.Hour)

	v.SetDefault("extraction.max_content_tokens", 12000)
	v.SetDefault("extraction.encoding", "cl100k_base")
	v.SetDefault("extraction.nearby_postcode_range", 10)

	v.SetDefault("enrich.contact_paths", []string{"/contact", "/contact-us", "/contact.html", "/contact-us.html", "/"})

	v.SetDefault("pipeline.collection", "prospects")
	v.SetDefault("pipeline.timeout", 0)

	v.SetDefault("sink.driver", "log")
	v.SetDefault("sink.drivers", []string{})

	dbDefaults := database.DefaultConfig()
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("database.timezone", dbDefaults.Timezone)
	v.SetDefault("database.maxidleconns", dbDefaults.MaxIdleConns)
	v.SetDefault("database.maxopenconns", dbDefaults.MaxOpenConns)
	v.SetDefault("database.connmaxlifetime", dbDefaults.ConnMaxLifetime)
	v.SetDefault("database.loglevel", dbDefaults.LogLevel)
	v.SetDefault("database.slowthreshold", dbDefaults.SlowThreshold)
	v.SetDefault("database.automigrate", dbDefaults.AutoMigrate)

	redisDefaults := redis.DefaultConfig()
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.mode", string(redisDefaults.Mode))
	v.SetDefault("redis.addrs", redisDefaults.Addrs)
	v.SetDefault("redis.master_name", "")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", redisDefaults.PoolSize)
	v.SetDefault("redis.dial_timeout", redisDefaults.DialTimeout)
	v.SetDefault("redis.read_timeout", redisDefaults.ReadTimeout)
	v.SetDefault("redis.write_timeout", redisDefaults.WriteTimeout)
	v.SetDefault("redis.max_retries", redisDefaults.MaxRetries)
	v.SetDefault("redis.key_prefix", redisDefaults.KeyPrefix)

	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.index_prefix", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// DefaultUserAgent is a desktop Chrome string; several listing sites reject
// unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var (
	validLLMProviders = map[string]bool{"anthropic": true, "openai": true}
	validSinkDrivers  = map[string]bool{"log": true, "postgres": true, "elasticsearch": true, "multi": true}
)

// Validate checks the keys the pipeline cannot run without.
func (c *Config) Validate() error {
	if !validLLMProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm.provider %q, must be anthropic or openai", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required (or set ANTHROPIC)")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	if c.LLM.MaxRetries < 0 {
		return errors.New("llm.max_retries must be >= 0")
	}
	if c.Search.APIKey == "" {
		return errors.New("search.api_key is required (or set TAVILY)")
	}
	if c.Search.Workers <= 0 {
		return errors.New("search.workers must be > 0")
	}
	if c.Extraction.NearbyPostcodeRange < 0 {
		return errors.New("extraction.nearby_postcode_range must be >= 0")
	}
	if c.Pipeline.Collection == "" {
		return errors.New("pipeline.collection is required")
	}

	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Redis.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	return c.validateSink()
}

func (c *Config) validateSink() error {
	if !validSinkDrivers[c.Sink.Driver] {
		return fmt.Errorf("invalid sink.driver %q", c.Sink.Driver)
	}
	if c.Sink.Driver == "multi" && len(c.Sink.Drivers) == 0 {
		return errors.New("sink.drivers is required when sink.driver is multi")
	}
	for _, d := range c.Sink.Members() {
		switch d {
		case "postgres":
			if err := c.Database.Validate(); err != nil {
				return fmt.Errorf("database: %w", err)
			}
		case "elasticsearch":
			if len(c.Elasticsearch.Addresses) == 0 {
				return errors.New("elasticsearch.addresses is required")
			}
		case "log":
		default:
			return fmt.Errorf("invalid sink driver %q in sink.drivers", d)
		}
	}
	return nil
}
