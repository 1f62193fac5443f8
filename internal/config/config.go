package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Workers struct {
		PoolSize      int           `yaml:"pool_size"`
		JobTimeout    time.Duration `yaml:"job_timeout"`
		LaunchStagger time.Duration `yaml:"launch_stagger"`
	} `yaml:"workers"`

	Scraper struct {
		BaseURL        string        `yaml:"base_url"`
		UserAgent      string        `yaml:"user_agent"`
		HeadlessMode   bool          `yaml:"headless_mode"`
		PageTimeout    time.Duration `yaml:"page_timeout"`
		ElementTimeout time.Duration `yaml:"element_timeout"`
		FieldTimeout   time.Duration `yaml:"field_timeout"`
		ScrollDelay    time.Duration `yaml:"scroll_delay"`
		MaxScrollPolls int           `yaml:"max_scroll_polls"`
	} `yaml:"scraper"`

	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		Table  string `yaml:"table"`
	} `yaml:"database"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second

	config.Workers.PoolSize = 2
	config.Workers.JobTimeout = 15 * time.Minute
	config.Workers.LaunchStagger = 2 * time.Second

	config.Scraper.BaseURL = "https://www.redbus.in/"
	config.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	config.Scraper.HeadlessMode = true
	config.Scraper.PageTimeout = 20 * time.Second
	config.Scraper.ElementTimeout = 10 * time.Second
	config.Scraper.FieldTimeout = 3 * time.Second
	config.Scraper.ScrollDelay = time.Second
	config.Scraper.MaxScrollPolls = 100

	config.Database.Driver = "sqlite"
	config.Database.DSN = "file:busboard.db"
	config.Database.Table = "bus_routes"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			// Expand environment variables in the YAML content
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if poolSize := os.Getenv("WORKER_POOL_SIZE"); poolSize != "" {
		if n, err := strconv.Atoi(poolSize); err == nil && n > 0 {
			c.Workers.PoolSize = n
		}
	}

	if jobTimeout := os.Getenv("WORKER_JOB_TIMEOUT"); jobTimeout != "" {
		if d, err := time.ParseDuration(jobTimeout); err == nil {
			c.Workers.JobTimeout = d
		}
	}

	if baseURL := os.Getenv("SCRAPER_BASE_URL"); baseURL != "" {
		c.Scraper.BaseURL = baseURL
	}

	if userAgent := os.Getenv("SCRAPER_USER_AGENT"); userAgent != "" {
		c.Scraper.UserAgent = userAgent
	}

	if headless := os.Getenv("SCRAPER_HEADLESS"); headless != "" {
		c.Scraper.HeadlessMode = headless == "true" || headless == "1"
	}

	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}

	if table := os.Getenv("DATABASE_TABLE"); table != "" {
		c.Database.Table = table
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
}
