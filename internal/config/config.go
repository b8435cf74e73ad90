package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type SourceConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxPages int  `yaml:"max_pages"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scrape struct {
		RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
		MaxRetries            int    `yaml:"max_retries"`
		DelaySeconds          int    `yaml:"delay_seconds"`
		UserAgent             string `yaml:"user_agent"`
	} `yaml:"scrape"`

	Polling struct {
		Enabled         bool     `yaml:"enabled"`
		IntervalSeconds int      `yaml:"interval_seconds"`
		EmailSeconds    int      `yaml:"email_seconds"`
		Query           string   `yaml:"query"`
		Location        string   `yaml:"location"`
		Scrapers        []string `yaml:"scrapers"`
	} `yaml:"polling"`

	Sources struct {
		LinkedIn     SourceConfig `yaml:"linkedin"`
		Computrabajo SourceConfig `yaml:"computrabajo"`

		GoogleJobs struct {
			Enabled  bool   `yaml:"enabled"`
			Endpoint string `yaml:"endpoint"`
			Country  string `yaml:"country"`
		} `yaml:"google_jobs"`
	} `yaml:"sources"`

	Email struct {
		Enabled  bool   `yaml:"enabled"`
		IMAPHost string `yaml:"imap_host"`
		IMAPPort int    `yaml:"imap_port"`
		Username string `yaml:"username"`
		Mailbox  string `yaml:"mailbox"`
	} `yaml:"email"`

	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTLHours int    `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalSeconds) * time.Second
}

func (c Config) EmailPollInterval() time.Duration {
	return time.Duration(c.Polling.EmailSeconds) * time.Second
}

func (c Config) TokenTTL() time.Duration {
	h := c.Auth.TokenTTLHours
	if h <= 0 {
		h = 72
	}
	return time.Duration(h) * time.Hour
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
