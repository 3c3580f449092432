package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "Asia/Seoul"
	configPathEnv      = "STARTUP_DIGEST_CONFIG"
	databasePathEnv    = "DIGEST_DB_PATH"
	slackBotTokenEnv   = "SLACK_BOT_TOKEN"
	slackChannelIDEnv  = "SLACK_CHANNEL_ID"
	slackWebhookEnv    = "SLACK_WEBHOOK_URL"
	naverClientIDEnv   = "NAVER_CLIENT_ID"
	naverClientKeyEnv  = "NAVER_CLIENT_SECRET"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Crawl     CrawlConfig     `yaml:"crawl"`
	Slack     SlackConfig     `yaml:"slack"`
	Naver     NaverConfig     `yaml:"naver"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when the pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// CrawlConfig groups fetch and filtering parameters.
type CrawlConfig struct {
	TimeoutSeconds    int      `yaml:"timeoutSeconds"`
	RequestsPerSecond float64  `yaml:"requestsPerSecond"`
	LookbackDays      int      `yaml:"lookbackDays"`
	UrgentDays        int      `yaml:"urgentDays"`
	UserAgent         string   `yaml:"userAgent"`
	NewsSources       []string `yaml:"newsSources"`
}

// Timeout returns the per-request fetch deadline.
func (c CrawlConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SlackConfig wires both delivery transports; bot token takes priority.
type SlackConfig struct {
	BotToken   string `yaml:"botToken"`
	ChannelID  string `yaml:"channelId"`
	WebhookURL string `yaml:"webhookUrl"`
}

// NaverConfig holds Naver open-API search credentials and query phrases.
type NaverConfig struct {
	ClientID     string   `yaml:"clientId"`
	ClientSecret string   `yaml:"clientSecret"`
	Keywords     []string `yaml:"keywords"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(slackBotTokenEnv); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv(slackChannelIDEnv); v != "" {
		c.Slack.ChannelID = v
	}
	if v := os.Getenv(slackWebhookEnv); v != "" {
		c.Slack.WebhookURL = v
	}

	if v := os.Getenv(naverClientIDEnv); v != "" {
		c.Naver.ClientID = v
	}
	if v := os.Getenv(naverClientKeyEnv); v != "" {
		c.Naver.ClientSecret = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Crawl.TimeoutSeconds > 0 {
		base.Crawl.TimeoutSeconds = override.Crawl.TimeoutSeconds
	}
	if override.Crawl.RequestsPerSecond > 0 {
		base.Crawl.RequestsPerSecond = override.Crawl.RequestsPerSecond
	}
	if override.Crawl.LookbackDays > 0 {
		base.Crawl.LookbackDays = override.Crawl.LookbackDays
	}
	if override.Crawl.UrgentDays > 0 {
		base.Crawl.UrgentDays = override.Crawl.UrgentDays
	}
	if override.Crawl.UserAgent != "" {
		base.Crawl.UserAgent = override.Crawl.UserAgent
	}
	if len(override.Crawl.NewsSources) > 0 {
		base.Crawl.NewsSources = override.Crawl.NewsSources
	}

	if override.Slack.BotToken != "" {
		base.Slack.BotToken = override.Slack.BotToken
	}
	if override.Slack.ChannelID != "" {
		base.Slack.ChannelID = override.Slack.ChannelID
	}
	if override.Slack.WebhookURL != "" {
		base.Slack.WebhookURL = override.Slack.WebhookURL
	}

	if override.Naver.ClientID != "" {
		base.Naver.ClientID = override.Naver.ClientID
	}
	if override.Naver.ClientSecret != "" {
		base.Naver.ClientSecret = override.Naver.ClientSecret
	}
	if len(override.Naver.Keywords) > 0 {
		base.Naver.Keywords = override.Naver.Keywords
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database:  DatabaseConfig{Path: "data/digest.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 9 * * 1", Timezone: defaultTimezone, location: tz},
		Crawl: CrawlConfig{
			TimeoutSeconds:    10,
			RequestsPerSecond: 1,
			LookbackDays:      7,
			UrgentDays:        7,
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			NewsSources: []string{"네이버뉴스", "중소벤처기업부"},
		},
		Slack: SlackConfig{},
		Naver: NaverConfig{
			Keywords: []string{"창업 지원사업", "스타트업 정책", "정부 창업 지원"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
