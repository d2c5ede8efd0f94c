// Package config provides configuration loading and structs for the
// hanashi server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Crawl     CrawlConfig     `yaml:"crawl"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Orders    OrdersConfig    `yaml:"orders"`
	CRM       CRMConfig       `yaml:"crm"`
	LLM       LLMConfig       `yaml:"llm"`
	Mail      MailConfig      `yaml:"mail"`
	Session   SessionConfig   `yaml:"session"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// KnowledgeConfig points at the curated knowledge file. Empty means the
// built-in curated set only.
type KnowledgeConfig struct {
	CuratedPath string `yaml:"curated_path"`
}

// RetrievalConfig holds index and search settings.
type RetrievalConfig struct {
	TopK                  int     `yaml:"top_k"`
	SnippetMaxChars       int     `yaml:"snippet_max_chars"`
	ContextMaxChars       int     `yaml:"context_max_chars"`
	MaxDocChars           int     `yaml:"max_doc_chars"`
	RefreshIntervalMin    int     `yaml:"refresh_interval_minutes"`
	CatalogBoostFactor    float64 `yaml:"catalog_boost_factor"`
	CuratedFAQBoostFactor float64 `yaml:"curated_faq_boost_factor"`
}

// CrawlConfig bounds the site crawl. No seeds disables the crawl source.
type CrawlConfig struct {
	Seeds             []string `yaml:"seeds"`
	MaxPages          int      `yaml:"max_pages"`
	MinContentChars   int      `yaml:"min_content_chars"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	TimeoutSeconds    int      `yaml:"timeout_seconds"`
}

// CatalogConfig holds the e-commerce catalog endpoint.
type CatalogConfig struct {
	BaseURL        string `yaml:"base_url"`
	AccessToken    string `yaml:"access_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// OrdersConfig holds the order-lookup API credentials.
type OrdersConfig struct {
	BaseURL        string `yaml:"base_url"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CRMConfig holds the CRM message-lookup credentials.
type CRMConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LLMConfig holds generation-service settings. The API key comes from the
// OPENAI_API_KEY environment variable, not the file.
type LLMConfig struct {
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// MailConfig holds the transcript mail transport. Empty SMTPAddr degrades
// dispatch to log-only.
type MailConfig struct {
	SMTPAddr  string `yaml:"smtp_addr"`
	From      string `yaml:"from"`
	Recipient string `yaml:"recipient"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

// SessionConfig holds session policy thresholds.
type SessionConfig struct {
	WarnAfterMinutes       int `yaml:"warn_after_minutes"`
	CloseAfterMinutes      int `yaml:"close_after_minutes"`
	MaxDurationMinutes     int `yaml:"max_duration_minutes"`
	MaxMessages            int `yaml:"max_messages"`
	ReapIntervalSeconds    int `yaml:"reap_interval_seconds"`
	ClosedRetentionMinutes int `yaml:"closed_retention_minutes"`
}

// Load reads and parses the config file at path, expands paths, and
// applies defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Knowledge.CuratedPath = expandPath(cfg.Knowledge.CuratedPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute relative to configDir. Empty
// stays empty.
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	return filepath.Join(configDir, path)
}
