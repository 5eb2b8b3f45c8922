package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type SalesforceConfig struct {
	Username      string `toml:"username"`
	Password      string `toml:"password"`
	SecurityToken string `toml:"security_token"`
	ClientID      string `toml:"client_id"`
	ClientSecret  string `toml:"client_secret"`
	LoginURL      string `toml:"login_url"`
}

type SerpConfig struct {
	APIKey       string `toml:"api_key"`
	Engine       string `toml:"engine"`
	HL           string `toml:"hl"`
	GL           string `toml:"gl"`
	GoogleDomain string `toml:"google_domain"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type FetchConfig struct {
	ChunkSize   int `toml:"chunk_size"`
	IDBatchSize int `toml:"id_batch_size"`
	Workers     int `toml:"workers"`
}

type EnrichConfig struct {
	Workers       int     `toml:"workers"`
	PauseSeconds  float64 `toml:"pause_seconds"`
	MaxRetries    int     `toml:"max_retries"`
	BackoffFactor float64 `toml:"backoff_factor"`
}

type ApplyConfig struct {
	Workers int `toml:"workers"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type Config struct {
	Salesforce SalesforceConfig `toml:"salesforce"`
	Serp       SerpConfig       `toml:"serp"`
	LLM        LLMConfig        `toml:"llm"`
	Fetch      FetchConfig      `toml:"fetch"`
	Enrich     EnrichConfig     `toml:"enrich"`
	Apply      ApplyConfig      `toml:"apply"`
	Server     ServerConfig     `toml:"server"`
}

// Load reads a TOML config file. A missing file is not an error: every
// setting has either a default or an environment override, so the tool can
// run on env vars alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the loaded file. Env wins
// so deployment secrets never have to live in the TOML.
func (c *Config) ApplyEnv() {
	if v := firstEnv("SERPAPI_API_KEY", "SERPAPI_KEY", "SEPRAPI_KEY"); v != "" {
		c.Serp.APIKey = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
