package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// envPrefix namespaces every environment override.
const envPrefix = "PREDICTIONMCP_"

// Load reads a TOML configuration file at path (skipped when path is empty),
// merges it on top of the built-in defaults, applies environment variable
// overrides, and returns the final Config. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PREDICTIONMCP_* environment variables
// and overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). The bare PORT variable is honoured last so platform-assigned
// ports win.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setStr(&cfg.Server.Host, envPrefix+"SERVER_HOST")
	setInt(&cfg.Server.Port, envPrefix+"SERVER_PORT")
	setStr(&cfg.Server.Path, envPrefix+"SERVER_PATH")
	setStringSlice(&cfg.Server.CORSOrigins, envPrefix+"SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.Port, "PORT")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, envPrefix+"POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.WebHost, envPrefix+"POLYMARKET_WEB_HOST")

	// ── Kalshi ──
	setStr(&cfg.Kalshi.BaseURL, envPrefix+"KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.WebHost, envPrefix+"KALSHI_WEB_HOST")
	setStr(&cfg.Kalshi.ApiKey, envPrefix+"KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, envPrefix+"KALSHI_RSA_PRIVATE_KEY_PATH")

	// ── Upstream ──
	setDuration(&cfg.Upstream.Timeout, envPrefix+"UPSTREAM_TIMEOUT")
	setInt(&cfg.Upstream.SearchPageSize, envPrefix+"UPSTREAM_SEARCH_PAGE_SIZE")
	setInt(&cfg.Upstream.SearchMaxPages, envPrefix+"UPSTREAM_SEARCH_MAX_PAGES")

	// ── Top-level ──
	setStr(&cfg.LogLevel, envPrefix+"LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
