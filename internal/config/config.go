package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// DiscordConfig holds Discord OAuth2 and API configuration.
type DiscordConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string // must byte-match the value registered with Discord
	TokenURL     string
	APIBaseURL   string
	CDNBaseURL   string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

type Config struct {
	Host           string
	Port           string
	Environment    string
	FrontendURL    string
	AllowedOrigins []string
	Database       DatabaseConfig
	Discord        DiscordConfig
}

// Load reads configuration from environment variables.
// It fails fast with clear errors for missing required values.
func Load() (*Config, error) {
	var missing []string

	host := os.Getenv("HOST")
	if host == "" {
		host = "127.0.0.1"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "staging" && env != "production" {
		return nil, fmt.Errorf("invalid ENV value %q: must be development, staging, or production", env)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	clientID := os.Getenv("DISCORD_CLIENT_ID")
	if clientID == "" {
		missing = append(missing, "DISCORD_CLIENT_ID")
	}

	clientSecret := os.Getenv("DISCORD_CLIENT_SECRET")
	if clientSecret == "" {
		missing = append(missing, "DISCORD_CLIENT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	if err := validateDatabaseURL(databaseURL); err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	frontendURL := getEnv("FRONTEND_URL", "http://localhost:8081")

	return &Config{
		Host:           host,
		Port:           port,
		Environment:    env,
		FrontendURL:    strings.TrimRight(frontendURL, "/"),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://localhost:8081")),
		Database: DatabaseConfig{
			URL:             databaseURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		},
		Discord: DiscordConfig{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURI:  getEnv("DISCORD_REDIRECT_URI", "http://localhost:8080/auth/discord/callback"),
			TokenURL:     getEnv("DISCORD_TOKEN_URL", "https://discord.com/api/oauth2/token"),
			APIBaseURL:   getEnv("DISCORD_API_BASE_URL", "https://discord.com/api"),
			CDNBaseURL:   getEnv("DISCORD_CDN_URL", "https://cdn.discordapp.com"),
		},
	}, nil
}

// BindAddress returns the host:port the server listens on.
func (c *Config) BindAddress() string {
	return c.Host + ":" + c.Port
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// OAuthSuccessRedirect builds the frontend redirect URL after a successful login.
func (c *Config) OAuthSuccessRedirect(userID string) string {
	return fmt.Sprintf("%s/?auth=success&user_id=%s", c.FrontendURL, url.QueryEscape(userID))
}

// OAuthErrorRedirect builds the frontend redirect URL for a failed login.
// The reason is a coarse-grained code, never raw provider error text.
func (c *Config) OAuthErrorRedirect(reason string) string {
	return fmt.Sprintf("%s/?auth=error&reason=%s", c.FrontendURL, url.QueryEscape(reason))
}

// validateDatabaseURL ensures the database URL is a valid PostgreSQL connection string.
func validateDatabaseURL(dbURL string) error {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}

	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("URL must use postgres or postgresql scheme, got %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}
