package config

import (
	"os"
	"strconv"

	usecasecontract "github.com/mikiasgoitom/Parley/internal/usecase/contract"
)

// Config holds application configuration values.
type Config struct {
	SearchResultLimit        int64
	PremiumListLimit         int64
	AccessTokenExpiryMinutes int
	RefreshTokenExpiryHours  int
}

// NewConfig creates a new Config instance, loading values from environment variables.
func NewConfig() usecasecontract.IConfigProvider {
	return &Config{
		SearchResultLimit:        int64(getEnvAsInt("SEARCH_RESULT_LIMIT", 20)),
		PremiumListLimit:         int64(getEnvAsInt("PREMIUM_LIST_LIMIT", 100)),
		AccessTokenExpiryMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRY_MINUTES", 15),
		RefreshTokenExpiryHours:  getEnvAsInt("REFRESH_TOKEN_EXPIRY_HOURS", 168), // 7 days
	}
}

// GetSearchResultLimit returns the maximum result count for prefix searches.
func (c *Config) GetSearchResultLimit() int64 {
	return c.SearchResultLimit
}

// GetPremiumListLimit returns the bound for premium user listings.
func (c *Config) GetPremiumListLimit() int64 {
	return c.PremiumListLimit
}

// GetAccessTokenExpiryMinutes returns the access token lifetime in minutes.
func (c *Config) GetAccessTokenExpiryMinutes() int {
	return c.AccessTokenExpiryMinutes
}

// GetRefreshTokenExpiryHours returns the refresh token lifetime in hours.
func (c *Config) GetRefreshTokenExpiryHours() int {
	return c.RefreshTokenExpiryHours
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer or return a default value.
func getEnvAsInt(name string, fallback int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
