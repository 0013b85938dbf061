package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "CLIENTREVIEW_"

// parseEnv overlays CLIENTREVIEW_* variables. A .env file in the working
// directory is loaded first if present; real environment variables win.
func parseEnv(c *Config) {
	_ = godotenv.Load()

	c.EndpointAddrHTTP = getEnv("HTTP_ADDR", c.EndpointAddrHTTP)
	c.DatabaseDSN = getEnv("DATABASE_DSN", c.DatabaseDSN)
	c.SecretKey = getEnv("SECRET_KEY", c.SecretKey)
	c.PhoneHashSalt = getEnv("PHONE_HASH_SALT", c.PhoneHashSalt)
	c.DefaultRegion = getEnv("DEFAULT_REGION", c.DefaultRegion)
	c.AccessTokenValidityDuration = getDuration("ACCESS_TOKEN_TTL", c.AccessTokenValidityDuration)
	c.RefreshTokenValidityDuration = getDuration("REFRESH_TOKEN_TTL", c.RefreshTokenValidityDuration)
	c.CookieDomain = getEnv("COOKIE_DOMAIN", c.CookieDomain)
	c.CookieSecure = getBool("COOKIE_SECURE", c.CookieSecure)
	c.RevocationBackend = getEnv("REVOCATION_BACKEND", c.RevocationBackend)
	c.RevocationPurgeInterval = getDuration("REVOCATION_PURGE_INTERVAL", c.RevocationPurgeInterval)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getInt("REDIS_DB", c.RedisDB)
	c.RateLimitRPM = getInt("RATE_LIMIT_RPM", c.RateLimitRPM)
	c.TrustedProxies = getList("TRUSTED_PROXIES", c.TrustedProxies)
	c.LogBackend = getEnv("LOG_BACKEND", c.LogBackend)
	c.AdminEmail = getEnv("ADMIN_EMAIL", c.AdminEmail)
	c.AdminPassword = getEnv("ADMIN_PASSWORD", c.AdminPassword)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getList reads a comma separated value. A set but empty variable clears the
// list.
func getList(key string, def []string) []string {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
