package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/clientreview/internal/flagx"
	"github.com/dmitrijs2005/clientreview/internal/timex"
)

// JSONConfig is the on-disk shape of the optional config file. Durations
// accept "15m" style strings or integer nanoseconds. Absent keys leave the
// current value untouched.
type JSONConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	PhoneHashSalt                string         `json:"phone_hash_salt"`
	DefaultRegion                string         `json:"default_region"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	CookieDomain                 string         `json:"cookie_domain"`
	CookieSecure                 *bool          `json:"cookie_secure"`
	RevocationBackend            string         `json:"revocation_backend"`
	RevocationPurgeInterval      timex.Duration `json:"revocation_purge_interval"`
	RedisAddr                    string         `json:"redis_addr"`
	RedisPassword                string         `json:"redis_password"`
	RedisDB                      *int           `json:"redis_db"`
	RateLimitRPM                 *int           `json:"rate_limit_rpm"`
	TrustedProxies               []string       `json:"trusted_proxies"`
	LogBackend                   string         `json:"log_backend"`
	AdminEmail                   string         `json:"admin_email"`
	AdminPassword                string         `json:"admin_password"`
}

// parseJSON loads the file named by -c/-config (if any) and overlays it.
func parseJSON(c *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	j := &JSONConfig{}
	if err := json.Unmarshal(raw, j); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}

	j.apply(c)
	return nil
}

func (j *JSONConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, j.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, j.DatabaseDSN)
	setString(&c.SecretKey, j.SecretKey)
	setString(&c.PhoneHashSalt, j.PhoneHashSalt)
	setString(&c.DefaultRegion, j.DefaultRegion)
	setString(&c.CookieDomain, j.CookieDomain)
	setString(&c.RevocationBackend, j.RevocationBackend)
	setString(&c.RedisAddr, j.RedisAddr)
	setString(&c.RedisPassword, j.RedisPassword)
	setString(&c.LogBackend, j.LogBackend)
	setString(&c.AdminEmail, j.AdminEmail)
	setString(&c.AdminPassword, j.AdminPassword)

	if j.AccessTokenValidityDuration.Duration > 0 {
		c.AccessTokenValidityDuration = j.AccessTokenValidityDuration.Duration
	}
	if j.RefreshTokenValidityDuration.Duration > 0 {
		c.RefreshTokenValidityDuration = j.RefreshTokenValidityDuration.Duration
	}
	if j.RevocationPurgeInterval.Duration > 0 {
		c.RevocationPurgeInterval = j.RevocationPurgeInterval.Duration
	}
	if j.CookieSecure != nil {
		c.CookieSecure = *j.CookieSecure
	}
	if j.RedisDB != nil {
		c.RedisDB = *j.RedisDB
	}
	if j.RateLimitRPM != nil {
		c.RateLimitRPM = *j.RateLimitRPM
	}
	if j.TrustedProxies != nil {
		c.TrustedProxies = j.TrustedProxies
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
