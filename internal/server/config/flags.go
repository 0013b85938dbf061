package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/clientreview/internal/flagx"
)

// parseFlags overlays short command-line flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-k string   phone fingerprint salt
//	-g string   default phone region (ISO 3166-1 alpha-2)
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-b string   revocation backend: postgres | redis
//
// Only these flags are looked at, so -c/-config and unrelated arguments pass
// through untouched.
func parseFlags(c *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-k", "-g", "-t", "-r", "-b"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&c.EndpointAddrHTTP, "a", c.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	fs.StringVar(&c.SecretKey, "s", c.SecretKey, "JWT secret key")
	fs.StringVar(&c.PhoneHashSalt, "k", c.PhoneHashSalt, "phone fingerprint salt")
	fs.StringVar(&c.DefaultRegion, "g", c.DefaultRegion, "default phone region")
	fs.StringVar(&c.RevocationBackend, "b", c.RevocationBackend, "revocation backend (postgres|redis)")

	access := fs.Int("t", int(c.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refresh := fs.Int("r", int(c.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	c.AccessTokenValidityDuration = time.Duration(*access) * time.Minute
	c.RefreshTokenValidityDuration = time.Duration(*refresh) * time.Minute
	return nil
}
