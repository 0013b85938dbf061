// Package phoneid turns user-supplied phone numbers into fingerprints: a
// salted, one-way digest of the canonical E.164 form. A fingerprint is the
// only representation of a business phone number that is ever stored.
package phoneid

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/dmitrijs2005/clientreview/internal/common"
)

var fingerprintRe = regexp.MustCompile(`^` + regexp.QuoteMeta(common.FingerprintPrefix) + `[0-9a-f]{64}$`)

// IsFingerprint reports whether s is syntactically a fingerprint produced by
// Resolve.
func IsFingerprint(s string) bool {
	return fingerprintRe.MatchString(s)
}

// Resolver is safe for concurrent use; it holds only immutable configuration.
type Resolver struct {
	secret []byte
	region string
}

// NewResolver fails with common.ErrConfiguration if secret is empty or
// defaultRegion is not a region libphonenumber knows about.
func NewResolver(secret string, defaultRegion string) (*Resolver, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: phone hash salt is empty", common.ErrConfiguration)
	}
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if phonenumbers.GetCountryCodeForRegion(region) == 0 {
		return nil, fmt.Errorf("%w: unknown default region %q", common.ErrConfiguration, defaultRegion)
	}
	return &Resolver{secret: []byte(secret), region: region}, nil
}

// Resolve returns the fingerprint of raw. Numbers without a country code are
// read in the default region. Input that is already a fingerprint comes back
// unchanged. Anything that does not parse, or parses but is not a valid
// assignable number, fails with common.ErrInvalidPhoneNumber.
func (r *Resolver) Resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", common.ErrInvalidPhoneNumber
	}

	if strings.HasPrefix(raw, common.FingerprintPrefix) {
		if IsFingerprint(raw) {
			return raw, nil
		}
		return "", common.ErrInvalidPhoneNumber
	}

	canonical, err := r.Canonicalize(raw)
	if err != nil {
		return "", err
	}

	return r.digest(canonical), nil
}

// Canonicalize parses and validates raw and returns its E.164 form.
func (r *Resolver) Canonicalize(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, r.region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidPhoneNumber, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", common.ErrInvalidPhoneNumber
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (r *Resolver) digest(canonical string) string {
	mac := hmac.New(sha256.New, r.secret)
	mac.Write([]byte(canonical))
	return common.FingerprintPrefix + hex.EncodeToString(mac.Sum(nil))
}
