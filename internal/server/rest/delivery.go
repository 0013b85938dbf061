package rest

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/server/services"
)

// DeliveryChannel says how a token pair reaches the client: in the JSON body
// for mobile clients or as HttpOnly cookies for browsers. It is decided once
// per request, before any token is minted.
type DeliveryChannel int

const (
	ChannelBody DeliveryChannel = iota
	ChannelCookie
)

const (
	platformWeb    = "web"
	platformMobile = "mobile"
)

func (ch DeliveryChannel) String() string {
	if ch == ChannelCookie {
		return "cookie"
	}
	return "body"
}

// loginChannel maps the platform field of a login request. An absent
// platform means mobile.
func loginChannel(platform string) (DeliveryChannel, error) {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "", platformMobile:
		return ChannelBody, nil
	case platformWeb:
		return ChannelCookie, nil
	default:
		return ChannelBody, common.ErrInvalidPlatform
	}
}

// refreshChannel lets an explicit platform win; otherwise the pair goes back
// the way the refresh token came in.
func refreshChannel(platform string, tokenFromCookie bool) (DeliveryChannel, error) {
	if strings.TrimSpace(platform) != "" {
		return loginChannel(platform)
	}
	if tokenFromCookie {
		return ChannelCookie, nil
	}
	return ChannelBody, nil
}

// CookieSettings controls the attributes of the session cookies. Secure may
// be turned off for plain-HTTP local development only.
type CookieSettings struct {
	Domain string
	Secure bool
}

func (cs CookieSettings) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cs.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// setTokens writes both tokens as cookies living as long as the tokens do.
func (cs CookieSettings) setTokens(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, cs.cookie(common.AccessTokenCookieName, pair.AccessToken, int(pair.AccessExpiresIn.Seconds())))
	http.SetCookie(w, cs.cookie(common.RefreshTokenCookieName, pair.RefreshToken, int(pair.RefreshExpiresIn.Seconds())))
}

// clearTokens expires both session cookies.
func (cs CookieSettings) clearTokens(w http.ResponseWriter) {
	http.SetCookie(w, cs.cookie(common.AccessTokenCookieName, "", -1))
	http.SetCookie(w, cs.cookie(common.RefreshTokenCookieName, "", -1))
}
