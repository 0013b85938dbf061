package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

const (
	userKey      = "user"
	requestIDKey = "request_id"
)

// authenticate resolves the request principal. The Authorization header is
// consulted first, then the access_token cookie. A request carrying neither
// continues anonymously; one carrying a credential that does not verify is
// rejected with 401.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := accessCredential(c.Request)
		if !present {
			c.Next()
			return
		}
		if !ok {
			s.logger.Warn(c.Request.Context(), "malformed authorization header", "client_ip", c.ClientIP())
			abortWithError(c, http.StatusUnauthorized, "authentication_failed", common.ErrAuthenticationFailed.Error())
			return
		}

		user, err := s.svc.Sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrPrincipalNotFound):
				s.logger.Warn(c.Request.Context(), "token principal no longer exists", "client_ip", c.ClientIP())
				abortWithError(c, http.StatusUnauthorized, "principal_not_found", "user not found or inactive")
			case errors.Is(err, common.ErrAuthenticationFailed):
				s.logger.Warn(c.Request.Context(), "authentication failed", "client_ip", c.ClientIP())
				abortWithError(c, http.StatusUnauthorized, "authentication_failed", common.ErrAuthenticationFailed.Error())
			default:
				respondError(c, err)
				c.Abort()
			}
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// accessCredential extracts the raw access token. present reports whether
// any credential was supplied; ok is false when the Authorization header is
// present but not a usable Bearer credential.
func accessCredential(r *http.Request) (token string, present bool, ok bool) {
	if header := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName)); header != "" {
		scheme, value, found := strings.Cut(header, " ")
		value = strings.TrimSpace(value)
		if !found || !strings.EqualFold(scheme, "Bearer") || value == "" {
			return "", true, false
		}
		return value, true, true
	}

	if cookie, err := r.Cookie(common.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true, true
	}

	return "", false, false
}

// currentUser returns the authenticated principal, or nil for anonymous
// requests.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// RequestLogger logs incoming HTTP requests with latency and request ID
// metadata. Query strings are omitted so that tokens never reach the log.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.Request.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if u := currentUser(c); u != nil {
			fields = append(fields, zap.String("user_id", u.ID))
		}

		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	}
}
