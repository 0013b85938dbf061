package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/services"
)

// bindOptionalJSON decodes the body into dst when there is one. An empty
// body leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "malformed JSON body")
		return false
	}
	return true
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	channel, err := loginChannel(req.Platform)
	if err != nil {
		respondError(c, err)
		return
	}

	user, pair, err := s.svc.Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "login", "user_id", user.ID, "channel", channel.String())
	s.deliver(c, channel, pair, user, "login successful")
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	token, fromCookie := req.RefreshToken, false
	if token == "" {
		if cookie, err := c.Request.Cookie(common.RefreshTokenCookieName); err == nil && cookie.Value != "" {
			token, fromCookie = cookie.Value, true
		}
	}

	channel, err := refreshChannel(req.Platform, fromCookie)
	if err != nil {
		respondError(c, err)
		return
	}

	if token == "" {
		respondError(c, common.ErrInvalidRefreshToken)
		return
	}

	pair, err := s.svc.Sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	s.deliver(c, channel, pair, nil, "token refreshed")
}

// logout always succeeds from the client's point of view: the cookies are
// cleared and a store failure is only logged.
func (s *Server) logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	token := req.RefreshToken
	if token == "" {
		if cookie, err := c.Request.Cookie(common.RefreshTokenCookieName); err == nil {
			token = cookie.Value
		}
	}

	if err := s.svc.Sessions.Revoke(c.Request.Context(), token); err != nil {
		s.logger.Error(c.Request.Context(), "logout: revoke failed", "error", err)
	}

	s.cookies.clearTokens(c.Writer)
	c.JSON(http.StatusOK, gin.H{"detail": "logged out"})
}

func (s *Server) deliver(c *gin.Context, channel DeliveryChannel, pair *services.TokenPair, user *models.User, detail string) {
	if channel == ChannelCookie {
		s.cookies.setTokens(c.Writer, pair)
		c.JSON(http.StatusOK, cookieSessionResponse{Detail: detail, User: toUserResponse(user)})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(pair.AccessExpiresIn.Seconds()),
		User:         toUserResponse(user),
	})
}
