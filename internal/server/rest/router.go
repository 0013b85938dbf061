package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

func (s *Server) routes(trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	// gin trusts every proxy by default, which would let clients pick their
	// own rate limit key through X-Forwarded-For.
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.accessLog))

	limited := s.limiter.Handler()

	session := r.Group("/session", limited)
	{
		session.POST("/login", s.login)
		session.POST("/refresh", s.refresh)
		session.POST("/logout", s.logout)
	}

	r.POST("/identity/lookup", limited, s.lookupBusiness)
	r.POST("/users/signup", limited, s.signup)

	api := r.Group("/", s.authenticate())
	{
		api.GET("/users/me", s.require(ActionViewProfile), s.getProfile)
		api.PATCH("/users/me", s.require(ActionUpdateProfile), s.updateProfile)

		api.POST("/businesses", s.require(ActionRegisterBusiness), s.registerBusiness)
		api.GET("/businesses", s.require(ActionListBusinesses), s.listBusinesses)
		api.GET("/businesses/:id", s.require(ActionViewBusiness), s.getBusiness)
		api.DELETE("/businesses/:id", s.require(ActionDeleteBusiness), s.deleteBusiness)

		api.GET("/businesses/:id/reviews", s.require(ActionListReviews), s.listReviews)
		api.POST("/businesses/:id/reviews", s.require(ActionCreateReview), s.createReview)
		api.GET("/businesses/:id/reviews/:reviewId", s.require(ActionViewReview), s.getReview)
		api.PUT("/businesses/:id/reviews/:reviewId", s.require(ActionUpdateReview), s.updateReview)
		api.DELETE("/businesses/:id/reviews/:reviewId", s.require(ActionDeleteReview), s.deleteReview)
		api.GET("/my-reviews", s.require(ActionListOwnReviews), s.listMyReviews)

		api.GET("/tags", s.require(ActionListTags), s.listTags)
		api.POST("/tags", s.require(ActionCreateTag), s.createTag)
	}

	return r, nil
}
