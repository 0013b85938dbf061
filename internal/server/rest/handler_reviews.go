package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listReviews(c *gin.Context) {
	list, err := s.svc.Reviews.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponses(list))
}

func (s *Server) createReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	user := currentUser(c)
	r, err := s.svc.Reviews.Create(c.Request.Context(), user.ID, c.Param("id"), req.TagSelection)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReviewResponse(r))
}

func (s *Server) getReview(c *gin.Context) {
	r, err := s.svc.Reviews.Get(c.Request.Context(), c.Param("id"), c.Param("reviewId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(r))
}

func (s *Server) updateReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	r, err := s.svc.Reviews.UpdateTags(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("reviewId"), req.TagSelection)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(r))
}

func (s *Server) deleteReview(c *gin.Context) {
	err := s.svc.Reviews.Delete(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("reviewId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listMyReviews(c *gin.Context) {
	list, err := s.svc.Reviews.ListByAuthor(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponses(list))
}
