package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

func (s *Server) listTags(c *gin.Context) {
	list, err := s.svc.Tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]tagResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTagResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	t, err := s.svc.Tags.Create(c.Request.Context(), req.Name, models.TagCategory(req.Category), req.Group)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTagResponse(t))
}
