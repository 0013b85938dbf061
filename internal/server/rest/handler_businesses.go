package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// lookupBusiness answers whether a phone number belongs to a registered
// business. The number itself is never echoed back or logged.
func (s *Server) lookupBusiness(c *gin.Context) {
	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	b, err := s.svc.Businesses.Lookup(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lookupResponse{BusinessID: b.ID})
}

func (s *Server) registerBusiness(c *gin.Context) {
	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	b, created, err := s.svc.Businesses.Register(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toBusinessResponse(b))
}

func (s *Server) listBusinesses(c *gin.Context) {
	list, err := s.svc.Businesses.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]businessResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBusinessResponse(b))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getBusiness(c *gin.Context) {
	b, err := s.svc.Businesses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBusinessResponse(b))
}

func (s *Server) deleteBusiness(c *gin.Context) {
	if err := s.svc.Businesses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
