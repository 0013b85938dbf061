package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/clientreview/internal/common"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type errorMapping struct {
	target error
	status int
	code   string
	// verbose responses carry err.Error(); the others a fixed message, so
	// that nothing derived from user input (a phone number, say) is echoed.
	verbose bool
}

// Order matters: ErrPrincipalNotFound wraps ErrAuthenticationFailed.
var errorMappings = []errorMapping{
	{common.ErrInvalidPhoneNumber, http.StatusBadRequest, "invalid_phone_number", false},
	{common.ErrInvalidInput, http.StatusBadRequest, "invalid_input", true},
	{common.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials", false},
	{common.ErrInvalidPlatform, http.StatusBadRequest, "invalid_platform", false},
	{common.ErrUnknownTag, http.StatusBadRequest, "unknown_tag", true},
	{common.ErrConflictingTags, http.StatusBadRequest, "conflicting_tags", true},
	{common.ErrPrincipalNotFound, http.StatusUnauthorized, "principal_not_found", false},
	{common.ErrAuthenticationFailed, http.StatusUnauthorized, "authentication_failed", false},
	{common.ErrInvalidRefreshToken, http.StatusUnauthorized, "invalid_refresh_token", false},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "unauthorized", false},
	{common.ErrorForbidden, http.StatusForbidden, "forbidden", false},
	{common.ErrBusinessNotFound, http.StatusNotFound, "business_not_found", false},
	{common.ErrReviewNotFound, http.StatusNotFound, "review_not_found", false},
	{common.ErrorNotFound, http.StatusNotFound, "not_found", false},
	{common.ErrDuplicateReview, http.StatusConflict, "duplicate_review", false},
	{common.ErrorAlreadyExists, http.StatusConflict, "already_exists", false},
}

// respondError maps a service error to its HTTP status and JSON body.
// Anything unrecognized is a 500 with a generic body.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := m.target.Error()
		if m.verbose {
			detail = err.Error()
		}
		c.JSON(m.status, errorResponse{Error: m.code, Detail: detail})
		return
	}
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal_error", Detail: "internal server error"})
}

func abortWithError(c *gin.Context, status int, code, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: code, Detail: detail})
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input", Detail: detail})
}
