package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

// Action names a protected route operation.
type Action string

const (
	ActionViewProfile      Action = "profile.view"
	ActionUpdateProfile    Action = "profile.update"
	ActionRegisterBusiness Action = "business.register"
	ActionListBusinesses   Action = "business.list"
	ActionViewBusiness     Action = "business.view"
	ActionDeleteBusiness   Action = "business.delete"
	ActionListReviews      Action = "review.list"
	ActionCreateReview     Action = "review.create"
	ActionViewReview       Action = "review.view"
	ActionUpdateReview     Action = "review.update"
	ActionDeleteReview     Action = "review.delete"
	ActionListOwnReviews   Action = "review.list_own"
	ActionListTags         Action = "tag.list"
	ActionCreateTag        Action = "tag.create"
)

// Predicate decides whether user may perform an action. user is nil for
// anonymous requests.
type Predicate func(user *models.User) bool

func IsAuthenticated(user *models.User) bool {
	return user != nil
}

func IsSuperUser(user *models.User) bool {
	return user != nil && user.IsSuperuser
}

// permissions lists, per action, the predicates that must all hold.
// Ownership of a review is checked by the review service, which knows the
// author.
var permissions = map[Action][]Predicate{
	ActionViewProfile:      {IsAuthenticated},
	ActionUpdateProfile:    {IsAuthenticated},
	ActionRegisterBusiness: {IsAuthenticated},
	ActionListBusinesses:   {IsAuthenticated, IsSuperUser},
	ActionViewBusiness:     {IsAuthenticated},
	ActionDeleteBusiness:   {IsAuthenticated, IsSuperUser},
	ActionListReviews:      {IsAuthenticated},
	ActionCreateReview:     {IsAuthenticated},
	ActionViewReview:       {IsAuthenticated},
	ActionUpdateReview:     {IsAuthenticated},
	ActionDeleteReview:     {IsAuthenticated},
	ActionListOwnReviews:   {IsAuthenticated},
	ActionListTags:         {IsAuthenticated},
	ActionCreateTag:        {IsAuthenticated, IsSuperUser},
}

// require returns middleware enforcing the predicates of action. Anonymous
// requests get 401, authenticated ones that fail a predicate get 403.
func (s *Server) require(action Action) gin.HandlerFunc {
	preds, ok := permissions[action]
	if !ok {
		panic(fmt.Sprintf("no permissions declared for action %q", action))
	}

	return func(c *gin.Context) {
		user := currentUser(c)
		for _, p := range preds {
			if p(user) {
				continue
			}
			if user == nil {
				abortWithError(c, http.StatusUnauthorized, "authentication_required", "authentication credentials were not provided")
				return
			}
			abortWithError(c, http.StatusForbidden, "forbidden", "you do not have permission to perform this action")
			return
		}
		c.Next()
	}
}
