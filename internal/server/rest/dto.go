package rest

import (
	"time"

	"github.com/dmitrijs2005/clientreview/internal/server/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Platform string `json:"platform"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	Platform     string `json:"platform"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	TokenType    string        `json:"tokenType"`
	ExpiresIn    int64         `json:"expiresIn"`
	User         *userResponse `json:"user,omitempty"`
}

type cookieSessionResponse struct {
	Detail string        `json:"detail"`
	User   *userResponse `json:"user,omitempty"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username    *string `json:"username"`
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
	JobTitle    *string `json:"jobTitle"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	JobTitle    string `json:"jobTitle"`
	IsSuperuser bool   `json:"isSuperuser"`
}

func toUserResponse(u *models.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.UserName,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		JobTitle:    u.JobTitle,
		IsSuperuser: u.IsSuperuser,
	}
}

type phoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type lookupResponse struct {
	BusinessID string `json:"businessId"`
}

// businessResponse deliberately has no fingerprint field.
type businessResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func toBusinessResponse(b *models.Business) businessResponse {
	return businessResponse{ID: b.ID, CreatedAt: b.CreatedAt}
}

type reviewRequest struct {
	TagSelection []int64 `json:"tagSelection"`
}

type reviewResponse struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	BusinessID   string    `json:"businessId"`
	TagSelection []int64   `json:"tagSelection"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toReviewResponse(r *models.Review) reviewResponse {
	tags := r.TagSelection
	if tags == nil {
		tags = []int64{}
	}
	return reviewResponse{
		ID:           r.ID,
		AuthorID:     r.AuthorID,
		BusinessID:   r.BusinessID,
		TagSelection: tags,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toReviewResponses(list []*models.Review) []reviewResponse {
	out := make([]reviewResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReviewResponse(r))
	}
	return out
}

type tagRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Group    string `json:"group"`
}

type tagResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Group    string `json:"group,omitempty"`
}

func toTagResponse(t *models.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Category: string(t.Category), Group: t.Group}
}
