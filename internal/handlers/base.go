package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cinecore/internal/apperr"
	"cinecore/internal/middleware"
	"cinecore/internal/models"
	"cinecore/internal/services"
	"cinecore/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error": {"kind", "field", "message"}} with the
// status its kind maps to. extra fields are merged into the error object.
func respondError(c *gin.Context, err error, extra ...gin.H) {
	body := gin.H{"kind": apperr.KindOf(err)}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Field != "" {
			body["field"] = ae.Field
		}
		body["message"] = ae.Message
	}
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		c.Error(err)
		body["message"] = "internal server error"
	}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	c.JSON(status, gin.H{"error": body})
}

// userID is 0 for anonymous callers.
func userID(c *gin.Context) uint {
	if u := middleware.CurrentUser(c); u != nil {
		return u.ID
	}
	return 0
}

func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound(name, "invalid id")
	}
	return uint(id), nil
}

func subjectRef(c *gin.Context) (services.SubjectRef, error) {
	t, err := services.ParseSubjectType(c.Param("type"))
	if err != nil {
		return services.SubjectRef{}, err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return services.SubjectRef{}, err
	}
	return services.SubjectRef{Type: t, ID: id}, nil
}

func pageFrom(c *gin.Context) utils.Page {
	return utils.NewPage(c.Query("page"), c.Query("page_size"))
}

// userView is the public shape of an account.
func userView(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"is_critic":  u.IsCritic,
		"created_at": u.CreatedAt,
	}
}
