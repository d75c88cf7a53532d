package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/coursemate/coursemate-api/internal/service"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
	"github.com/coursemate/coursemate-api/pkg/response"
)

const (
	// HeaderAdminCode carries the shared admin secret on admin routes.
	HeaderAdminCode = "X-Admin-Code"
	// HeaderProfessorCode carries the professor access code on upload routes.
	HeaderProfessorCode = "X-Professor-Code"

	// ContextProfessor is the gin context key the resolved professor is stored under.
	ContextProfessor = "professor"
)

// AdminAuth gates a route group behind the shared admin code.
func AdminAuth(adminCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader(HeaderAdminCode)
		if adminCode == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(adminCode)) != 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid admin code"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ProfessorAuth resolves the professor code header to an active professor and
// stores it in the request context.
func ProfessorAuth(professors *service.ProfessorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		professor, err := professors.Authenticate(c.Request.Context(), c.GetHeader(HeaderProfessorCode))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextProfessor, professor)
		c.Next()
	}
}
