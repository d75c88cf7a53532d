package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/coursemate/coursemate-api/internal/middleware"
	"github.com/coursemate/coursemate-api/internal/models"
)

// professorFrom pulls the authenticated professor the auth middleware stored.
func professorFrom(c *gin.Context) (*models.Professor, bool) {
	value, ok := c.Get(middleware.ContextProfessor)
	if !ok {
		return nil, false
	}
	professor, ok := value.(*models.Professor)
	return professor, ok
}
