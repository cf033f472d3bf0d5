package profile

import (
	"net/http"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/reject"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type profileHandler struct {
	profile *Service
}

func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, rdb *redis.Client) {
	handler := profileHandler{
		profile: &Service{Db: db, Rdb: rdb},
	}

	routes := rg.Group("/profiles")
	routes.GET("/:username", handler.getProfileByUsername)
}

// getProfileByUsername backs the public tipping page load. A miss is a
// terminal Not Found; no retry path exists.
func (h profileHandler) getProfileByUsername(c *gin.Context) {
	p := h.profile.FindByUsername(c.Request.Context(), c.Param("username"))
	if p == nil {
		c.JSON(http.StatusNotFound, reject.ProfileNotFoundProblem())
		return
	}

	c.JSON(http.StatusOK, p)
}
