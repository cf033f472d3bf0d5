package landing

import (
	"net/http"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/middleware"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/utils"
	"github.com/cryptobio/cryptobio-backend/internal/profile"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type landingHandler struct {
	profile *profile.Service
}

func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, rdb *redis.Client) {
	handler := landingHandler{
		profile: &profile.Service{Db: db, Rdb: rdb},
	}

	routes := rg.Group("/entry")
	routes.GET("", middleware.RequireWalletSession, handler.resolveEntry)
}

// resolveEntry routes a connected wallet to its dashboard or, when no
// profile exists yet, to the creation wizard.
func (h landingHandler) resolveEntry(c *gin.Context) {
	wallet := utils.GetWallet(c)

	if h.profile.FindByWallet(c.Request.Context(), wallet) != nil {
		c.JSON(http.StatusOK, gin.H{"redirect": "/dashboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/create"})
}
