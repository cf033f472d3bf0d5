package wizard

import (
	"net/http"
	"strconv"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/middleware"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/reject"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/utils"
	"github.com/cryptobio/cryptobio-backend/internal/profile"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type wizardHandler struct {
	wizard *Service
}

func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, rdb *redis.Client) {
	handler := wizardHandler{
		wizard: NewService(&profile.Service{Db: db, Rdb: rdb}, DefaultDebounce),
	}

	routes := rg.Group("/wizard")
	routes.Use(middleware.RequireWalletSession)
	routes.GET("", handler.getState)
	routes.PUT("/username", handler.setUsername)
	routes.POST("/advance", handler.advance)
	routes.PUT("/details", handler.setDetails)
	routes.PUT("/amounts", handler.setAmounts)
	routes.POST("/submit", handler.submit)
}

func (h wizardHandler) getState(c *gin.Context) {
	state, redirect := h.wizard.Start(c.Request.Context(), utils.GetWallet(c))
	if redirect != "" {
		c.JSON(http.StatusOK, gin.H{"redirect": redirect})
		return
	}
	c.JSON(http.StatusOK, state)
}

type SetUsernameRequest struct {
	Username string `json:"username"`
}

func (h wizardHandler) setUsername(c *gin.Context) {
	body := SetUsernameRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	c.JSON(http.StatusOK, h.wizard.SetUsername(utils.GetWallet(c), body.Username))
}

func (h wizardHandler) advance(c *gin.Context) {
	state, err := h.wizard.Advance(utils.GetWallet(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}
	c.JSON(http.StatusOK, state)
}

type SetDetailsRequest struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	AvatarUrl   string `json:"avatarUrl"`
	TwitterUrl  string `json:"twitterUrl"`
}

func (h wizardHandler) setDetails(c *gin.Context) {
	body := SetDetailsRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	state := h.wizard.SetDetails(
		utils.GetWallet(c),
		body.DisplayName, body.Bio, body.AvatarUrl, body.TwitterUrl)
	c.JSON(http.StatusOK, state)
}

type SetAmountsRequest struct {
	Amounts []string `json:"amounts"`
}

func (h wizardHandler) setAmounts(c *gin.Context) {
	body := SetAmountsRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	// Non-numeric field values coerce to 0; submission filters them out.
	amounts := make([]int64, 0, len(body.Amounts))
	for _, raw := range body.Amounts {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			n = 0
		}
		amounts = append(amounts, n)
	}

	c.JSON(http.StatusOK, h.wizard.SetAmounts(utils.GetWallet(c), amounts))
}

func (h wizardHandler) submit(c *gin.Context) {
	created, redirect, err := h.wizard.Submit(c.Request.Context(), utils.GetWallet(c))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"profile": created, "redirect": redirect})
}
