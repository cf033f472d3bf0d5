package dashboard

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

type dashboardHandler struct {
	editor *Service
}

func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, rdb *redis.Client) {
	handler := dashboardHandler{
		editor: NewService(&profile.Service{Db: db, Rdb: rdb}),
	}

	routes := rg.Group("/dashboard")
	routes.Use(middleware.RequireWalletSession)
	routes.GET("", handler.load)
	routes.PUT("/draft", handler.updateDraft)
	routes.POST("/payout/use-wallet", handler.useWalletAddress)
	routes.POST("/save", handler.save)
	routes.GET("/preview", handler.preview)
}

func (h dashboardHandler) load(c *gin.Context) {
	view, redirect := h.editor.Load(c.Request.Context(), utils.GetWallet(c))
	if redirect != "" {
		c.JSON(http.StatusOK, gin.H{"redirect": redirect})
		return
	}
	c.JSON(http.StatusOK, view)
}

type DraftRequest struct {
	DisplayName   string   `json:"displayName"`
	Bio           string   `json:"bio"`
	AvatarUrl     string   `json:"avatarUrl"`
	TwitterUrl    string   `json:"twitterUrl"`
	PayoutAddress string   `json:"payoutAddress"`
	TipAmounts    []string `json:"tipAmounts"`
}

func (h dashboardHandler) updateDraft(c *gin.Context) {
	body := DraftRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	// Same coercion as the wizard: non-numeric tip fields become 0 and
	// are filtered at save time.
	amounts := make([]int64, 0, len(body.TipAmounts))
	for _, raw := range body.TipAmounts {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			n = 0
		}
		amounts = append(amounts, n)
	}

	view, problem := h.editor.UpdateDraft(utils.GetWallet(c), Draft{
		DisplayName:   body.DisplayName,
		Bio:           body.Bio,
		AvatarUrl:     body.AvatarUrl,
		TwitterUrl:    body.TwitterUrl,
		PayoutAddress: body.PayoutAddress,
		TipAmounts:    amounts,
	})
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h dashboardHandler) useWalletAddress(c *gin.Context) {
	view, problem := h.editor.UseWalletAddress(utils.GetWallet(c))
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h dashboardHandler) save(c *gin.Context) {
	view, problem := h.editor.Save(c.Request.Context(), utils.GetWallet(c))
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h dashboardHandler) preview(c *gin.Context) {
	view, problem := h.editor.Preview(utils.GetWallet(c))
	if problem != nil {
		c.JSON(problem.Problem.Status, problem.Problem)
		return
	}
	c.JSON(http.StatusOK, view)
}
