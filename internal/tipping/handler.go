package tipping

import (
	"net/http"
	"strings"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/reject"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/ws"
	"github.com/cryptobio/cryptobio-backend/internal/profile"
	"github.com/cryptobio/cryptobio-backend/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type tippingHandler struct {
	tips *Service
}

func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, rdb *redis.Client, provider wallet.Provider) *Service {
	cfg := Config{
		FeePercent:  viper.GetInt64("PLATFORM_FEE_PERCENT"),
		FeeAddress:  viper.GetString("PLATFORM_FEE_ADDRESS"),
		TargetChain: viper.GetUint64("CHAIN_ID"),
		Token:       common.HexToAddress(viper.GetString("USDC_ADDRESS")),
	}

	service := NewService(
		&profile.Service{Db: db, Rdb: rdb},
		provider,
		ws.NewNotificationHub(),
		cfg,
	)
	handler := tippingHandler{tips: service}

	routes := rg.Group("/tips")
	routes.POST("/sessions", handler.openSession)
	routes.GET("/sessions/:sessionId", handler.getSession)
	routes.POST("/sessions/:sessionId/send", handler.send)
	routes.POST("/sessions/:sessionId/reset", handler.reset)

	return service
}

type OpenSessionRequest struct {
	Username string `json:"username"`
}

func (h tippingHandler) openSession(c *gin.Context) {
	body := OpenSessionRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	snapshot, err := h.tips.OpenSession(c.Request.Context(), body.Username)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

func (h tippingHandler) getSession(c *gin.Context) {
	snapshot, err := h.tips.GetSnapshot(c.Param("sessionId"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

type SendRequest struct {
	Amount string `json:"amount"`
}

// send runs the tip attempt to its terminal state. A missing wallet
// header is not an HTTP auth failure here: the page renders it as a
// dismissible error, so the session carries it instead.
func (h tippingHandler) send(c *gin.Context) {
	body := SendRequest{}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, reject.BodyParseProblem())
		return
	}

	visitorWallet := strings.ToLower(strings.TrimSpace(c.GetHeader("X-Wallet-Address")))

	snapshot, err := h.tips.Send(c.Request.Context(), c.Param("sessionId"), visitorWallet, body.Amount)
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h tippingHandler) reset(c *gin.Context) {
	snapshot, err := h.tips.Reset(c.Param("sessionId"))
	if err != nil {
		c.JSON(err.Problem.Status, err.Problem)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
