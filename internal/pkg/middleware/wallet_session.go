package middleware

import (
	"net/http"
	"strings"

	"github.com/cryptobio/cryptobio-backend/internal/pkg/reject"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	walletHeader        string = "X-Wallet-Address"
	walletInvalid       string = "error.wallet.invalid-address"
)

// RequireWalletSession gates the wizard, the dashboard and the tip send
// path. No connected wallet renders the connect prompt, never Not Found.
// The address is lowercased before anything downstream sees it.
func RequireWalletSession(c *gin.Context) {
	address := strings.TrimSpace(c.Request.Header.Get(walletHeader))
	if address == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, reject.WalletRequiredProblem())
		return
	}

	if !utils.IsHexAddress(address) {
		log.Warn().Str("address", address).Msg("Rejected malformed wallet address header")
		c.AbortWithStatusJSON(
			http.StatusBadRequest,
			reject.NewProblem().
				WithTitle("Malformed wallet address").
				WithStatus(http.StatusBadRequest).
				WithCode(walletInvalid).
				Build())
		return
	}

	utils.SetWalletCtx(strings.ToLower(address), c)
}
