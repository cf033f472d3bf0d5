package utils

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

const walletCtxKey string = "walletAddress"

var hexAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsHexAddress reports whether addr looks like an EVM address:
// 0x followed by exactly 40 hex characters.
func IsHexAddress(addr string) bool {
	return hexAddressPattern.MatchString(addr)
}

// GetWallet returns the lowercased wallet address the session middleware
// attached to the request context.
func GetWallet(ctx *gin.Context) string {
	value, exists := ctx.Get(walletCtxKey)
	if !exists {
		ctx.AbortWithStatus(http.StatusInternalServerError)
		return ""
	}
	return value.(string)
}

func SetWalletCtx(address string, ctx *gin.Context) {
	ctx.Set(walletCtxKey, address)
}
