package main

import (
	"context"
	"net/http"
	"time"

	"github.com/cryptobio/cryptobio-backend/internal/dashboard"
	"github.com/cryptobio/cryptobio-backend/internal/landing"
	"github.com/cryptobio/cryptobio-backend/internal/pkg/middleware"
	"github.com/cryptobio/cryptobio-backend/internal/profile"
	"github.com/cryptobio/cryptobio-backend/internal/tipping"
	"github.com/cryptobio/cryptobio-backend/internal/wallet"
	"github.com/cryptobio/cryptobio-backend/internal/wizard"
	"github.com/cryptobio/cryptobio-backend/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	setupViper()
	setupZerolog()

	db := setupDb()
	rdb := setupRedis()
	provider := setupWalletProvider()
	defer provider.Close()

	apiRouter := setupApiRouter(db, rdb, provider)

	port := viper.GetString("PORT")
	server := &http.Server{
		Addr:         port,
		Handler:      apiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	server.ListenAndServe()
}

func setupDb() *gorm.DB {
	dbUrl := viper.GetString("DB_URL")

	db, err := gorm.Open(postgres.Open(dbUrl), &gorm.Config{TranslateError: true})

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	sqlDb, _ := db.DB()

	sqlDb.SetMaxOpenConns(50)
	sqlDb.SetConnMaxLifetime(time.Minute * 10)

	return db
}

func setupRedis() *redis.Client {
	addr := viper.GetString("REDIS_ADDR")
	if addr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("REDIS_PASS"),
	})
}

func setupWalletProvider() *wallet.RpcProvider {
	provider, err := wallet.Dial(
		context.Background(),
		viper.GetString("NODE_RPC_URL"),
		viper.GetString("WALLET_RPC_URL"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize wallet provider")
	}
	return provider
}

func setupApiRouter(db *gorm.DB, rdb *redis.Client, provider *wallet.RpcProvider) *gin.Engine {
	apiRouter := gin.Default()
	routerGroup := apiRouter.Group("/cryptobio-api")

	middleware.RegisterGlobalMiddleware(apiRouter)

	ws.RegisterRoutes(routerGroup)
	landing.RegisterRoutes(routerGroup, db, rdb)
	profile.RegisterRoutes(routerGroup, db, rdb)
	wizard.RegisterRoutes(routerGroup, db, rdb)
	dashboard.RegisterRoutes(routerGroup, db, rdb)
	tipping.RegisterRoutes(routerGroup, db, rdb, provider)

	return apiRouter
}

func setupViper() {
	viper.AutomaticEnv()
	viper.SetConfigFile("./.env")

	viper.SetDefault("CHAIN_ID", wallet.BaseChainId)
	viper.SetDefault("USDC_ADDRESS", wallet.UsdcAddress.Hex())
	viper.SetDefault("PLATFORM_FEE_PERCENT", 1)
}

func setupZerolog() {
	zerolog.LevelFieldName = "severity"
	zerolog.TimestampFieldName = "time"
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
