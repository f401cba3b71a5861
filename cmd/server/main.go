package main

import (
	"net/http"

	_ "commercego/docs" // swagger docs

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"commercego/internal/auth"
	"commercego/internal/cache"
	"commercego/internal/config"
	"commercego/internal/db"
	"commercego/internal/handler"
	"commercego/internal/logging"
	"commercego/internal/mail"
	"commercego/internal/middleware"
	"commercego/internal/model"
	"commercego/internal/repository"
	"commercego/internal/router"
	"commercego/internal/service"
)

// @title CommerceGo API
// @version 1.0
// @description Commerce review backend with dual-entity JWT authentication and attempt-limited password recovery.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Environment, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	e := echo.New()
	e.Use(echomw.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Merchant{},
		&model.RestorationRequest{},
		&model.Webpage{},
	); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, logger.Named("mail"))

	// Repositories and the auth-core stores over them
	userRepo := repository.NewUserRepository(gormDB)
	merchantRepo := repository.NewMerchantRepository(gormDB)
	restorationRepo := repository.NewRestorationRepository(gormDB)
	webpageRepo := repository.NewWebpageRepository(gormDB)
	userStore := repository.NewUserPrincipalStore(userRepo)
	mercStore := repository.NewMerchantPrincipalStore(merchantRepo)

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Services
	authService := service.NewAuthService(userRepo, merchantRepo, userStore, mercStore, jwtService, mailer, cfg.PublicURL, logger)
	recoveryService := service.NewRecoveryService(userStore, mercStore, restorationRepo, jwtService, mailer, logger)
	userService := service.NewUserService(userRepo, cacheClient)
	merchantService := service.NewMerchantService(merchantRepo, cacheClient)
	webpageService := service.NewWebpageService(webpageRepo, cacheClient)

	// Handlers and the authentication gate
	gate := middleware.NewAuth(jwtService, userStore, mercStore, logger)
	userAccounts := handler.NewAccountHandler(model.KindUser, authService, recoveryService)
	merchantAccounts := handler.NewAccountHandler(model.KindMerchant, authService, recoveryService)
	userHandler := handler.NewUserHandler(authService, userService)
	merchantHandler := handler.NewMerchantHandler(authService, merchantService)
	webpageHandler := handler.NewWebpageHandler(webpageService)

	router.Register(e, gate, userAccounts, merchantAccounts, userHandler, merchantHandler, webpageHandler)

	addr := ":" + cfg.ServerPort
	logger.Info("starting server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server start", zap.Error(err))
	}
}
