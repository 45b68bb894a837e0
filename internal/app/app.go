package app

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"licgate/internal/config"
	"licgate/internal/handlers"
	"licgate/internal/middleware"
	"licgate/internal/pdf"
	"licgate/internal/repositories"
	"licgate/internal/routes"
	"licgate/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "licgate/docs"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.SetJWTKey(cfg.JWT.Secret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()

	// === Repos ===
	codeRepo := repositories.NewLicenseCodeRepository(db)
	eventRepo := repositories.NewActivationEventRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	telegramService := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	activationService := services.NewActivationService(codeRepo, eventRepo, telegramService)
	licenseService := services.NewLicenseService(codeRepo, eventRepo, emailService)

	pdfGen := pdf.NewCertificateGenerator(cfg.Files.RootDir)

	// === Handlers ===
	verifyHandler := handlers.NewVerifyHandler(activationService)
	authHandler := handlers.NewAuthHandler(cfg.Admin)
	licenseHandler := handlers.NewLicenseHandler(licenseService, pdfGen)
	healthHandler := handlers.NewHealthHandler(db)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// не-POST на /verify обязан получать 405, а не 404
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handlers.VerifyResponse{Success: false, Message: "Method not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.VerifyResponse{Success: false, Message: "Not found"})
	})

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		verifyHandler,
		authHandler,
		licenseHandler,
		healthHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
