package routes

import (
	"github.com/gin-gonic/gin"

	"licgate/internal/handlers"
	"licgate/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	verifyHandler *handlers.VerifyHandler,
	authHandler *handlers.AuthHandler,
	licenseHandler *handlers.LicenseHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {

	// ---- public
	r.POST("/verify", verifyHandler.Verify)
	r.GET("/healthz", healthHandler.Healthz)

	// ---- admin (JWT)
	admin := r.Group("/admin")
	admin.POST("/login", authHandler.Login)
	admin.Use(middleware.AuthMiddleware())
	{
		admin.POST("/licenses", licenseHandler.Issue)
		admin.GET("/licenses", licenseHandler.List)
		admin.GET("/licenses/:id", licenseHandler.Get)
		admin.DELETE("/licenses/:id", licenseHandler.Delete)
		admin.GET("/licenses/:id/events", licenseHandler.Events)
		admin.GET("/licenses/:id/certificate", licenseHandler.Certificate)
		admin.GET("/stats", licenseHandler.Stats)
	}

	return r
}
