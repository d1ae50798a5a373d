package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/config"
	"github.com/teraturizm/transfer-admin/internal/middleware"
	"github.com/teraturizm/transfer-admin/internal/models"
	"github.com/teraturizm/transfer-admin/internal/services"
	"github.com/teraturizm/transfer-admin/internal/web"
	"github.com/teraturizm/transfer-admin/pkg/jwt"
)

// RouterDeps is everything NewRouter wires together
type RouterDeps struct {
	Config  *config.Config
	Logger  *logrus.Logger
	JWT     *jwt.Service
	DB      Pinger
	Version string

	Auth         AuthService
	Reservations ReservationService
	Accounting   AccountingService
	Fleet        FleetService
}

// NewRouter builds the HTTP router
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		deps.Logger.WithFields(logrus.Fields{
			"panic":      recovered,
			"path":       c.Request.URL.Path,
			"request_id": middleware.GetRequestID(c),
		}).Error("Recovered from panic")
		respondFailure(c, http.StatusInternalServerError, services.CodeInternal, "internal server error")
	}))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     deps.Config.CORS.AllowedMethods,
		AllowHeaders:     deps.Config.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: !allowsAnyOrigin(deps.Config.CORS.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	templates, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(templates)

	router.GET("/health", HealthCheck(deps.DB, deps.Version))
	router.GET("/admin", func(c *gin.Context) {
		c.HTML(http.StatusOK, web.AdminTemplate, web.AdminPage{
			Title:               "Tera Turizm Yönetim",
			RegistrationEnabled: deps.Config.Auth.AllowRegistration,
		})
	})

	authHandler := NewAuthHandler(deps.Auth, deps.Logger)
	reservationHandler := NewReservationHandler(deps.Reservations, deps.Logger)
	accountingHandler := NewAccountingHandler(deps.Accounting, deps.Logger)
	fleetHandler := NewFleetHandler(deps.Fleet, deps.Logger)

	admin := string(models.UserRoleAdmin)
	accountant := string(models.UserRoleAccountant)
	requireAuth := middleware.AuthMiddleware(deps.JWT, deps.Logger)
	adminOnly := middleware.RequireRole(admin)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.GET("/me", requireAuth, authHandler.Me)
		auth.GET("/me/activity", requireAuth, authHandler.Activity)

		// Public reservation form
		api.POST("/reservations", reservationHandler.Create)

		protected := api.Group("", requireAuth)

		reservations := protected.Group("/reservations")
		reservations.GET("", reservationHandler.List)
		reservations.GET("/:id", reservationHandler.Get)
		reservations.PUT("/:id", adminOnly, reservationHandler.Update)
		reservations.DELETE("/:id", adminOnly, reservationHandler.Delete)

		accounting := protected.Group("/accounting", middleware.RequireRole(admin, accountant))
		accounting.GET("", accountingHandler.List)
		accounting.POST("", accountingHandler.Create)
		accounting.GET("/report.pdf", accountingHandler.Report)

		protected.GET("/drivers", fleetHandler.ListDrivers)
		protected.POST("/drivers", adminOnly, fleetHandler.CreateDriver)
		protected.GET("/vehicles", fleetHandler.ListVehicles)
		protected.POST("/vehicles", adminOnly, fleetHandler.CreateVehicle)
	}

	router.NoRoute(func(c *gin.Context) {
		respondFailure(c, http.StatusNotFound, services.CodeNotFound, "route not found")
	})

	return router, nil
}

// allowsAnyOrigin reports a "*" entry. Browsers refuse credentials for a wildcard origin.
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
