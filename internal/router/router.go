// Package router assembles the gin engine and registers every endpoint.
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-booking-api/internal/handler"
	"github.com/noah-isme/tutor-booking-api/internal/middleware"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/service"
	"github.com/noah-isme/tutor-booking-api/pkg/config"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
	"github.com/noah-isme/tutor-booking-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutor-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutor-booking-api/pkg/middleware/requestid"
	"github.com/noah-isme/tutor-booking-api/pkg/response"
)

// HandlerBundle groups the HTTP handlers and the collaborators routes need.
type HandlerBundle struct {
	Auth          *handler.AuthHandler
	Catalog       *handler.CatalogHandler
	Class         *handler.ClassHandler
	Booking       *handler.BookingHandler
	Enrollment    *handler.EnrollmentHandler
	Waitlist      *handler.WaitlistHandler
	Notification  *handler.NotificationHandler
	Risk          *handler.RiskHandler
	Dashboard     *handler.DashboardHandler
	Metrics       *handler.MetricsHandler
	Authenticator middleware.Authenticator
	MetricsSvc    *service.MetricsService
	LoginLimiter  *middleware.RateLimiter
}

// New builds the engine with global middleware and all routes.
func New(cfg *config.Config, logr *zap.Logger, hb *HandlerBundle) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(logr))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if hb.MetricsSvc != nil {
		r.Use(middleware.Metrics(hb.MetricsSvc))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Endpoint %s %s not found", c.Request.Method, c.Request.URL.Path)))
	})

	r.GET("/metrics", hb.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", hb.Metrics.Health)

	RegisterAuthRoutes(api, hb)
	RegisterCatalogRoutes(api, hb)
	RegisterClassRoutes(api, hb)
	RegisterBookingRoutes(api, hb)
	RegisterEnrollmentRoutes(api, hb)
	RegisterWaitlistRoutes(api, hb)
	RegisterNotificationRoutes(api, hb)
	RegisterRiskRoutes(api, hb)
	RegisterDashboardRoutes(api, hb)
	return r
}

func requireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return middleware.RequireRoles(roles...)
}

// RegisterAuthRoutes registers login, logout and profile endpoints.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *HandlerBundle) {
	auth := api.Group("/auth")
	if hb.LoginLimiter != nil {
		auth.POST("/login", hb.LoginLimiter.Middleware(), hb.Auth.Login)
	} else {
		auth.POST("/login", hb.Auth.Login)
	}

	protected := auth.Group("")
	protected.Use(middleware.Auth(hb.Authenticator))
	protected.POST("/logout", hb.Auth.Logout)
	protected.GET("/me", hb.Auth.Me)
}

// RegisterCatalogRoutes registers tutor, subject and user endpoints.
func RegisterCatalogRoutes(api *gin.RouterGroup, hb *HandlerBundle) {
	authn := middleware.Auth(hb.Authenticator)

	api.GET("/tutors", hb.Catalog.ListTutors)
	api.GET("/tutors/:id", hb.Catalog.GetTutor)
	api.GET("/tutors/:id/availability", hb.Catalog.GetAvailability)
	api.PUT("/tutors/:id/availability", authn, requireRoles(models.RoleTutor), hb.Catalog.UpdateAvailability)
	api.GET("/subjects", hb.Catalog.ListSubjects)
	api.GET("/users/:id", authn, hb.Catalog.GetUser)
}

// RegisterClassRoutes registers class and material endpoints.
func RegisterClassRoutes(api *gin.RouterGroup, hb *HandlerBundle) {
	authn := middleware.Auth(hb.Authenticator)
	tutorOnly := requireRoles(models.RoleTutor)

	api.GET("/classes", hb.Class.List)
	api.GET("/classes/:id", hb.Class.Get)
	api.POST("/classes", authn, tutorOnly, hb.Class.Create)
	api.POST("/classes/:id/materials", authn, tutorOnly, hb.Class.AddMaterial)
	api.GET("/classes/:id/students", authn, tutorOnly, hb.Enrollment.ClassStudents)

	api.GET("/materials/:id/download-url", authn, hb.Class.DownloadURL)
	api.GET("/materials/download", hb.Class.Download)
}

// RegisterBookingRoutes registers the booking lifecycle.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *HandlerBundle) {
	bookings := api.Group("/bookings")
	bookings.Use(middleware.Auth(hb.Authenticator))
	bookings.GET("", hb.Booking.List)
	bookings.POST("", requireRoles(models.RoleStudent), hb.Booking.Create)
	bookings.PATCH("/:id", requireRoles(models.RoleTutor, models.RoleCTSV), hb.Booking.UpdateStatus)
	bookings.DELETE("/:id", hb.Booking.Cancel)
	bookings.GET("/:id/alternative-slots", hb.Booking.AlternativeSlots)
	bookings.PUT("/:id/reschedule", hb.Booking.Reschedule)
}

// RegisterEnrollmentRoutes registers enrollment and grading endpoints.
func RegisterEnrollmentRoutes(api *gin.RouterGroup, hb *HandlerBundle) {
	authn := middleware.Auth(hb.Authenticator)

	api.GET("/enrollments", authn, hb.Enrollment.List)
	api.GET("/students/:id/enrollments", authn, hb.Enrollment.ListByStudent)
	api.PUT("/enrollments/:id/grade", authn, requireRoles(models.RoleTutor), hb.Enrollment.UpdateGrade)
	api.DELETE("/enrollments/:id", authn, hb.Enrollment.Drop)
}

// RegisterWaitlistRoutes registers waitlist endpoints.
func RegisterWaitlistRoutes(api *gin.RouterGroup, hb *HandlerBundle) {
	waitlist := api.Group("/waitlist")
	waitlist.Use(middleware.Auth(hb.Authenticator))
	waitlist.POST("", hb.Waitlist.Add)
	waitlist.GET("", hb.Waitlist.List)
	waitlist.DELETE("/:id", hb.Waitlist.Remove)
}

// RegisterNotificationRoutes registers inbox endpoints.
func RegisterNotificationRoutes(api *gin.RouterGroup, hb *HandlerBundle) {
	notifications := api.Group("/notifications")
	notifications.Use(middleware.Auth(hb.Authenticator))
	notifications.GET("", hb.Notification.List)
	notifications.GET("/poll", hb.Notification.Poll)
	notifications.PUT("/:id/read", hb.Notification.MarkRead)
}

// RegisterRiskRoutes registers the student affairs endpoints.
func RegisterRiskRoutes(api *gin.RouterGroup, hb *HandlerBundle) {
	ctsv := api.Group("")
	ctsv.Use(middleware.Auth(hb.Authenticator), requireRoles(models.RoleCTSV))

	ctsv.GET("/risk-assessment", hb.Risk.Assessment)
	ctsv.GET("/risk-assessment/export", hb.Risk.Export)
	ctsv.GET("/risk-assessment/students/:id", hb.Risk.Student)
	ctsv.POST("/risk-detection/run", hb.Risk.RunDetection)

	ctsv.GET("/interventions", hb.Risk.ListInterventions)
	ctsv.GET("/interventions/student/:studentId", hb.Risk.StudentInterventions)
	ctsv.POST("/interventions", hb.Risk.CreateIntervention)
	ctsv.PATCH("/interventions/:id", hb.Risk.UpdateIntervention)
}

// RegisterDashboardRoutes registers one dashboard per role.
func RegisterDashboardRoutes(api *gin.RouterGroup, hb *HandlerBundle) {
	dashboard := api.Group("/dashboard")
	dashboard.Use(middleware.Auth(hb.Authenticator))
	dashboard.GET("/tutor", requireRoles(models.RoleTutor), hb.Dashboard.Tutor)
	dashboard.GET("/student", requireRoles(models.RoleStudent), hb.Dashboard.Student)
	dashboard.GET("/ctsv", requireRoles(models.RoleCTSV), hb.Dashboard.CTSV)
}
