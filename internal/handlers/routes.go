package handlers

import (
	"licenseportal/internal/middleware"
	"licenseportal/internal/models"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Routes bundles the handler sets mounted by Register. Nil sets are skipped.
type Routes struct {
	Health        *HealthHandlers
	Applications  *ApplicationHandlers
	Licenses      *LicenseHandlers
	Notifications *NotificationHandlers
	Dashboard     *DashboardHandlers
	Jobs          *JobHandlers
	Directory     *DirectoryHandlers
	Version       *middleware.VersionMiddleware
	Swagger       bool
}

// Register mounts every route. auth must authenticate the caller and place
// their identity on the request context.
func (r *Routes) Register(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	if r.Health != nil {
		e.GET("/health", r.Health.HealthCheck)
		e.GET("/health/ready", r.Health.ReadinessCheck)
	}
	if r.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	v1 := e.Group("/v1")
	if r.Version != nil {
		v1.Use(r.Version.VersionHeader("v1"))
	}
	v1.Use(auth...)

	staff := middleware.RequireRole(middleware.Staff...)
	admin := middleware.RequireRole(models.RoleAdministrator)

	if h := r.Applications; h != nil {
		v1.POST("/applications", h.SubmitApplication)
		v1.GET("/applications", h.ListApplications)
		v1.GET("/applications/:id", h.GetApplication)
		v1.PUT("/applications/:id/approve", h.ApproveApplication, staff)
		v1.PUT("/applications/:id/reject", h.RejectApplication, staff)
		v1.PUT("/applications/:id/paid", h.MarkApplicationPaid, staff)
		v1.POST("/applications/:id/documents", h.UploadDocument)
	}
	if h := r.Licenses; h != nil {
		v1.POST("/licenses", h.IssueLicense, staff)
		v1.GET("/licenses", h.ListLicenses)
		v1.GET("/licenses/:id", h.GetLicense)
		v1.PUT("/licenses/:id/renew", h.RenewLicense, staff)
		v1.GET("/licenses/:id/certificate", h.GetCertificate)
	}
	if h := r.Notifications; h != nil {
		v1.GET("/notifications", h.ListMyNotifications)
		v1.PUT("/notifications/:id/read", h.MarkNotificationRead)
	}
	if h := r.Dashboard; h != nil {
		v1.GET("/dashboard", h.GetDashboard, staff)
	}
	if h := r.Jobs; h != nil {
		v1.GET("/jobs", h.ListJobs, admin)
		v1.POST("/jobs/:name/run", h.RunJob, admin)
	}
	if h := r.Directory; h != nil {
		v1.GET("/agencies", h.ListAgencies)
		v1.POST("/agencies", h.CreateAgency, admin)
		v1.GET("/users", h.ListUsers, admin)
		v1.POST("/users", h.RegisterUser, admin)
		v1.DELETE("/users/:id", h.DeactivateUser, admin)
	}
}
