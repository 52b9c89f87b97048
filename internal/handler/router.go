package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vitalkonsult/vk-api/internal/middleware"
	"github.com/vitalkonsult/vk-api/internal/models"
	"github.com/vitalkonsult/vk-api/internal/service"
)

// Handlers aggregates every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Inquiries  *InquiryHandler
	Batches    *BatchHandler
	Students   *StudentHandler
	Fees       *FeeHandler
	Attendance *AttendanceHandler
	Outreach   *OutreachHandler
	Dashboard  *DashboardHandler
	Exports    *ExportHandler
	Metrics    *MetricsHandler
	Audit      middleware.AuditRecorder
}

// RegisterRoutes mounts the API under the given prefix. Route groups map
// onto role capabilities; narrower per-record scoping (a counselor's own
// inquiries, a trainer's own batches) lives in the services.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	if h.Exports != nil {
		api.GET("/exports/download/:token", h.Exports.Download)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)
	secured.PUT("/users/me/password", middleware.Audit(h.Audit, models.AuditActionPasswordChange, "users"), h.Users.ChangePassword)

	dashboard := secured.Group("", middleware.RequireCapability(models.CapabilityDashboard))
	dashboard.GET("/dashboard", h.Dashboard.Get)

	inquiries := secured.Group("", middleware.RequireCapability(models.CapabilityInquiries))
	inquiries.GET("/inquiries", h.Inquiries.List)
	inquiries.POST("/inquiries", h.Inquiries.Create)
	inquiries.GET("/inquiries/:id", h.Inquiries.Get)
	inquiries.PUT("/inquiries/:id", h.Inquiries.Update)
	inquiries.PATCH("/inquiries/:id/lead-status", h.Inquiries.UpdateLeadStatus)

	students := secured.Group("", middleware.RequireCapability(models.CapabilityStudents))
	students.GET("/students", h.Students.List)
	students.GET("/students/:id", h.Students.Get)
	students.PUT("/students/:id", h.Students.Update)

	admissions := secured.Group("", middleware.RequireCapability(models.CapabilityAdmissions))
	admissions.POST("/students", h.Students.Admit)

	batches := secured.Group("", middleware.RequireCapability(models.CapabilityBatches))
	batches.GET("/batches", h.Batches.List)
	batches.GET("/batches/today", h.Batches.Today)
	batches.GET("/batches/:id", h.Batches.Get)
	batches.GET("/batches/:id/students", h.Students.ByBatch)
	batches.POST("/batches", middleware.RequireRoles(models.RoleManager, models.RoleHRAdmin), h.Batches.Create)
	batches.PUT("/batches/:id", middleware.RequireRoles(models.RoleManager, models.RoleHRAdmin), h.Batches.Update)

	fees := secured.Group("", middleware.RequireCapability(models.CapabilityFees))
	fees.GET("/fees", h.Fees.List)
	fees.GET("/fees/:id", h.Fees.Get)
	fees.GET("/fees/:id/receipt", h.Fees.Receipt)
	fees.POST("/fees", middleware.Audit(h.Audit, models.AuditActionFeeCollect, "fees"), h.Fees.Collect)

	attendance := secured.Group("", middleware.RequireCapability(models.CapabilityAttendance))
	attendance.GET("/attendance", h.Attendance.History)
	attendance.POST("/attendance", h.Attendance.Mark)

	outreach := secured.Group("", middleware.RequireCapability(models.CapabilityOutreach))
	outreach.GET("/outreach", h.Outreach.List)
	outreach.POST("/outreach", h.Outreach.Log)
	outreach.GET("/outreach/:id", h.Outreach.Get)

	users := secured.Group("", middleware.RequireCapability(models.CapabilityUsers))
	users.GET("/users", h.Users.List)
	users.GET("/users/:id", h.Users.Get)
	users.POST("/users", middleware.RequireRoles(models.RoleManager), middleware.Audit(h.Audit, models.AuditActionUserCreate, "users"), h.Users.Create)
	users.PUT("/users/:id", middleware.RequireRoles(models.RoleManager), middleware.Audit(h.Audit, models.AuditActionUserUpdate, "users"), h.Users.Update)
	users.DELETE("/users/:id", middleware.RequireRoles(models.RoleManager), middleware.Audit(h.Audit, models.AuditActionUserDeactivate, "users"), h.Users.Deactivate)

	if h.Exports != nil {
		secured.POST("/exports", h.Exports.Create)
		secured.GET("/exports/:id", h.Exports.Status)
	}

	if h.Metrics != nil {
		secured.GET("/metrics/summary", middleware.RequireRoles(models.RoleManager), h.Metrics.Snapshot)
	}
}
