package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kietute/safevoice/internal/api/handlers"
	"github.com/kietute/safevoice/internal/middleware"
	"github.com/kietute/safevoice/internal/models"
)

type Router struct {
	app            *fiber.App
	publicHandler  *handlers.PublicHandler
	authHandler    *handlers.AuthHandler
	adminHandler   *handlers.AdminHandler
	authMiddleware *middleware.AuthMiddleware
}

func NewRouter(
	app *fiber.App,
	publicHandler *handlers.PublicHandler,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		app:            app,
		publicHandler:  publicHandler,
		authHandler:    authHandler,
		adminHandler:   adminHandler,
		authMiddleware: authMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	api := r.app.Group("/api")

	// Reporter-facing routes, no authentication.
	api.Get("/health", r.publicHandler.Health)
	api.Get("/report-types", r.publicHandler.ReportTypes)
	api.Post("/upload/media", r.publicHandler.UploadMedia)
	api.Post("/upload-image-base64", r.publicHandler.UploadBase64)
	api.Post("/submit", r.publicHandler.Submit)

	// Staff routes. Each route declares its own role gate; listing only
	// needs a valid session.
	admin := api.Group("/admin")
	admin.Post("/login", r.authHandler.Login)

	authenticated := r.authMiddleware.Authenticate()
	teacherOrAdmin := r.authMiddleware.RequireRole(models.RoleTeacher)
	adminOnly := r.authMiddleware.RequireRole(models.RoleAdmin)

	admin.Get("/reports", authenticated, r.adminHandler.ListReports)
	admin.Post("/reports/:id/status", authenticated, teacherOrAdmin, r.adminHandler.UpdateStatus)

	admin.Post("/reveal-identity", authenticated, adminOnly, r.adminHandler.RevealIdentity)
	admin.Get("/pin/status", authenticated, adminOnly, r.adminHandler.PinStatus)
	admin.Post("/pin", authenticated, adminOnly, r.adminHandler.SetPin)

	admin.Get("/teachers", authenticated, adminOnly, r.adminHandler.ListTeachers)
	admin.Post("/teachers", authenticated, adminOnly, r.adminHandler.UpsertTeacher)
	admin.Delete("/teachers/:sdt", authenticated, adminOnly, r.adminHandler.DeleteTeacher)
}
