package server

import (
	"github.com/jrsteele09/go-portfolio/internal/config"
	"github.com/jrsteele09/go-portfolio/session"
)

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public Routes
	RouteHome    = session.RouteHome
	RouteContact = "/contact"

	// API Routes
	RouteAPISettings       = "/api/settings"
	RouteAPISettingsEvents = "/api/settings/events"

	// Admin Routes - Session
	RouteAdminLogin    = "/admin/login"
	RouteAdminCallback = config.CallbackPath
	RouteAdminLogout   = "/admin/logout"

	// Admin Routes - Content
	RouteAdmin              = session.RouteAdmin
	RouteAdminSettings      = "/admin/settings"
	RouteAdminProjects      = "/admin/projects"
	RouteAdminProjectDelete = "/admin/projects/{id}/delete"

	RouteAdminEducation        = "/admin/education"
	RouteAdminEducationDelete  = "/admin/education/{id}/delete"
	RouteAdminExperience       = "/admin/experience"
	RouteAdminExperienceDelete = "/admin/experience/{id}/delete"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
