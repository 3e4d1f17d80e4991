package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHome+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteContact, ChainMiddleware(s.ContactHandler(), s.HTMLMiddleWare()...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPISettings, ChainMiddleware(s.SettingsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPISettings, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPISettingsEvents, ChainMiddleware(s.SettingsEventsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPISettingsEvents, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// Admin session routes
	s.RegisterRouteHandler("GET "+RouteAdminLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleWare(s.NoStoreMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteAdminCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare(s.NoStoreMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAdminCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleWare(s.NoStoreMiddleware)...)) // For form_post response mode
	s.RegisterRouteHandler("GET "+RouteAdminLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare(s.NoStoreMiddleware)...))

	// Admin content routes (behind the route guard)
	s.RegisterRouteHandler("GET "+RouteAdmin, ChainMiddleware(s.AdminDashboardHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminSettings, ChainMiddleware(s.AdminSettingsHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminProjects, ChainMiddleware(s.AdminProjectHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminProjectDelete, ChainMiddleware(s.AdminProjectDeleteHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminEducation, ChainMiddleware(s.AdminEducationHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminEducationDelete, ChainMiddleware(s.AdminEducationDeleteHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminExperience, ChainMiddleware(s.AdminExperienceHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminExperienceDelete, ChainMiddleware(s.AdminExperienceDeleteHandler(), s.AdminMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware, s.CompressionMiddleware)...))
}
