package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))

	// RESOURCES: reads for any role, mutations for administrators
	s.RegisterRouteHandler("GET "+RouteResource, ChainMiddleware(s.ListResourceHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteResourceItem, ChainMiddleware(s.GetResourceHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteResource, ChainMiddleware(s.CreateResourceHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("PUT "+RouteResourceItem, ChainMiddleware(s.UpdateResourceHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))
	s.RegisterRouteHandler("DELETE "+RouteResourceItem, ChainMiddleware(s.DeleteResourceHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireAdmin())...))

	// CORS preflight
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPrefix+"/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
