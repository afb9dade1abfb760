package server

// Route path constants
const (
	RouteAPIPrefix = "/api"

	// Auth
	RouteAuthLogin  = RouteAPIPrefix + "/auth/login"
	RouteAuthLogout = RouteAPIPrefix + "/auth/logout"
	RouteAuthMe     = RouteAPIPrefix + "/auth/me"

	// Back-office resources, e.g. /api/clientes and /api/clientes/{id}
	RouteResource     = RouteAPIPrefix + "/{resource}"
	RouteResourceItem = RouteAPIPrefix + "/{resource}/{id}"

	RouteHealth = "/healthz"
)
