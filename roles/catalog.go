package roles

import (
	"net/url"
	"strings"
)

// MenuOption is one navigable feature of the application.
type MenuOption struct {
	Label        string `json:"label"`
	Icon         string `json:"icon"`
	Route        string `json:"route"`
	Description  string `json:"description,omitempty"`
	RequiredRole Role   `json:"requiredRole,omitempty"` // RoleNone: any authenticated session
}

// Routes of the default catalog.
const (
	RouteHome         = "/home"
	RouteClients      = "/clientes"
	RouteEmployees    = "/empleado"
	RouteProducts     = "/productos"
	RouteStock        = "/stock"
	RouteSales        = "/ventas"
	RouteOrders       = "/pedidos"
	RouteRawMaterials = "/materia-prima"
)

var defaultCatalog = []MenuOption{
	{Label: "Dashboard", Icon: "dashboard", Route: RouteHome, Description: "Main system dashboard"},
	{Label: "Clients", Icon: "group", Route: RouteClients, Description: "Manage client information", RequiredRole: RoleAdmin},
	{Label: "Employees", Icon: "person", Route: RouteEmployees, Description: "Manage employee accounts", RequiredRole: RoleAdmin},
	{Label: "Products", Icon: "inventory", Route: RouteProducts, Description: "Manage the product catalog", RequiredRole: RoleAdmin},
	{Label: "Stock", Icon: "store", Route: RouteStock, Description: "Manage and load product stock", RequiredRole: RoleEmployee},
	{Label: "Sales", Icon: "shopping_cart", Route: RouteSales, Description: "Manage completed sales", RequiredRole: RoleAdmin},
	{Label: "Orders", Icon: "assignment", Route: RouteOrders, Description: "Manage client orders", RequiredRole: RoleEmployee},
	{Label: "Raw Materials", Icon: "category", Route: RouteRawMaterials, Description: "Track raw material inventory", RequiredRole: RoleAdmin},
}

// DefaultCatalog returns a copy of the built-in menu catalog.
func DefaultCatalog() []MenuOption {
	return append([]MenuOption(nil), defaultCatalog...)
}

// NormalizeRoute strips query strings, fragments and trailing slashes so that
// "/clientes/?page=2" and "/clientes" resolve to the same catalog entry.
func NormalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if u, err := url.Parse(route); err == nil {
		route = u.Path
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	if route != "" && route[0] != '/' {
		route = "/" + route
	}
	return route
}
