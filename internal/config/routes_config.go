package config

type RoutesConfig interface {
	GetLoginRoute() string
	GetHomeRoute() string
}

type Routes struct{}

var _ RoutesConfig = Routes{}

func (Routes) GetLoginRoute() string {
	return GetEnv("LOGIN_ROUTE", "/login")
}

func (Routes) GetHomeRoute() string {
	return GetEnv("HOME_ROUTE", "/home")
}
