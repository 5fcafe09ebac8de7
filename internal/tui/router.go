package tui

// Route - экран клиента.
type Route int

const (
	RouteLogin Route = iota
	RouteList
	RouteCreate
	RouteEdit
	RouteSettings
)

func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteList:
		return "list"
	case RouteCreate:
		return "create"
	case RouteEdit:
		return "edit"
	case RouteSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// Guard решает, куда на самом деле ведет переход:
// без сессии - только на вход, с сессией вход заменяется списком.
func Guard(to Route, authenticated bool) Route {
	if !authenticated {
		return RouteLogin
	}
	if to == RouteLogin {
		return RouteList
	}
	return to
}
