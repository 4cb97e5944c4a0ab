// Package route maps paths to views and decides who may see them.
package route

import (
	"net/url"
	"strings"

	"github.com/five82/galley/internal/session"
)

// Name identifies a view.
type Name int

const (
	List Name = iota
	Login
	Create
	Detail
	Edit
)

// Route is a parsed path.
type Route struct {
	Name Name
	ID   string
}

// Home is the landing route.
var Home = Route{Name: List}

// Parse maps path onto a Route. Unknown paths land on the list.
func Parse(path string) Route {
	if u, err := url.Parse(strings.TrimSpace(path)); err == nil {
		path = u.Path
	}
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	switch {
	case len(parts) == 1 && parts[0] == "login":
		return Route{Name: Login}
	case len(parts) == 1 && parts[0] == "recipes":
		return Home
	case len(parts) == 2 && parts[0] == "recipes" && parts[1] == "new":
		return Route{Name: Create}
	case len(parts) == 2 && parts[0] == "recipes":
		return Route{Name: Detail, ID: parts[1]}
	case len(parts) == 3 && parts[0] == "recipes" && parts[2] == "edit":
		return Route{Name: Edit, ID: parts[1]}
	default:
		return Home
	}
}

// Path renders r back into its canonical path.
func (r Route) Path() string {
	switch r.Name {
	case Login:
		return "/login"
	case Create:
		return "/recipes/new"
	case Detail:
		return "/recipes/" + r.ID
	case Edit:
		return "/recipes/" + r.ID + "/edit"
	default:
		return "/recipes"
	}
}

func (r Route) String() string { return r.Path() }

// Protected reports whether r requires a session.
func (r Route) Protected() bool {
	return r.Name == Create || r.Name == Edit
}

// Decision is the outcome of Guard.
type Decision int

const (
	// Pending means the session is still hydrating; render a placeholder.
	Pending Decision = iota
	Allow
	RedirectLogin
)

// Guard decides whether r may be shown for the session st. The attempted
// route is not remembered on a redirect.
func Guard(r Route, st session.State) Decision {
	if !r.Protected() {
		return Allow
	}
	if st.Initializing {
		return Pending
	}
	if st.Token != "" {
		return Allow
	}
	return RedirectLogin
}
