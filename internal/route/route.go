// Package route names the client's screens and decides which one a request
// for a screen actually lands on, given the session.
package route

import "github.com/naveenspark/estate/internal/session"

// Route is a screen path.
type Route string

const (
	Home     Route = "/"
	Login    Route = "/login"
	SignUp   Route = "/signup"
	Function Route = "/function"
	Profile  Route = "/profile"
)

// All lists the routes in nav-bar order.
var All = []Route{Home, Function, Profile, Login, SignUp}

// Parse maps a path to a route. Unknown paths map to Home.
func Parse(p string) (Route, bool) {
	for _, r := range All {
		if string(r) == p {
			return r, true
		}
	}
	return Home, false
}

// Protected reports whether r requires an authenticated session.
func (r Route) Protected() bool {
	return r == Function || r == Profile
}

// guestOnly routes send authenticated users on to the tool.
func (r Route) guestOnly() bool {
	return r == Login || r == SignUp
}

// Decision is the outcome of resolving a navigation request.
type Decision struct {
	// Route to render. Meaningless while Pending.
	Route Route
	// Redirected is set when Route differs from the target. Redirects replace
	// the current history entry.
	Redirected bool
	// Pending means the session has not resolved yet; render a placeholder
	// and resolve again later.
	Pending bool
}

// Resolve decides where a request for target lands.
func Resolve(target Route, st session.State) Decision {
	switch {
	case target.Protected() && st.Initializing:
		return Decision{Route: target, Pending: true}
	case target.Protected() && !st.Authenticated:
		return Decision{Route: Login, Redirected: true}
	case target.guestOnly() && st.Authenticated:
		return Decision{Route: Function, Redirected: true}
	}
	return Decision{Route: target}
}
