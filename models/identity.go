package models

// Identity is the authenticated caller resolved from a bearer token.
// Handlers pass it explicitly into every service call that needs it.
type Identity struct {
	Username string
	Roles    []string
}
