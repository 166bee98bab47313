// Package session gives read access to the signed-in identity and keeps
// the client's local state.
package session

import "errors"

// Role is the kind of account signed in
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleAdmin    Role = "Admin"
)

// Identity is the signed-in user
type Identity struct {
	Type  Role   `json:"type"`
	Email string `json:"email"`
}

// IsAdmin reports whether the identity may review bills
func (i Identity) IsAdmin() bool {
	return i.Type == RoleAdmin
}

// ErrNoSession is returned when nobody is signed in
var ErrNoSession = errors.New("no session")

// Provider reads the current identity
type Provider interface {
	Identity() (Identity, error)
}

// Static is a Provider returning a fixed identity
type Static Identity

func (s Static) Identity() (Identity, error) {
	if s.Email == "" {
		return Identity{}, ErrNoSession
	}
	return Identity(s), nil
}
