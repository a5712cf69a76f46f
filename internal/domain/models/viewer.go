// internal/domain/models/viewer.go
package models

// Viewer identifies who a service call is made for. Token is the remote
// backend's bearer token and is empty when the local backend is in use.
type Viewer struct {
	ID     string
	Name   string
	Email  string
	Role   string
	Locale string
	Token  string
}

// IsZero reports whether no one is signed in.
func (v Viewer) IsZero() bool { return v.ID == "" }
