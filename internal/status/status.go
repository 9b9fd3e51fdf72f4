package status

import "errors"

var (
	// ErrTransport marks a request that never produced a usable
	// response: connection failure, timeout, or an undecodable body.
	ErrTransport = errors.New("api: transport failure")

	// ErrBackend marks a response where the backend itself reported
	// failure (ok:false / success:false).
	ErrBackend = errors.New("api: backend rejected request")

	// ErrNotAuthenticated is returned by views and services that must
	// not fetch or render while the viewer is logged out.
	ErrNotAuthenticated = errors.New("session: not authenticated")
)
