package wifi

import "time"

// ConnectionHandle identifies a connection profile stored by the service.
type ConnectionHandle string

// DeviceHandle identifies a network device known to the service.
type DeviceHandle string

// ActiveConnectionHandle identifies a running activation of a connection.
type ActiveConnectionHandle string

// Backend is a client of the host's network management service.
//
// A QR result goes through Add and ResolveDevice, in either order, and then
// Activate. Nothing is rolled back when a later step fails.
type Backend interface {
	// Add stores the profile. It does not activate it.
	Add(profile Profile) (ConnectionHandle, error)
	// ResolveDevice returns the device bound to the interface name, or an
	// error matching ErrUnknownInterface.
	ResolveDevice(iface string) (DeviceHandle, error)
	// Activate activates a stored connection on the device bound to iface,
	// without pinning a specific access point.
	Activate(conn ConnectionHandle, iface string) (ActiveConnectionHandle, error)
	// Delete removes a stored connection.
	Delete(conn ConnectionHandle) error
}

// AddActivator is implemented by backends that can store and activate a
// profile in a single service call.
type AddActivator interface {
	AddAndActivate(profile Profile, iface string) (ConnectionHandle, ActiveConnectionHandle, error)
}

// Waiter is implemented by backends that can block until an activation has
// finished.
type Waiter interface {
	// WaitActivated returns nil once the activation reached the activated
	// state, or an error if it failed or did not finish within timeout.
	WaitActivated(active ActiveConnectionHandle, timeout time.Duration) error
}
