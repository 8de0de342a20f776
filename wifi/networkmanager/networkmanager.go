//go:build linux

package networkmanager

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"
	"github.com/godbus/dbus/v5"
	"github.com/shazow/wifiqr/wifi"
)

const errUnknownDevice = "org.freedesktop.NetworkManager.UnknownDevice"

// D-Bus errors that mean the bus or the service went away, as opposed to
// NetworkManager refusing the request.
var transportErrors = map[string]bool{
	"org.freedesktop.DBus.Error.ServiceUnknown": true,
	"org.freedesktop.DBus.Error.NameHasNoOwner": true,
	"org.freedesktop.DBus.Error.NoReply":        true,
	"org.freedesktop.DBus.Error.NoServer":       true,
	"org.freedesktop.DBus.Error.Disconnected":   true,
	"org.freedesktop.DBus.Error.Timeout":        true,
	"org.freedesktop.DBus.Error.TimedOut":       true,
	"org.freedesktop.DBus.Error.UnknownMethod":  true,
}

// Backend implements wifi.Backend using D-Bus to communicate with NetworkManager.
type Backend struct {
	NM       gonetworkmanager.NetworkManager
	Settings gonetworkmanager.Settings

	// Connections and ActiveConnections cache the proxies for objects created
	// during this session, keyed by their handles.
	Connections       map[wifi.ConnectionHandle]gonetworkmanager.Connection
	ActiveConnections map[wifi.ActiveConnectionHandle]gonetworkmanager.ActiveConnection

	logger *slog.Logger

	newConnection       func(dbus.ObjectPath) (gonetworkmanager.Connection, error)
	newActiveConnection func(dbus.ObjectPath) (gonetworkmanager.ActiveConnection, error)
}

// New connects to NetworkManager on the system bus. The returned error wraps
// wifi.ErrNotAvailable when the service cannot be reached.
func New(logger *slog.Logger) (wifi.Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nm, err := gonetworkmanager.NewNetworkManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create network manager client: %w: %w", wifi.ErrNotAvailable, err)
	}

	settings, err := gonetworkmanager.NewSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w: %w", wifi.ErrNotAvailable, err)
	}

	// The proxies above are created lazily; a property read makes sure the
	// service is actually there.
	version, err := nm.GetPropertyVersion()
	if err != nil {
		return nil, fmt.Errorf("network manager is not responding: %w: %w", wifi.ErrNotAvailable, err)
	}
	logger.Debug("connected to network manager", "version", version)

	return newBackend(nm, settings, logger), nil
}

func newBackend(nm gonetworkmanager.NetworkManager, settings gonetworkmanager.Settings, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		NM:                  nm,
		Settings:            settings,
		Connections:         make(map[wifi.ConnectionHandle]gonetworkmanager.Connection),
		ActiveConnections:   make(map[wifi.ActiveConnectionHandle]gonetworkmanager.ActiveConnection),
		logger:              logger,
		newConnection:       gonetworkmanager.NewConnection,
		newActiveConnection: gonetworkmanager.NewActiveConnection,
	}
}

// Add stores the profile through Settings.AddConnection.
func (b *Backend) Add(profile wifi.Profile) (wifi.ConnectionHandle, error) {
	if profile.IsZero() {
		return "", fmt.Errorf("add: empty profile: %w", wifi.ErrInvalidSettings)
	}
	conn, err := b.Settings.AddConnection(gonetworkmanager.ConnectionSettings(profile.Settings()))
	if err != nil {
		return "", serviceError("add connection", err)
	}
	handle := wifi.ConnectionHandle(conn.GetPath())
	b.Connections[handle] = conn
	b.logger.Debug("added connection", "id", profile.ID(), "uuid", profile.UUID(), "path", handle)
	return handle, nil
}

// ResolveDevice looks up the device bound to the interface name.
func (b *Backend) ResolveDevice(iface string) (wifi.DeviceHandle, error) {
	dev, err := b.getDevice(iface)
	if err != nil {
		return "", err
	}
	return wifi.DeviceHandle(dev.GetPath()), nil
}

func (b *Backend) getDevice(iface string) (gonetworkmanager.Device, error) {
	op := fmt.Sprintf("resolve device %s", iface)
	dev, err := b.NM.GetDeviceByIpIface(iface)
	if err != nil {
		return nil, serviceError(op, err)
	}
	if dev == nil {
		return nil, &wifi.ServiceError{Op: op, Kind: wifi.ErrUnknownInterface}
	}
	return dev, nil
}

func (b *Backend) getConnection(handle wifi.ConnectionHandle) (gonetworkmanager.Connection, error) {
	if conn, ok := b.Connections[handle]; ok {
		return conn, nil
	}
	if !dbus.ObjectPath(handle).IsValid() {
		return nil, fmt.Errorf("invalid connection path %q: %w", handle, wifi.ErrNotFound)
	}
	conn, err := b.newConnection(dbus.ObjectPath(handle))
	if err != nil {
		return nil, serviceError("load connection", err)
	}
	b.Connections[handle] = conn
	return conn, nil
}

// Activate resolves the device for iface and activates the connection on it.
func (b *Backend) Activate(handle wifi.ConnectionHandle, iface string) (wifi.ActiveConnectionHandle, error) {
	conn, err := b.getConnection(handle)
	if err != nil {
		return "", err
	}
	dev, err := b.getDevice(iface)
	if err != nil {
		return "", err
	}

	// A nil specific object is sent as "/", letting NetworkManager pick the
	// access point.
	activeConn, err := b.NM.ActivateConnection(conn, dev, nil)
	if err != nil {
		return "", serviceError("activate connection", err)
	}
	active := wifi.ActiveConnectionHandle(activeConn.GetPath())
	b.ActiveConnections[active] = activeConn
	b.logger.Debug("activating connection", "connection", handle, "device", dev.GetPath(), "active", active)
	return active, nil
}

// AddAndActivate stores and activates the profile with a single
// AddAndActivateConnection call, so a rejected activation leaves nothing
// behind.
func (b *Backend) AddAndActivate(profile wifi.Profile, iface string) (wifi.ConnectionHandle, wifi.ActiveConnectionHandle, error) {
	if profile.IsZero() {
		return "", "", fmt.Errorf("add and activate: empty profile: %w", wifi.ErrInvalidSettings)
	}
	dev, err := b.getDevice(iface)
	if err != nil {
		return "", "", err
	}

	activeConn, err := b.NM.AddAndActivateConnection(map[string]map[string]interface{}(profile.Settings()), dev)
	if err != nil {
		return "", "", serviceError("add and activate connection", err)
	}
	active := wifi.ActiveConnectionHandle(activeConn.GetPath())
	b.ActiveConnections[active] = activeConn

	conn, err := activeConn.GetPropertyConnection()
	if err != nil {
		return "", active, serviceError("get active connection settings", err)
	}
	handle := wifi.ConnectionHandle(conn.GetPath())
	b.Connections[handle] = conn
	return handle, active, nil
}

// Delete removes a stored connection.
func (b *Backend) Delete(handle wifi.ConnectionHandle) error {
	conn, err := b.getConnection(handle)
	if err != nil {
		return err
	}
	if err := conn.Delete(); err != nil {
		return serviceError("delete connection", err)
	}
	delete(b.Connections, handle)
	b.logger.Debug("deleted connection", "path", handle)
	return nil
}

// WaitActivated blocks until the activation reaches the activated state.
func (b *Backend) WaitActivated(handle wifi.ActiveConnectionHandle, timeout time.Duration) error {
	activeConn, ok := b.ActiveConnections[handle]
	if !ok {
		var err error
		activeConn, err = b.newActiveConnection(dbus.ObjectPath(handle))
		if err != nil {
			return serviceError("load active connection", err)
		}
		b.ActiveConnections[handle] = activeConn
	}

	stateChanges := make(chan gonetworkmanager.StateChange, 1)
	done := make(chan struct{})
	defer close(done)
	err := activeConn.SubscribeState(stateChanges, done)
	if err != nil {
		return serviceError("subscribe to activation state", err)
	}

	// Check the initial state first
	initialState, err := activeConn.GetPropertyState()
	if err != nil {
		return serviceError("get activation state", err)
	}
	if initialState == gonetworkmanager.NmActiveConnectionStateActivated {
		return nil
	}

	deadline := time.After(timeout)
	for {
		select {
		case change := <-stateChanges:
			b.logger.Debug("activation state changed", "active", handle, "state", change.State, "reason", change.Reason)
			switch change.State {
			case gonetworkmanager.NmActiveConnectionStateActivated:
				return nil
			case gonetworkmanager.NmActiveConnectionStateDeactivated, gonetworkmanager.NmActiveConnectionStateDeactivating:
				return &wifi.ServiceError{
					Op:     "activate connection",
					Kind:   wifi.ErrRejected,
					Detail: fmt.Sprintf("activation failed: %v", change.Reason),
				}
			}
		case <-deadline:
			return fmt.Errorf("activation of %s timed out after %s: %w", handle, timeout, wifi.ErrOperationFailed)
		}
	}
}

// serviceError classifies an error returned by a NetworkManager call.
func serviceError(op string, err error) error {
	var name, detail string
	var dbusErr dbus.Error
	var dbusErrPtr *dbus.Error
	switch {
	case errors.As(err, &dbusErr):
		name, detail = dbusErr.Name, dbusErr.Error()
	case errors.As(err, &dbusErrPtr) && dbusErrPtr != nil:
		name, detail = dbusErrPtr.Name, dbusErrPtr.Error()
	default:
		return &wifi.ServiceError{Op: op, Kind: wifi.ErrTransport, Detail: err.Error(), Err: err}
	}

	kind := wifi.ErrRejected
	switch {
	case name == errUnknownDevice:
		kind = wifi.ErrUnknownInterface
	case transportErrors[name]:
		kind = wifi.ErrTransport
	}
	return &wifi.ServiceError{Op: op, Kind: kind, Detail: fmt.Sprintf("%s: %s", name, detail), Err: err}
}
