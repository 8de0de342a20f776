package mock

import (
	"fmt"
	"time"

	"github.com/shazow/wifiqr/wifi"
)

var DefaultActionSleep = 200 * time.Millisecond

const (
	settingsPath = "/org/freedesktop/NetworkManager/Settings/%d"
	devicesPath  = "/org/freedesktop/NetworkManager/Devices/%d"
	activePath   = "/org/freedesktop/NetworkManager/ActiveConnection/%d"
)

// Call records a single request made to the mock service.
type Call struct {
	Method string
	Arg    string
}

// MockBackend is an in-memory stand-in for NetworkManager, for testing.
type MockBackend struct {
	// Devices maps interface names to device handles.
	Devices map[string]wifi.DeviceHandle
	// Connections holds the stored profiles.
	Connections map[wifi.ConnectionHandle]wifi.Profile
	// Active maps running activations to the connection they activate.
	Active map[wifi.ActiveConnectionHandle]wifi.ConnectionHandle
	// Calls lists every request in order.
	Calls []Call

	AddError      error
	ActivateError error
	DeleteError   error
	WaitError     error

	// ActionSleep is a delay before every action, to better emulate a real-world backend. Set to 0 during testing.
	ActionSleep time.Duration

	nextID int
}

// New creates a new mock.Backend with a wlan0 and an eth0 device.
func New() (wifi.Backend, error) {
	return &MockBackend{
		Devices: map[string]wifi.DeviceHandle{
			"eth0":  wifi.DeviceHandle(fmt.Sprintf(devicesPath, 1)),
			"wlan0": wifi.DeviceHandle(fmt.Sprintf(devicesPath, 2)),
		},
		Connections: make(map[wifi.ConnectionHandle]wifi.Profile),
		Active:      make(map[wifi.ActiveConnectionHandle]wifi.ConnectionHandle),
		ActionSleep: DefaultActionSleep,
	}, nil
}

func (m *MockBackend) record(method, arg string) {
	time.Sleep(m.ActionSleep)
	m.Calls = append(m.Calls, Call{Method: method, Arg: arg})
}

func (m *MockBackend) id() int {
	m.nextID++
	return m.nextID
}

func (m *MockBackend) Add(profile wifi.Profile) (wifi.ConnectionHandle, error) {
	m.record("Add", profile.ID())

	if m.AddError != nil {
		return "", m.AddError
	}
	if profile.IsZero() {
		return "", &wifi.ServiceError{Op: "add connection", Kind: wifi.ErrRejected, Detail: "empty profile"}
	}
	for _, existing := range m.Connections {
		if existing.UUID() == profile.UUID() {
			return "", &wifi.ServiceError{Op: "add connection", Kind: wifi.ErrRejected, Detail: "uuid already exists"}
		}
	}
	handle := wifi.ConnectionHandle(fmt.Sprintf(settingsPath, m.id()))
	m.Connections[handle] = profile
	return handle, nil
}

func (m *MockBackend) ResolveDevice(iface string) (wifi.DeviceHandle, error) {
	m.record("ResolveDevice", iface)

	dev, ok := m.Devices[iface]
	if !ok {
		return "", &wifi.ServiceError{Op: "resolve device " + iface, Kind: wifi.ErrUnknownInterface}
	}
	return dev, nil
}

func (m *MockBackend) Activate(conn wifi.ConnectionHandle, iface string) (wifi.ActiveConnectionHandle, error) {
	if _, err := m.ResolveDevice(iface); err != nil {
		return "", err
	}
	m.record("Activate", string(conn))

	if m.ActivateError != nil {
		return "", m.ActivateError
	}
	if _, ok := m.Connections[conn]; !ok {
		return "", &wifi.ServiceError{Op: "activate connection", Kind: wifi.ErrRejected, Detail: fmt.Sprintf("unknown connection %s", conn)}
	}
	active := wifi.ActiveConnectionHandle(fmt.Sprintf(activePath, m.id()))
	m.Active[active] = conn
	return active, nil
}

func (m *MockBackend) AddAndActivate(profile wifi.Profile, iface string) (wifi.ConnectionHandle, wifi.ActiveConnectionHandle, error) {
	if _, err := m.ResolveDevice(iface); err != nil {
		return "", "", err
	}
	m.record("AddAndActivate", profile.ID())

	// The service validates both steps before storing anything.
	if m.AddError != nil {
		return "", "", m.AddError
	}
	if m.ActivateError != nil {
		return "", "", m.ActivateError
	}
	handle := wifi.ConnectionHandle(fmt.Sprintf(settingsPath, m.id()))
	m.Connections[handle] = profile
	active := wifi.ActiveConnectionHandle(fmt.Sprintf(activePath, m.id()))
	m.Active[active] = handle
	return handle, active, nil
}

func (m *MockBackend) Delete(conn wifi.ConnectionHandle) error {
	m.record("Delete", string(conn))

	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.Connections[conn]; !ok {
		return fmt.Errorf("cannot delete unknown connection %s: %w", conn, wifi.ErrNotFound)
	}
	delete(m.Connections, conn)
	for active, c := range m.Active {
		if c == conn {
			delete(m.Active, active)
		}
	}
	return nil
}

func (m *MockBackend) WaitActivated(active wifi.ActiveConnectionHandle, timeout time.Duration) error {
	m.record("WaitActivated", string(active))

	if m.WaitError != nil {
		return m.WaitError
	}
	if _, ok := m.Active[active]; !ok {
		return fmt.Errorf("unknown activation %s: %w", active, wifi.ErrNotFound)
	}
	return nil
}

// Methods returns the method names of the recorded calls, in order.
func (m *MockBackend) Methods() []string {
	methods := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		methods = append(methods, c.Method)
	}
	return methods
}
