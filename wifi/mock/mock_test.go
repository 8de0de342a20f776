package mock

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shazow/wifiqr/wifi"
)

func newTestBackend(t *testing.T) *MockBackend {
	t.Helper()
	b, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	m := b.(*MockBackend)
	m.ActionSleep = 0
	return m
}

func testProfile(t *testing.T) wifi.Profile {
	t.Helper()
	p, err := wifi.ParsePayload("WIFI:S:test-ssid;T:WPA;P:00000000000000000;H:false;;")
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	return p
}

func TestNew(t *testing.T) {
	m := newTestBackend(t)
	if len(m.Devices) == 0 {
		t.Fatal("New() returned no devices")
	}
	if len(m.Connections) != 0 {
		t.Errorf("expected no stored connections, got %d", len(m.Connections))
	}
}

func TestAddActivate(t *testing.T) {
	m := newTestBackend(t)
	profile := testProfile(t)

	conn, err := m.Add(profile)
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if stored, ok := m.Connections[conn]; !ok || stored.UUID() != profile.UUID() {
		t.Fatalf("profile was not stored under %s", conn)
	}

	active, err := m.Activate(conn, "wlan0")
	if err != nil {
		t.Fatalf("Activate() failed: %v", err)
	}
	if m.Active[active] != conn {
		t.Errorf("activation %s does not point at %s", active, conn)
	}

	want := []string{"Add", "ResolveDevice", "Activate"}
	if got := m.Methods(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestAdd_DuplicateUUID(t *testing.T) {
	m := newTestBackend(t)
	profile := testProfile(t)
	if _, err := m.Add(profile); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Add(profile); !errors.Is(err, wifi.ErrRejected) {
		t.Errorf("expected ErrRejected for a reused UUID, got %v", err)
	}
}

func TestResolveDevice_Unknown(t *testing.T) {
	m := newTestBackend(t)
	dev, err := m.ResolveDevice("blah0")
	if !errors.Is(err, wifi.ErrUnknownInterface) {
		t.Fatalf("expected ErrUnknownInterface, got %v", err)
	}
	if dev != "" {
		t.Errorf("expected empty device handle, got %q", dev)
	}
}

func TestActivate_Errors(t *testing.T) {
	m := newTestBackend(t)
	conn, err := m.Add(testProfile(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Activate(conn, "wlan9"); !errors.Is(err, wifi.ErrUnknownInterface) {
		t.Errorf("expected ErrUnknownInterface, got %v", err)
	}
	if _, err := m.Activate("/nope", "wlan0"); !errors.Is(err, wifi.ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}

	m.ActivateError = &wifi.ServiceError{Op: "activate connection", Kind: wifi.ErrRejected, Detail: "secrets were required"}
	if _, err := m.Activate(conn, "wlan0"); !errors.Is(err, wifi.ErrRejected) {
		t.Errorf("expected injected error, got %v", err)
	}
	if _, ok := m.Connections[conn]; !ok {
		t.Error("failed activation must not remove the stored connection")
	}
}

func TestAddAndActivate(t *testing.T) {
	m := newTestBackend(t)
	m.ActivateError = errors.New("boom")
	if _, _, err := m.AddAndActivate(testProfile(t), "wlan0"); err == nil {
		t.Fatal("expected error")
	}
	if len(m.Connections) != 0 {
		t.Error("combined call must not leave a stored connection behind")
	}

	m.ActivateError = nil
	conn, active, err := m.AddAndActivate(testProfile(t), "wlan0")
	if err != nil {
		t.Fatalf("AddAndActivate() failed: %v", err)
	}
	if m.Active[active] != conn {
		t.Errorf("activation %s does not point at %s", active, conn)
	}
}

func TestDelete(t *testing.T) {
	m := newTestBackend(t)
	conn, err := m.Add(testProfile(t))
	if err != nil {
		t.Fatal(err)
	}
	active, err := m.Activate(conn, "wlan0")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Delete(conn); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok := m.Connections[conn]; ok {
		t.Error("connection still stored after Delete")
	}
	if _, ok := m.Active[active]; ok {
		t.Error("activation survived Delete")
	}
	if err := m.Delete(conn); !errors.Is(err, wifi.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
