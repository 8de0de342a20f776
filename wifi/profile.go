package wifi

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// Setting section names, as NetworkManager expects them.
const (
	SectionConnection = "connection"
	SectionWireless   = "802-11-wireless"
	SectionSecurity   = "802-11-wireless-security"
	SectionIPv4       = "ipv4"
	SectionIPv6       = "ipv6"
)

// Fixed profile values. Only infrastructure WPA-PSK networks are supported.
const (
	KindWireless       = "802-11-wireless"
	ModeInfrastructure = "infrastructure"
	KeyMgmtWPAPSK      = "wpa-psk"
	AuthAlgOpen        = "open"
	IPv4MethodAuto     = "auto"
	IPv6MethodIgnore   = "ignore"
)

// Settings is the sectioned wire encoding of a connection profile.
type Settings map[string]map[string]interface{}

// Profile is a validated WiFi connection configuration. It is a value: it
// holds no reference to any service object and cannot be changed once built.
type Profile struct {
	uuid       string
	ssid       []byte
	passphrase string
}

// NewProfile builds a Profile with a fresh UUID. Both ssid and passphrase are
// required.
func NewProfile(ssid []byte, passphrase string) (Profile, error) {
	if len(ssid) == 0 {
		return Profile{}, &MissingFieldError{Field: "SSID"}
	}
	if passphrase == "" {
		return Profile{}, &MissingFieldError{Field: "Passphrase"}
	}
	return Profile{
		uuid:       uuid.NewString(),
		ssid:       bytes.Clone(ssid),
		passphrase: passphrase,
	}, nil
}

// Kind returns the NetworkManager connection type.
func (p Profile) Kind() string { return KindWireless }

// UUID returns the identifier assigned when the profile was built.
func (p Profile) UUID() string { return p.uuid }

// ID returns the display name of the connection, which is the SSID.
func (p Profile) ID() string { return string(p.ssid) }

// SSID returns a copy of the raw SSID bytes.
func (p Profile) SSID() []byte { return bytes.Clone(p.ssid) }

func (p Profile) Passphrase() string { return p.passphrase }
func (p Profile) Mode() string       { return ModeInfrastructure }
func (p Profile) KeyMgmt() string    { return KeyMgmtWPAPSK }
func (p Profile) AuthAlg() string    { return AuthAlgOpen }
func (p Profile) IPv4Method() string { return IPv4MethodAuto }
func (p Profile) IPv6Method() string { return IPv6MethodIgnore }

// IsZero reports whether p was not produced by NewProfile or ParsePayload.
func (p Profile) IsZero() bool { return p.uuid == "" }

// Equal reports whether p and other agree on every field except the UUID.
func (p Profile) Equal(other Profile) bool {
	return bytes.Equal(p.ssid, other.ssid) && p.passphrase == other.passphrase
}

// Settings encodes the profile into the section layout used by
// NetworkManager's AddConnection. Every call returns a new map.
func (p Profile) Settings() Settings {
	return Settings{
		SectionConnection: {
			"type": p.Kind(),
			"uuid": p.uuid,
			"id":   p.ID(),
		},
		SectionWireless: {
			"ssid": p.SSID(),
			"mode": p.Mode(),
		},
		SectionSecurity: {
			"key-mgmt": p.KeyMgmt(),
			"auth-alg": p.AuthAlg(),
			"psk":      p.passphrase,
		},
		SectionIPv4: {"method": p.IPv4Method()},
		SectionIPv6: {"method": p.IPv6Method()},
	}
}

// DecodeSettings rebuilds a Profile from its wire encoding, keeping the UUID.
// The fixed values must match what Settings produces.
func DecodeSettings(s Settings) (Profile, error) {
	get := func(section, key string) (interface{}, error) {
		sec, ok := s[section]
		if !ok {
			return nil, fmt.Errorf("section %q not found: %w", section, ErrInvalidSettings)
		}
		v, ok := sec[key]
		if !ok {
			return nil, fmt.Errorf("%s.%s not found: %w", section, key, ErrInvalidSettings)
		}
		return v, nil
	}
	str := func(section, key string) (string, error) {
		v, err := get(section, key)
		if err != nil {
			return "", err
		}
		sv, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%s.%s is %T, not a string: %w", section, key, v, ErrInvalidSettings)
		}
		return sv, nil
	}
	expect := func(section, key, want string) error {
		got, err := str(section, key)
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("%s.%s is %q, expected %q: %w", section, key, got, want, ErrInvalidSettings)
		}
		return nil
	}

	for _, e := range []struct{ section, key, want string }{
		{SectionConnection, "type", KindWireless},
		{SectionWireless, "mode", ModeInfrastructure},
		{SectionSecurity, "key-mgmt", KeyMgmtWPAPSK},
		{SectionSecurity, "auth-alg", AuthAlgOpen},
		{SectionIPv4, "method", IPv4MethodAuto},
		{SectionIPv6, "method", IPv6MethodIgnore},
	} {
		if err := expect(e.section, e.key, e.want); err != nil {
			return Profile{}, err
		}
	}

	id, err := str(SectionConnection, "uuid")
	if err != nil {
		return Profile{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return Profile{}, fmt.Errorf("connection.uuid %q: %w", id, ErrInvalidSettings)
	}
	rawSSID, err := get(SectionWireless, "ssid")
	if err != nil {
		return Profile{}, err
	}
	ssid, ok := rawSSID.([]byte)
	if !ok {
		return Profile{}, fmt.Errorf("802-11-wireless.ssid is %T, not bytes: %w", rawSSID, ErrInvalidSettings)
	}
	psk, err := str(SectionSecurity, "psk")
	if err != nil {
		return Profile{}, err
	}

	p, err := NewProfile(ssid, psk)
	if err != nil {
		return Profile{}, err
	}
	p.uuid = id
	return p, nil
}
