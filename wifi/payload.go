package wifi

import (
	"fmt"
	"strings"
)

// PayloadPrefix is the scheme prefix of a WiFi network config QR code.
const PayloadPrefix = "WIFI:"

// PayloadFields splits a WiFi QR payload into its key/value fields.
//
// The WIFI: prefix is optional. Fields are separated by ';' and each field is
// split on its first ':'. Fields without a ':' (like the empty ones left by a
// trailing ";;") are dropped. When a key repeats, the last one wins.
//
// Reference: https://github.com/zxing/zxing/wiki/Barcode-Contents#wi-fi-network-config-android-ios-11
func PayloadFields(text string) map[string]string {
	text = strings.TrimPrefix(text, PayloadPrefix)
	fields := make(map[string]string)
	for _, token := range strings.Split(text, ";") {
		key, value, ok := strings.Cut(token, ":")
		if !ok {
			continue
		}
		// Last write wins. Scanners disagree on duplicate keys and the
		// convention does not say, so this stays loose on purpose.
		fields[key] = value
	}
	return fields
}

// ParsePayload parses a WiFi QR payload such as
// "WIFI:S:test-ssid;T:WPA;P:00000000000000000;H:false;;" into a Profile.
//
// S (SSID) and P (passphrase) are required. Other keys, such as the
// encryption type T and hidden flag H, are accepted but not used.
func ParsePayload(text string) (Profile, error) {
	fields := PayloadFields(text)
	ssid, ok := fields["S"]
	if !ok {
		return Profile{}, &MissingFieldError{Field: "SSID"}
	}
	psk, ok := fields["P"]
	if !ok {
		return Profile{}, &MissingFieldError{Field: "Passphrase"}
	}
	return NewProfile([]byte(ssid), psk)
}

// EncodePayload builds a WPA WiFi QR payload for ssid and passphrase.
//
// ParsePayload does no unescaping, so values containing ';' are refused
// rather than escaped: an escaped payload would not parse back to the same
// values.
func EncodePayload(ssid, passphrase string) (string, error) {
	if ssid == "" {
		return "", &MissingFieldError{Field: "SSID"}
	}
	if passphrase == "" {
		return "", &MissingFieldError{Field: "Passphrase"}
	}
	if strings.Contains(ssid, ";") {
		return "", fmt.Errorf("SSID contains ';': %w", ErrUnencodable)
	}
	if strings.Contains(passphrase, ";") {
		return "", fmt.Errorf("Passphrase contains ';': %w", ErrUnencodable)
	}

	var b strings.Builder
	b.WriteString(PayloadPrefix)
	b.WriteString("S:")
	b.WriteString(ssid)
	b.WriteString(";T:WPA;P:")
	b.WriteString(passphrase)
	b.WriteString(";;")
	return b.String(), nil
}
